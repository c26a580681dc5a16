package carousel

import (
	"sort"
	"sync"
)

// listenerSet holds subscribers keyed by registration order.
type listenerSet[T any] struct {
	mu     sync.Mutex
	fns    map[int]func(T)
	nextID int
}

func (s *listenerSet[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

// snapshot returns the current subscribers in registration order.
func (s *listenerSet[T]) snapshot() []func(T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(T), len(ids))
	for i, id := range ids {
		out[i] = s.fns[id]
	}
	return out
}

func (s *listenerSet[T]) clear() {
	s.mu.Lock()
	s.fns = nil
	s.mu.Unlock()
}

func emit[T any](fns []func(T), v T) {
	for _, fn := range fns {
		fn(v)
	}
}
