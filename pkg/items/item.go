// Package items converts host values into the normalized display records
// shown by carousels, grids and galleries.
//
// Hosts register a Mapper per Go type once, typically from an init function:
//
//	items.Register(Product{}, func(v any) (items.Item, error) {
//	    p := v.(Product)
//	    return items.Item{Image: p.PhotoURL, Title: p.Name}, nil
//	})
//
// and then map whole sequences before handing them to a widget:
//
//	list, err := items.MapAll(products)
package items

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"
)

// Item is a normalized display record. Items are identified by their
// position in the sequence the host supplies.
type Item struct {
	Image       string `yaml:"image"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// IsZero reports whether the item carries no content.
func (i Item) IsZero() bool {
	return i == Item{}
}

// Mapper converts one host value into an Item.
type Mapper func(v any) (Item, error)

// ErrNoMapper is returned when no mapper is registered for a value's type.
var ErrNoMapper = stderrors.New("items: no mapper registered")

// Registry maps Go types to Mappers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	mappers map[reflect.Type]Mapper
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{mappers: make(map[reflect.Type]Mapper)}
}

// DefaultRegistry is used by the package-level Register, Map and MapAll.
var DefaultRegistry = NewRegistry()

// Register associates m with the dynamic type of sample, replacing any
// previous mapper for that type. A nil mapper removes the registration.
func (r *Registry) Register(sample any, m Mapper) {
	t := reflect.TypeOf(sample)
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m == nil {
		delete(r.mappers, t)
		return
	}
	r.mappers[t] = m
}

func (r *Registry) lookup(t reflect.Type) (Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappers[t]
	return m, ok
}

// Map converts v using the mapper registered for its type. Pointers fall back
// to the mapper of their element type, and Item values pass through unchanged.
func (r *Registry) Map(v any) (Item, error) {
	switch it := v.(type) {
	case Item:
		return it, nil
	case *Item:
		if it == nil {
			return Item{}, fmt.Errorf("%w for nil *Item", ErrNoMapper)
		}
		return *it, nil
	}

	t := reflect.TypeOf(v)
	if t == nil {
		return Item{}, fmt.Errorf("%w for nil value", ErrNoMapper)
	}
	if m, ok := r.lookup(t); ok {
		return m(v)
	}
	if t.Kind() == reflect.Pointer {
		rv := reflect.ValueOf(v)
		if !rv.IsNil() {
			if m, ok := r.lookup(t.Elem()); ok {
				return m(rv.Elem().Interface())
			}
		}
	}
	return Item{}, fmt.Errorf("%w for %s", ErrNoMapper, t)
}

// MapAll maps every value, preserving order. The first failure aborts with
// the offending index.
func (r *Registry) MapAll(values []any) ([]Item, error) {
	out := make([]Item, 0, len(values))
	for i, v := range values {
		it, err := r.Map(v)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, it)
	}
	return out, nil
}

// Register adds a mapper to DefaultRegistry.
func Register(sample any, m Mapper) { DefaultRegistry.Register(sample, m) }

// Map converts v with DefaultRegistry.
func Map(v any) (Item, error) { return DefaultRegistry.Map(v) }

// MapAll converts values with DefaultRegistry.
func MapAll(values []any) ([]Item, error) { return DefaultRegistry.MapAll(values) }
