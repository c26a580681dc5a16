// Package simengine provides an in-memory slide engine. It renders nothing but
// keeps the same raw slide bookkeeping as a real engine: the clone-inflated
// layout, the raw active index and the index callbacks. It backs the CLI
// simulation and controller tests.
package simengine

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-drift/slides/pkg/carousel"
)

var (
	// ErrAlreadyLive is returned when Initialize targets a container that
	// still holds a live instance.
	ErrAlreadyLive = stderrors.New("simengine: container already has a live instance")
	// ErrNotLive is returned for operations on a container without an instance.
	ErrNotLive = stderrors.New("simengine: no live instance")
)

// Instance is the live state of one container.
type Instance struct {
	Config carousel.EngineConfig
	Layout carousel.Layout
	Active int

	onIndex func(int)
}

// Stats counts engine calls.
type Stats struct {
	Initializes int
	Destroys    int
	Failures    int
	// MaxLive is the highest number of simultaneously live instances.
	MaxLive int
}

// Engine is a goroutine-safe in-memory carousel.Engine and carousel.Navigator.
type Engine struct {
	mu        sync.Mutex
	instances map[carousel.Container]*Instance
	stats     Stats
	failures  []error

	// InitHook, when set, runs at the start of every Initialize. A non-nil
	// error fails the call.
	InitHook func(ctx context.Context, c carousel.Container, req carousel.InitRequest) error
	// Silent suppresses the initial index notification after Initialize.
	Silent bool
}

// New returns an engine with no live instances.
func New() *Engine {
	return &Engine{instances: make(map[carousel.Container]*Instance)}
}

// FailNext makes the next len(errs) Initialize calls fail with errs in order.
func (e *Engine) FailNext(errs ...error) {
	e.mu.Lock()
	e.failures = append(e.failures, errs...)
	e.mu.Unlock()
}

// Initialize creates the instance for c.
func (e *Engine) Initialize(ctx context.Context, c carousel.Container, req carousel.InitRequest) error {
	if e.InitHook != nil {
		if err := e.InitHook(ctx, c, req); err != nil {
			e.mu.Lock()
			e.stats.Failures++
			e.mu.Unlock()
			return err
		}
	}

	e.mu.Lock()
	if len(e.failures) > 0 {
		err := e.failures[0]
		e.failures = e.failures[1:]
		e.stats.Failures++
		e.mu.Unlock()
		return err
	}
	if _, ok := e.instances[c]; ok {
		e.mu.Unlock()
		return fmt.Errorf("initialize %s: %w", c, ErrAlreadyLive)
	}
	layout := req.Layout()
	active := 0
	if req.Config.InitialSlide < layout.RawCount() {
		active = req.Config.InitialSlide
	}
	inst := &Instance{
		Config:  req.Config,
		Layout:  layout,
		Active:  active,
		onIndex: req.OnIndex,
	}
	e.instances[c] = inst
	e.stats.Initializes++
	e.stats.MaxLive = max(e.stats.MaxLive, len(e.instances))
	silent := e.Silent
	e.mu.Unlock()

	if !silent {
		inst.notify(active)
	}
	return nil
}

// Destroy tears down the instance for c. Destroying an absent instance is a no-op.
func (e *Engine) Destroy(ctx context.Context, c carousel.Container) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.instances[c]; ok {
		delete(e.instances, c)
		e.stats.Destroys++
	}
	return nil
}

// SlideTo moves the instance for c to raw and reports it.
func (e *Engine) SlideTo(ctx context.Context, c carousel.Container, raw int) error {
	e.mu.Lock()
	inst, ok := e.instances[c]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("slide %s: %w", c, ErrNotLive)
	}
	if raw < 0 || raw >= inst.Layout.RawCount() {
		e.mu.Unlock()
		return fmt.Errorf("slide %s: raw index %d out of range [0, %d)", c, raw, inst.Layout.RawCount())
	}
	inst.Active = raw
	e.mu.Unlock()

	inst.notify(raw)
	return nil
}

// Swipe simulates a drag of delta slides. Looping instances wrap around the
// raw layout; others stop at the ends.
func (e *Engine) Swipe(c carousel.Container, delta int) error {
	e.mu.Lock()
	inst, ok := e.instances[c]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("swipe %s: %w", c, ErrNotLive)
	}
	n := inst.Layout.RawCount()
	next := inst.Active + delta
	if inst.Config.Loop {
		next = ((next % n) + n) % n
	} else {
		next = min(max(next, 0), n-1)
	}
	changed := next != inst.Active
	inst.Active = next
	e.mu.Unlock()

	if changed {
		inst.notify(next)
	}
	return nil
}

// Emit delivers raw through the callback of c's instance without moving it.
// Tests use it to replay notifications.
func (e *Engine) Emit(c carousel.Container, raw int) error {
	e.mu.Lock()
	inst, ok := e.instances[c]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("emit %s: %w", c, ErrNotLive)
	}
	inst.notify(raw)
	return nil
}

// Instance returns a copy of the live instance for c.
func (e *Engine) Instance(c carousel.Container) (Instance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[c]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

// Live returns the number of live instances.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.instances)
}

// Stats returns a snapshot of the call counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (i *Instance) notify(raw int) {
	if i.onIndex != nil {
		i.onIndex(raw)
	}
}
