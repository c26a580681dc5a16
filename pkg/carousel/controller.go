package carousel

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/go-drift/slides/pkg/errors"
	"github.com/go-drift/slides/pkg/items"
)

// State is the lifecycle state of a Controller.
type State int

const (
	// StateUninitialized means no engine instance has been requested yet.
	StateUninitialized State = iota
	// StateInitializing means the first engine instance is being created.
	StateInitializing
	// StateReady means a live engine instance matches the current inputs.
	StateReady
	// StateReinitializing means the live instance is being replaced.
	StateReinitializing
	// StateDestroyed means the engine was torn down, either because the item
	// list became empty or because the controller was disposed.
	StateDestroyed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateReinitializing:
		return "reinitializing"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithContainer sets the container handle passed to the engine.
func WithContainer(c Container) Option {
	return func(ctrl *Controller) { ctrl.container = c }
}

// WithDispatcher routes lifecycle completions and engine callbacks through d.
func WithDispatcher(d Dispatcher) Option {
	return func(ctrl *Controller) {
		if d != nil {
			ctrl.dispatch = d
		}
	}
}

// WithCloneOptions sets the loop requirements forwarded to the engine.
func WithCloneOptions(o CloneOptions) Option {
	return func(ctrl *Controller) { ctrl.clones = o }
}

// WithLogger sets the logger used for lifecycle tracing.
func WithLogger(l *zap.Logger) Option {
	return func(ctrl *Controller) {
		if l != nil {
			ctrl.logger = l
		}
	}
}

// WithContext sets the context passed to every engine call.
func WithContext(ctx context.Context) Option {
	return func(ctrl *Controller) {
		if ctx != nil {
			ctrl.ctx = ctx
		}
	}
}

// Controller owns at most one live engine instance for one carousel and keeps
// it consistent with the items and parameters supplied on each render.
//
// Update, Tap, SlideTo and Dispose are meant to be called from the host's UI
// goroutine. Engine work runs on background goroutines and its results are
// applied through the Dispatcher; a lifecycle request that arrives while
// another is in flight is dropped, and the next Update re-evaluates it.
type Controller struct {
	engine    Engine
	container Container
	dispatch  Dispatcher
	clones    CloneOptions
	logger    *zap.Logger
	ctx       context.Context

	mu       sync.Mutex
	state    State
	disposed bool
	busy     bool
	live     bool
	gen      uint64
	items    []items.Item
	params   Params
	mode     Mode
	config   EngineConfig
	detector Detector
	// pending is the mode of the generation in flight; liveMode, liveConfig
	// and applied describe the generation that last became ready.
	pending    Mode
	liveMode   Mode
	liveConfig EngineConfig
	applied    Signature
	layout   Layout
	active   int
	raw      int
	// indexed is set once the current generation reported an index.
	indexed bool

	wg sync.WaitGroup

	indexListeners    listenerSet[int]
	itemListeners     listenerSet[items.Item]
	selectedListeners listenerSet[items.Item]
}

// NewController creates a controller driving engine.
func NewController(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:   engine,
		dispatch: inlineDispatch,
		clones:   DefaultCloneOptions,
		logger:   zap.NewNop(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.container == "" {
		c.container = NewContainer()
	}
	return c
}

// OnIndexChanged registers fn for logical active-index changes.
// Returns an unsubscribe function.
func (c *Controller) OnIndexChanged(fn func(int)) func() {
	return c.indexListeners.add(fn)
}

// OnItemChanged registers fn for active-item changes.
func (c *Controller) OnItemChanged(fn func(items.Item)) func() {
	return c.itemListeners.add(fn)
}

// OnItemSelected registers fn for item selections, from taps and, when
// SelectOnScroll is set, from scrolling.
func (c *Controller) OnItemSelected(fn func(items.Item)) func() {
	return c.selectedListeners.add(fn)
}

// Update applies the items and params of one render. Invalid params are
// rejected with an error containing *errors.ConfigError, reported as
// KindConfig, and leave the controller unchanged. Engine failures are not
// returned; they are reported through the errors package and retried on the
// next Update.
func (c *Controller) Update(list []items.Item, params Params) error {
	if err := params.Validate(); err != nil {
		c.logger.Warn("rejected carousel params",
			zap.String("container", string(c.container)),
			zap.Error(err))
		errors.Report(&errors.SlidesError{
			Op:        "carousel.Controller.Update",
			Kind:      errors.KindConfig,
			Err:       err,
			Container: string(c.container),
		})
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return errors.ErrDisposed
	}

	count := len(list)
	c.items = slices.Clone(list)
	c.params = params
	c.mode = SelectMode(count, params.AutoDetectMode, params.MinItemsForCircular)
	c.config = Build(c.mode, count, params)
	sig := NewSignature(count, params)
	changed := c.detector.Observe(sig)

	if count == 0 {
		c.teardownLocked()
		return nil
	}
	if c.busy {
		c.logger.Debug("lifecycle busy, update deferred",
			zap.String("container", string(c.container)),
			zap.Stringer("state", c.state))
		return nil
	}

	switch c.state {
	case StateUninitialized, StateDestroyed:
		c.startLocked(StateInitializing, sig, c.config)
	case StateReady:
		if changed || sig != c.applied {
			cfg := c.config
			cfg.InitialSlide = clampIndex(c.active, count)
			c.startLocked(StateReinitializing, sig, cfg)
		}
	}
	return nil
}

// startLocked begins creating a new engine generation, destroying the live
// instance first when there is one.
func (c *Controller) startLocked(next State, sig Signature, cfg EngineConfig) {
	c.gen++
	gen := c.gen
	prev := c.state
	c.state = next
	c.pending = c.mode
	c.busy = true
	c.indexed = false
	destroyFirst := c.live
	count := len(c.items)

	req := InitRequest{
		Config:  cfg,
		Count:   count,
		Clones:  c.clones,
		OnIndex: c.indexCallback(gen, count),
	}
	c.logger.Debug("lifecycle transition",
		zap.String("container", string(c.container)),
		zap.Uint64("generation", gen),
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Int("count", count),
		zap.Bool("loop", cfg.Loop))

	c.wg.Add(1)
	go c.runInit(gen, destroyFirst, req, sig)
}

func (c *Controller) runInit(gen uint64, destroyFirst bool, req InitRequest, sig Signature) {
	defer c.wg.Done()

	var destroyErr error
	if destroyFirst {
		destroyErr = errors.Guard("carousel.Controller.destroy", func() error {
			return c.engine.Destroy(c.ctx, c.container)
		})
	}
	initErr := errors.Guard("carousel.Controller.initialize", func() error {
		return c.engine.Initialize(c.ctx, c.container, req)
	})

	c.dispatch(func() {
		c.finishInit(gen, destroyFirst, destroyErr, initErr, req, sig)
	})
}

func (c *Controller) finishInit(gen uint64, destroyedOld bool, destroyErr, initErr error, req InitRequest, sig Signature) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.busy = false
	if destroyedOld {
		c.live = false
	}
	if destroyErr != nil {
		c.reportLocked("carousel.Controller.destroy", errors.KindEngine, gen, destroyErr)
	}
	current := !c.disposed && gen == c.gen

	if initErr != nil {
		c.reportLocked("carousel.Controller.initialize", errors.KindInit, gen, initErr)
		if current {
			c.state = StateUninitialized
		}
		return
	}

	c.live = true
	if !current {
		// Superseded while in flight by Dispose or an empty render.
		c.logger.Debug("discarding superseded engine instance",
			zap.String("container", string(c.container)),
			zap.Uint64("generation", gen))
		c.launchDestroyLocked()
		return
	}

	c.state = StateReady
	c.applied = sig
	c.liveMode = c.pending
	c.liveConfig = req.Config
	c.layout = req.Layout()
	if !c.indexed {
		c.active = req.Config.InitialSlide
		c.raw = req.Config.InitialSlide
	}
	c.logger.Debug("engine ready",
		zap.String("container", string(c.container)),
		zap.Uint64("generation", gen),
		zap.Int("raw_slides", c.layout.RawCount()),
		zap.Int("clones", c.layout.CloneCount))
}

// teardownLocked handles the transition to an empty item list.
func (c *Controller) teardownLocked() {
	if c.state == StateUninitialized && !c.live && !c.busy {
		return
	}
	c.gen++
	c.state = StateDestroyed
	c.layout = Layout{}
	c.active, c.raw = 0, 0
	if c.busy || !c.live {
		return
	}
	c.launchDestroyLocked()
}

func (c *Controller) launchDestroyLocked() {
	c.busy = true
	gen := c.gen
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := errors.Guard("carousel.Controller.destroy", func() error {
			return c.engine.Destroy(c.ctx, c.container)
		})
		c.dispatch(func() { c.finishDestroy(gen, err) })
	}()
}

func (c *Controller) finishDestroy(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.live = false
	if err != nil {
		c.reportLocked("carousel.Controller.destroy", errors.KindEngine, gen, err)
	}
	c.logger.Debug("engine destroyed",
		zap.String("container", string(c.container)),
		zap.Uint64("generation", gen))
}

func (c *Controller) reportLocked(op string, kind errors.ErrorKind, gen uint64, err error) {
	c.logger.Warn("engine lifecycle failure",
		zap.String("op", op),
		zap.String("container", string(c.container)),
		zap.Uint64("generation", gen),
		zap.Error(err))
	errors.Report(&errors.SlidesError{
		Op:         op,
		Kind:       kind,
		Err:        err,
		Container:  string(c.container),
		Generation: gen,
	})
}

func (c *Controller) indexCallback(gen uint64, count int) func(int) {
	return func(raw int) {
		c.dispatch(func() { c.handleRawIndex(gen, count, raw) })
	}
}

// handleRawIndex relays one engine notification. Notifications from a
// superseded generation, or that normalize outside the item cache, are dropped.
func (c *Controller) handleRawIndex(gen uint64, count, raw int) {
	c.mu.Lock()
	if c.disposed || gen != c.gen {
		current := c.gen
		c.mu.Unlock()
		c.logger.Debug("dropping stale index callback",
			zap.Uint64("generation", gen),
			zap.Uint64("current", current),
			zap.Int("raw", raw))
		c.reportStale(gen, fmt.Errorf("raw index %d from generation %d (current %d): %w",
			raw, gen, current, errors.ErrStaleCallback))
		return
	}
	idx, ok := Normalize(raw, count)
	if !ok || idx >= len(c.items) {
		cached := len(c.items)
		c.mu.Unlock()
		c.logger.Debug("dropping out of range index callback",
			zap.Int("raw", raw),
			zap.Int("count", count),
			zap.Int("cached", cached))
		c.reportStale(gen, fmt.Errorf("raw index %d outside %d cached items: %w",
			raw, cached, errors.ErrStaleCallback))
		return
	}
	c.active = idx
	c.raw = raw
	c.indexed = true
	item := c.items[idx]
	selectOnScroll := c.params.SelectOnScroll
	c.mu.Unlock()

	emit(c.indexListeners.snapshot(), idx)
	emit(c.itemListeners.snapshot(), item)
	if selectOnScroll {
		emit(c.selectedListeners.snapshot(), item)
	}
}

func (c *Controller) reportStale(gen uint64, err error) {
	errors.Report(&errors.SlidesError{
		Op:         "carousel.Controller.index",
		Kind:       errors.KindStale,
		Err:        err,
		Container:  string(c.container),
		Generation: gen,
	})
}

// Tap reports a direct selection of the slide at raw index. It always emits
// item-selected, regardless of SelectOnScroll.
func (c *Controller) Tap(raw int) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return errors.ErrDisposed
	}
	if c.state != StateReady {
		c.mu.Unlock()
		return errors.ErrNotReady
	}
	idx, ok := c.layout.Normalize(raw)
	if !ok || idx >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("tap on raw slide %d: %w", raw, errors.ErrStaleCallback)
	}
	item := c.items[idx]
	c.mu.Unlock()

	emit(c.selectedListeners.snapshot(), item)
	return nil
}

// SlideTo asks the engine to show the item at logical index i.
func (c *Controller) SlideTo(i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("slide to %d: index out of range [0, %d)", i, len(c.items))
	}
	c.mu.Unlock()
	return c.navigate(func(Layout, int, bool) (int, bool) { return i, true })
}

// Next advances one slide, wrapping into clone space when looping.
func (c *Controller) Next() error {
	return c.navigate(func(l Layout, raw int, loop bool) (int, bool) {
		next := raw + 1
		if next >= l.RawCount() {
			if !loop {
				return 0, false
			}
			next = 0
		}
		return next, true
	})
}

// Prev moves back one slide.
func (c *Controller) Prev() error {
	return c.navigate(func(l Layout, raw int, loop bool) (int, bool) {
		prev := raw - 1
		if prev < 0 {
			if !loop {
				return 0, false
			}
			prev = l.RawCount() - 1
		}
		return prev, true
	})
}

func (c *Controller) navigate(target func(l Layout, raw int, loop bool) (int, bool)) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return errors.ErrDisposed
	}
	if c.state != StateReady || c.busy {
		c.mu.Unlock()
		return errors.ErrNotReady
	}
	nav, ok := c.engine.(Navigator)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("engine %T does not support navigation", c.engine)
	}
	raw, move := target(c.layout, c.raw, c.liveConfig.Loop)
	gen := c.gen
	c.mu.Unlock()

	if !move {
		return nil
	}
	if err := nav.SlideTo(c.ctx, c.container, raw); err != nil {
		c.mu.Lock()
		c.reportLocked("carousel.Controller.navigate", errors.KindEngine, gen, err)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Dispose tears down the engine and detaches all listeners. It is terminal.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.gen++
	c.state = StateDestroyed
	if c.live && !c.busy {
		c.launchDestroyLocked()
	}
	c.indexListeners.clear()
	c.itemListeners.clear()
	c.selectedListeners.clear()
}

// Wait blocks until no engine call is in flight.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Container returns the handle passed to the engine.
func (c *Controller) Container() Container {
	return c.container
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode returns the navigation mode of the live engine while Ready, and the
// mode derived by the last Update otherwise.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReady {
		return c.liveMode
	}
	return c.mode
}

// Config returns the configuration the live engine was built with while
// Ready, and the configuration derived by the last Update otherwise. Params
// outside the change signature (AutoDetectMode) do not rebuild a live engine,
// so the two can differ until the next reinitialization.
func (c *Controller) Config() EngineConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReady {
		return c.liveConfig
	}
	return c.config
}

// Layout returns the raw layout of the live engine generation.
func (c *Controller) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

// ActiveIndex returns the logical index of the active slide.
func (c *Controller) ActiveIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// ActiveItem returns the active item, if any.
func (c *Controller) ActiveItem() (items.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active < 0 || c.active >= len(c.items) {
		return items.Item{}, false
	}
	return c.items[c.active], true
}

// Generation returns the current engine generation counter.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}
