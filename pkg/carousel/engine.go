package carousel

import (
	"context"

	"github.com/google/uuid"
)

// Container identifies the host surface an engine instance renders into.
type Container string

// NewContainer returns a fresh, unique container handle.
func NewContainer() Container {
	return Container("slides-" + uuid.NewString())
}

// InitRequest describes one engine instance.
type InitRequest struct {
	// Config is the derived engine configuration.
	Config EngineConfig
	// Count is the logical item count the instance renders.
	Count int
	// Clones are the loop requirements the engine inflates the slides with.
	Clones CloneOptions
	// OnIndex must be called with the raw active index whenever it changes.
	// Indices may point into clone space. It is safe to call from any goroutine.
	OnIndex func(raw int)
}

// Layout returns the raw slide layout the engine is expected to render.
func (r InitRequest) Layout() Layout {
	return Inflate(r.Count, r.Config.Loop, r.Clones)
}

// Engine is the slide renderer collaborator. Each container holds at most one
// live instance; the controller always awaits Destroy before the next Initialize.
type Engine interface {
	Initialize(ctx context.Context, c Container, req InitRequest) error
	Destroy(ctx context.Context, c Container) error
}

// Navigator is implemented by engines that support programmatic navigation.
type Navigator interface {
	SlideTo(ctx context.Context, c Container, raw int) error
}

// Dispatcher runs fn on the goroutine that owns the host UI. The default
// dispatcher runs fn immediately on the calling goroutine.
type Dispatcher func(fn func())

func inlineDispatch(fn func()) { fn() }
