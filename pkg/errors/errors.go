// Package errors provides structured error handling for drift slides.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates invalid parameters rejected before initialization.
	KindConfig
	// KindInit indicates the slide engine failed to create a live instance.
	KindInit
	// KindEngine indicates a slide engine failure outside initialization
	// (teardown, navigation).
	KindEngine
	// KindStale indicates a callback that referenced a superseded engine generation.
	KindStale
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInit:
		return "init"
	case KindEngine:
		return "engine"
	case KindStale:
		return "stale"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

var (
	// ErrDisposed is returned by operations on a disposed controller.
	ErrDisposed = stderrors.New("carousel disposed")
	// ErrNotReady is returned when an operation needs a live engine instance.
	ErrNotReady = stderrors.New("carousel engine not ready")
	// ErrStaleCallback marks an index notification from a superseded generation.
	ErrStaleCallback = stderrors.New("stale engine callback")
)

// SlidesError represents a structured error reported by the carousel runtime.
type SlidesError struct {
	// Op is the operation that failed (e.g., "carousel.Controller.initialize").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Container is the engine container handle, if applicable.
	Container string
	// Generation is the engine generation the error belongs to.
	Generation uint64
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SlidesError) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("%s [%s] container=%s gen=%d: %v", e.Op, e.Kind, e.Container, e.Generation, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SlidesError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "carousel.Controller.lifecycle").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ConfigError reports a navigation parameter the carousel cannot be
// initialized with. It is the only error surfaced to the host as a rejected update.
type ConfigError struct {
	// Field is the parameter name (e.g., "Rotation").
	Field string
	// Value is the rejected value.
	Value any
	// Reason describes the violated constraint.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// IsConfigError reports whether err contains a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return stderrors.As(err, &ce)
}

// ErrorHandler receives errors reported by the carousel runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SlidesError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
