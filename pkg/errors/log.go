package errors

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out overrides the destination (defaults to os.Stderr).
	Out io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

// HandleError logs a SlidesError.
func (h *LogHandler) HandleError(err *SlidesError) {
	if err == nil {
		return
	}
	w := h.out()
	if h.Verbose {
		fmt.Fprintf(w, "[slides error] %s [%s]", err.Op, err.Kind)
		if err.Container != "" {
			fmt.Fprintf(w, " container=%s gen=%d", err.Container, err.Generation)
		}
		fmt.Fprintf(w, ": %v\n", err.Err)
		if err.StackTrace != "" {
			fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
		}
	} else {
		fmt.Fprintf(w, "[slides error] %s: %v\n", err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	w := h.out()
	if err.Op != "" {
		fmt.Fprintf(w, "[slides panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(w, "[slides panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// ZapHandler is an ErrorHandler that writes structured entries to a zap logger.
type ZapHandler struct {
	Logger *zap.Logger
}

// NewZapHandler returns a handler writing to logger. A nil logger discards.
func NewZapHandler(logger *zap.Logger) *ZapHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapHandler{Logger: logger}
}

// HandleError logs err at warn level for stale callbacks and error level otherwise.
func (h *ZapHandler) HandleError(err *SlidesError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Container != "" {
		fields = append(fields, zap.String("container", err.Container), zap.Uint64("generation", err.Generation))
	}
	if err.Kind == KindStale {
		h.Logger.Warn("slides error", fields...)
		return
	}
	h.Logger.Error("slides error", fields...)
}

// HandlePanic logs a recovered panic with its stack.
func (h *ZapHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	h.Logger.Error("slides panic",
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
		zap.String("stack", err.StackTrace),
	)
}
