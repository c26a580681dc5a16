package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

type handlerBox struct{ h ErrorHandler }

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: &LogHandler{}})
}

// Handler returns the installed global error handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// SetHandler installs h as the global error handler and returns the one it
// replaced. Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = &LogHandler{}
	}
	return current.Swap(&handlerBox{h: h}).h
}

// Report stamps err and hands it to the global handler.
func Report(err *SlidesError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic stamps err and hands it to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Guard runs fn and converts a panic inside it into a reported *PanicError,
// which is also returned. Errors from fn pass through unchanged.
//
//	err := errors.Guard("carousel.Controller.initialize", func() error {
//		return engine.Initialize(ctx, container, req)
//	})
func Guard(op string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		p := &PanicError{Op: op, Value: r, StackTrace: CaptureStack()}
		ReportPanic(p)
		err = p
	}()
	return fn()
}

// CaptureStack formats the stack of its caller's caller, one frame per
// "function\n\tfile:line" pair.
func CaptureStack() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return sb.String()
		}
	}
}
