package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/slides/cmd/slides/internal/config"
	"github.com/go-drift/slides/pkg/carousel"
	"github.com/go-drift/slides/pkg/carousel/simengine"
	"github.com/go-drift/slides/pkg/errors"
)

// debounce collapses the burst of events editors emit for a single save.
const debounce = 100 * time.Millisecond

func init() {
	RegisterCommand(&Command{
		Name:  "watch",
		Short: "Re-render a simulated carousel on config changes",
		Long: `Watch a slides.yaml and treat every save as a new render of the same
carousel. Each render reports whether the controller kept the live
engine instance or rebuilt it, so you can see which edits are
structural.

Usage:
  slides watch               # ./slides.yaml
  slides watch gallery.yaml`,
		Usage: "slides watch [file]",
		Run:   runWatch,
	})
}

func runWatch(args []string) error {
	path := config.DefaultFile
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory so atomic saves (write temp + rename) are seen.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := newRenderWatch(abs)
	defer w.close()
	w.render()
	fmt.Fprintf(out, "watching %s (Ctrl+C to stop)\n", abs)

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				timer = time.After(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watcher error: %v\n", err)
		case <-timer:
			timer = nil
			w.render()
		}
	}
}

// renderWatch feeds successive resolutions of one config file into a single
// controller, as a host would on successive renders.
type renderWatch struct {
	path   string
	engine *simengine.Engine
	ctrl   *carousel.Controller
	clones carousel.CloneOptions
	n      int
}

func newRenderWatch(path string) *renderWatch {
	return &renderWatch{path: path, engine: simengine.New()}
}

// controller returns the controller for the given clone options. Clone
// options are fixed for the lifetime of a controller, so a change replaces it.
func (w *renderWatch) controller(clones carousel.CloneOptions) *carousel.Controller {
	if w.ctrl != nil && w.clones == clones {
		return w.ctrl
	}
	w.close()
	w.ctrl = carousel.NewController(w.engine,
		carousel.WithCloneOptions(clones),
		carousel.WithLogger(logger),
	)
	w.clones = clones
	return w.ctrl
}

func (w *renderWatch) render() {
	w.n++
	r, err := config.Resolve(w.path)
	if err != nil {
		if errors.IsConfigError(err) {
			fmt.Fprintf(out, "render %d: rejected: %v\n", w.n, err)
		} else {
			fmt.Fprintf(out, "render %d: %v\n", w.n, err)
		}
		return
	}

	before := w.engine.Stats()
	ctrl := w.controller(r.Clones)
	if err := ctrl.Update(r.Items, r.Params); err != nil {
		fmt.Fprintf(out, "render %d: rejected: %v\n", w.n, err)
		return
	}
	ctrl.Wait()
	after := w.engine.Stats()

	outcome := "kept engine"
	switch {
	case after.Failures > before.Failures:
		outcome = "engine failed"
	case after.Initializes > before.Initializes && before.Initializes == 0:
		outcome = "initialized"
	case after.Initializes > before.Initializes:
		outcome = "reinitialized"
	case after.Destroys > before.Destroys:
		outcome = "destroyed"
	}
	fmt.Fprintf(out, "render %d: %s (state=%s gen=%d items=%d mode=%s layout=%s)\n",
		w.n, outcome, ctrl.State(), ctrl.Generation(), len(r.Items), ctrl.Mode(), describeLayout(ctrl.Layout()))
}

func (w *renderWatch) close() {
	if w.ctrl == nil {
		return
	}
	w.ctrl.Dispose()
	w.ctrl.Wait()
	w.ctrl = nil
}
