package cmd

import (
	"fmt"
	"strconv"

	"github.com/go-drift/slides/pkg/carousel"
	"github.com/go-drift/slides/pkg/carousel/simengine"
	"github.com/go-drift/slides/pkg/items"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Drive a simulated carousel",
		Long: `Run the carousel controller against an in-memory slide engine and
step it forward, printing every index, item and selection event.
Stepping past the last item walks through clone slides when the
configuration loops.

Usage:
  slides simulate                 # one full lap over the raw slides
  slides simulate --steps 20
  slides simulate --items 3 gallery.yaml`,
		Usage: "slides simulate [file] [--steps N] [--items N]",
		Run:   runSimulate,
	})
}

func runSimulate(args []string) error {
	stepsFlag, rest, err := flagValue(args, "--steps")
	if err != nil {
		return err
	}
	r, err := resolveArgs(rest)
	if err != nil {
		return err
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("no items to simulate (add items to the config or pass --items N)")
	}

	eng := simengine.New()
	ctrl := carousel.NewController(eng,
		carousel.WithCloneOptions(r.Clones),
		carousel.WithLogger(logger),
	)
	defer func() {
		ctrl.Dispose()
		ctrl.Wait()
	}()

	ctrl.OnIndexChanged(func(i int) { fmt.Fprintf(out, "index     %d\n", i) })
	ctrl.OnItemChanged(func(it items.Item) { fmt.Fprintf(out, "item      %s\n", itemLabel(it)) })
	ctrl.OnItemSelected(func(it items.Item) { fmt.Fprintf(out, "selected  %s\n", itemLabel(it)) })

	if err := ctrl.Update(r.Items, r.Params); err != nil {
		return err
	}
	ctrl.Wait()
	if ctrl.State() != carousel.StateReady {
		return fmt.Errorf("engine did not become ready (state %s)", ctrl.State())
	}

	layout := ctrl.Layout()
	steps := layout.RawCount()
	if stepsFlag != "" {
		steps, err = strconv.Atoi(stepsFlag)
		if err != nil || steps < 0 {
			return fmt.Errorf("--steps must be a non-negative integer (got %q)", stepsFlag)
		}
	}
	fmt.Fprintf(out, "ready     mode=%s %s\n", ctrl.Mode(), describeLayout(layout))

	for i := 0; i < steps; i++ {
		inst, _ := eng.Instance(ctrl.Container())
		fmt.Fprintf(out, "-- step %d (raw %d)\n", i+1, inst.Active)
		if err := ctrl.Next(); err != nil {
			return err
		}
	}
	return nil
}

func itemLabel(it items.Item) string {
	if it.Title != "" {
		return fmt.Sprintf("%s (%s)", it.Title, it.Image)
	}
	return it.Image
}

// placeholderItems returns n items, reusing configured ones first.
func placeholderItems(existing []items.Item, n int) []items.Item {
	list := make([]items.Item, n)
	for i := range list {
		if i < len(existing) {
			list[i] = existing[i]
			continue
		}
		list[i] = items.Item{Image: fmt.Sprintf("slide-%d.jpg", i), Title: fmt.Sprintf("Slide %d", i)}
	}
	return list
}
