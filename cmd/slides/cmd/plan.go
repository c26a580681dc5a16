package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/slides/cmd/slides/internal/config"
	"github.com/go-drift/slides/pkg/carousel"
)

// out is where commands write their reports.
var out io.Writer = os.Stdout

func init() {
	RegisterCommand(&Command{
		Name:  "plan",
		Short: "Show mode, engine config and clone layout",
		Long: `Resolve a slides.yaml and report what the carousel would hand to the
slide engine: the navigation mode, the merged engine configuration and
the raw slide layout including clones appended for looping.

Usage:
  slides plan                # ./slides.yaml
  slides plan gallery.yaml
  slides plan --items 2      # pretend the config lists 2 items`,
		Usage: "slides plan [file] [--items N]",
		Run:   runPlan,
	})
}

func runPlan(args []string) error {
	r, err := resolveArgs(args)
	if err != nil {
		return err
	}
	count := len(r.Items)
	mode := carousel.SelectMode(count, r.Params.AutoDetectMode, r.Params.MinItemsForCircular)
	cfg := carousel.Build(mode, count, r.Params)
	layout := carousel.Inflate(count, cfg.Loop, r.Clones)

	source := r.Path
	if source == "" {
		source = "(defaults)"
	}
	fmt.Fprintf(out, "config:  %s\n", source)
	fmt.Fprintf(out, "items:   %d\n", count)
	fmt.Fprintf(out, "mode:    %s\n", mode)
	fmt.Fprintf(out, "engine:  %s\n", describeConfig(cfg))
	fmt.Fprintf(out, "layout:  %s\n", describeLayout(layout))
	return nil
}

// resolveArgs resolves the optional config path and --items override shared
// by plan and simulate.
func resolveArgs(args []string) (*config.Resolved, error) {
	itemsFlag, rest, err := flagValue(args, "--items")
	if err != nil {
		return nil, err
	}
	path := ""
	if len(rest) > 0 {
		path = rest[0]
	}
	r, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}
	if itemsFlag != "" {
		var n int
		if _, err := fmt.Sscanf(itemsFlag, "%d", &n); err != nil || n < 0 {
			return nil, fmt.Errorf("--items must be a non-negative integer (got %q)", itemsFlag)
		}
		r.Items = placeholderItems(r.Items, n)
	}
	return r, nil
}

func describeConfig(cfg carousel.EngineConfig) string {
	spv := fmt.Sprint(cfg.SlidesPerView)
	if cfg.SlidesPerView == carousel.AutoSlidesPerView {
		spv = "auto"
	}
	return fmt.Sprintf("effect=%s slides_per_view=%s centered=%t loop=%t space_between=%g rotate=%g depth=%g modifier=%g speed=%s touch_ratio=%g initial=%d",
		cfg.Effect, spv, cfg.Centered, cfg.Loop, cfg.SpaceBetween, cfg.Rotate, cfg.Depth,
		cfg.Modifier, cfg.Speed, cfg.TouchRatio, cfg.InitialSlide)
}

func describeLayout(l carousel.Layout) string {
	if l.RawCount() == 0 {
		return "empty"
	}
	slides := make([]string, len(l.Slides))
	for i, s := range l.Slides {
		slides[i] = fmt.Sprint(s.Logical)
		if s.Clone {
			slides[i] += "'"
		}
	}
	return fmt.Sprintf("%d raw slides (%d clones): %s", l.RawCount(), l.CloneCount, strings.Join(slides, " "))
}
