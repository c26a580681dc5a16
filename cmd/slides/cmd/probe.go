package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-drift/slides/cmd/slides/internal/config"
	"github.com/go-drift/slides/pkg/items"
)

func init() {
	RegisterCommand(&Command{
		Name:  "probe",
		Short: "Report image formats and sizes",
		Long: `Read the header of each image and print its format, size and aspect
ratio. Without arguments, probes the images listed in ./slides.yaml
relative to the config file.

Usage:
  slides probe photo.webp banner.png
  slides probe`,
		Usage: "slides probe [image...]",
		Run:   runProbe,
	})
}

func runProbe(args []string) error {
	paths := args
	if len(paths) == 0 {
		r, err := config.Resolve("")
		if err != nil {
			return err
		}
		base := "."
		if r.Path != "" {
			base = filepath.Dir(r.Path)
		}
		for _, it := range r.Items {
			p := it.Image
			if !filepath.IsAbs(p) {
				p = filepath.Join(base, p)
			}
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images to probe")
	}

	failed := 0
	for _, p := range paths {
		info, err := items.ProbeFile(p)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", p, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s: %s %dx%d aspect=%.3f\n", p, info.Format, info.Width, info.Height, info.Aspect())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be probed", failed, len(paths))
	}
	return nil
}
