package items

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes an item image without decoding its pixels.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// Aspect returns width divided by height, or 0 when the height is unknown.
func (i ImageInfo) Aspect() float64 {
	if i.Height == 0 {
		return 0
	}
	return float64(i.Width) / float64(i.Height)
}

// Probe reads only the image header from r.
// Supported formats: gif, jpeg, png, bmp, tiff, webp.
func Probe(r io.Reader) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("probe image: %w", err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ProbeFile opens path and probes it.
func ProbeFile(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()
	info, err := Probe(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}
