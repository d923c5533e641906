package engine

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
)

// toRGBA converts a rendered page to an 8 bit per channel RGBA image
func toRGBA(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no bitmap rendered", ErrImage)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty bitmap rendered", ErrImage)
	}
	return imaging.Clone(img), nil
}

// writePNG encodes img as PNG at path, replacing any existing file
func writePNG(img image.Image, path string) error {
	rgba, err := toRGBA(img)
	if err != nil {
		return err
	}
	if err := imaging.Save(rgba, path); err != nil {
		return fmt.Errorf("%w: unable to save %s: %w", ErrImage, path, err)
	}
	if info, err := os.Stat(path); err == nil {
		Logger.Debug("Wrote page image", "path", path,
			"width", rgba.Bounds().Dx(), "height", rgba.Bounds().Dy(),
			"size", humanize.Bytes(uint64(info.Size())))
	}
	return nil
}
