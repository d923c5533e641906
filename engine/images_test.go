package engine

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestToRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 3))
	gray.SetGray(1, 1, color.Gray{Y: 0x80})

	rgba, err := toRGBA(gray)
	if err != nil {
		t.Fatalf("toRGBA returned error: %v", err)
	}
	if rgba.Bounds().Dx() != 4 || rgba.Bounds().Dy() != 3 {
		t.Errorf("Expected 4x3 image, got %v", rgba.Bounds())
	}
	if got := rgba.NRGBAAt(1, 1); got != (color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}) {
		t.Errorf("Unexpected pixel %v", got)
	}
}

func TestToRGBA_Unconvertible(t *testing.T) {
	if _, err := toRGBA(nil); !errors.Is(err, ErrImage) {
		t.Errorf("Expected ErrImage for nil image, got %v", err)
	}
	if _, err := toRGBA(image.NewRGBA(image.Rectangle{})); !errors.Is(err, ErrImage) {
		t.Errorf("Expected ErrImage for empty image, got %v", err)
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	if err := writePNG(image.NewRGBA(image.Rect(0, 0, 10, 20)), path); err != nil {
		t.Fatalf("writePNG returned error: %v", err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Failed to open written PNG: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 20 {
		t.Errorf("Expected 10x20 image, got %v", img.Bounds())
	}
}

func TestWritePNG_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "page.png")
	err := writePNG(image.NewRGBA(image.Rect(0, 0, 1, 1)), path)
	if !errors.Is(err, ErrImage) {
		t.Errorf("Expected ErrImage, got %v", err)
	}
}
