package pdfrenderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// pointsPerInch is the resolution MuPDF reports page bounds in
const pointsPerInch = 72.0

// FitzRenderer implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer() (*FitzRenderer, error) {
	return &FitzRenderer{}, nil
}

// FitzBinder binds to the MuPDF linked into the binary
func FitzBinder() Binder {
	return BinderFunc{
		Description: "linked mupdf",
		BindFunc: func() (Renderer, error) {
			return NewFitzRenderer()
		},
	}
}

func (r *FitzRenderer) Name() string {
	return "mupdf (linked)"
}

// OpenDocument opens the PDF with MuPDF, which cannot authenticate documents
func (r *FitzRenderer) OpenDocument(path string, password *string) (Document, error) {
	if password != nil {
		return nil, fmt.Errorf("%w: mupdf cannot authenticate documents", ErrPassword)
	}
	doc, err := fitz.New(path)
	if err != nil {
		if doc != nil {
			doc.Close()
		}
		if errors.Is(err, fitz.ErrNeedsPassword) {
			return nil, fmt.Errorf("%w: %w", ErrPassword, err)
		}
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

// Close cleans up resources (no-op for Fitz renderer as documents close themselves)
func (r *FitzRenderer) Close() error {
	return nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) PageCount() (int, error) {
	return d.doc.NumPage(), nil
}

// RenderPage renders at the DPI giving the target width, then caps the result
func (d *fitzDocument) RenderPage(index int, config RenderConfig) (image.Image, error) {
	bounds, err := d.doc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("unable to get size of page %d: %w", index, err)
	}

	width, height, err := FitWithin(float64(bounds.Dx()), float64(bounds.Dy()), config)
	if err != nil {
		return nil, fmt.Errorf("unable to size page %d: %w", index, err)
	}
	dpi := pointsPerInch * float64(width) / float64(bounds.Dx())

	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", index, err)
	}

	// MuPDF rounds the pixmap outwards, so trim any overshoot
	if img.Bounds().Dx() > width || img.Bounds().Dy() > height {
		return imaging.Fit(img, width, height, imaging.Lanczos), nil
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
