package pdfrenderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
)

// Logger is global since we will need it everywhere
var Logger = slog.New(slog.DiscardHandler)

// ErrPassword is returned when a document needs a password or the given one is wrong
var ErrPassword = errors.New("password required or incorrect password")

// RenderConfig bounds the pixel size of a rendered page
type RenderConfig struct {
	TargetWidth int // every page is scaled to this width...
	MaxHeight   int // ...unless that would make it taller than this
}

// Renderer opens PDF documents with a bound rendering library
type Renderer interface {
	// Name identifies the library and where it was bound from
	Name() string

	// OpenDocument loads the PDF at path, password is nil when none was given
	OpenDocument(path string, password *string) (Document, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// Document is an opened PDF, pages are addressed by zero based index
type Document interface {
	PageCount() (int, error)

	// RenderPage rasterizes one page, the returned image is owned by the caller
	RenderPage(index int, config RenderConfig) (image.Image, error)

	Close() error
}

// Binder binds to one copy of a rendering library
type Binder interface {
	Bind() (Renderer, error)
	String() string
}

// BinderFunc adapts a plain function to a Binder
type BinderFunc struct {
	Description string
	BindFunc    func() (Renderer, error)
}

func (b BinderFunc) Bind() (Renderer, error) {
	return b.BindFunc()
}

func (b BinderFunc) String() string {
	return b.Description
}

// Resolve binds to the first library that works, in the order given
func Resolve(binders ...Binder) (Renderer, error) {
	if len(binders) == 0 {
		return nil, errors.New("no rendering library configured")
	}
	var bindErrors []error
	for _, binder := range binders {
		renderer, err := binder.Bind()
		if err == nil {
			Logger.Info("Bound rendering library", "library", renderer.Name())
			return renderer, nil
		}
		Logger.Warn("Unable to bind rendering library, trying next", "binder", binder.String(), "error", err)
		bindErrors = append(bindErrors, fmt.Errorf("%s: %w", binder, err))
	}
	return nil, fmt.Errorf("unable to bind any rendering library: %w", errors.Join(bindErrors...))
}
