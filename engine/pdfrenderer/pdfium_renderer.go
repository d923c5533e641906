package pdfrenderer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"time"

	"github.com/klippa-app/go-pdfium"
	pdfium_errors "github.com/klippa-app/go-pdfium/errors"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// PDFiumLibraryName is the file looked up in the library directory
const PDFiumLibraryName = "pdfium.wasm"

// instanceTimeout bounds the wait for the single worker of the pool
const instanceTimeout = 30 * time.Second

// PDFiumRenderer implements PDF rendering using go-pdfium with WebAssembly (pure Go, no CGo)
type PDFiumRenderer struct {
	name     string
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPDFiumRenderer starts a single worker PDFium runtime.
// wasm is the PDFium WebAssembly build to run, nil means the build shipped with go-pdfium.
func NewPDFiumRenderer(name string, wasm []byte) (*PDFiumRenderer, error) {
	// Single-threaded usage, one worker is all we ever need
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
		WASM:     wasm,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium WebAssembly: %w", err)
	}

	instance, err := pool.GetInstance(instanceTimeout)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}

	return &PDFiumRenderer{
		name:     name,
		pool:     pool,
		instance: instance,
	}, nil
}

// PDFiumLibraryBinder binds to the PDFium build placed in a library directory
func PDFiumLibraryBinder(libraryDirectory string) Binder {
	libraryPath := filepath.Join(libraryDirectory, PDFiumLibraryName)
	return BinderFunc{
		Description: "pdfium at " + libraryPath,
		BindFunc: func() (Renderer, error) {
			wasm, err := os.ReadFile(libraryPath)
			if err != nil {
				return nil, fmt.Errorf("unable to read PDFium library: %w", err)
			}
			return NewPDFiumRenderer("pdfium ("+libraryPath+")", wasm)
		},
	}
}

// PDFiumSystemBinder binds to the PDFium build shipped with go-pdfium
func PDFiumSystemBinder() Binder {
	return BinderFunc{
		Description: "system pdfium",
		BindFunc: func() (Renderer, error) {
			return NewPDFiumRenderer("pdfium (system)", nil)
		},
	}
}

func (r *PDFiumRenderer) Name() string {
	return r.name
}

// OpenDocument reads the PDF file and loads it into the PDFium worker
func (r *PDFiumRenderer) OpenDocument(path string, password *string) (Document, error) {
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read PDF file: %w", err)
	}

	doc, err := r.instance.OpenDocument(&requests.OpenDocument{
		File:     &pdfBytes,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, pdfium_errors.ErrPassword) {
			return nil, fmt.Errorf("%w: %w", ErrPassword, err)
		}
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}

	return &pdfiumDocument{instance: r.instance, document: doc.Document}, nil
}

// Close cleans up resources used by the PDFium renderer
func (r *PDFiumRenderer) Close() error {
	if r.instance != nil {
		r.instance.Close()
		r.instance = nil
	}
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	return nil
}

type pdfiumDocument struct {
	instance pdfium.Pdfium
	document references.FPDF_DOCUMENT
}

func (d *pdfiumDocument) PageCount() (int, error) {
	pageCountResp, err := d.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: d.document,
	})
	if err != nil {
		return 0, fmt.Errorf("unable to get page count: %w", err)
	}
	return pageCountResp.PageCount, nil
}

// RenderPage renders the page in pixels sized by FitWithin
func (d *pdfiumDocument) RenderPage(index int, config RenderConfig) (image.Image, error) {
	size, err := d.instance.FPDF_GetPageSizeByIndex(&requests.FPDF_GetPageSizeByIndex{
		Document: d.document,
		Index:    index,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get size of page %d: %w", index, err)
	}

	width, height, err := FitWithin(size.Width, size.Height, config)
	if err != nil {
		return nil, fmt.Errorf("unable to size page %d: %w", index, err)
	}

	pageRender, err := d.instance.RenderPageInPixels(&requests.RenderPageInPixels{
		Width:  width,
		Height: height,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: d.document,
				Index:    index,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", index, err)
	}
	// The bitmap lives in WebAssembly memory until Cleanup, so hand out a copy
	defer pageRender.Cleanup()

	rendered := pageRender.Result.Image
	if rendered == nil {
		return nil, fmt.Errorf("no bitmap returned for page %d", index)
	}
	owned := image.NewRGBA(rendered.Rect)
	draw.Draw(owned, owned.Rect, rendered, rendered.Rect.Min, draw.Src)
	return owned, nil
}

func (d *pdfiumDocument) Close() error {
	_, err := d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: d.document,
	})
	return err
}
