package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/drummonds/pdf2png/config"
	"github.com/drummonds/pdf2png/engine/pdfrenderer"
	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger = slog.New(slog.DiscardHandler)

// JobRecorder keeps a history of conversion runs
type JobRecorder interface {
	CreateJob(ctx context.Context, inputPath string) (ulid.ULID, error)
	StartJob(ctx context.Context, jobID ulid.ULID) error
	CompleteJob(ctx context.Context, jobID ulid.ULID, pageCount int, result string) error
	FailJob(ctx context.Context, jobID ulid.ULID, errorMsg string) error
}

// JobResult is stored as the result of a completed job
type JobResult struct {
	PageCount int      `json:"pageCount"`
	Files     []string `json:"files"`
}

// Runner converts one PDF according to its Options
type Runner struct {
	Options config.Options
	// Binders are tried in order until one yields a renderer
	Binders []pdfrenderer.Binder
	Stdout  io.Writer
	// Jobs is optional
	Jobs JobRecorder
}

// DefaultBinders returns the library lookup order for the configured engine
func DefaultBinders(opts config.Options) []pdfrenderer.Binder {
	if opts.Engine == config.EngineMuPDF {
		return []pdfrenderer.Binder{pdfrenderer.FitzBinder()}
	}
	return []pdfrenderer.Binder{
		pdfrenderer.PDFiumLibraryBinder(opts.LibraryDirectory),
		pdfrenderer.PDFiumSystemBinder(),
	}
}

// Run performs the conversion. Errors are *ExitCodeError values.
func (r *Runner) Run(ctx context.Context) error {
	opts := r.Options

	if opts.TextOnly {
		return r.extractText()
	}

	jobID, recording := r.createJob(ctx)
	result, err := r.render()
	if recording {
		r.finishJob(ctx, jobID, result, err)
	}
	if err != nil {
		return err
	}

	Logger.Info("Conversion finished", "pdf", opts.PDFPath, "pages", result.PageCount, "files", len(result.Files))
	fmt.Fprint(r.Stdout, result.PageCount)
	return nil
}

func (r *Runner) extractText() error {
	opts := r.Options
	text, err := ExtractText(opts.PDFPath, opts.Password)
	if err != nil {
		if errors.Is(err, pdfrenderer.ErrPassword) {
			return passwordError(opts.Password, err)
		}
		return fatal(err)
	}
	fmt.Fprint(r.Stdout, text)
	return nil
}

// render binds a library, opens the document and writes the page images
func (r *Runner) render() (JobResult, error) {
	opts := r.Options
	var result JobResult

	renderer, err := pdfrenderer.Resolve(r.Binders...)
	if err != nil {
		return result, fatal(err)
	}
	defer renderer.Close()

	doc, err := renderer.OpenDocument(opts.PDFPath, opts.Password)
	if err != nil {
		if errors.Is(err, pdfrenderer.ErrPassword) {
			Logger.Warn("PDF password check failed", "pdf", opts.PDFPath, "passwordGiven", opts.Password != nil)
			return result, passwordError(opts.Password, err)
		}
		Logger.Error("Unable to open PDF document", "pdf", opts.PDFPath, "error", err)
		return result, fatal(err)
	}
	defer doc.Close()

	result.PageCount, err = doc.PageCount()
	if err != nil {
		return result, fatal(err)
	}
	Logger.Debug("PDF has pages", "count", result.PageCount)
	if opts.PageCountOnly {
		return result, nil
	}

	prefix, err := ResolvePrefix(opts.PDFPath, opts.Prefix)
	if err != nil {
		return result, prefixError(err)
	}

	renderConfig := pdfrenderer.RenderConfig{
		TargetWidth: opts.ResolutionPixels,
		MaxHeight:   opts.ResolutionPixels,
	}
	for index := 0; index < result.PageCount; index++ {
		finalPath := filepath.Join(opts.OutputDirectory, OutputFileName(prefix, index, opts.FirstPageOnly))

		img, err := doc.RenderPage(index, renderConfig)
		if err != nil {
			Logger.Error("Unable to render page", "page", index, "error", err)
			return result, fatal(err)
		}
		if err := writePNG(img, finalPath); err != nil {
			Logger.Error("Unable to write page image", "page", index, "path", finalPath, "error", err)
			return result, fatal(err)
		}
		result.Files = append(result.Files, finalPath)

		if opts.FirstPageOnly {
			break
		}
	}
	return result, nil
}

// createJob registers the run with the recorder, history failures never fail the run
func (r *Runner) createJob(ctx context.Context) (ulid.ULID, bool) {
	if r.Jobs == nil {
		return ulid.ULID{}, false
	}
	jobID, err := r.Jobs.CreateJob(ctx, r.Options.PDFPath)
	if err != nil {
		Logger.Error("Failed to create job", "error", err)
		return ulid.ULID{}, false
	}
	if err := r.Jobs.StartJob(ctx, jobID); err != nil {
		Logger.Error("Failed to update job status", "jobID", jobID, "error", err)
	}
	return jobID, true
}

func (r *Runner) finishJob(ctx context.Context, jobID ulid.ULID, result JobResult, runErr error) {
	if runErr != nil {
		if err := r.Jobs.FailJob(ctx, jobID, runErr.Error()); err != nil {
			Logger.Error("Failed to mark job as failed", "jobID", jobID, "error", err)
		}
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		Logger.Error("Failed to encode job result", "jobID", jobID, "error", err)
		return
	}
	if err := r.Jobs.CompleteJob(ctx, jobID, result.PageCount, string(resultJSON)); err != nil {
		Logger.Error("Failed to mark job as complete", "jobID", jobID, "error", err)
	}
}
