package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	config "github.com/drummonds/pdf2png/config"
	engine "github.com/drummonds/pdf2png/engine"
	"github.com/drummonds/pdf2png/engine/pdfrenderer"
)

const description = `Converts a PDF into PNG files, one per page, named <prefix>-<index>.png
(or <prefix>.png with --first-page-only) in the output directory. Existing
files with the same names are overwritten. The page count is printed to
stdout when done. Password protected PDFs opened without the right password
exit with code 3.

PDFium is loaded from pdfium.wasm in the library directory when present,
otherwise the PDFium build shipped with the binary is used.`

// newCommand builds the command line, action receives the parsed options
func newCommand(action func(context.Context, config.Options) error) *cli.Command {
	return &cli.Command{
		Name:        "pdf2png",
		Usage:       "Convert a PDF to PNG images, one per page",
		Description: description,
		ArgsUsage:   "<pdf-path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "first-page-only",
				Aliases: []string{"f"},
				Usage:   "Convert only the first page, named without the -0 suffix",
			},
			&cli.BoolFlag{
				Name:  "page-count-only",
				Usage: "Print the page count and quit without converting",
			},
			&cli.BoolFlag{
				Name:  "text-only",
				Usage: "Print the text content of the PDF and quit",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "The PDF password",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "File prefix of the PNG files (default: PDF file name without extension)",
			},
			&cli.StringFlag{
				Name:    "output-directory",
				Aliases: []string{"o"},
				Usage:   "Existing directory the PNG files are written to",
				Value:   ".",
				Sources: cli.EnvVars("PDF2PNG_OUTPUT_DIRECTORY"),
			},
			&cli.StringFlag{
				Name:    "library-directory",
				Aliases: []string{"l"},
				Usage:   "Existing directory holding " + pdfrenderer.PDFiumLibraryName,
				Value:   ".",
				Sources: cli.EnvVars("PDF2PNG_LIBRARY_DIRECTORY"),
			},
			&cli.IntFlag{
				Name:    "resolution-pixels",
				Aliases: []string{"r"},
				Usage:   "Target width and maximum height of every PNG in pixels",
				Value:   config.DefaultResolutionPixels,
				Sources: cli.EnvVars("PDF2PNG_RESOLUTION_PIXELS"),
			},
			&cli.StringFlag{
				Name:    "engine",
				Usage:   "Rendering library, " + config.EnginePDFium + " or " + config.EngineMuPDF,
				Value:   config.EnginePDFium,
				Sources: cli.EnvVars("PDF2PNG_ENGINE"),
			},
			&cli.StringFlag{
				Name:    "job-db",
				Usage:   "Record the run in this job history (sqlite path or postgres:// DSN)",
				Sources: cli.EnvVars("PDF2PNG_JOB_DB"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			newJobsCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := optionsFromCommand(cmd)
			if err != nil {
				return &engine.ExitCodeError{Code: engine.ExitCodeUsage, Err: err}
			}
			return action(ctx, opts)
		},
	}
}

// optionsFromCommand maps parsed flags and the PDF argument onto Options
func optionsFromCommand(cmd *cli.Command) (config.Options, error) {
	if cmd.Args().Len() != 1 {
		return config.Options{}, fmt.Errorf("%w: expected exactly one PDF file path, got %d arguments", config.ErrUsage, cmd.Args().Len())
	}

	opts := config.Options{
		PDFPath:          cmd.Args().First(),
		OutputDirectory:  cmd.String("output-directory"),
		LibraryDirectory: cmd.String("library-directory"),
		ResolutionPixels: cmd.Int("resolution-pixels"),
		FirstPageOnly:    cmd.Bool("first-page-only"),
		PageCountOnly:    cmd.Bool("page-count-only"),
		TextOnly:         cmd.Bool("text-only"),
		Engine:           cmd.String("engine"),
		JobDatabase:      cmd.String("job-db"),
		Verbose:          cmd.Bool("verbose"),
	}
	if cmd.IsSet("password") {
		password := cmd.String("password")
		opts.Password = &password
	}
	if cmd.IsSet("prefix") {
		prefix := cmd.String("prefix")
		opts.Prefix = &prefix
	}
	return opts, nil
}
