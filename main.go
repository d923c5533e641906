package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	config "github.com/drummonds/pdf2png/config"
	database "github.com/drummonds/pdf2png/database"
	engine "github.com/drummonds/pdf2png/engine"
	"github.com/drummonds/pdf2png/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger = slog.New(slog.DiscardHandler)

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = Logger
	database.Logger = Logger
	engine.Logger = Logger
	pdfrenderer.Logger = Logger
}

func main() {
	logger := config.SetupCLI()
	injectGlobals(logger) //inject the logger into all of the packages

	cmd := newCommand(run)
	err := cmd.Run(context.Background(), os.Args)
	os.Exit(exitCodeFor(err, os.Stderr))
}

// run converts one PDF, it is the action behind the command line
func run(ctx context.Context, opts config.Options) error {
	if opts.Verbose {
		injectGlobals(config.VerboseLogger())
	}
	if err := opts.Validate(); err != nil {
		return &engine.ExitCodeError{Code: engine.ExitCodeUsage, Err: err}
	}
	Logger.Debug("Starting conversion", "pdf", opts.PDFPath, "engine", opts.Engine,
		"outputDirectory", opts.OutputDirectory, "resolution", opts.ResolutionPixels)

	runner := &engine.Runner{
		Options: opts,
		Binders: engine.DefaultBinders(opts),
		Stdout:  os.Stdout,
	}

	if opts.JobDatabase != "" {
		db, err := database.NewRepository(opts.JobDatabase, opts.Verbose)
		if err != nil {
			Logger.Error("Unable to open job history, continuing without it", "error", err)
		} else {
			defer db.Close()
			runner.Jobs = db
		}
	}

	return runner.Run(ctx)
}

// exitCodeFor reports err on stderr and picks the process exit code
func exitCodeFor(err error, stderr io.Writer) int {
	if err == nil {
		return engine.ExitCodeSuccess
	}
	fmt.Fprintln(stderr, err)
	exitCodeError := &engine.ExitCodeError{}
	if errors.As(err, &exitCodeError) {
		return exitCodeError.ExitStatus()
	}
	// anything else comes from flag parsing
	return engine.ExitCodeUsage
}
