package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger = slog.New(slog.DiscardHandler)

const (
	EnginePDFium = "pdfium"
	EngineMuPDF  = "mupdf"

	DefaultResolutionPixels = 2000
	MaxResolutionPixels     = 65535
)

// ErrUsage marks invalid invocation parameters
var ErrUsage = errors.New("invalid arguments")

// Options contains all of the invocation parameters
type Options struct {
	PDFPath          string
	Password         *string // nil when no password was passed
	Prefix           *string // nil when the prefix is derived from PDFPath
	OutputDirectory  string
	LibraryDirectory string
	ResolutionPixels int
	FirstPageOnly    bool
	PageCountOnly    bool
	TextOnly         bool
	Engine           string
	JobDatabase      string //bun DSN, empty disables job history
	Verbose          bool
}

// Validate checks the options before any library is touched
func (o Options) Validate() error {
	if o.PDFPath == "" {
		return fmt.Errorf("%w: missing PDF file path", ErrUsage)
	}
	pdfInfo, err := os.Stat(o.PDFPath)
	if err != nil {
		return fmt.Errorf("%w: PDF file %q: %w", ErrUsage, o.PDFPath, err)
	}
	if pdfInfo.IsDir() {
		return fmt.Errorf("%w: PDF file %q is a directory", ErrUsage, o.PDFPath)
	}
	if err := checkDirectory("output directory", o.OutputDirectory); err != nil {
		return err
	}
	if err := checkDirectory("library directory", o.LibraryDirectory); err != nil {
		return err
	}
	if o.ResolutionPixels < 1 || o.ResolutionPixels > MaxResolutionPixels {
		return fmt.Errorf("%w: resolution must be between 1 and %d pixels, got %d", ErrUsage, MaxResolutionPixels, o.ResolutionPixels)
	}
	switch o.Engine {
	case EnginePDFium:
	case EngineMuPDF:
		if o.Password != nil {
			return fmt.Errorf("%w: the %s engine cannot open password protected documents, use %s", ErrUsage, EngineMuPDF, EnginePDFium)
		}
	default:
		return fmt.Errorf("%w: unknown engine %q (supported: %s, %s)", ErrUsage, o.Engine, EnginePDFium, EngineMuPDF)
	}
	return nil
}

// checkDirectory verifies that path exists and is a directory
func checkDirectory(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %w", ErrUsage, name, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s %q is not a directory", ErrUsage, name, path)
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// SetupCLI loads the env files and returns the Logger for a CLI run.
// It has to run before flag parsing so env-backed flag defaults see the files.
func SetupCLI() *slog.Logger {
	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("pdf2png.env")

	logger := setupLogging(getEnvBool("PDF2PNG_VERBOSE", false))
	Logger = logger
	return logger
}

// VerboseLogger returns a debug level logger writing to stderr
func VerboseLogger() *slog.Logger {
	return setupLogging(true)
}

// parseLevel maps LOG_LEVEL values onto slog levels
func parseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging configures the application logger.
// Stdout carries the page count or extracted text, so logs never go there.
func setupLogging(verbose bool) *slog.Logger {
	level := parseLevel(getEnv("LOG_LEVEL", "info"))
	logOutput := getEnv("LOG_OUTPUT", "none")
	if verbose {
		level = slog.LevelDebug
		logOutput = "stderr"
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	var logWriter io.Writer
	switch logOutput {
	case "stderr":
		logWriter = os.Stderr
	case "file":
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "pdf2png.log")))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file path: %v\n", err)
			logWriter = os.Stderr
			break
		}
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			logWriter = os.Stderr
			break
		}
		logWriter = logFile
	default:
		return slog.New(slog.DiscardHandler)
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
