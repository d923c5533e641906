package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func validOptions(t *testing.T) Options {
	t.Helper()
	tempDir := t.TempDir()
	pdfPath := filepath.Join(tempDir, "report.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4\n"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return Options{
		PDFPath:          pdfPath,
		OutputDirectory:  tempDir,
		LibraryDirectory: tempDir,
		ResolutionPixels: DefaultResolutionPixels,
		Engine:           EnginePDFium,
	}
}

func TestValidate_ValidOptions(t *testing.T) {
	opts := validOptions(t)
	if err := opts.Validate(); err != nil {
		t.Errorf("Expected no error with valid options, got: %v", err)
	}
}

func TestValidate_InvalidOptions(t *testing.T) {
	password := "secret"
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"missing pdf path", func(o *Options) { o.PDFPath = "" }},
		{"nonexistent pdf", func(o *Options) { o.PDFPath = filepath.Join(o.OutputDirectory, "missing.pdf") }},
		{"pdf is a directory", func(o *Options) { o.PDFPath = o.OutputDirectory }},
		{"nonexistent output directory", func(o *Options) { o.OutputDirectory = "/nonexistent/output" }},
		{"output directory is a file", func(o *Options) { o.OutputDirectory = o.PDFPath }},
		{"nonexistent library directory", func(o *Options) { o.LibraryDirectory = "/nonexistent/lib" }},
		{"library directory is a file", func(o *Options) { o.LibraryDirectory = o.PDFPath }},
		{"zero resolution", func(o *Options) { o.ResolutionPixels = 0 }},
		{"resolution too large", func(o *Options) { o.ResolutionPixels = MaxResolutionPixels + 1 }},
		{"unknown engine", func(o *Options) { o.Engine = "ghostscript" }},
		{"password with mupdf", func(o *Options) {
			o.Engine = EngineMuPDF
			o.Password = &password
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions(t)
			tt.mutate(&opts)
			err := opts.Validate()
			if err == nil {
				t.Fatal("Expected an error, got nil")
			}
			if !errors.Is(err, ErrUsage) {
				t.Errorf("Expected usage error, got: %v", err)
			}
		})
	}
}

func TestValidate_MuPDFWithoutPassword(t *testing.T) {
	opts := validOptions(t)
	opts.Engine = EngineMuPDF
	if err := opts.Validate(); err != nil {
		t.Errorf("Expected mupdf engine to be accepted, got: %v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PDF2PNG_TEST_STRING", "value")
	t.Setenv("PDF2PNG_TEST_BOOL", "true")
	t.Setenv("PDF2PNG_TEST_BAD_BOOL", "maybe")
	t.Setenv("PDF2PNG_TEST_INT", "42")
	t.Setenv("PDF2PNG_TEST_BAD_INT", "forty-two")

	if got := getEnv("PDF2PNG_TEST_STRING", "default"); got != "value" {
		t.Errorf("getEnv = %q, want %q", got, "value")
	}
	if got := getEnv("PDF2PNG_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv unset = %q, want %q", got, "default")
	}
	if got := getEnvBool("PDF2PNG_TEST_BOOL", false); !got {
		t.Error("getEnvBool = false, want true")
	}
	if got := getEnvBool("PDF2PNG_TEST_BAD_BOOL", true); !got {
		t.Error("getEnvBool with bad value should fall back to default")
	}
	if got := getEnvInt("PDF2PNG_TEST_INT", 0); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	if got := getEnvInt("PDF2PNG_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt with bad value = %d, want 7", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		"INFO":   slog.LevelInfo,
		"warn":   slog.LevelWarn,
		"error":  slog.LevelError,
		"chatty": slog.LevelInfo,
		"":       slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSetupLogging_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "pdf2png.log")
	t.Setenv("LOG_OUTPUT", "file")
	t.Setenv("LOG_FILE", logPath)
	t.Setenv("LOG_LEVEL", "info")

	logger := setupLogging(false)
	logger.Info("hello from the test")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected log file to contain the log line")
	}
}

func TestSetupLogging_DefaultIsSilent(t *testing.T) {
	t.Setenv("LOG_OUTPUT", "")
	logger := setupLogging(false)
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("Expected default logger to discard everything")
	}
}
