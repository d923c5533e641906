package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drummonds/pdf2png/engine/pdfrenderer"
	"github.com/drummonds/pdf2png/internal/testpdf"
)

func TestExtractText(t *testing.T) {
	pdfPath := testpdf.Write(t, t.TempDir(), "letter.pdf", "Hello World", "Second page")

	text, err := ExtractText(pdfPath, nil)
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	for _, want := range []string{"Hello", "Second"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected text to contain %q, got %q", want, text)
		}
	}
}

func TestExtractText_PasswordIgnoredForPlainDocument(t *testing.T) {
	pdfPath := testpdf.Write(t, t.TempDir(), "letter.pdf", "Hello World")
	password := "unused"

	text, err := ExtractText(pdfPath, &password)
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	if !strings.Contains(text, "Hello") {
		t.Errorf("Expected text to contain Hello, got %q", text)
	}
}

func TestExtractText_NotAPDF(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(pdfPath, []byte("just some notes"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, err := ExtractText(pdfPath, nil)
	if err == nil {
		t.Fatal("Expected error for a non PDF file")
	}
	if errors.Is(err, pdfrenderer.ErrPassword) {
		t.Errorf("Non PDF input must not be reported as a password error: %v", err)
	}
}

func TestExtractText_MissingFile(t *testing.T) {
	if _, err := ExtractText(filepath.Join(t.TempDir(), "missing.pdf"), nil); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestExtractText_EncryptedDocument(t *testing.T) {
	user := "user"
	owner := "owner"
	wrong := "wrong"

	for _, cipher := range testpdf.Ciphers {
		t.Run(cipher.String(), func(t *testing.T) {
			pdfPath := testpdf.WriteEncrypted(t, t.TempDir(), "secret.pdf", cipher, user, owner, "Hello World", "Second page")

			for _, password := range []*string{&user, &owner} {
				text, err := ExtractText(pdfPath, password)
				if err != nil {
					t.Fatalf("ExtractText with password %q returned error: %v", *password, err)
				}
				for _, want := range []string{"Hello", "Second"} {
					if !strings.Contains(text, want) {
						t.Errorf("Expected text to contain %q, got %q", want, text)
					}
				}
			}

			for _, password := range []*string{nil, &wrong} {
				_, err := ExtractText(pdfPath, password)
				if !errors.Is(err, pdfrenderer.ErrPassword) {
					t.Errorf("Expected ErrPassword for password %v, got %v", password, err)
				}
			}
		})
	}
}

func TestExtractText_EmptyUserPassword(t *testing.T) {
	pdfPath := testpdf.WriteEncrypted(t, t.TempDir(), "restricted.pdf", testpdf.AESWith128BitKey, "", "owner", "Hello World")

	text, err := ExtractText(pdfPath, nil)
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	if !strings.Contains(text, "Hello") {
		t.Errorf("Expected text to contain Hello, got %q", text)
	}
}
