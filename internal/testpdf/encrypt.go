package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Cipher is the security handler used to protect a document
type Cipher int

const (
	RC4With40BitKey Cipher = iota
	RC4With128BitKey
	AESWith128BitKey
	AESWith256BitKey
)

// Ciphers lists every supported Cipher
var Ciphers = []Cipher{RC4With40BitKey, RC4With128BitKey, AESWith128BitKey, AESWith256BitKey}

func (c Cipher) String() string {
	switch c {
	case RC4With40BitKey:
		return "rc4-40"
	case RC4With128BitKey:
		return "rc4-128"
	case AESWith128BitKey:
		return "aes-128"
	case AESWith256BitKey:
		return "aes-256"
	}
	return fmt.Sprintf("cipher(%d)", int(c))
}

func (c Cipher) configuration(userPassword, ownerPassword string) *model.Configuration {
	// keep pdfcpu away from the user config directory
	model.ConfigPath = "disable"
	switch c {
	case RC4With40BitKey:
		return model.NewRC4Configuration(userPassword, ownerPassword, 40)
	case RC4With128BitKey:
		return model.NewRC4Configuration(userPassword, ownerPassword, 128)
	case AESWith128BitKey:
		return model.NewAESConfiguration(userPassword, ownerPassword, 128)
	default:
		return model.NewAESConfiguration(userPassword, ownerPassword, 256)
	}
}

// Encrypt protects pdfData with the given passwords, ownerPassword must not be empty
func Encrypt(pdfData []byte, cipher Cipher, userPassword, ownerPassword string) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(pdfData), &buf, cipher.configuration(userPassword, ownerPassword)); err != nil {
		return nil, fmt.Errorf("unable to encrypt test PDF with %s: %w", cipher, err)
	}
	return buf.Bytes(), nil
}

// WriteEncrypted stores a letter sized PDF protected by cipher as dir/name
func WriteEncrypted(t testing.TB, dir, name string, cipher Cipher, userPassword, ownerPassword string, pages ...string) string {
	t.Helper()
	pdfData, err := Encrypt(Build(Letter, pages...), cipher, userPassword, ownerPassword)
	if err != nil {
		t.Fatalf("Failed to build encrypted test PDF: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pdfData, 0644); err != nil {
		t.Fatalf("Failed to write test PDF: %v", err)
	}
	return path
}
