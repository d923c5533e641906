package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drummonds/pdf2png/engine/pdfrenderer"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractText returns the plain text of every page of the PDF at path.
// It is pure Go, no rendering library is bound. Encrypted documents are
// decrypted with password first, nil tries the empty user password.
func ExtractText(path string, password *string) (fullText string, err error) {
	fileName := filepath.Base(path)
	// the pdf package panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in text extraction", "fileName", fileName, "panic", r)
			err = fmt.Errorf("unable to extract text from %s: %v", fileName, r)
		}
	}()

	Logger.Debug("Extracting text", "fileName", fileName)
	pdfData, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read PDF file: %w", err)
	}

	userPassword := ""
	if password != nil {
		userPassword = *password
	}
	decrypted, decryptErr := decryptPDF(pdfData, userPassword)
	switch {
	case decryptErr == nil:
		Logger.Debug("Decrypted PDF for text extraction", "fileName", fileName)
		pdfData = decrypted
	case errors.Is(decryptErr, pdfcpu.ErrNotEncrypted):
		decryptErr = nil
	case errors.Is(decryptErr, pdfcpu.ErrWrongPassword):
		return "", fmt.Errorf("%w: %w", pdfrenderer.ErrPassword, decryptErr)
	default:
		// pdfcpu is stricter than the text reader, let the reader have a go
		Logger.Debug("Unable to check PDF encryption", "fileName", fileName, "error", decryptErr)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", fmt.Errorf("%w: %w", pdfrenderer.ErrPassword, err)
		}
		if decryptErr != nil {
			return "", fmt.Errorf("failed to create PDF reader: %w", decryptErr)
		}
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	plainText, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("unable to convert PDF to text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plainText); err != nil {
		return "", fmt.Errorf("unable to read PDF text: %w", err)
	}
	Logger.Info("Text extracted from PDF", "fileName", fileName, "characters", buf.Len())
	return buf.String(), nil
}

// decryptPDF removes the security handler from pdfData. Either password
// of the document is accepted. Unencrypted input yields pdfcpu.ErrNotEncrypted.
func decryptPDF(pdfData []byte, password string) ([]byte, error) {
	// keep pdfcpu away from the user config directory
	model.ConfigPath = "disable"
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	// the text reader wants classic cross reference tables
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	var buf bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(pdfData), &buf, conf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
