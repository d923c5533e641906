package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ResolvePrefix returns the stem used for output image names.
// An explicit prefix wins; otherwise it is the PDF file name without its
// last extension. A leading dot alone does not start an extension.
func ResolvePrefix(pdfPath string, prefix *string) (string, error) {
	if prefix != nil {
		return *prefix, nil
	}

	fileName := filepath.Base(pdfPath)
	switch fileName {
	case "", ".", "..", string(filepath.Separator):
		return "", ErrNoFileName
	}
	if !utf8.ValidString(fileName) {
		return "", ErrFileNameNotText
	}

	ext := filepath.Ext(fileName)
	if ext == fileName {
		return fileName, nil
	}
	return strings.TrimSuffix(fileName, ext), nil
}

// OutputFileName names the PNG for the page at index
func OutputFileName(prefix string, index int, firstPageOnly bool) string {
	if firstPageOnly {
		return prefix + ".png"
	}
	return fmt.Sprintf("%s-%d.png", prefix, index)
}
