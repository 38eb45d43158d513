// Package extract turns uploaded study documents into plain text.
//
// PDF extraction uses ledongthuc/pdf, a pure Go reader, so the binary needs
// no external tooling. Extraction is all-or-nothing: any parser failure
// returns an error and no partial text.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// IsPDF reports whether data starts with the PDF magic bytes.
func IsPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// PDFFile extracts text from a PDF on disk.
func PDFFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return PDFText(data)
}

// PDFText extracts the text of every page in order, appending exactly one
// newline after each page's text.
func PDFText(data []byte) (text string, err error) {
	// The underlying reader panics on some malformed cross-reference
	// tables; map that to an error like any other parse failure.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			sb.WriteString("\n")
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", i, err)
		}

		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
