// Package pdftext is the local fallback for documents the remote analyzer
// cannot handle: plain-text extraction for paragraph-mode classification and
// page trimming for the degraded re-analysis attempt.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract returns the document's plain text and page count. Page boundaries
// are preserved as blank-line separators so paragraph-mode classification can
// rebuild an approximate line→page mapping.
func Extract(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("opening pdf: %w", err)
	}

	pageCount := reader.NumPage()
	var pages []string
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}

	full := strings.Join(pages, "\n\n")
	if strings.TrimSpace(full) == "" {
		return "", pageCount, fmt.Errorf("no text content found in pdf")
	}
	return full, pageCount, nil
}
