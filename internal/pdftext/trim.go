package pdftext

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount returns the number of pages in the PDF.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("counting pdf pages: %w", err)
	}
	return n, nil
}

// TrimToPages returns a copy of the PDF reduced to its first maxPages pages.
// The input is returned unchanged when it already fits.
func TrimToPages(data []byte, maxPages int) ([]byte, error) {
	if maxPages < 1 {
		return nil, fmt.Errorf("invalid page limit %d", maxPages)
	}
	count, err := PageCount(data)
	if err != nil {
		return nil, err
	}
	if count <= maxPages {
		return data, nil
	}

	var out bytes.Buffer
	pages := []string{fmt.Sprintf("1-%d", maxPages)}
	if err := api.Trim(bytes.NewReader(data), &out, pages, nil); err != nil {
		return nil, fmt.Errorf("trimming pdf to %d pages: %w", maxPages, err)
	}
	return out.Bytes(), nil
}
