package pagecount

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Counter reports the number of pages in a document file.
type Counter interface {
	Count(path string) (int, error)
}

// PDFCounter counts pages by parsing the document with pdfcpu.
type PDFCounter struct{}

// Count returns the page count of the file at path. Corrupt or unreadable
// documents return an error; callers leave the stored count at zero.
func (PDFCounter) Count(path string) (int, error) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages in %s: %w", path, err)
	}
	return pages, nil
}

var _ Counter = PDFCounter{}
