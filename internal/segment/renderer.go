package segment

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Renderer produces a standalone artifact containing exactly the given
// 0-based pages of a source file.
type Renderer interface {
	Render(source []byte, pageIndices []int) ([]byte, error)
}

// PDFRenderer cuts page ranges out of a source PDF.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render trims the source PDF down to the selected pages. pdfcpu selections
// are 1-based.
func (r *PDFRenderer) Render(source []byte, pageIndices []int) ([]byte, error) {
	if len(pageIndices) == 0 {
		return nil, fmt.Errorf("empty page selection")
	}

	selection := make([]string, len(pageIndices))
	for i, idx := range pageIndices {
		selection[i] = strconv.Itoa(idx + 1)
	}

	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(source), &out, selection, nil); err != nil {
		return nil, fmt.Errorf("trim pages %v: %w", selection, err)
	}
	return out.Bytes(), nil
}
