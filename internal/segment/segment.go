// Package segment walks an ordered page sequence and groups content pages
// into logical documents, using one of three interchangeable boundary
// strategies. It always returns whatever documents could be assembled plus a
// per-page decision trace; a bad page never aborts the batch.
package segment

import (
	"github.com/rhm-kanzlei/mailroom/internal/pages"
)

// Document is one logical document cut from a scanned batch: the original
// page indices it spans (contiguous, strictly increasing), the concatenated
// page text (pages joined by a paragraph break), and a standalone render of
// exactly those pages. Artifact is nil when rendering was unavailable or
// failed; the failure is recorded in the trace.
type Document struct {
	PageIndices []int  `json:"page_indices"`
	Text        string `json:"text"`
	Artifact    []byte `json:"-"`
}

// Diagnostic records one segmentation decision or contained failure.
// Page is the 0-based page index, or -1 for document-level entries.
type Diagnostic struct {
	Page    int       `json:"page"`
	Verdict pages.Tag `json:"verdict,omitempty"`
	Note    string    `json:"note,omitempty"`
}

// Result is the outcome of segmenting one batch.
type Result struct {
	Documents []Document   `json:"documents"`
	Trace     []Diagnostic `json:"trace"`
}

// PageIndexSpan reports the first and last original page of a document.
func (d *Document) PageIndexSpan() (first, last int) {
	if len(d.PageIndices) == 0 {
		return 0, -1
	}
	return d.PageIndices[0], d.PageIndices[len(d.PageIndices)-1]
}
