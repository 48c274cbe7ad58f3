// Package intake implements the batch upload surface: it accepts scanned PDF
// batches with their per-page OCR payloads, runs each through the pipeline,
// and persists the resulting batch and document records.
package intake

import (
	"time"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/internal/documents"
	"github.com/rhm-kanzlei/mailroom/internal/pages"
	"github.com/rhm-kanzlei/mailroom/internal/segment"
)

// Batch is one processed intake file.
type Batch struct {
	ID            uuid.UUID `json:"id"`
	Owner         string    `json:"owner"`
	Filename      string    `json:"filename"`
	StorageKey    string    `json:"storage_key"`
	PageCount     int       `json:"page_count"`
	SizeBytes     int64     `json:"size_bytes"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProcessCommand carries one file through intake: the owner on whose behalf
// classification runs, the raw PDF, and its ordered OCR pages.
type ProcessCommand struct {
	Owner    string
	Filename string
	Source   []byte
	Pages    []pages.Page
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Batch and Documents are populated and Error is empty.
type BatchResult struct {
	Filename  string               `json:"filename"`
	Batch     *Batch               `json:"batch,omitempty"`
	Documents []documents.Document `json:"documents,omitempty"`
	Trace     []segment.Diagnostic `json:"trace,omitempty"`
	Error     string               `json:"error,omitempty"`
}
