// Package documents implements the segmented-document domain: persistence and
// HTTP surface for the documents produced by the intake pipeline, including
// the move feedback edge that drives rule learning.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document is one segmented document cut from an intake batch, with its
// recognized references, analysis metadata, classification, and the storage
// key of its rendered artifact.
type Document struct {
	ID          uuid.UUID `json:"id"`
	BatchID     uuid.UUID `json:"batch_id"`
	Owner       string    `json:"owner"`
	Filename    string    `json:"filename"`
	PageIndices []int     `json:"page_indices"`
	Text        string    `json:"text,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`

	Reference  string   `json:"reference,omitempty"`
	Stem       string   `json:"stem,omitempty"`
	Handler    string   `json:"handler,omitempty"`
	Provenance string   `json:"provenance,omitempty"`
	External   []string `json:"external"`

	Client       string   `json:"client,omitempty"`
	Opponent     string   `json:"opponent,omitempty"`
	DocumentDate string   `json:"document_date,omitempty"`
	Keywords     []string `json:"keywords"`
	SenderType   string   `json:"sender_type,omitempty"`

	Category   string  `json:"category"`
	Folder     string  `json:"folder"`
	Confidence float64 `json:"confidence"`

	StorageKey string    `json:"storage_key,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateCommand carries one pipeline document result for persistence.
// Artifact holds the rendered per-document PDF; nil means rendering failed
// and only metadata is stored.
type CreateCommand struct {
	BatchID     uuid.UUID
	Owner       string
	Filename    string
	PageIndices []int
	Text        string
	Subject     string
	Excerpt     string

	Reference  string
	Stem       string
	Handler    string
	Provenance string
	External   []string

	Client       string
	Opponent     string
	DocumentDate string
	Keywords     []string
	SenderType   string

	Category   string
	Folder     string
	Confidence float64

	Artifact []byte
}

// MoveCommand re-files a document into a different folder. This is the
// feedback edge: the engine learns from every move.
type MoveCommand struct {
	Folder string `json:"folder"`
}
