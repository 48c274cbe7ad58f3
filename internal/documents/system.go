package documents

import (
	"context"
	"database/sql"
	"io"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/internal/rules"
	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// Create persists one pipeline result, uploading the artifact first and
	// compensating the blob on a failed insert.
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)

	// CreateIn persists within a caller-owned transaction; the caller owns
	// blob upload and compensation.
	CreateIn(ctx context.Context, tx *sql.Tx, cmd CreateCommand, storageKey string, sizeBytes int64) (*Document, error)

	// Download streams the stored artifact. The caller must close the reader.
	Download(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error)

	// Move re-files the document and feeds the correction to the learning
	// engine in the same transaction.
	Move(ctx context.Context, id uuid.UUID, cmd MoveCommand) (*Document, error)

	// Suggestions returns alternative folders for the document.
	Suggestions(ctx context.Context, id uuid.UUID, n int) ([]rules.Suggestion, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
