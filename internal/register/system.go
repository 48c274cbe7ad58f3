package register

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
)

// System defines the public contract for register domain operations.
type System interface {
	Handler() *Handler

	// Load refreshes the in-memory lookup table from the store. Called once
	// at startup and after every mutation.
	Load(ctx context.Context) error

	// Table exposes the read view used by reference recognition.
	Table() *Table

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Entry], error)

	Find(ctx context.Context, id uuid.UUID) (*Entry, error)
	Lookup(ctx context.Context, stem string) (*Entry, error)
	Upsert(ctx context.Context, cmd UpsertCommand) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
}
