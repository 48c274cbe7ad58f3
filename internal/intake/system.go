package intake

import (
	"context"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
)

// System defines the public contract for intake operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Process runs one file through the pipeline and persists the batch and
	// its documents transactionally.
	Process(ctx context.Context, cmd ProcessCommand) (*BatchResult, error)

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Batch], error)
	Find(ctx context.Context, id uuid.UUID) (*Batch, error)
}
