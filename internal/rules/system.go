package rules

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
)

// System defines the public contract for the classification engine.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Rule], error)

	Find(ctx context.Context, id uuid.UUID) (*Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Classify scores the owner's rules against the document and resolves a
	// destination folder, category, and confidence. Read-only.
	Classify(ctx context.Context, owner string, profile DocumentProfile) (*Classification, error)

	// Learn records a user correction: the document was re-filed into
	// targetFolder. Runs in its own transaction.
	Learn(ctx context.Context, owner string, profile DocumentProfile, targetFolder string) (*Rule, error)

	// LearnIn is Learn inside a caller-owned transaction, for mutations that
	// must commit or roll back together with other domain writes. The caller
	// must Invalidate the owner after committing.
	LearnIn(ctx context.Context, tx *sql.Tx, owner string, profile DocumentProfile, targetFolder string) (*Rule, error)

	// Invalidate drops the owner's cached rule set after an external commit.
	Invalidate(owner string)

	// Suggest returns up to n alternative folders above the display
	// threshold, deduplicated by folder. Read-only.
	Suggest(ctx context.Context, owner string, profile DocumentProfile, n int) ([]Suggestion, error)
}
