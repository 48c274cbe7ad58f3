package register

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
	"github.com/rhm-kanzlei/mailroom/pkg/query"
	"github.com/rhm-kanzlei/mailroom/pkg/repository"
)

const entryColumns = `id, stem, handler, case_type, short_title, client, opponent,
		created_at, updated_at`

type repo struct {
	db            *sql.DB
	table         *Table
	normalizeCode func(string) string
	logger        *slog.Logger
	pagination    pagination.Config
}

// New creates a register repository implementing the System interface.
// normalizeCode canonicalizes handler codes on every write path; the table is
// the shared read view refreshed after each mutation.
func New(
	db *sql.DB,
	table *Table,
	normalizeCode func(string) string,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:            db,
		table:         table,
		normalizeCode: normalizeCode,
		logger:        logger.With("system", "register"),
		pagination:    pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Table() *Table {
	return r.table
}

func (r *repo) Load(ctx context.Context) error {
	q := fmt.Sprintf("SELECT %s FROM register_entries", entryColumns)

	entries, err := repository.QueryMany(ctx, r.db, q, nil, scanEntry)
	if err != nil {
		return fmt.Errorf("load register: %w", err)
	}

	r.table.Replace(entries)
	r.logger.Info("register loaded", "entries", len(entries))
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Stem", "ShortTitle", "Client", "Opponent")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count register entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query register entries: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Lookup(ctx context.Context, stem string) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Stem", stem)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Upsert(ctx context.Context, cmd UpsertCommand) (*Entry, error) {
	if err := cmd.normalize(r.normalizeCode); err != nil {
		return nil, err
	}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		return upsertEntry(ctx, tx, cmd)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.Load(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("register entry upserted",
		"id", e.ID,
		"stem", e.Stem,
		"handler", e.Handler,
	)
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM register_entries WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.Load(ctx); err != nil {
		return err
	}

	r.logger.Info("register entry deleted", "id", id)
	return nil
}

func (r *repo) Import(ctx context.Context, src io.Reader) (*ImportResult, error) {
	commands, skipped, err := parseCSV(src, r.normalizeCode)
	if err != nil {
		return nil, err
	}

	imported, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		for _, cmd := range commands {
			if _, err := upsertEntry(ctx, tx, cmd); err != nil {
				return 0, fmt.Errorf("import stem %s: %w", cmd.Stem, err)
			}
		}
		return len(commands), nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.Load(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("register imported",
		"imported", imported,
		"skipped", len(skipped),
	)

	result := &ImportResult{Imported: imported, Skipped: skipped}
	if result.Skipped == nil {
		result.Skipped = []ImportSkip{}
	}
	return result, nil
}

func upsertEntry(ctx context.Context, tx *sql.Tx, cmd UpsertCommand) (Entry, error) {
	q := fmt.Sprintf(`
		INSERT INTO register_entries(stem, handler, case_type, short_title, client, opponent)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (stem) DO UPDATE SET
			handler = EXCLUDED.handler,
			case_type = EXCLUDED.case_type,
			short_title = EXCLUDED.short_title,
			client = EXCLUDED.client,
			opponent = EXCLUDED.opponent,
			updated_at = NOW()
		RETURNING %s`, entryColumns)

	args := []any{
		cmd.Stem,
		cmd.Handler,
		cmd.CaseType,
		cmd.ShortTitle,
		cmd.Client,
		cmd.Opponent,
	}

	e, err := repository.QueryOne(ctx, tx, q, args, scanEntry)
	if err != nil {
		return Entry{}, fmt.Errorf("upsert register entry: %w", err)
	}
	return e, nil
}
