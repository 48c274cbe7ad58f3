package documents

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/internal/rules"
	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
	"github.com/rhm-kanzlei/mailroom/pkg/query"
	"github.com/rhm-kanzlei/mailroom/pkg/repository"
	"github.com/rhm-kanzlei/mailroom/pkg/storage"
)

const documentColumns = `id, batch_id, owner, filename, page_indices, text, subject,
		excerpt, reference, stem, handler, provenance, external_refs, client,
		opponent, document_date, keywords, sender_type, category, folder,
		confidence, storage_key, size_bytes, created_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	engine     rules.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
// The rules engine handles the learning side of Move and Suggestions.
func New(
	db *sql.DB,
	store storage.System,
	engine rules.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		engine:     engine,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Reference", "Client", "Opponent", "Subject")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	id := uuid.New()
	var (
		key  string
		size int64
	)

	if cmd.Artifact != nil {
		key = BuildStorageKey(cmd.BatchID, id, cmd.Filename)
		size = int64(len(cmd.Artifact))
		if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Artifact), "application/pdf"); err != nil {
			return nil, fmt.Errorf("upload document artifact: %w", err)
		}
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Document, error) {
		return r.CreateIn(ctx, tx, cmd, key, size)
	})
	if err != nil {
		if key != "" {
			if delErr := r.storage.Delete(ctx, key); delErr != nil {
				r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
			}
		}
		return nil, err
	}

	return d, nil
}

func (r *repo) CreateIn(
	ctx context.Context,
	tx *sql.Tx,
	cmd CreateCommand,
	storageKey string,
	sizeBytes int64,
) (*Document, error) {
	pageIndicesJSON, err := json.Marshal(cmd.PageIndices)
	if err != nil {
		return nil, fmt.Errorf("marshal page indices: %w", err)
	}
	externalJSON, err := json.Marshal(orEmpty(cmd.External))
	if err != nil {
		return nil, fmt.Errorf("marshal external refs: %w", err)
	}
	keywordsJSON, err := json.Marshal(orEmpty(cmd.Keywords))
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO documents(
			batch_id, owner, filename, page_indices, text, subject, excerpt,
			reference, stem, handler, provenance, external_refs, client,
			opponent, document_date, keywords, sender_type, category, folder,
			confidence, storage_key, size_bytes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING %s`, documentColumns)

	args := []any{
		cmd.BatchID, cmd.Owner, cmd.Filename, pageIndicesJSON, cmd.Text,
		cmd.Subject, cmd.Excerpt, cmd.Reference, cmd.Stem, cmd.Handler,
		cmd.Provenance, externalJSON, cmd.Client, cmd.Opponent,
		cmd.DocumentDate, keywordsJSON, cmd.SenderType, cmd.Category,
		cmd.Folder, cmd.Confidence, storageKey, sizeBytes,
	}

	d, err := repository.QueryOne(ctx, tx, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created",
		"id", d.ID,
		"batch_id", d.BatchID,
		"reference", d.Reference,
		"folder", d.Folder,
	)
	return &d, nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.StorageKey == "" {
		return nil, nil, ErrNoArtifact
	}

	stream, err := r.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download artifact %s: %w", doc.StorageKey, err)
	}
	return doc, stream, nil
}

// Move re-files a document and teaches the engine in the same transaction, so
// a failed document update discards the rule change.
func (r *repo) Move(ctx context.Context, id uuid.UUID, cmd MoveCommand) (*Document, error) {
	if cmd.Folder == "" {
		return nil, ErrMissingFolder
	}

	moveQ := fmt.Sprintf(`
		UPDATE documents
		SET folder = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, documentColumns)

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		doc, err := repository.QueryOne(ctx, tx, moveQ, []any{cmd.Folder, id}, scanDocument)
		if err != nil {
			return Document{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if _, err := r.engine.LearnIn(ctx, tx, doc.Owner, profileOf(&doc), cmd.Folder); err != nil {
			return Document{}, fmt.Errorf("learn from move: %w", err)
		}

		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	r.engine.Invalidate(d.Owner)
	r.logger.Info("document moved",
		"id", d.ID,
		"folder", d.Folder,
		"owner", d.Owner,
	)
	return &d, nil
}

func (r *repo) Suggestions(ctx context.Context, id uuid.UUID, n int) ([]rules.Suggestion, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.engine.Suggest(ctx, doc.Owner, profileOf(doc), n)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if doc.StorageKey != "" {
		if delErr := r.storage.Delete(ctx, doc.StorageKey); delErr != nil {
			r.logger.Warn(
				"blob delete failed after DB delete",
				"key", doc.StorageKey,
				"error", delErr,
			)
		}
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func profileOf(d *Document) rules.DocumentProfile {
	p := rules.DocumentProfile{
		Text:    d.Text,
		Sender:  d.Opponent,
		Subject: d.Subject,
	}
	if d.Category != "" {
		p.CategoryHints = []string{d.Category}
	}
	return p
}

// BuildStorageKey places artifacts under their batch for traceability.
func BuildStorageKey(batchID, docID uuid.UUID, filename string) string {
	return fmt.Sprintf("batches/%s/documents/%s/%s", batchID, docID, SanitizeFilename(filename))
}

// SanitizeFilename reduces a client-supplied filename to a safe blob segment.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document.pdf"
	}
	return url.PathEscape(name)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
