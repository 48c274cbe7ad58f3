package intake

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/rhm-kanzlei/mailroom/internal/analyze"
	"github.com/rhm-kanzlei/mailroom/internal/documents"
	"github.com/rhm-kanzlei/mailroom/internal/pipeline"
	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
	"github.com/rhm-kanzlei/mailroom/pkg/query"
	"github.com/rhm-kanzlei/mailroom/pkg/repository"
	"github.com/rhm-kanzlei/mailroom/pkg/storage"
)

const batchColumns = `id, owner, filename, storage_key, page_count, size_bytes,
		document_count, created_at`

var projection = query.
	NewProjectionMap("public", "batches", "b").
	Project("id", "ID").
	Project("owner", "Owner").
	Project("filename", "Filename").
	Project("storage_key", "StorageKey").
	Project("page_count", "PageCount").
	Project("size_bytes", "SizeBytes").
	Project("document_count", "DocumentCount").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

type repo struct {
	db         *sql.DB
	storage    storage.System
	runtime    *pipeline.Runtime
	docs       documents.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an intake repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	runtime *pipeline.Runtime,
	docs documents.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		runtime:    runtime,
		docs:       docs,
		logger:     logger.With("system", "intake"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

// Process validates the upload, runs the pipeline, uploads all blobs, and
// persists batch plus documents in one transaction. Uploaded blobs are
// compensated when the transaction fails.
func (r *repo) Process(ctx context.Context, cmd ProcessCommand) (*BatchResult, error) {
	if cmd.Owner == "" {
		return nil, ErrMissingOwner
	}
	if err := validatePageCount(cmd); err != nil {
		return nil, err
	}

	batchID := uuid.New()
	sourceKey := fmt.Sprintf("batches/%s/source/%s", batchID, documents.SanitizeFilename(cmd.Filename))

	run, err := pipeline.Execute(ctx, r.runtime, pipeline.Input{
		Owner:  cmd.Owner,
		Source: cmd.Source,
		Pages:  cmd.Pages,
	})
	if err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}

	uploaded := []string{}
	compensate := func() {
		for _, key := range uploaded {
			if delErr := r.storage.Delete(ctx, key); delErr != nil {
				r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
			}
		}
	}

	if err := r.storage.Upload(ctx, sourceKey, bytes.NewReader(cmd.Source), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload batch source: %w", err)
	}
	uploaded = append(uploaded, sourceKey)

	type artifact struct {
		key  string
		size int64
	}
	artifacts := make([]artifact, len(run.Documents))
	for i, doc := range run.Documents {
		if doc.Segment.Artifact == nil {
			continue
		}
		key := documents.BuildStorageKey(batchID, uuid.New(), doc.Filename)
		if err := r.storage.Upload(ctx, key, bytes.NewReader(doc.Segment.Artifact), "application/pdf"); err != nil {
			compensate()
			return nil, fmt.Errorf("upload document artifact: %w", err)
		}
		uploaded = append(uploaded, key)
		artifacts[i] = artifact{key: key, size: int64(len(doc.Segment.Artifact))}
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO batches(id, owner, filename, storage_key, page_count, size_bytes, document_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, batchColumns)

	result, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*BatchResult, error) {
		batch, err := repository.QueryOne(ctx, tx, insertQ,
			[]any{batchID, cmd.Owner, cmd.Filename, sourceKey, len(cmd.Pages), int64(len(cmd.Source)), len(run.Documents)},
			scanBatch,
		)
		if err != nil {
			return nil, fmt.Errorf("insert batch: %w", err)
		}

		persisted := make([]documents.Document, 0, len(run.Documents))
		for i, doc := range run.Documents {
			created, err := r.docs.CreateIn(ctx, tx, createCommand(batchID, cmd.Owner, doc), artifacts[i].key, artifacts[i].size)
			if err != nil {
				return nil, err
			}
			persisted = append(persisted, *created)
		}

		return &BatchResult{
			Filename:  cmd.Filename,
			Batch:     &batch,
			Documents: persisted,
			Trace:     run.Trace,
		}, nil
	})
	if err != nil {
		compensate()
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("batch processed",
		"id", batchID,
		"owner", cmd.Owner,
		"pages", len(cmd.Pages),
		"documents", len(result.Documents),
	)
	return result, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Batch], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Owner")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count batches: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanBatch)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Batch, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	b, err := repository.QueryOne(ctx, r.db, q, args, scanBatch)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &b, nil
}

// validatePageCount cross-checks the OCR payload against the PDF itself.
func validatePageCount(cmd ProcessCommand) error {
	if len(cmd.Pages) == 0 {
		return ErrInvalidPages
	}
	if cmd.Source == nil {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(cmd.Source), nil)
	if err != nil {
		return fmt.Errorf("read pdf page count: %w", err)
	}
	if count != len(cmd.Pages) {
		return fmt.Errorf("%w: pdf has %d pages, payload has %d", ErrPageMismatch, count, len(cmd.Pages))
	}
	return nil
}

func createCommand(batchID uuid.UUID, owner string, doc pipeline.DocumentResult) documents.CreateCommand {
	cmd := documents.CreateCommand{
		BatchID:     batchID,
		Owner:       owner,
		Filename:    doc.Filename,
		PageIndices: doc.Segment.PageIndices,
		Text:        doc.Segment.Text,
		Reference:   doc.Reference.Internal,
		Stem:        doc.Reference.Stem,
		Handler:     doc.Handler,
		Provenance:  string(doc.Reference.Provenance),
		External:    doc.Reference.External,
		Subject:     pipeline.SubjectLine(doc.Segment.Text),
		Excerpt:     analyze.Excerpt(doc.Segment.Text),
	}

	if doc.Analysis != nil {
		cmd.Client = doc.Analysis.Client
		cmd.Opponent = doc.Analysis.Opponent
		cmd.DocumentDate = doc.Analysis.Date
		cmd.Keywords = doc.Analysis.Keywords
		cmd.SenderType = doc.Analysis.SenderType
	}

	if doc.Classification != nil {
		cmd.Category = doc.Classification.Category
		cmd.Folder = doc.Classification.Folder
		cmd.Confidence = doc.Classification.Confidence
	}

	return cmd
}

func scanBatch(s repository.Scanner) (Batch, error) {
	var b Batch

	err := s.Scan(
		&b.ID,
		&b.Owner,
		&b.Filename,
		&b.StorageKey,
		&b.PageCount,
		&b.SizeBytes,
		&b.DocumentCount,
		&b.CreatedAt,
	)

	return b, err
}
