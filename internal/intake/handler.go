package intake

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rhm-kanzlei/mailroom/internal/pages"
	"github.com/rhm-kanzlei/mailroom/pkg/handlers"
	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
	"github.com/rhm-kanzlei/mailroom/pkg/routes"
)

// Handler provides HTTP endpoints for intake operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "intake"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for intake endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/intake",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Process},
			{Method: "GET", Pattern: "/batches", Handler: h.List},
			{Method: "GET", Pattern: "/batches/{id}", Handler: h.Find},
		},
	}
}

// Process accepts a multipart upload: an "owner" field, one or more "files"
// PDF parts, and a parallel "pages" JSON field per file carrying the OCR
// pages. Files run through the pipeline concurrently; a failed file reports
// its error in the batch result without failing the rest.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	owner := r.FormValue("owner")
	if owner == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingOwner)
		return
	}

	files := r.MultipartForm.File["files"]
	pagePayloads := r.MultipartForm.Value["pages"]
	if len(files) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFiles)
		return
	}
	if len(pagePayloads) != len(files) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPages)
		return
	}

	results := make([]BatchResult, len(files))
	g, ctx := errgroup.WithContext(r.Context())

	for i := range files {
		g.Go(func() error {
			header := files[i]
			cmd, err := h.buildCommand(owner, header, pagePayloads[i])
			if err != nil {
				results[i] = BatchResult{Filename: header.Filename, Error: err.Error()}
				return nil
			}

			result, err := h.sys.Process(ctx, cmd)
			if err != nil {
				h.logger.Warn("file intake failed", "filename", header.Filename, "error", err)
				results[i] = BatchResult{Filename: header.Filename, Error: err.Error()}
				return nil
			}

			results[i] = *result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

// List returns a paginated list of processed batches.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), pagination.Config{})

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single batch by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	batch, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, batch)
}

func (h *Handler) buildCommand(owner string, header *multipart.FileHeader, pagesJSON string) (ProcessCommand, error) {
	file, err := header.Open()
	if err != nil {
		return ProcessCommand{}, err
	}
	defer file.Close()

	source, err := io.ReadAll(file)
	if err != nil {
		return ProcessCommand{}, err
	}

	var pp []pages.Page
	if err := json.Unmarshal([]byte(pagesJSON), &pp); err != nil {
		return ProcessCommand{}, ErrInvalidPages
	}

	return ProcessCommand{
		Owner:    owner,
		Filename: header.Filename,
		Source:   source,
		Pages:    pp,
	}, nil
}
