package intake

import (
	"errors"
	"net/http"
)

// Domain errors for intake operations.
var (
	ErrNotFound     = errors.New("batch not found")
	ErrDuplicate    = errors.New("batch already exists")
	ErrMissingOwner = errors.New("owner is required")
	ErrNoFiles      = errors.New("no files in upload")
	ErrInvalidPages = errors.New("per-page OCR payload is invalid")
	ErrPageMismatch = errors.New("OCR page count does not match the PDF")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps intake domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrMissingOwner) ||
		errors.Is(err, ErrNoFiles) ||
		errors.Is(err, ErrInvalidPages) ||
		errors.Is(err, ErrPageMismatch) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
