package rules

import (
	"errors"
	"net/http"
)

// Domain errors for rule operations.
var (
	ErrNotFound     = errors.New("classification rule not found")
	ErrDuplicate    = errors.New("classification rule already exists")
	ErrMissingOwner = errors.New("rule owner is required")
)

// MapHTTPStatus maps rule domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrMissingOwner) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
