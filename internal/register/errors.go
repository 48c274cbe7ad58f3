package register

import (
	"errors"
	"net/http"
)

// Domain errors for register operations.
var (
	ErrNotFound       = errors.New("register entry not found")
	ErrDuplicate      = errors.New("register stem already exists")
	ErrInvalidStem    = errors.New("stem must match the NNNNN/YY pattern")
	ErrMissingHandler = errors.New("handler code is required")
)

// MapHTTPStatus maps register domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStem) || errors.Is(err, ErrMissingHandler) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
