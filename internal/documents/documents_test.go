package documents_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/internal/documents"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "scan.pdf", "scan.pdf"},
		{"strips directories", "../../etc/passwd", "passwd"},
		{"empty name", "", "document.pdf"},
		{"dot name", ".", "document.pdf"},
		{"escapes spaces", "posteingang montag.pdf", "posteingang%20montag.pdf"},
		{"escapes slash remnants", "a/b.pdf", "b.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documents.SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildStorageKey(t *testing.T) {
	batchID := uuid.New()
	docID := uuid.New()

	got := documents.BuildStorageKey(batchID, docID, "151_25M_Mueller.pdf")
	want := fmt.Sprintf("batches/%s/documents/%s/151_25M_Mueller.pdf", batchID, docID)
	if got != want {
		t.Errorf("BuildStorageKey = %q, want %q", got, want)
	}

	if key := documents.BuildStorageKey(batchID, docID, "../evil.pdf"); strings.Contains(key, "..") {
		t.Errorf("storage key retains path traversal: %q", key)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{documents.ErrNotFound, http.StatusNotFound},
		{documents.ErrNoArtifact, http.StatusNotFound},
		{documents.ErrDuplicate, http.StatusConflict},
		{documents.ErrMissingFolder, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", documents.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := documents.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
