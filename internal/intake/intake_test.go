package intake

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/mailroom/internal/analyze"
	"github.com/rhm-kanzlei/mailroom/internal/pages"
	"github.com/rhm-kanzlei/mailroom/internal/pipeline"
	"github.com/rhm-kanzlei/mailroom/internal/reference"
	"github.com/rhm-kanzlei/mailroom/internal/rules"
	"github.com/rhm-kanzlei/mailroom/internal/segment"
)

func TestValidatePageCount(t *testing.T) {
	t.Run("empty pages rejected", func(t *testing.T) {
		err := validatePageCount(ProcessCommand{})
		if !errors.Is(err, ErrInvalidPages) {
			t.Errorf("error = %v, want ErrInvalidPages", err)
		}
	})

	t.Run("no source skips pdf check", func(t *testing.T) {
		err := validatePageCount(ProcessCommand{Pages: []pages.Page{{Index: 0}}})
		if err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})

	t.Run("corrupt source", func(t *testing.T) {
		err := validatePageCount(ProcessCommand{
			Source: []byte("not a pdf"),
			Pages:  []pages.Page{{Index: 0}},
		})
		if err == nil {
			t.Error("expected error for unreadable source")
		}
	})
}

func TestCreateCommand(t *testing.T) {
	batchID := uuid.New()
	ruleID := uuid.New()

	doc := pipeline.DocumentResult{
		Segment: segment.Document{
			PageIndices: []int{2, 3},
			Text:        "Mahnung wegen Rechnung\n\nSeite zwei",
		},
		Reference: reference.Result{
			Internal:   "151/25M",
			Stem:       "151/25",
			Code:       "M",
			External:   []string{"45 C 112/23"},
			Provenance: reference.ProvenanceField,
		},
		Handler: "M",
		Analysis: &analyze.Analysis{
			Client:     "Müller",
			Opponent:   "HUK-Coburg",
			Date:       "2024-03-15",
			Keywords:   []string{"Mahnung"},
			SenderType: "Versicherung",
		},
		Classification: &rules.Classification{
			Folder:     "Versicherungen",
			Category:   "Versicherung",
			Confidence: 0.8,
			RuleID:     &ruleID,
		},
		Filename: "151_25M_Mueller_HUK-Coburg.pdf",
	}

	cmd := createCommand(batchID, "kanzlei", doc)

	if cmd.BatchID != batchID || cmd.Owner != "kanzlei" {
		t.Errorf("batch/owner = %s/%s", cmd.BatchID, cmd.Owner)
	}
	if cmd.Reference != "151/25M" || cmd.Stem != "151/25" || cmd.Handler != "M" {
		t.Errorf("reference fields = %q/%q/%q", cmd.Reference, cmd.Stem, cmd.Handler)
	}
	if cmd.Provenance != "field" {
		t.Errorf("provenance = %q, want field", cmd.Provenance)
	}
	if cmd.Subject != "Mahnung wegen Rechnung" {
		t.Errorf("subject = %q", cmd.Subject)
	}
	if cmd.Client != "Müller" || cmd.Opponent != "HUK-Coburg" {
		t.Errorf("parties = %q/%q", cmd.Client, cmd.Opponent)
	}
	if cmd.Folder != "Versicherungen" || cmd.Confidence != 0.8 {
		t.Errorf("classification = %q/%v", cmd.Folder, cmd.Confidence)
	}
	if cmd.Excerpt == "" {
		t.Error("excerpt should be derived from the text")
	}
}

func TestCreateCommandWithoutAnalysis(t *testing.T) {
	doc := pipeline.DocumentResult{
		Segment:  segment.Document{PageIndices: []int{0}, Text: "Inhalt"},
		Filename: "ohne-az.pdf",
	}

	cmd := createCommand(uuid.New(), "kanzlei", doc)

	if cmd.Client != "" || cmd.SenderType != "" {
		t.Errorf("analysis fields should stay empty: %q/%q", cmd.Client, cmd.SenderType)
	}
	if cmd.Folder != "" {
		t.Errorf("folder should stay empty: %q", cmd.Folder)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{ErrMissingOwner, http.StatusBadRequest},
		{ErrNoFiles, http.StatusBadRequest},
		{ErrInvalidPages, http.StatusBadRequest},
		{fmt.Errorf("%w: pdf has 3 pages, payload has 2", ErrPageMismatch), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
