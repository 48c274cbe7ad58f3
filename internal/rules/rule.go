// Package rules implements the self-learning folder classification engine.
// Rules are per-user, created and strengthened exclusively by user corrections
// (a document moved to a different folder), and scored against incoming
// documents to suggest a destination folder with a confidence.
package rules

import (
	"time"

	"github.com/google/uuid"
)

// Rule is one learned sender/keyword pattern predicting a target folder.
// Rules are never deleted automatically and only ever strengthen.
type Rule struct {
	ID           uuid.UUID `json:"id"`
	Owner        string    `json:"owner"`
	Sender       string    `json:"sender"`
	Category     string    `json:"category,omitempty"`
	Keywords     []string  `json:"keywords"`
	TargetFolder string    `json:"target_folder"`
	Confidence   float64   `json:"confidence"`
	TimesApplied int       `json:"times_applied"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DocumentProfile is the classification view of one document: its full text,
// the declared sender and subject when known, and category hints supplied by
// upstream recognition.
type DocumentProfile struct {
	Text          string   `json:"text"`
	Sender        string   `json:"sender,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	CategoryHints []string `json:"category_hints,omitempty"`
}

// Classification is the engine's suggestion for one document. Folder is empty
// only when even the static fallback produced nothing (never in practice);
// RuleID identifies the winning rule, nil when the suggestion came from the
// category fallback table.
type Classification struct {
	Folder     string     `json:"folder"`
	Category   string     `json:"category"`
	Confidence float64    `json:"confidence"`
	RuleID     *uuid.UUID `json:"rule_id,omitempty"`
}

// Suggestion is one alternative folder for display, produced by Suggest.
type Suggestion struct {
	Folder     string    `json:"folder"`
	Confidence float64   `json:"confidence"`
	RuleID     uuid.UUID `json:"rule_id"`
}
