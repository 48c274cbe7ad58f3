// Package analyze extracts structured metadata from a segmented document's
// text: the parties involved, the earliest relevant date, content keywords,
// the sender type, and any deadlines. An AI-backed analyzer is optional
// configuration; absence or failure degrades to a deterministic fallback.
package analyze

import "context"

// Deadline is one deadline found in a document.
type Deadline struct {
	Date   string `json:"date"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
}

// Analysis is the structured extraction result for one document. Dates use
// ISO form (YYYY-MM-DD); empty fields mean the information was not found.
type Analysis struct {
	Client     string     `json:"client,omitempty"`
	Opponent   string     `json:"opponent,omitempty"`
	Date       string     `json:"date,omitempty"`
	Keywords   []string   `json:"keywords"`
	SenderType string     `json:"sender_type"`
	Deadlines  []Deadline `json:"deadlines"`
	Excerpt    string     `json:"excerpt,omitempty"`
}

// References carries the already-recognized case references into the
// analysis, so the extraction can be steered by known context.
type References struct {
	Internal string   `json:"internal,omitempty"`
	External []string `json:"external,omitempty"`
}

// Analyzer extracts an Analysis from document text.
type Analyzer interface {
	Analyze(ctx context.Context, text string, refs References) (*Analysis, error)
}
