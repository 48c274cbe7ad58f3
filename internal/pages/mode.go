package pages

import "fmt"

// Mode selects the separator-detection strategy. Exactly one strategy is
// active per run; strategies are never combined.
type Mode string

const (
	// ModeKeyword flags pages containing the configured marker word.
	ModeKeyword Mode = "keyword"
	// ModeStructural flags pages by layout heuristics (oversized marker
	// glyphs on near-empty sheets). Default: survives bad OCR confidence
	// on separator sheets.
	ModeStructural Mode = "structural"
	// ModeReference never flags separators here; boundaries are derived
	// from reference changes during segmentation instead.
	ModeReference Mode = "reference"
)

// ParseMode validates a configured mode string. Unknown modes are a setup
// defect and fail pipeline construction.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeKeyword, ModeStructural, ModeReference:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown segmentation mode %q", s)
}
