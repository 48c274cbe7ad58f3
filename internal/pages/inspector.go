package pages

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/rhm-kanzlei/mailroom/internal/reference"
)

// Thresholds holds the structural separator heuristics. The defaults are
// empirically tuned against the firm's scan corpus; treat them as
// configuration, not hard truths.
type Thresholds struct {
	// OversizeGlyph: any run above this size marks a separator outright.
	OversizeGlyph float64 `yaml:"oversize_glyph"`
	// LargeGlyph: big-marker criterion lower bound for near-empty sheets.
	LargeGlyph float64 `yaml:"large_glyph"`
	// MarkerBlocks: maximum text blocks for the big-marker criterion.
	MarkerBlocks int `yaml:"marker_blocks"`
	// MarkerGlyphs: maximum glyph count for the big-marker criterion.
	MarkerGlyphs int `yaml:"marker_glyphs"`
	// StrippedChars: a page reducing to this many non-space characters
	// or fewer is a separator.
	StrippedChars int `yaml:"stripped_chars"`
	// DominanceChars: maximum stripped length for the marker-dominance
	// criterion (at least half the characters must be the marker letter).
	DominanceChars int `yaml:"dominance_chars"`
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OversizeGlyph:  100,
		LargeGlyph:     50,
		MarkerBlocks:   3,
		MarkerGlyphs:   20,
		StrippedChars:  5,
		DominanceChars: 10,
	}
}

// blankRawLimit: alphanumeric-free pages up to this many raw characters are
// blank (tolerates a couple of stray OCR artifacts on an empty sheet).
const blankRawLimit = 3

// Inspector classifies pages. It is pure and deterministic; one instance per
// batch is constructed with the batch's mode and shared tables.
type Inspector struct {
	mode        Mode
	markerWord  string
	marker      string
	thresholds  Thresholds
	recognizer  *reference.Recognizer
}

// NewInspector builds an Inspector. markerWord is the keyword-mode literal,
// marker the one-letter structural marker. The recognizer fills per-page
// references on content verdicts and may be nil if callers never need them.
func NewInspector(
	mode Mode,
	markerWord string,
	marker string,
	thresholds Thresholds,
	recognizer *reference.Recognizer,
) (*Inspector, error) {
	if markerWord == "" {
		markerWord = "trennseite"
	}
	if marker == "" {
		marker = "T"
	}
	if len([]rune(marker)) != 1 {
		return nil, fmt.Errorf("separator marker must be a single letter, got %q", marker)
	}

	return &Inspector{
		mode:        mode,
		markerWord:  strings.ToLower(markerWord),
		marker:      strings.ToUpper(marker),
		thresholds:  thresholds,
		recognizer:  recognizer,
	}, nil
}

// Classify inspects one page. The blank test runs first and short-circuits;
// anything neither blank nor separator is content. An error indicates
// malformed geometry data -- callers treat such pages as blank and record a
// diagnostic rather than aborting the batch.
func (in *Inspector) Classify(page Page) (Verdict, error) {
	if err := validateGeometry(page.Geometry); err != nil {
		return Verdict{}, err
	}

	if in.isBlank(page.Text) {
		return Verdict{Tag: TagBlank}, nil
	}
	if in.isSeparator(page) {
		return Verdict{Tag: TagSeparator}, nil
	}

	verdict := Verdict{Tag: TagContent}
	if in.recognizer != nil {
		verdict.Reference = in.recognizer.Recognize(page.Text).Internal
	}
	return verdict, nil
}

func validateGeometry(g Geometry) error {
	if g.TextBlocks < 0 || g.GlyphCount < 0 {
		return fmt.Errorf("negative geometry counts (blocks=%d glyphs=%d)", g.TextBlocks, g.GlyphCount)
	}
	if math.IsNaN(g.MaxGlyphSize) || g.MaxGlyphSize < 0 {
		return fmt.Errorf("invalid max glyph size %v", g.MaxGlyphSize)
	}
	return nil
}

// isBlank: no extracted characters at all, or nothing alphanumeric on a page
// of at most blankRawLimit raw characters. Short but meaningful pages (a
// one-line cover note) are never blank.
func (in *Inspector) isBlank(text string) bool {
	if len(text) == 0 {
		return true
	}
	return stripNonAlnum(text) == "" && len([]rune(text)) <= blankRawLimit
}

func (in *Inspector) isSeparator(page Page) bool {
	switch in.mode {
	case ModeKeyword:
		return strings.Contains(strings.ToLower(page.Text), in.markerWord)
	case ModeStructural:
		return in.isStructuralSeparator(page)
	case ModeReference:
		// Boundaries come from reference changes during segmentation.
		return false
	}
	return false
}

// isStructuralSeparator evaluates the ordered criteria; the first hit wins.
func (in *Inspector) isStructuralSeparator(page Page) bool {
	t := in.thresholds

	// (a) oversized single-character marker sheet
	if page.Geometry.MaxGlyphSize > t.OversizeGlyph {
		return true
	}

	// (b) mostly-blank sheet with one big marker
	if page.Geometry.TextBlocks <= t.MarkerBlocks &&
		page.Geometry.MaxGlyphSize > t.LargeGlyph &&
		page.Geometry.GlyphCount < t.MarkerGlyphs {
		return true
	}

	stripped := stripSpace(page.Text)
	runes := []rune(strings.ToUpper(stripped))

	// (c) almost nothing left after removing whitespace
	if len(runes) <= t.StrippedChars {
		return true
	}

	// (d) exactly one accepted marker spelling
	if in.isMarkerSpelling(string(runes)) {
		return true
	}

	// (e) short text dominated by the marker letter
	if len(runes) <= t.DominanceChars {
		count := 0
		for _, r := range runes {
			if string(r) == in.marker {
				count++
			}
		}
		if count*2 >= len(runes) {
			return true
		}
	}

	// (f) a single non-empty line that is the bare marker
	lines := nonEmptyLines(page.Text)
	if len(lines) == 1 && in.isMarkerSpelling(strings.ToUpper(lines[0])) {
		return true
	}

	return false
}

// isMarkerSpelling accepts the bare marker letter, optionally with a trailing
// period or colon.
func (in *Inspector) isMarkerSpelling(s string) bool {
	return s == in.marker || s == in.marker+"." || s == in.marker+":"
}

func stripNonAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
