// Package pages models OCR'd scan pages and classifies them as blank sheets,
// separator sheets, or content. Classification drives document segmentation;
// the page model mirrors what the OCR collaborator delivers: extracted text
// plus a geometry summary of the rendered text runs.
package pages

// Geometry summarizes the text layout of one page as reported by OCR.
type Geometry struct {
	// TextBlocks is the count of distinct text blocks on the page.
	TextBlocks int `json:"text_blocks"`
	// MaxGlyphSize is the largest glyph size (points) of any text run.
	MaxGlyphSize float64 `json:"max_glyph_size"`
	// GlyphCount is the total number of glyphs on the page.
	GlyphCount int `json:"glyph_count"`
}

// Page is one unit of scanner input: 0-based position in the batch, the
// extracted plain text, and the geometry summary. Immutable once built.
type Page struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Geometry Geometry `json:"geometry"`
}

// Tag classifies a page's role within a scanned batch.
type Tag string

const (
	// TagBlank marks an empty sheet; skipped entirely during segmentation.
	TagBlank Tag = "blank"
	// TagSeparator marks a boundary sheet between two logical documents.
	TagSeparator Tag = "separator"
	// TagContent marks a page belonging to a logical document.
	TagContent Tag = "content"
)

// Verdict is the inspection outcome for one page. Reference carries the
// internal case reference recognized on this page alone, when the page is
// content and one was found. Verdicts are ephemeral and never persisted.
type Verdict struct {
	Tag       Tag    `json:"tag"`
	Reference string `json:"reference,omitempty"`
}
