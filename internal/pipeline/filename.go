package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filename part limits, matching the firm's archive naming convention.
const (
	partyChars      = 30
	keywordChars    = 40
	maxKeywords     = 3
	noReferencePart = "ohne-az"
)

var (
	umlauts = strings.NewReplacer(
		"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
		"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	)
	invalidChars   = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)
	underscoreRuns = regexp.MustCompile(`_+`)

	// asciiFold strips combining marks from decomposed characters, folding
	// accents the umlaut table does not cover (é, à, ñ).
	asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Filename builds the archive filename
// [Aktenzeichen]_[Mandant]_[Gegner]_[Datum]_[Stichworte].pdf. Empty fields
// are omitted; a missing reference yields the "ohne-az" prefix.
func Filename(internal, client, opponent, date string, keywords []string) string {
	parts := []string{noReferencePart}
	if internal != "" {
		parts[0] = sanitize(internal)
	}

	if client != "" {
		parts = append(parts, truncate(sanitize(client), partyChars))
	}
	if opponent != "" {
		parts = append(parts, truncate(sanitize(opponent), partyChars))
	}
	if date != "" {
		parts = append(parts, sanitize(date))
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	sanitized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if s := sanitize(kw); s != "" {
			sanitized = append(sanitized, s)
		}
	}
	if len(sanitized) > 0 {
		parts = append(parts, truncate(strings.Join(sanitized, "_"), keywordChars))
	}

	return strings.Join(parts, "_") + ".pdf"
}

// sanitize transliterates umlauts, folds remaining accents to ASCII, and
// reduces everything else to single underscores.
func sanitize(text string) string {
	text = umlauts.Replace(text)
	if folded, _, err := transform.String(asciiFold, text); err == nil {
		text = folded
	}
	text = invalidChars.ReplaceAllString(text, "_")
	text = underscoreRuns.ReplaceAllString(text, "_")
	return strings.Trim(text, "_")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.Trim(string(r[:n]), "_")
}
