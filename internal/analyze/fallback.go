package analyze

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// excerptChars bounds the stored text excerpt.
const excerptChars = 200

var (
	datePattern       = regexp.MustCompile(`\b(\d{1,2}\.\d{1,2}\.\d{4})\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// keywordCandidates are the fixed content keywords the fallback scans for.
var keywordCandidates = []string{"Mahnung", "Klage", "Beschluss", "Urteil", "Frist", "Zahlung"}

// Fallback is the deterministic regex-based analyzer used when no AI backend
// is configured or the backend fails. It never returns an error.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

func (f *Fallback) Analyze(ctx context.Context, text string, refs References) (*Analysis, error) {
	a := &Analysis{
		Keywords:   []string{},
		SenderType: "Sonstige",
		Deadlines:  []Deadline{},
		Excerpt:    Excerpt(text),
	}

	if m := datePattern.FindString(text); m != "" {
		if parsed, err := time.Parse("2.1.2006", m); err == nil {
			a.Date = parsed.Format("2006-01-02")
		}
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "gericht"):
		a.SenderType = "Gericht"
	case strings.Contains(lower, "versicherung"):
		a.SenderType = "Versicherung"
	case strings.Contains(lower, "behörde") || strings.Contains(lower, "amt"):
		a.SenderType = "Behoerde"
	}

	for _, kw := range keywordCandidates {
		if strings.Contains(lower, strings.ToLower(kw)) {
			a.Keywords = append(a.Keywords, kw)
		}
	}

	return a, nil
}

// Excerpt collapses whitespace and truncates to a short preview.
func Excerpt(text string) string {
	clean := strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	runes := []rune(clean)
	if len(runes) <= excerptChars {
		return clean
	}
	return string(runes[:excerptChars]) + "..."
}
