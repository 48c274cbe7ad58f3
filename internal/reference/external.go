package reference

import (
	"regexp"
	"strings"
)

// Patterns for external reference shapes found on marker lines:
// court file numbers, policy/claim numbers, and bare claim numbers.
var externalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d+\s+[A-Z]+\s+\d+/\d+\b`),
	regexp.MustCompile(`\b[A-Z]{2,}\d{6,}\b`),
	regexp.MustCompile(`\b\d{6,}\b`),
}

// collectExternal scans every line carrying an external-reference marker
// phrase and accumulates all pattern matches, deduplicated in first-seen order.
// It runs regardless of whether an internal reference was recognized.
func (r *Recognizer) collectExternal(text string) []string {
	var (
		found []string
		seen  map[string]struct{}
	)

	for _, line := range strings.Split(text, "\n") {
		if !containsAny(strings.ToLower(line), r.externalMarkers) {
			continue
		}

		for _, pattern := range externalPatterns {
			for _, match := range pattern.FindAllString(line, -1) {
				if seen == nil {
					seen = make(map[string]struct{})
				}
				if _, dup := seen[match]; dup {
					continue
				}
				seen[match] = struct{}{}
				found = append(found, match)
			}
		}
	}

	return found
}
