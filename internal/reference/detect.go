package reference

import (
	"regexp"
	"strings"
)

// addressLines bounds how far into a document the address block is searched.
const addressLines = 30

var capitalizedWord = regexp.MustCompile(`\b[A-ZÄÖÜ][a-zäöüß]+\b`)

// DetectHandler resolves the responsible handler from salutations, title+name
// combinations, and the address block, in that priority order. It is used when
// a document's reference carries no handler code. Returns false when no known
// handler name is found.
func (r *Recognizer) DetectHandler(text string) (string, bool) {
	lower := strings.ToLower(text)

	if code, ok := r.handlerFromSalutation(lower); ok {
		return code, true
	}
	if code, ok := r.handlerFromTitle(lower); ok {
		return code, true
	}
	return r.handlerFromAddress(text)
}

func (r *Recognizer) handlerFromSalutation(lower string) (string, bool) {
	for _, n := range r.names {
		name := regexp.QuoteMeta(n.name)
		patterns := []string{
			`sehr\s+geehrte[rn]?\s+(?:herrn?|frau)\s+kolleg(?:e|in)\s+` + name,
			`sehr\s+geehrte[rn]?\s+(?:herrn?|frau)\s+` + name,
			`liebe[rn]?\s+(?:herr|frau|kolleg(?:e|in))\s+` + name,
			`guten\s+tag\s+(?:herr|frau)\s+` + name,
			`hallo\s+(?:herr|frau)\s+` + name,
		}
		for _, p := range patterns {
			if regexp.MustCompile(p).MatchString(lower) {
				return n.code, true
			}
		}
	}
	return "", false
}

func (r *Recognizer) handlerFromTitle(lower string) (string, bool) {
	for _, n := range r.names {
		name := regexp.QuoteMeta(n.name)
		for _, title := range r.titles {
			t := regexp.QuoteMeta(title)
			patterns := []string{
				t + `\s+und\s+\w+\s+` + name,
				t + `\s+` + name,
			}
			for _, p := range patterns {
				if regexp.MustCompile(p).MatchString(lower) {
					return n.code, true
				}
			}
		}
	}
	return "", false
}

// handlerFromAddress searches the leading address block for handler names,
// skipping lines that look like firm names (comma-joined or multi-name lines).
// A hit counts when the line carries a professional title, or when it sits in
// the typical recipient region (lines 5-15).
func (r *Recognizer) handlerFromAddress(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > addressLines {
		lines = lines[:addressLines]
	}

	for i, line := range lines {
		if strings.Contains(line, ",") {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(line))
		if strings.Contains(lower, " und ") || strings.Contains(line, " & ") {
			if len(capitalizedWord.FindAllString(line, -1)) >= 3 {
				continue
			}
		}

		for _, n := range r.names {
			pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(n.name) + `\b`)
			if !pattern.MatchString(lower) {
				continue
			}
			if containsAny(lower, r.titles) || (i >= 5 && i <= 15) {
				return n.code, true
			}
		}
	}

	return "", false
}
