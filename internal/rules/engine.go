package rules

import (
	"regexp"
	"sort"
	"strings"
)

// Scoring weights. Only dimensions a rule actually specifies count toward the
// achievable maximum, so an under-specified rule can still score 1.0 on the
// dimensions it has -- and a rule specifying nothing scores 0.
const (
	senderWeight     = 1.0
	letterheadWeight = 0.8
	keywordWeight    = 1.0
	categoryWeight   = 0.5

	// letterheadChars bounds the region searched for the sender pattern
	// when no explicit sender field is available.
	letterheadChars = 500
)

// Thresholds holds the tunable engine constants.
type Thresholds struct {
	// Accept: minimum rule score for a folder suggestion.
	Accept float64 `yaml:"accept"`
	// Display: minimum rule score for listing an alternative.
	Display float64 `yaml:"display"`
	// Fallback: confidence assigned to category-table fallback suggestions.
	Fallback float64 `yaml:"fallback"`
	// Initial: confidence of a freshly learned rule.
	Initial float64 `yaml:"initial"`
	// Step: confidence increment per repeated correction.
	Step float64 `yaml:"step"`
	// Cap: maximum learnable confidence.
	Cap float64 `yaml:"cap"`
	// MaxKeywords: subject keywords captured per correction.
	MaxKeywords int `yaml:"max_keywords"`
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Accept:      0.4,
		Display:     0.25,
		Fallback:    0.3,
		Initial:     0.5,
		Step:        0.1,
		Cap:         0.99,
		MaxKeywords: 5,
	}
}

// keywordWord matches candidate subject keywords: runs of 4+ letters.
var keywordWord = regexp.MustCompile(`[A-Za-zÄÖÜäöüß]{4,}`)

// score rates one rule against a document. The result is earned weight over
// achievable weight, always in [0,1].
func score(rule Rule, p DocumentProfile) float64 {
	var earned, possible float64
	text := strings.ToLower(p.Text)

	if rule.Sender != "" {
		possible += senderWeight
		sender := strings.ToLower(rule.Sender)
		switch {
		case p.Sender != "" && strings.Contains(strings.ToLower(p.Sender), sender):
			earned += senderWeight
		case strings.Contains(letterhead(text), sender):
			earned += letterheadWeight
		}
	}

	if len(rule.Keywords) > 0 {
		possible += keywordWeight
		found := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				found++
			}
		}
		earned += keywordWeight * float64(found) / float64(len(rule.Keywords))
	}

	if rule.Category != "" {
		possible += categoryWeight
		for _, hint := range p.CategoryHints {
			if strings.EqualFold(hint, rule.Category) {
				earned += categoryWeight
				break
			}
		}
	}

	if possible == 0 {
		return 0
	}
	return earned / possible
}

func letterhead(lowerText string) string {
	runes := []rune(lowerText)
	if len(runes) > letterheadChars {
		runes = runes[:letterheadChars]
	}
	return string(runes)
}

// bestRule scores all rules and returns the winner with its score. Ties keep
// the earlier rule; callers pass rules sorted by descending confidence.
func bestRule(rules []Rule, p DocumentProfile) (*Rule, float64) {
	var (
		best      *Rule
		bestScore float64
	)
	for i := range rules {
		if s := score(rules[i], p); s > bestScore {
			best = &rules[i]
			bestScore = s
		}
	}
	return best, bestScore
}

// rankRules returns rules scoring at or above the display threshold, ordered
// by descending score, deduplicated by target folder (best score kept).
func rankRules(rules []Rule, p DocumentProfile, display float64) []Suggestion {
	byFolder := make(map[string]Suggestion)
	for i := range rules {
		s := score(rules[i], p)
		if s < display {
			continue
		}
		current, seen := byFolder[rules[i].TargetFolder]
		if !seen || s > current.Confidence {
			byFolder[rules[i].TargetFolder] = Suggestion{
				Folder:     rules[i].TargetFolder,
				Confidence: s,
				RuleID:     rules[i].ID,
			}
		}
	}

	ranked := make([]Suggestion, 0, len(byFolder))
	for _, s := range byFolder {
		ranked = append(ranked, s)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// extractKeywords captures the first max subject words of 4+ letters,
// lower-cased, preserving order and skipping duplicates.
func extractKeywords(subject string, max int) []string {
	var (
		keywords []string
		seen     = make(map[string]struct{})
	)
	for _, word := range keywordWord.FindAllString(subject, -1) {
		if len(keywords) == max {
			break
		}
		kw := strings.ToLower(word)
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}
	return keywords
}

// unionKeywords merges observed keywords into existing ones, keeping existing
// order and appending new entries in observation order.
func unionKeywords(existing, observed []string) []string {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]string, 0, len(existing)+len(observed))
	for _, kw := range existing {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		merged = append(merged, kw)
	}
	for _, kw := range observed {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		merged = append(merged, kw)
	}
	return merged
}
