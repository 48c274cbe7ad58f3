package reference

import "fmt"

// Config holds the recognition tables: known handler codes, the alias map
// collapsing near-duplicate spellings, and the marker phrases that introduce
// reference fields. All tables are matched case-insensitively.
type Config struct {
	// Codes lists the known handler codes. Order does not matter; matching
	// always tries longer codes before their prefixes.
	Codes []string `yaml:"codes"`
	// Aliases maps alternate spellings to the canonical handler code.
	Aliases map[string]string `yaml:"aliases"`
	// FieldMarkers are phrases marking an internal-reference field line.
	FieldMarkers []string `yaml:"field_markers"`
	// ExternalMarkers are phrases marking an external-reference line.
	ExternalMarkers []string `yaml:"external_markers"`
	// HandlerNames maps handler name variants (salutations, address lines)
	// to handler codes, for documents whose reference carries no code.
	HandlerNames map[string]string `yaml:"handler_names"`
	// TitleWords are professional titles preceding handler names.
	TitleWords []string `yaml:"title_words"`
}

// DefaultConfig returns the firm's production tables.
func DefaultConfig() Config {
	return Config{
		Codes: []string{"MQ", "SQ", "TS", "CV", "FÜ", "FU", "M"},
		Aliases: map[string]string{
			"MQ": "M",
			"FU": "FÜ",
		},
		FieldMarkers: []string{
			"ihr zeichen",
			"unser zeichen",
			"ihr az",
			"ihr az.",
			"ihr aktenzeichen",
			"dortiges aktenzeichen",
			"verwendungszweck",
		},
		ExternalMarkers: []string{
			"aktenzeichen beim",
			"az.",
			"schadennummer",
			"schaden-nr",
			"versicherungsnummer",
			"kundennummer",
		},
		HandlerNames: map[string]string{
			"meier":                    "SQ",
			"sven-bryde":               "SQ",
			"sven-bryde meier":         "SQ",
			"meyer":                    "TS",
			"tamara":                   "TS",
			"tamara meyer":             "TS",
			"marquardsen":              "M",
			"ann-kathrin":              "M",
			"ann-kathrin marquardsen":  "M",
			"fürsen":                   "FÜ",
			"fuersen":                  "FÜ",
			"ernst joachim fürsen":     "FÜ",
			"ernst-joachim fürsen":     "FÜ",
			"ostertun":                 "CV",
			"christian ostertun":       "CV",
			"vollbrecht":               "CV",
		},
		TitleWords: []string{
			"rechtsanwalt", "rechtsanwältin", "ra", "rae",
			"notar", "notar a.d.",
			"fachanwalt", "fachanwältin",
			"dr.", "dr",
		},
	}
}

func (c *Config) validate() error {
	if len(c.Codes) == 0 {
		return fmt.Errorf("at least one handler code is required")
	}
	if len(c.FieldMarkers) == 0 {
		return fmt.Errorf("at least one field marker phrase is required")
	}
	return nil
}
