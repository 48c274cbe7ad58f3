package config

import (
	"os"

	"github.com/rhm-kanzlei/mailroom/internal/analyze"
)

const (
	EnvAnalyzerAPIKey  = "MAILROOM_OPENAI_API_KEY"
	EnvAnalyzerModel   = "MAILROOM_OPENAI_MODEL"
	EnvAnalyzerBaseURL = "MAILROOM_OPENAI_BASE_URL"
)

// FinalizeAnalyzer applies environment variable overrides to the AI analyzer
// config. An absent API key is valid; the analyzer then runs heuristics only.
func FinalizeAnalyzer(c *analyze.Config) {
	if v := os.Getenv(EnvAnalyzerAPIKey); v != "" {
		c.APIKey = v
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv(EnvAnalyzerModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvAnalyzerBaseURL); v != "" {
		c.BaseURL = v
	}
}

// MergeAnalyzer overwrites non-zero fields from overlay.
func MergeAnalyzer(c, overlay *analyze.Config) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
}
