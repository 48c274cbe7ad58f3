package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rhm-kanzlei/mailroom/internal/pages"
	"github.com/rhm-kanzlei/mailroom/internal/reference"
	"github.com/rhm-kanzlei/mailroom/internal/rules"
)

const (
	EnvPipelineMode       = "MAILROOM_PIPELINE_MODE"
	EnvPipelineMarkerWord = "MAILROOM_PIPELINE_MARKER_WORD"
	EnvPipelineMarker     = "MAILROOM_PIPELINE_MARKER"
	EnvPipelineTablesFile = "MAILROOM_PIPELINE_TABLES_FILE"
)

// PipelineConfig holds the segmentation strategy and the location of the
// tunable recognition tables.
type PipelineConfig struct {
	Mode       string `toml:"mode"`
	MarkerWord string `toml:"marker_word"`
	Marker     string `toml:"marker"`
	TablesFile string `toml:"tables_file"`
}

// ParsedMode returns the validated segmentation mode. Finalize has already
// rejected unknown values.
func (c *PipelineConfig) ParsedMode() pages.Mode {
	mode, _ := pages.ParseMode(c.Mode)
	return mode
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := pages.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.TablesFile != "" {
		if _, err := os.Stat(c.TablesFile); err != nil {
			return fmt.Errorf("tables file %s: %w", c.TablesFile, err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.MarkerWord != "" {
		c.MarkerWord = overlay.MarkerWord
	}
	if overlay.Marker != "" {
		c.Marker = overlay.Marker
	}
	if overlay.TablesFile != "" {
		c.TablesFile = overlay.TablesFile
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.Mode == "" {
		c.Mode = string(pages.ModeStructural)
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvPipelineMarkerWord); v != "" {
		c.MarkerWord = v
	}
	if v := os.Getenv(EnvPipelineMarker); v != "" {
		c.Marker = v
	}
	if v := os.Getenv(EnvPipelineTablesFile); v != "" {
		c.TablesFile = v
	}
}

// Tables groups the recognition tables the pipeline tunes per deployment:
// separator heuristics, reference markers and handler codes, classification
// thresholds, and the category keyword table.
type Tables struct {
	Thresholds pages.Thresholds    `yaml:"thresholds"`
	Reference  reference.Config    `yaml:"reference"`
	Rules      rules.Thresholds    `yaml:"rules"`
	Categories rules.CategoryTable `yaml:"categories"`
}

// LoadTables returns the production defaults, overlaid with the YAML tables
// file when one is configured. Keys absent from the file keep their defaults.
func (c *PipelineConfig) LoadTables() (Tables, error) {
	tables := Tables{
		Thresholds: pages.DefaultThresholds(),
		Reference:  reference.DefaultConfig(),
		Rules:      rules.DefaultThresholds(),
		Categories: rules.DefaultCategoryTable(),
	}

	if c.TablesFile == "" {
		return tables, nil
	}

	data, err := os.ReadFile(c.TablesFile)
	if err != nil {
		return tables, fmt.Errorf("read tables file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return tables, fmt.Errorf("parse tables file: %w", err)
	}
	return tables, nil
}
