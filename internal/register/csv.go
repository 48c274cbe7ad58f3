package register

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvColumns maps accepted header names (lower-cased) to command fields.
// The register export uses German column names; English aliases are accepted
// for hand-built files.
var csvColumns = map[string]string{
	"aktenzeichen":    "stem",
	"stem":            "stem",
	"sachbearbeiter":  "handler",
	"handler":         "handler",
	"sachgebiet":      "case_type",
	"case_type":       "case_type",
	"kurzbezeichnung": "short_title",
	"kurzbez":         "short_title",
	"short_title":     "short_title",
}

// ImportSkip records one rejected import row.
type ImportSkip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int          `json:"imported"`
	Skipped  []ImportSkip `json:"skipped"`
}

// parseCSV reads a semicolon-delimited register export. The first row must be
// a header naming at least the stem and handler columns. Invalid rows are
// skipped with a reason, never failing the whole import.
func parseCSV(r io.Reader, normalizeCode func(string) string) ([]UpsertCommand, []ImportSkip, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	fields := make(map[int]string, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if field, ok := csvColumns[key]; ok {
			fields[i] = field
		}
	}
	if !hasField(fields, "stem") || !hasField(fields, "handler") {
		return nil, nil, fmt.Errorf("csv header must name stem (Aktenzeichen) and handler (Sachbearbeiter) columns")
	}

	var (
		commands []UpsertCommand
		skipped  []ImportSkip
		line     = 1
	)
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped = append(skipped, ImportSkip{Line: line, Reason: err.Error()})
			continue
		}

		var cmd UpsertCommand
		for i, value := range record {
			switch fields[i] {
			case "stem":
				cmd.Stem = value
			case "handler":
				cmd.Handler = value
			case "case_type":
				cmd.CaseType = value
			case "short_title":
				cmd.ShortTitle = value
			}
		}

		if err := cmd.normalize(normalizeCode); err != nil {
			skipped = append(skipped, ImportSkip{Line: line, Reason: err.Error()})
			continue
		}
		commands = append(commands, cmd)
	}

	return commands, skipped, nil
}

func hasField(fields map[int]string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
