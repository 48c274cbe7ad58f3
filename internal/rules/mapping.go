package rules

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rhm-kanzlei/mailroom/pkg/query"
	"github.com/rhm-kanzlei/mailroom/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classification_rules", "r").
	Project("id", "ID").
	Project("owner", "Owner").
	Project("sender", "Sender").
	Project("category", "Category").
	Project("keywords", "Keywords").
	Project("target_folder", "TargetFolder").
	Project("confidence", "Confidence").
	Project("times_applied", "TimesApplied").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "Confidence",
	Descending: true,
}

// Filters contains optional filtering criteria for rule queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Owner        *string `json:"owner,omitempty"`
	TargetFolder *string `json:"target_folder,omitempty"`
	Category     *string `json:"category,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Owner", f.Owner).
		WhereEquals("TargetFolder", f.TargetFolder).
		WhereEquals("Category", f.Category)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if o := values.Get("owner"); o != "" {
		f.Owner = &o
	}

	if t := values.Get("target_folder"); t != "" {
		f.TargetFolder = &t
	}

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	return f
}

func scanRule(s repository.Scanner) (Rule, error) {
	var r Rule
	var keywordsRaw []byte

	err := s.Scan(
		&r.ID,
		&r.Owner,
		&r.Sender,
		&r.Category,
		&keywordsRaw,
		&r.TargetFolder,
		&r.Confidence,
		&r.TimesApplied,
		&r.CreatedAt,
		&r.UpdatedAt,
	)

	if err != nil {
		return r, err
	}

	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &r.Keywords); err != nil {
			return r, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}

	if r.Keywords == nil {
		r.Keywords = []string{}
	}

	return r, nil
}
