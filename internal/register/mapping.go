package register

import (
	"net/url"

	"github.com/rhm-kanzlei/mailroom/pkg/query"
	"github.com/rhm-kanzlei/mailroom/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "register_entries", "r").
	Project("id", "ID").
	Project("stem", "Stem").
	Project("handler", "Handler").
	Project("case_type", "CaseType").
	Project("short_title", "ShortTitle").
	Project("client", "Client").
	Project("opponent", "Opponent").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field: "Stem",
}

// Filters contains optional filtering criteria for register queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Handler  *string `json:"handler,omitempty"`
	CaseType *string `json:"case_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Handler", f.Handler).
		WhereEquals("CaseType", f.CaseType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if h := values.Get("handler"); h != "" {
		f.Handler = &h
	}

	if c := values.Get("case_type"); c != "" {
		f.CaseType = &c
	}

	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry

	err := s.Scan(
		&e.ID,
		&e.Stem,
		&e.Handler,
		&e.CaseType,
		&e.ShortTitle,
		&e.Client,
		&e.Opponent,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	return e, err
}
