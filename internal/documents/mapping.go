package documents

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rhm-kanzlei/mailroom/pkg/query"
	"github.com/rhm-kanzlei/mailroom/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("batch_id", "BatchID").
	Project("owner", "Owner").
	Project("filename", "Filename").
	Project("page_indices", "PageIndices").
	Project("text", "Text").
	Project("subject", "Subject").
	Project("excerpt", "Excerpt").
	Project("reference", "Reference").
	Project("stem", "Stem").
	Project("handler", "Handler").
	Project("provenance", "Provenance").
	Project("external_refs", "External").
	Project("client", "Client").
	Project("opponent", "Opponent").
	Project("document_date", "DocumentDate").
	Project("keywords", "Keywords").
	Project("sender_type", "SenderType").
	Project("category", "Category").
	Project("folder", "Folder").
	Project("confidence", "Confidence").
	Project("storage_key", "StorageKey").
	Project("size_bytes", "SizeBytes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Reference, Client, and Opponent use
// case-insensitive contains matching; the rest match exactly.
type Filters struct {
	Owner      *string `json:"owner,omitempty"`
	Folder     *string `json:"folder,omitempty"`
	Category   *string `json:"category,omitempty"`
	Handler    *string `json:"handler,omitempty"`
	Reference  *string `json:"reference,omitempty"`
	Client     *string `json:"client,omitempty"`
	Opponent   *string `json:"opponent,omitempty"`
	SenderType *string `json:"sender_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Owner", f.Owner).
		WhereEquals("Folder", f.Folder).
		WhereEquals("Category", f.Category).
		WhereEquals("Handler", f.Handler).
		WhereContains("Reference", f.Reference).
		WhereContains("Client", f.Client).
		WhereContains("Opponent", f.Opponent).
		WhereEquals("SenderType", f.SenderType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if o := values.Get("owner"); o != "" {
		f.Owner = &o
	}

	if fo := values.Get("folder"); fo != "" {
		f.Folder = &fo
	}

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if h := values.Get("handler"); h != "" {
		f.Handler = &h
	}

	if ref := values.Get("reference"); ref != "" {
		f.Reference = &ref
	}

	if cl := values.Get("client"); cl != "" {
		f.Client = &cl
	}

	if op := values.Get("opponent"); op != "" {
		f.Opponent = &op
	}

	if st := values.Get("sender_type"); st != "" {
		f.SenderType = &st
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	var pageIndicesRaw, externalRaw, keywordsRaw []byte

	err := s.Scan(
		&d.ID,
		&d.BatchID,
		&d.Owner,
		&d.Filename,
		&pageIndicesRaw,
		&d.Text,
		&d.Subject,
		&d.Excerpt,
		&d.Reference,
		&d.Stem,
		&d.Handler,
		&d.Provenance,
		&externalRaw,
		&d.Client,
		&d.Opponent,
		&d.DocumentDate,
		&keywordsRaw,
		&d.SenderType,
		&d.Category,
		&d.Folder,
		&d.Confidence,
		&d.StorageKey,
		&d.SizeBytes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	if err := unmarshalColumn(pageIndicesRaw, &d.PageIndices, "page_indices"); err != nil {
		return d, err
	}
	if err := unmarshalColumn(externalRaw, &d.External, "external_refs"); err != nil {
		return d, err
	}
	if err := unmarshalColumn(keywordsRaw, &d.Keywords, "keywords"); err != nil {
		return d, err
	}

	if d.External == nil {
		d.External = []string{}
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}

	return d, nil
}

func unmarshalColumn[T any](raw []byte, dest *T, column string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", column, err)
	}
	return nil
}
