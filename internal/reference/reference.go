// Package reference implements case-reference recognition over OCR text.
// It extracts the internal file reference (stem + handler code, e.g. "151/25M"),
// collects external references (court file numbers, policy and claim numbers),
// and resolves bare stems against the case register.
package reference

// Provenance identifies which extraction rule produced an internal reference.
type Provenance string

// Provenance values, ordered by extraction priority.
const (
	// ProvenanceNone means no internal reference was recognized.
	ProvenanceNone Provenance = ""
	// ProvenanceField means the reference came from a "Your reference /
	// our reference" field line.
	ProvenanceField Provenance = "field"
	// ProvenancePattern means the reference matched the full stem+code
	// pattern somewhere in the text.
	ProvenancePattern Provenance = "pattern"
	// ProvenanceRegister means a bare stem was resolved through the
	// case register.
	ProvenanceRegister Provenance = "register"
)

// Result is the outcome of recognizing references in one document's text.
// Internal is empty when no internal reference was found; External is a
// deduplicated list in first-seen order.
type Result struct {
	Internal   string     `json:"internal,omitempty"`
	Stem       string     `json:"stem,omitempty"`
	Code       string     `json:"code,omitempty"`
	External   []string   `json:"external,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
}

// Recognized reports whether an internal reference was found.
func (r *Result) Recognized() bool {
	return r.Internal != ""
}

// Register is the read-only case register consulted for bare stems.
// Implementations must treat missing stems as a normal miss, not an error.
type Register interface {
	// LookupCode returns the handler code registered for a stem.
	LookupCode(stem string) (string, bool)
}
