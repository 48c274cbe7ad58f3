package rules

import "strings"

// Category is one entry of the ordered keyword-category table. The first
// category with any keyword hit wins, so broader categories belong later.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoryTable is the static category configuration: the ordered keyword
// table, the category to folder fallback mapping, and the defaults applied
// when nothing matches.
type CategoryTable struct {
	Categories      []Category        `yaml:"categories"`
	Folders         map[string]string `yaml:"folders"`
	DefaultCategory string            `yaml:"default_category"`
	DefaultFolder   string            `yaml:"default_folder"`
}

// DefaultCategoryTable returns the production category configuration.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		Categories: []Category{
			{Name: "Rechnung", Keywords: []string{
				"rechnung", "invoice", "zahlungsziel", "fällig bis", "rechnungsnummer",
				"rechnungsbetrag", "nettobetrag", "bruttobetrag", "zahlbar bis",
			}},
			{Name: "Versicherung", Keywords: []string{
				"versicherung", "police", "versicherungsnummer", "versicherungsschein",
				"beitrag", "prämie", "deckung", "schadensfall",
			}},
			{Name: "Vertrag", Keywords: []string{
				"vertrag", "vereinbarung", "unterzeichnung", "vertragspartner",
				"laufzeit", "kündigung", "kündigungsfrist",
			}},
			{Name: "Darlehen", Keywords: []string{
				"darlehen", "kredit", "tilgung", "darlehensnummer", "zinsen",
				"annuität", "restschuld", "sondertilgung",
			}},
			{Name: "Kontoauszug", Keywords: []string{
				"kontoauszug", "buchungen", "saldo", "habenumsatz", "sollumsatz",
				"kontostand", "kontobewegung",
			}},
			{Name: "Lohnabrechnung", Keywords: []string{
				"lohnabrechnung", "gehaltsabrechnung", "bruttolohn",
				"sozialversicherung", "lohnsteuer", "entgeltabrechnung",
			}},
			{Name: "Steuerbescheid", Keywords: []string{
				"steuerbescheid", "einkommenssteuer", "finanzamt", "steuernummer",
				"veranlagung", "steuererstattung", "nachzahlung",
			}},
			{Name: "Rentenbescheid", Keywords: []string{
				"rentenbescheid", "altersrente", "rentenanspruch",
				"renteninformation", "deutsche rentenversicherung",
			}},
			{Name: "Mahnung", Keywords: []string{
				"mahnung", "zahlungserinnerung", "überfällig", "mahngebühr",
				"letzte mahnung", "inkasso",
			}},
			{Name: "Bescheid", Keywords: []string{
				"bescheid", "behörde", "amt", "antrag", "genehmigung",
			}},
		},
		Folders: map[string]string{
			"Rechnung":       "Rechnungen",
			"Mahnung":        "Rechnungen/Mahnungen",
			"Vertrag":        "Verträge",
			"Versicherung":   "Versicherungen",
			"Kontoauszug":    "Finanzen/Kontoauszüge",
			"Lohnabrechnung": "Finanzen/Gehalt",
			"Darlehen":       "Darlehen",
			"Steuerbescheid": "Steuern",
			"Rentenbescheid": "Rentenbescheide",
			"Bescheid":       "Behörden",
		},
		DefaultCategory: "Sonstiges",
		DefaultFolder:   "Posteingang",
	}
}

// ResolveCategory prefers a caller-supplied hint, then scans the text against
// the ordered keyword table, then falls back to the default category.
func (t CategoryTable) ResolveCategory(p DocumentProfile) string {
	if c := t.MatchCategory(p); c != "" {
		return c
	}
	return t.DefaultCategory
}

// MatchCategory is ResolveCategory without the default: empty when neither a
// hint nor the keyword table matched. Learned rules store this form so the
// category tag stays optional and an untagged rule is not scored against the
// category dimension.
func (t CategoryTable) MatchCategory(p DocumentProfile) string {
	for _, hint := range p.CategoryHints {
		if hint != "" {
			return hint
		}
	}

	text := strings.ToLower(p.Text)
	for _, c := range t.Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				return c.Name
			}
		}
	}
	return ""
}

// FallbackFolder maps a category to its static destination folder.
func (t CategoryTable) FallbackFolder(category string) string {
	if folder, ok := t.Folders[category]; ok {
		return folder
	}
	return t.DefaultFolder
}
