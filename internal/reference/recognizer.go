package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// stemPattern matches a case stem: 1-5 digits, a slash, 2 digits.
	stemPattern = regexp.MustCompile(`\b\d{1,5}/\d{2}`)
	// boundedStemPattern additionally requires the stem to end at a word
	// boundary, used when scanning whole documents for bare stems.
	boundedStemPattern = regexp.MustCompile(`\b\d{1,5}/\d{2}\b`)
)

// suffixWindow bounds how far after a stem the handler code is searched for.
const suffixWindow = 20

// Recognizer extracts internal and external case references from text.
// It is stateless apart from its compiled tables and safe for concurrent use.
// A nil register is tolerated; register-backed rules then never match.
type Recognizer struct {
	codes           []string // upper-cased, longest first
	aliases         map[string]string
	fieldMarkers    []string
	externalMarkers []string
	names           []handlerName
	titles          []string
	register        Register
}

type handlerName struct {
	name string
	code string
}

type internalHit struct {
	stem string
	code string
}

// New builds a Recognizer from the given tables. The register may be nil.
func New(cfg Config, register Register) (*Recognizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("reference config: %w", err)
	}

	codes := make([]string, len(cfg.Codes))
	for i, c := range cfg.Codes {
		codes[i] = strings.ToUpper(c)
	}
	// Longer codes first so "MQ" wins over its prefix "M".
	sort.SliceStable(codes, func(i, j int) bool {
		return len([]rune(codes[i])) > len([]rune(codes[j]))
	})

	aliases := make(map[string]string, len(cfg.Aliases))
	for k, v := range cfg.Aliases {
		aliases[strings.ToUpper(k)] = strings.ToUpper(v)
	}

	names := make([]handlerName, 0, len(cfg.HandlerNames))
	for name, code := range cfg.HandlerNames {
		names = append(names, handlerName{
			name: strings.ToLower(name),
			code: strings.ToUpper(code),
		})
	}
	sort.SliceStable(names, func(i, j int) bool {
		return len([]rune(names[i].name)) > len([]rune(names[j].name))
	})

	return &Recognizer{
		codes:           codes,
		aliases:         aliases,
		fieldMarkers:    lowerAll(cfg.FieldMarkers),
		externalMarkers: lowerAll(cfg.ExternalMarkers),
		names:           names,
		titles:          lowerAll(cfg.TitleWords),
		register:        register,
	}, nil
}

// Recognize applies the prioritized extraction chain to the text and collects
// external references. It never fails; unparseable input yields an empty Result.
func (r *Recognizer) Recognize(text string) Result {
	res := Result{External: r.collectExternal(text)}

	if hit := r.searchFieldLines(text); hit != nil {
		res.apply(hit, ProvenanceField)
		return res
	}
	if hit := r.searchFullPattern(text); hit != nil {
		res.apply(hit, ProvenancePattern)
		return res
	}
	if hit := r.searchStemRegister(text); hit != nil {
		res.apply(hit, ProvenanceRegister)
		return res
	}

	return res
}

// NormalizeCode maps a handler code through the alias table to its canonical
// spelling. Already-canonical codes pass through unchanged.
func (r *Recognizer) NormalizeCode(code string) string {
	code = strings.ToUpper(code)
	if canonical, ok := r.aliases[code]; ok {
		return canonical
	}
	return code
}

func (res *Result) apply(hit *internalHit, p Provenance) {
	res.Stem = hit.stem
	res.Code = hit.code
	res.Internal = hit.stem + hit.code
	res.Provenance = p
}

// searchFieldLines implements the highest-priority rule: a stem found on a
// line carrying a reference-field marker phrase. The following line is
// appended before matching to tolerate OCR line wrap. A stem without an
// adjacent code falls back to the register.
func (r *Recognizer) searchFieldLines(text string) *internalHit {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if !containsAny(strings.ToLower(line), r.fieldMarkers) {
			continue
		}

		scope := line
		if i+1 < len(lines) {
			scope += " " + lines[i+1]
		}

		loc := stemPattern.FindStringIndex(scope)
		if loc == nil {
			continue
		}
		stem := scope[loc[0]:loc[1]]

		suffix := scope[loc[1]:]
		if len(suffix) > suffixWindow {
			suffix = suffix[:suffixWindow]
		}

		if code, ok := r.codeNearStart(suffix); ok {
			return &internalHit{stem: stem, code: r.NormalizeCode(code)}
		}

		if code, ok := r.lookupRegister(stem); ok {
			return &internalHit{stem: stem, code: code}
		}
	}

	return nil
}

// searchFullPattern looks for a stem immediately followed by a known handler
// code anywhere in the text, taking the first match.
func (r *Recognizer) searchFullPattern(text string) *internalHit {
	for _, loc := range stemPattern.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		code, ok := r.codeAt(rest)
		if !ok {
			continue
		}
		return &internalHit{
			stem: text[loc[0]:loc[1]],
			code: r.NormalizeCode(code),
		}
	}
	return nil
}

// searchStemRegister resolves bare stems through the case register, in order
// of appearance.
func (r *Recognizer) searchStemRegister(text string) *internalHit {
	for _, stem := range boundedStemPattern.FindAllString(text, -1) {
		if code, ok := r.lookupRegister(stem); ok {
			return &internalHit{stem: stem, code: code}
		}
	}
	return nil
}

func (r *Recognizer) lookupRegister(stem string) (string, bool) {
	if r.register == nil {
		return "", false
	}
	code, ok := r.register.LookupCode(stem)
	if !ok {
		return "", false
	}
	return r.NormalizeCode(code), true
}

// codeAt reports a known code at the very start of s, requiring the code to
// end at a letter/digit boundary so "151/25M" matches but "151/25Mai" does not.
func (r *Recognizer) codeAt(s string) (string, bool) {
	upper := strings.ToUpper(s)
	for _, code := range r.codes {
		if !strings.HasPrefix(upper, code) {
			continue
		}
		if isWordRune(firstRune(upper[len(code):])) {
			continue
		}
		return code, true
	}
	return "", false
}

// codeNearStart finds a known code within the first two characters of the
// stem suffix, tolerating a stray OCR character between stem and code.
func (r *Recognizer) codeNearStart(suffix string) (string, bool) {
	window := firstRunes(strings.ToUpper(suffix), 5)
	for _, code := range r.codes {
		idx := strings.Index(window, code)
		if idx < 0 {
			continue
		}
		if runeOffset(window, idx) <= 2 {
			return code, true
		}
	}
	return "", false
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

func runeOffset(s string, byteIdx int) int {
	return len([]rune(s[:byteIdx]))
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == 'Ä' || r == 'Ö' || r == 'Ü' || r == 'ä' || r == 'ö' || r == 'ü' || r == 'ß':
		return true
	}
	return false
}
