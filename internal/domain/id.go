package domain

import "strings"

// CanonicalID is the 7-digit IBGE municipal identifier: a zero-padded 2-digit
// state code followed by a zero-padded 5-digit municipality code.
type CanonicalID string

// NullID marks a row whose identifier could not be constructed. Null-keyed
// rows are kept in their own table but excluded from joins and merges.
const NullID CanonicalID = ""

const (
	stateWidth        = 2
	municipalityWidth = 5
	canonicalWidth    = stateWidth + municipalityWidth
)

// MakeCanonicalID builds a CanonicalID from raw state and municipality code
// strings. Both inputs are cleaned of numeric-export artifacts (a trailing
// ".0" and any non-digit characters) before zero-padding. If either component
// is empty after cleaning, the result is NullID; construction never fails
// fatally. The same function keys the registry, population, and geometry
// inputs so join keys match byte for byte.
func MakeCanonicalID(stateRaw, municipalityRaw string) CanonicalID {
	state := cleanCode(stateRaw)
	municipality := cleanCode(municipalityRaw)
	if state == "" || municipality == "" {
		return NullID
	}
	return CanonicalID(zfill(state, stateWidth) + zfill(municipality, municipalityWidth))
}

// NormalizeCanonicalID cleans an already-composed 7-digit code string, e.g.
// the CD_MUN attribute of a geometry source ("1100015.0" → "1100015").
func NormalizeCanonicalID(raw string) CanonicalID {
	code := cleanCode(raw)
	if code == "" {
		return NullID
	}
	return CanonicalID(zfill(code, canonicalWidth))
}

// IsNull reports whether the identifier failed to construct.
func (id CanonicalID) IsNull() bool { return id == NullID }

// StateCode returns the 2-digit state component, or "" for a null ID.
// It is the grouping key for the state-boundary dissolve.
func (id CanonicalID) StateCode() string {
	if id.IsNull() {
		return ""
	}
	return string(id)[:stateWidth]
}

// MunicipalityCode returns the 5-digit municipality component, or "" for a null ID.
func (id CanonicalID) MunicipalityCode() string {
	if id.IsNull() {
		return ""
	}
	return string(id)[stateWidth:]
}

// cleanCode strips a trailing ".0" export artifact and any remaining
// non-digit characters.
func cleanCode(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, ".0")

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// zfill left-pads s with '0' to the given width.
func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
