package dex

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ID is the canonical lowercase alphanumeric identifier of a dex entry,
// e.g. "thunderbolt" for "Thunderbolt" or "flabebe" for "Flabébé".
type ID string

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ToID normalises a display name into an ID. Accents are folded and every
// character outside [a-z0-9] is dropped.
func ToID(name string) ID {
	folded, _, err := transform.String(foldAccents, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return ID(b.String())
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}
