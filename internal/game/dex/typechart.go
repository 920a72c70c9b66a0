package dex

// Damage-taken codes, keyed by defender type then by attacking type (or
// by a status / weather id for non-type immunities).
const (
	takenNeutral = 0
	takenWeak    = 1
	takenResist  = 2
	takenImmune  = 3
)

// TypelessType is used for damage that has no type, such as Struggle.
const TypelessType = "???"

// TypeChart answers type matchup questions.
type TypeChart struct {
	damageTaken map[string]map[string]int
}

// NewTypeChart wraps a damage-taken table.
func NewTypeChart(damageTaken map[string]map[string]int) *TypeChart {
	return &TypeChart{damageTaken: damageTaken}
}

// Has reports whether typ is a known type.
func (tc *TypeChart) Has(typ string) bool {
	_, ok := tc.damageTaken[typ]
	return ok
}

// Types returns every known type name.
func (tc *TypeChart) Types() []string {
	out := make([]string, 0, len(tc.damageTaken))
	for t := range tc.damageTaken {
		out = append(out, t)
	}
	return out
}

// Effectiveness returns the number of effectiveness steps attack has
// against the combined defender types: +1 per weakness, -1 per resistance.
// Immunities are not counted; check Immune first.
func (tc *TypeChart) Effectiveness(attack string, defender []string) int {
	total := 0
	for _, def := range defender {
		switch tc.damageTaken[def][attack] {
		case takenWeak:
			total++
		case takenResist:
			total--
		}
	}
	return total
}

// Immune reports whether any defender type is immune to source, which is
// either an attacking type or a status/weather id such as "brn" or
// "sandstorm".
func (tc *TypeChart) Immune(source string, defender []string) bool {
	for _, def := range defender {
		if tc.damageTaken[def][source] == takenImmune {
			return true
		}
	}
	return false
}
