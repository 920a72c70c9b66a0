package rules

import "sort"

// GameType is the battle layout.
type GameType string

const (
	GameTypeSingles GameType = "singles"
	GameTypeDoubles GameType = "doubles"
)

// ActivePerSide returns how many combatants each side fields at once.
func (g GameType) ActivePerSide() int {
	if g == GameTypeDoubles {
		return 2
	}
	return 1
}

// Well-known clauses.
const (
	ClauseSleep         = "sleepclausemod"
	ClauseSpecies       = "speciesclause"
	ClauseExactHP       = "exacthpmod"
	ClauseEndlessBattle = "endlessbattleclause"
	ClauseLinkedMoves   = "linkedmoves"
	ClauseBestOffensive = "bestoffensivestat"
	ClauseSkillDamage   = "skilldamage"
	ClausePoweredUp     = "poweredup"
)

// RuleTable is the read-only view of the rules in effect for a battle.
type RuleTable struct {
	gen      int
	gameType GameType
	teamSize int
	clauses  map[string]bool
}

// NewRuleTable creates a rule table.
func NewRuleTable(gen int, gameType GameType, teamSize int, clauses []string) *RuleTable {
	rt := &RuleTable{
		gen:      gen,
		gameType: gameType,
		teamSize: teamSize,
		clauses:  make(map[string]bool, len(clauses)),
	}
	for _, c := range clauses {
		rt.clauses[c] = true
	}
	return rt
}

// Has reports whether clause is in effect.
func (rt *RuleTable) Has(clause string) bool {
	return rt.clauses[clause]
}

// Generation returns the rule generation.
func (rt *RuleTable) Generation() int {
	return rt.gen
}

// GameType returns the battle layout.
func (rt *RuleTable) GameType() GameType {
	return rt.gameType
}

// TeamSize returns the minimum roster size each side must bring.
func (rt *RuleTable) TeamSize() int {
	return rt.teamSize
}

// Clauses returns every clause in effect, sorted.
func (rt *RuleTable) Clauses() []string {
	out := make([]string, 0, len(rt.clauses))
	for c := range rt.clauses {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
