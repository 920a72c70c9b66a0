package mods

import (
	"fmt"
	"sort"

	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = "gen7singles"

var standardClauses = []string{
	rules.ClauseSleep,
	rules.ClauseSpecies,
	rules.ClauseExactHP,
	rules.ClauseEndlessBattle,
}

func withClauses(extra ...string) []string {
	return append(append([]string(nil), standardClauses...), extra...)
}

type formatSpec struct {
	name       string
	gen        int
	gameType   rules.GameType
	teamSize   int
	rules      []string
	library    func() *Library
	strategies battle.Strategies
}

var formats = map[string]formatSpec{
	"gen7singles": {
		name:     "[Gen 7] Singles",
		gen:      7,
		gameType: rules.GameTypeSingles,
		teamSize: 1,
		rules:    withClauses(),
		library:  Standard,
	},
	"gen7doubles": {
		name:     "[Gen 7] Doubles",
		gen:      7,
		gameType: rules.GameTypeDoubles,
		teamSize: 2,
		rules:    withClauses(),
		library:  Standard,
	},
	"gen5singles": {
		name:     "[Gen 5] Singles",
		gen:      5,
		gameType: rules.GameTypeSingles,
		teamSize: 1,
		rules:    withClauses(),
		library:  Standard,
	},
	"gen7linked": {
		name:       "[Gen 7] Linked",
		gen:        7,
		gameType:   rules.GameTypeSingles,
		teamSize:   1,
		rules:      withClauses(rules.ClauseLinkedMoves),
		library:    Standard,
		strategies: battle.Strategies{Linker: battle.FirstTwoLinker{}},
	},
	"gen7fullpotential": {
		name:       "[Gen 7] Full Potential",
		gen:        7,
		gameType:   rules.GameTypeSingles,
		teamSize:   1,
		rules:      withClauses(rules.ClauseBestOffensive),
		library:    Standard,
		strategies: battle.Strategies{Damage: battle.StandardDamage{BestStat: true}},
	},
	"gen6skillmons": {
		name:       "[Gen 6] Skillmons",
		gen:        6,
		gameType:   rules.GameTypeSingles,
		teamSize:   1,
		rules:      withClauses(rules.ClauseSkillDamage),
		library:    Standard,
		strategies: battle.Strategies{Damage: battle.SkillmonsDamage{}},
	},
	"gen7poweredup": {
		name:     "[Gen 7] Powered Up",
		gen:      7,
		gameType: rules.GameTypeSingles,
		teamSize: 1,
		rules:    withClauses(rules.ClausePoweredUp),
		library:  PoweredUp,
	},
}

// FormatIDs returns every known format id, sorted.
func FormatIDs() []string {
	ids := make([]string, 0, len(formats))
	for id := range formats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasFormat reports whether id names a known format.
func HasFormat(id string) bool {
	_, ok := formats[id]
	return ok
}

// Format builds the format id over data set d. A nil d uses the
// embedded data.
func Format(id string, d *dex.Dex) (*battle.Format, error) {
	spec, ok := formats[id]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", id)
	}
	if d == nil {
		var err error
		if d, err = dex.Default(); err != nil {
			return nil, fmt.Errorf("load default dex: %w", err)
		}
	}
	return &battle.Format{
		ID:         id,
		Name:       spec.name,
		Gen:        spec.gen,
		GameType:   spec.gameType,
		TeamSize:   spec.teamSize,
		Rules:      append([]string(nil), spec.rules...),
		Dex:        d,
		Effects:    spec.library(),
		Strategies: spec.strategies,
	}, nil
}
