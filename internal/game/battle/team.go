package battle

import (
	"fmt"
	"sort"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/prng"
)

// PokemonSet is a combatant as a player brings it: species, moves and
// build. Unset fields take the usual defaults: level 100, perfect IVs,
// no EVs and the species' first ability.
type PokemonSet struct {
	Name    string          `yaml:"name"`
	Species string          `yaml:"species"`
	Item    string          `yaml:"item"`
	Ability string          `yaml:"ability"`
	Moves   []string        `yaml:"moves"`
	Level   int             `yaml:"level"`
	Nature  string          `yaml:"nature"`
	EVs     *dex.StatsTable `yaml:"evs"`
	IVs     *dex.StatsTable `yaml:"ivs"`
}

var allStats = []dex.StatID{dex.StatHP, dex.StatAtk, dex.StatDef, dex.StatSpA, dex.StatSpD, dex.StatSpe}

func perfectIVs() *dex.StatsTable {
	return &dex.StatsTable{HP: 31, Atk: 31, Def: 31, SpA: 31, SpD: 31, Spe: 31}
}

// newPokemon builds the combatant for set in roster slot pos.
func newPokemon(b *Battle, side *Side, set PokemonSet, pos int) (*Pokemon, error) {
	species, ok := b.dex.SpeciesByName(set.Species)
	if !ok {
		return nil, fmt.Errorf("unknown species %q", set.Species)
	}
	if len(set.Moves) == 0 {
		return nil, fmt.Errorf("%s has no moves", species.Name)
	}
	level := set.Level
	if level == 0 {
		level = 100
	}
	if level < 1 || level > 100 {
		return nil, fmt.Errorf("%s: level %d out of range", species.Name, level)
	}
	ivs, evs := set.IVs, set.EVs
	if ivs == nil {
		ivs = perfectIVs()
	}
	if evs == nil {
		evs = &dex.StatsTable{}
	}
	name := set.Name
	if name == "" {
		name = species.Name
	}

	p := &Pokemon{
		battle:    b,
		Side:      side,
		Set:       set,
		Name:      name,
		Species:   species,
		Level:     level,
		Nature:    b.dex.Nature(set.Nature),
		Position:  pos,
		Boosts:    dex.BoostTable{},
		BaseTypes: append([]string(nil), species.Types...),
	}
	for _, stat := range allStats {
		value := dex.CalcStat(stat, species.BaseStats.Get(stat), ivs.Get(stat), evs.Get(stat), level, p.Nature)
		p.StoredStats.Set(stat, value)
	}
	p.MaxHP = p.StoredStats.HP
	p.HP = p.MaxHP

	seen := make(map[dex.ID]bool, len(set.Moves))
	for _, name := range set.Moves {
		move, ok := b.dex.Move(name)
		if !ok {
			return nil, fmt.Errorf("%s: unknown move %q", species.Name, name)
		}
		if seen[move.ID] {
			return nil, fmt.Errorf("%s: move %s listed twice", species.Name, move.Name)
		}
		seen[move.ID] = true
		p.MoveSlots = append(p.MoveSlots, &MoveSlot{
			ID:    move.ID,
			Name:  move.Name,
			PP:    move.MaxPP(),
			MaxPP: move.MaxPP(),
		})
	}

	ability := set.Ability
	if ability == "" && len(species.Abilities) > 0 {
		ability = species.Abilities[0]
	}
	if ability != "" {
		if _, ok := b.dex.Ability(ability); !ok {
			return nil, fmt.Errorf("%s: unknown ability %q", species.Name, ability)
		}
		p.Ability = dex.ToID(ability)
		p.AbilityState = b.newEffectState(p.Ability, b.Effect(KindAbility, p.Ability))
		p.AbilityState.Pokemon = p
	}
	if set.Item != "" {
		if _, ok := b.dex.Item(set.Item); !ok {
			return nil, fmt.Errorf("%s: unknown item %q", species.Name, set.Item)
		}
		p.SetItem(dex.ToID(set.Item))
	}
	return p, nil
}

// checkSpeciesClause rejects a team carrying the same species twice.
func checkSpeciesClause(d *dex.Dex, team []PokemonSet) error {
	seen := make(map[int]string, len(team))
	for _, set := range team {
		species, ok := d.SpeciesByName(set.Species)
		if !ok {
			return fmt.Errorf("unknown species %q", set.Species)
		}
		if prev, dup := seen[species.Num]; dup {
			return fmt.Errorf("species clause: %s and %s are the same species", prev, species.Name)
		}
		seen[species.Num] = species.Name
	}
	return nil
}

// RosterOptions tunes BuildTeam.
type RosterOptions struct {
	// FeaturedSpecies, when set, is placed in the fourth slot of the
	// team (or the last, for smaller teams).
	FeaturedSpecies string
	Size            int // 0 means 6
	// Level fixes every member's level. 0 scales levels by base stat
	// total instead.
	Level int
}

// BuildTeam draws a random team of distinct species from d. Moves are
// drawn from the species' own types and Normal.
func BuildTeam(d *dex.Dex, rng *prng.PRNG, opts RosterOptions) ([]PokemonSet, error) {
	size := opts.Size
	if size == 0 {
		size = 6
	}
	var featured *dex.Species
	if opts.FeaturedSpecies != "" {
		s, ok := d.SpeciesByName(opts.FeaturedSpecies)
		if !ok {
			return nil, fmt.Errorf("unknown featured species %q", opts.FeaturedSpecies)
		}
		featured = s
	}

	pool := d.SpeciesIDs()
	used := make(map[int]bool, size)
	if featured != nil {
		used[featured.Num] = true
	}
	featuredSlot := min(3, size-1)

	team := make([]PokemonSet, 0, size)
	for len(team) < size {
		var species *dex.Species
		if featured != nil && len(team) == featuredSlot {
			species = featured
		} else {
			for species == nil && len(pool) > 0 {
				i := rng.Intn(len(pool))
				s := d.Species[pool[i]]
				pool = append(pool[:i], pool[i+1:]...)
				if !used[s.Num] {
					species = s
				}
			}
			if species == nil {
				return nil, fmt.Errorf("only %d distinct species available, need %d", len(team), size)
			}
			used[species.Num] = true
		}
		set, err := randomSet(d, rng, species, opts.Level)
		if err != nil {
			return nil, err
		}
		team = append(team, set)
	}
	return team, nil
}

func randomSet(d *dex.Dex, rng *prng.PRNG, species *dex.Species, level int) (PokemonSet, error) {
	var candidates []dex.ID
	for id, m := range d.Moves {
		if id == "struggle" {
			continue
		}
		if m.Type == "Normal" || species.HasType(m.Type) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return PokemonSet{}, fmt.Errorf("no moves available for %s", species.Name)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	rng.Shuffle(0, len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	moves := make([]string, 0, 4)
	for _, id := range candidates[:min(4, len(candidates))] {
		moves = append(moves, string(id))
	}

	if level == 0 {
		level = levelForStats(species.BaseStats)
	}
	set := PokemonSet{
		Species: species.Name,
		Moves:   moves,
		Level:   level,
	}
	if n := len(species.Abilities); n > 0 {
		set.Ability = species.Abilities[rng.Intn(n)]
	}
	return set, nil
}

// levelForStats maps a base stat total onto levels 70 to 99: 600 and
// above is 70, 300 and below is 99.
func levelForStats(base dex.StatsTable) int {
	bst := base.HP + base.Atk + base.Def + base.SpA + base.SpD + base.Spe
	bst = clampInt(bst, 300, 600)
	return 70 + int(float64(600-bst)/10.34)
}
