package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// Format is a rule variant: generation, layout, clauses, data and the
// strategy set that replaces engine steps the variant changes.
type Format struct {
	ID         string
	Name       string
	Gen        int
	GameType   rules.GameType
	TeamSize   int
	Rules      []string
	Dex        *dex.Dex
	Effects    EffectLibrary
	Strategies Strategies
	MaxTurns   int
}

// DamageKind distinguishes the three outcomes of a damage calculation.
type DamageKind int

const (
	// DamageDealt carries an amount, possibly zero.
	DamageDealt DamageKind = iota
	// NoDamage means the move deals no damage by design.
	NoDamage
	// DamageFailed means the move failed against the target.
	DamageFailed
)

// DamageResult is the outcome of a damage calculation.
type DamageResult struct {
	Kind   DamageKind
	Amount int
}

// Dealt returns a result dealing amount.
func Dealt(amount int) DamageResult {
	return DamageResult{Kind: DamageDealt, Amount: amount}
}

// DamageCalculator turns an attack into a damage value.
type DamageCalculator interface {
	Damage(b *Battle, source, target *Pokemon, move *ActiveMove, suppress bool) DamageResult
}

// Targeting resolves target locations into combatants.
type Targeting interface {
	// Target returns the combatant a move aimed at loc hits, re-rolling
	// when the chosen target is gone.
	Target(b *Battle, user *Pokemon, move *ActiveMove, loc int) *Pokemon
	// RandomTarget picks a target for a move chosen without one.
	RandomTarget(b *Battle, user *Pokemon, move *ActiveMove) *Pokemon
	// ValidTargetLoc reports whether loc is a legal choice for move.
	ValidTargetLoc(b *Battle, user *Pokemon, loc int, target dex.MoveTarget) bool
}

// MoveLinker reports moves that execute as a pair.
type MoveLinker interface {
	// LinkedMoves returns the pair p's first choice expands into, or nil.
	LinkedMoves(p *Pokemon, ignoreDisabled bool) []dex.ID
}

// Strategies is the set of replaceable engine steps. Nil members use
// the standard behavior.
type Strategies struct {
	Damage    DamageCalculator
	Targeting Targeting
	Linker    MoveLinker
}

func (s Strategies) withDefaults() Strategies {
	if s.Damage == nil {
		s.Damage = StandardDamage{}
	}
	if s.Targeting == nil {
		s.Targeting = StandardTargeting{}
	}
	return s
}

// FirstTwoLinker links a combatant's first two move slots, as long as
// both have PP left.
type FirstTwoLinker struct{}

// LinkedMoves implements MoveLinker.
func (FirstTwoLinker) LinkedMoves(p *Pokemon, ignoreDisabled bool) []dex.ID {
	if len(p.MoveSlots) < 2 || p.MoveSlots[0].PP <= 0 || p.MoveSlots[1].PP <= 0 {
		return nil
	}
	out := []dex.ID{p.MoveSlots[0].ID, p.MoveSlots[1].ID}
	if ignoreDisabled {
		return out
	}
	if !p.AteBerry && (out[0] == "belch" || out[1] == "belch") {
		return nil
	}
	if p.HasItem("assaultvest") {
		for _, id := range out {
			if m, ok := p.battle.dex.Move(string(id)); ok && m.Category == dex.CategoryStatus {
				return nil
			}
		}
	}
	return out
}

// linkedPair returns the pair id belongs to, or nil.
func (b *Battle) linkedPair(p *Pokemon, id dex.ID, ignoreDisabled bool) []dex.ID {
	if b.strategies.Linker == nil {
		return nil
	}
	pair := b.strategies.Linker.LinkedMoves(p, ignoreDisabled)
	if len(pair) != 2 || (pair[0] != id && pair[1] != id) {
		return nil
	}
	return pair
}
