package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// Crit chance denominators indexed by crit ratio.
var (
	critTableOld = []int{0, 16, 8, 4, 3, 2}
	critTableNew = []int{0, 16, 8, 2, 1}
)

// CritDenominator returns n such that a hit at ratio is critical with
// probability 1/n, or 0 when it cannot crit. Ratios are clamped to the
// generation's table.
func CritDenominator(gen, ratio int) int {
	table := critTableNew
	if gen <= 5 {
		table = critTableOld
	}
	return table[clampInt(ratio, 0, len(table)-1)]
}

// BaseDamage is the core damage formula before any modifier.
func BaseDamage(level, basePower, attack, defense int) int {
	if defense <= 0 {
		defense = 1
	}
	return (2*level/5+2)*basePower*attack/defense/50 + 2
}

// modify multiplies v by num/den in 4096-based fixed point.
func modify(v, num, den int) int {
	m := num * 4096 / den
	return (v*m + 2047) / 4096
}

// StandardDamage is the damage formula used by most formats.
type StandardDamage struct {
	// BestStat uses the attacker's highest stat as the offensive stat,
	// whatever the move's category.
	BestStat bool
}

// Damage implements DamageCalculator.
func (d StandardDamage) Damage(b *Battle, source, target *Pokemon, move *ActiveMove, suppress bool) DamageResult {
	basePower, result, done := damagePrelude(b, source, target, move, !suppress, true)
	if done {
		return result
	}

	crit := b.rollCrit(source, target, move)
	basePower = b.RunModify(HookBasePower, EventArgs{Target: source, Source: target, Move: move, Effect: move.Effect, OnEffect: true}, basePower)
	if basePower == 0 {
		return Dealt(0)
	}
	basePower = max(basePower, 1)

	defBoost := target.Boosts[dex.BoostID(defenseStat(move))]
	if move.IgnoreDefensive || crit && defBoost > 0 {
		defBoost = 0
	}
	var attack int
	if d.BestStat {
		for _, stat := range dex.BattleStats {
			if a := offensiveStat(b, source, target, move, stat, crit); a > attack {
				attack = a
			}
		}
	} else {
		attack = offensiveStat(b, source, target, move, attackStat(move), crit)
	}
	defense := target.CalculateStat(defenseStat(move), defBoost, nil)
	defense = b.RunModify(statHooks[string(defenseStat(move))], EventArgs{Target: target, Source: source, Move: move}, defense)

	damage := BaseDamage(source.Level, basePower, attack, defense)
	if move.SpreadHit {
		damage = modify(damage, 3, 4)
	}
	damage = b.RunModify(HookWeatherModifyDamage, EventArgs{Target: source, Source: target, Move: move}, damage)
	if crit {
		if b.Gen() >= 6 {
			damage = damage * 3 / 2
		} else {
			damage *= 2
		}
	}
	damage = damage * (100 - b.Random(16)) / 100
	damage = applySTAB(source, move, damage)
	damage = applyEffectiveness(b, target, move, damage, suppress)
	if crit && !suppress {
		b.Add(rules.EventCrit, target.FullName())
	}
	if source.Status == "brn" && move.Category == dex.CategoryPhysical && !source.HasAbility("guts") {
		if b.Gen() < 6 || move.ID != "facade" {
			damage = modify(damage, 1, 2)
		}
	}
	if b.Gen() == 5 {
		return Dealt(minDamageBeforeModify(b, source, target, move, damage))
	}
	return Dealt(minDamageAfterModify(b, source, target, move, damage))
}

// CalcDamage runs the format's damage calculation for move without
// announcing crits or effectiveness, as for a confusion self-hit.
func (b *Battle) CalcDamage(source, target *Pokemon, move *ActiveMove) DamageResult {
	return b.strategies.Damage.Damage(b, source, target, move, true)
}

// minDamageBeforeModify floors damage at 1 and then runs ModifyDamage,
// so a late modifier can still bring it to 0.
func minDamageBeforeModify(b *Battle, source, target *Pokemon, move *ActiveMove, damage int) int {
	if damage == 0 {
		damage = 1
	}
	return b.RunModify(HookModifyDamage, EventArgs{Target: source, Source: target, Move: move}, damage)
}

// minDamageAfterModify runs ModifyDamage and then floors damage at 1.
func minDamageAfterModify(b *Battle, source, target *Pokemon, move *ActiveMove, damage int) int {
	damage = b.RunModify(HookModifyDamage, EventArgs{Target: source, Source: target, Move: move}, damage)
	return max(damage, 1)
}

// SkillmonsDamage removes luck from damage: no crits, no random roll, and
// power scaled by the move's accuracy instead.
type SkillmonsDamage struct{}

// Damage implements DamageCalculator.
func (SkillmonsDamage) Damage(b *Battle, source, target *Pokemon, move *ActiveMove, suppress bool) DamageResult {
	basePower, result, done := damagePrelude(b, source, target, move, true, false)
	if done {
		return result
	}
	accuracy := move.Accuracy
	if accuracy == 0 {
		accuracy = 100
	}
	ratio := b.RunModify(HookModifyCritRatio, EventArgs{Target: source, Source: target, Move: move}, move.CritRatio)
	switch ratio {
	case 2:
		basePower = basePower * accuracy * 9 / 800
	case 3:
		basePower = basePower * accuracy * 5 / 400
	default:
		basePower = basePower * accuracy / 100
	}
	basePower = max(basePower, 1)
	basePower = b.RunModify(HookBasePower, EventArgs{Target: source, Source: target, Move: move, Effect: move.Effect, OnEffect: true}, basePower)
	if basePower == 0 {
		return Dealt(0)
	}
	basePower = max(basePower, 1)

	stat := attackStat(move)
	atkBoost := source.Boosts[dex.BoostID(stat)]
	if move.IgnoreOffensive {
		atkBoost = 0
	}
	attack := source.CalculateStat(stat, atkBoost, nil)
	attack = b.RunModify(statHooks[string(stat)], EventArgs{Target: source, Source: target, Move: move}, attack)
	defBoost := target.Boosts[dex.BoostID(defenseStat(move))]
	if move.IgnoreDefensive {
		defBoost = 0
	}
	defense := target.CalculateStat(defenseStat(move), defBoost, nil)
	defense = b.RunModify(statHooks[string(defenseStat(move))], EventArgs{Target: target, Source: source, Move: move}, defense)

	damage := BaseDamage(source.Level, basePower, attack, defense)
	if move.SpreadHit {
		damage = modify(damage, 3, 4)
	}
	damage = applySTAB(source, move, damage)
	damage = applyEffectiveness(b, target, move, damage, suppress)
	if damage == 0 {
		return Dealt(1)
	}
	return Dealt(b.RunModify(HookModifyDamage, EventArgs{Target: source, Source: target, Move: move}, damage))
}

// damagePrelude runs the steps every formula shares: immunity, fixed
// damage and base power resolution. done is set when result is final.
func damagePrelude(b *Battle, source, target *Pokemon, move *ActiveMove, message, ohko bool) (basePower int, result DamageResult, done bool) {
	if !move.IgnoresImmunity() && !target.RunImmunity(move.Type, message) {
		return 0, DamageResult{Kind: DamageFailed}, true
	}
	args := EventArgs{Target: target, Source: source, Move: move}
	switch {
	case ohko && move.OHKO:
		return 0, Dealt(target.MaxHP), true
	case move.Effect.Handler(HookDamageCallback, ScopeSelf) != nil:
		v := b.SingleModify(move.Effect, nil, HookDamageCallback, args, 0)
		if v < 0 {
			return 0, DamageResult{Kind: DamageFailed}, true
		}
		return 0, Dealt(v), true
	case move.LevelDamage:
		return 0, Dealt(source.Level), true
	case move.Damage > 0:
		return 0, Dealt(move.Damage), true
	}

	basePower = move.BasePower
	if move.Effect.Handler(HookBasePowerCallback, ScopeSelf) != nil {
		basePower = b.SingleModify(move.Effect, nil, HookBasePowerCallback, args, basePower)
	}
	if basePower == 0 {
		return 0, DamageResult{Kind: NoDamage}, true
	}
	if basePower < 0 {
		return 0, DamageResult{Kind: DamageFailed}, true
	}
	return basePower, DamageResult{}, false
}

// rollCrit decides and records whether the hit on target is critical.
func (b *Battle) rollCrit(source, target *Pokemon, move *ActiveMove) bool {
	ratio := b.RunModify(HookModifyCritRatio, EventArgs{Target: source, Source: target, Move: move}, move.CritRatio)
	var crit bool
	if move.WillCrit != nil {
		crit = *move.WillCrit
	} else if n := CritDenominator(b.Gen(), ratio); n > 0 {
		crit = b.Random(n) == 0
	}
	if crit {
		crit = b.RunGate(HookCriticalHit, EventArgs{Target: target, Move: move}) == Continue
	}
	move.hitDataFor(target).crit = crit
	return crit
}

func attackStat(move *ActiveMove) dex.StatID {
	if move.Category == dex.CategoryPhysical {
		return dex.StatAtk
	}
	return dex.StatSpA
}

func defenseStat(move *ActiveMove) dex.StatID {
	category := move.DefensiveCategory
	if category == "" {
		category = move.Category
	}
	if category == dex.CategoryPhysical {
		return dex.StatDef
	}
	return dex.StatSpD
}

// offensiveStat is source's stat for the attack after boosts and
// modifier hooks. Crits ignore attack drops.
func offensiveStat(b *Battle, source, target *Pokemon, move *ActiveMove, stat dex.StatID, crit bool) int {
	boost := source.Boosts[dex.BoostID(stat)]
	if move.IgnoreOffensive || crit && boost < 0 {
		boost = 0
	}
	attack := source.CalculateStat(stat, boost, nil)
	return b.RunModify(statHooks[string(stat)], EventArgs{Target: source, Source: target, Move: move}, attack)
}

func applySTAB(source *Pokemon, move *ActiveMove, damage int) int {
	if move.ForceSTAB || move.Type != dex.TypelessType && source.HasType(move.Type) {
		return modify(damage, 3, 2)
	}
	return damage
}

// applyEffectiveness doubles or halves damage once per effectiveness
// step, clamped to six steps either way.
func applyEffectiveness(b *Battle, target *Pokemon, move *ActiveMove, damage int, suppress bool) int {
	steps := clampInt(target.RunEffectiveness(move), -6, 6)
	move.hitDataFor(target).effectiveness = steps
	if steps > 0 {
		if !suppress {
			b.Add(rules.EventSuperEffective, target.FullName())
		}
		for i := 0; i < steps; i++ {
			damage *= 2
		}
	}
	if steps < 0 {
		if !suppress {
			b.Add(rules.EventResisted, target.FullName())
		}
		for i := 0; i > steps; i-- {
			damage /= 2
		}
	}
	return damage
}

// RunEffectiveness returns the effectiveness steps of move against the
// combatant, after Effectiveness handlers for each of its types.
func (p *Pokemon) RunEffectiveness(move *ActiveMove) int {
	b := p.battle
	total := 0
	for _, typ := range p.Types() {
		steps := b.dex.Types.Effectiveness(move.Type, []string{typ})
		args := EventArgs{Target: p, Move: move, TypeName: typ}
		steps = b.SingleModify(move.Effect, nil, HookEffectiveness, args, steps)
		total += b.RunModify(HookEffectiveness, args, steps)
	}
	return total
}
