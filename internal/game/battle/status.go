package battle

import (
	"strconv"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// Boost applies stage changes to target and reports whether any stage
// moved.
func (b *Battle) Boost(boosts dex.BoostTable, target, source *Pokemon, effect *Effect) bool {
	return b.boost(boosts, target, source, effect, false, false).truthy()
}

// SecondaryBoost is Boost for an effect that has already announced
// itself, such as an ability lowering every foe on entry.
func (b *Battle) SecondaryBoost(boosts dex.BoostTable, target, source *Pokemon, effect *Effect) bool {
	return b.boost(boosts, target, source, effect, true, false).truthy()
}

// boost is Boost for move effects. Secondary and self boosts do not
// announce stages that could not move.
func (b *Battle) boost(boosts dex.BoostTable, target, source *Pokemon, effect *Effect, isSecondary, isSelf bool) hit {
	if target == nil || target.HP <= 0 {
		return hitAmount(0)
	}
	if !target.IsActive {
		return hitFalse
	}
	if b.Gen() > 5 && target.Side.FoePokemonLeft() == 0 {
		return hitFalse
	}
	boosts = boosts.Clone()
	args := EventArgs{Target: target, Source: source, Effect: effect}
	if effect != nil && effect.Kind == KindMove {
		args.Move = b.activeMove
	}
	b.RunBoost(HookChangeBoost, args, boosts)
	boosts = target.cappedBoost(boosts)
	b.RunBoost(HookTryBoost, args, boosts)

	success := hitSilent
	announced := isSecondary
	for _, id := range dex.BoostOrder {
		delta, ok := boosts[id]
		if !ok {
			continue
		}
		by := target.boostBy(id, delta)
		msg := rules.EventBoost
		if delta < 0 || target.Boosts[id] == -6 {
			msg = rules.EventUnboost
			by = -by
		}
		line := []string{target.FullName(), string(id), strconv.Itoa(by)}
		switch {
		case by != 0:
			success = hitTrue
			switch {
			case effect == nil:
			case effect.Kind == KindItem:
				b.Add(msg, append(line, "[from] item: "+effect.Name)...)
			case effect.Kind == KindAbility && !announced:
				b.Add(rules.EventAbility, target.FullName(), effect.Name, "boost")
				announced = true
				b.Add(msg, line...)
			default:
				b.Add(msg, line...)
			}
		case effect != nil && effect.Kind == KindAbility:
			if isSecondary || isSelf {
				b.Add(msg, line...)
			}
		case !isSecondary && !isSelf:
			b.Add(msg, line...)
		}
	}
	b.RunNotify(HookAfterBoost, args)
	if success.truthy() {
		for _, delta := range boosts {
			if delta > 0 {
				target.StatsRaisedThisTurn = true
			}
			if delta < 0 {
				target.StatsLoweredThisTurn = true
			}
		}
	}
	return success
}

// Damage deals amount to target through the Damage hook and reports the
// damage actually taken.
func (b *Battle) Damage(amount int, target, source *Pokemon, effect *Effect) int {
	var move *ActiveMove
	if effect != nil && effect.Kind == KindMove {
		move = b.activeMove
	}
	out := b.spreadDamage([]hit{hitAmount(amount)}, []*Pokemon{target}, source, effect, move)
	return out[0].n
}

// spreadDamage applies each amount in damage to the matching target.
// Entries that are not amounts pass through unchanged.
func (b *Battle) spreadDamage(damage []hit, targets []*Pokemon, source *Pokemon, effect *Effect, move *ActiveMove) []hit {
	out := make([]hit, len(damage))
	for i, d := range damage {
		target := targets[i]
		if d.kind != hitNumber {
			out[i] = d
			continue
		}
		if target == nil || target.HP <= 0 {
			out[i] = hitAmount(0)
			continue
		}
		if !target.IsActive {
			out[i] = hitFalse
			continue
		}
		amount := d.n
		if amount != 0 {
			amount = max(amount, 1)
		}
		if effect == nil || effect.ID != "strugglerecoil" {
			if effect != nil && effect.Kind == KindWeather && !target.RunStatusImmunity(string(effect.ID), false) {
				out[i] = hitAmount(0)
				continue
			}
			args := EventArgs{Target: target, Source: source, Effect: effect, Move: move, OnEffect: true}
			before := amount
			amount = b.RunModify(HookDamage, args, amount)
			if before != 0 && amount == 0 {
				out[i] = hitNone
				continue
			}
		}
		if amount != 0 {
			amount = max(amount, 1)
		}
		amount = target.damage(amount, source, effect)
		out[i] = hitAmount(amount)
		if amount != 0 {
			target.HurtThisTurn = target.HP
		}
		if source != nil && effect != nil && effect.Kind == KindMove {
			source.LastDamage = amount
		}
		b.announceDamage(target, source, effect)

		if amount != 0 && move != nil && !move.Drain.IsZero() && source != nil {
			heal := max(amount*move.Drain[0]/move.Drain[1], 1)
			b.Heal(heal, source, target, b.Effect(KindCondition, "drain"))
		}
	}
	return out
}

func (b *Battle) announceDamage(target, source *Pokemon, effect *Effect) {
	line := []string{target.FullName(), target.Health()}
	switch {
	case effect == nil || effect.Kind == KindMove:
	case effect.ID == "confusion":
		line = append(line, "[from] confusion")
	case source != nil && (source != target || effect.Kind == KindAbility):
		line = append(line, "[from] "+effect.FullName(), "[of] "+source.FullName())
	default:
		line = append(line, "[from] "+effect.FullName())
	}
	b.Add(rules.EventDamage, line...)
}

// DirectDamage lowers target's HP without running the Damage hook.
func (b *Battle) DirectDamage(amount int, target, source *Pokemon, effect *Effect) int {
	if target == nil || target.HP <= 0 || amount == 0 {
		return 0
	}
	amount = target.damage(max(amount, 1), source, effect)
	line := []string{target.FullName(), target.Health()}
	if effect != nil {
		switch effect.ID {
		case "strugglerecoil":
			line = append(line, "[from] recoil")
		case "confusion":
			line = append(line, "[from] confusion")
		}
	}
	b.Add(rules.EventDamage, line...)
	return amount
}

// Heal restores amount HP to target through the TryHeal hook and returns
// the HP actually restored. 0 means nothing happened.
func (b *Battle) Heal(amount int, target, source *Pokemon, effect *Effect) int {
	if amount > 0 && amount <= 1 {
		amount = 1
	}
	args := EventArgs{Target: target, Source: source, Effect: effect}
	amount = b.RunModify(HookTryHeal, args, amount)
	if amount <= 0 || target == nil || target.HP <= 0 || !target.IsActive || target.HP >= target.MaxHP {
		return 0
	}
	healed := target.heal(amount)
	line := []string{target.FullName(), target.Health()}
	switch {
	case effect == nil:
		line = nil
	case effect.ID == "drain":
		line = append(line, "[from] drain", "[of] "+source.FullName())
	case effect.Kind == KindMove:
	case source != nil && source != target:
		line = append(line, "[from] "+effect.FullName(), "[of] "+source.FullName())
	default:
		line = append(line, "[from] "+effect.FullName())
	}
	if line != nil {
		b.Add(rules.EventHeal, line...)
	}
	b.RunNotify(HookHeal, args)
	return healed
}
