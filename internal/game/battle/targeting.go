package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/prng"
)

// StandardTargeting resolves targets by slot adjacency.
type StandardTargeting struct{}

// ValidTargetLoc implements Targeting.
func (StandardTargeting) ValidTargetLoc(b *Battle, user *Pokemon, loc int, target dex.MoveTarget) bool {
	if loc == 0 {
		return true
	}
	slots := len(user.Side.Active)
	if abs(loc) > slots {
		return false
	}
	userLoc := -(user.Position + 1)
	isFoe := loc > 0
	across := -(slots + 1 - loc)
	var adjacent bool
	if isFoe {
		adjacent = abs(across-userLoc) <= 1
	} else {
		adjacent = abs(loc-userLoc) == 1
	}
	isSelf := loc == userLoc

	switch target {
	case dex.TargetRandomNormal, dex.TargetScripted, dex.TargetNormal:
		return adjacent
	case dex.TargetAdjacentAlly:
		return adjacent && !isFoe
	case dex.TargetAdjacentAllyOrSelf:
		return adjacent && !isFoe || isSelf
	case dex.TargetAdjacentFoe:
		return adjacent && isFoe
	case dex.TargetAny:
		return !isSelf
	}
	return false
}

// RandomTarget implements Targeting.
func (StandardTargeting) RandomTarget(b *Battle, user *Pokemon, move *ActiveMove) *Pokemon {
	switch move.Target {
	case dex.TargetSelf, dex.TargetAll, dex.TargetAllySide, dex.TargetAdjacentAllyOrSelf:
		return user
	case dex.TargetAdjacentAlly:
		if p, ok := prng.Sample(b.prng, user.AdjacentAllies()); ok {
			return p
		}
		return nil
	}
	foe := user.Side.Foe
	if len(foe.Active) == 1 {
		return foe.Active[0]
	}
	if p, ok := prng.Sample(b.prng, user.AdjacentFoes()); ok {
		return p
	}
	return foe.Active[len(foe.Active)-1-user.Position]
}

// Target implements Targeting.
func (t StandardTargeting) Target(b *Battle, user *Pokemon, move *ActiveMove, loc int) *Pokemon {
	switch move.Target {
	case dex.TargetAdjacentAlly, dex.TargetAny, dex.TargetNormal:
		if loc == -(user.Position + 1) {
			return nil
		}
	}
	if move.Target != dex.TargetRandomNormal && t.ValidTargetLoc(b, user, loc, move.Target) {
		target := user.AtLoc(loc)
		if target != nil && target.Fainted && target.IsAlly(user) {
			if move.Target == dex.TargetAdjacentAllyOrSelf && b.Gen() != 5 {
				return user
			}
			return target
		}
		if target != nil && !target.Fainted {
			return target
		}
	}
	return t.RandomTarget(b, user, move)
}

// getTarget resolves a chosen location through the format's targeting.
func (b *Battle) getTarget(user *Pokemon, move *ActiveMove, loc int) *Pokemon {
	return b.strategies.Targeting.Target(b, user, move, loc)
}

func (b *Battle) getRandomTarget(user *Pokemon, move *ActiveMove) *Pokemon {
	return b.strategies.Targeting.RandomTarget(b, user, move)
}

// moveTargets expands the resolved target into everything the move hits,
// and the combatants whose Pressure applies.
func (b *Battle) moveTargets(user *Pokemon, move *ActiveMove, target *Pokemon) (targets, pressure []*Pokemon) {
	switch move.Target {
	case dex.TargetAll, dex.TargetFoeSide, dex.TargetAllySide:
		if move.Target != dex.TargetFoeSide {
			targets = append(targets, user.AlliesAndSelf()...)
		}
		if move.Target != dex.TargetAllySide {
			targets = append(targets, user.Foes()...)
		}
	case dex.TargetAllAdjacent:
		targets = append(targets, user.AdjacentAllies()...)
		targets = append(targets, user.AdjacentFoes()...)
	case dex.TargetAllAdjacentFoes:
		targets = append(targets, user.AdjacentFoes()...)
	default:
		if target == nil || target.Fainted && !target.IsAlly(user) {
			target = b.getRandomTarget(user, move)
			if target == nil {
				return nil, nil
			}
		}
		if target.Fainted {
			return nil, nil
		}
		targets = []*Pokemon{target}
	}
	pressure = targets
	if move.Target == dex.TargetFoeSide {
		pressure = nil
	}
	return targets, pressure
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
