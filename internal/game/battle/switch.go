package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"go.uber.org/zap"
)

// switchIn sends p into active slot pos, calling back whoever is there.
// Roster order follows the field: the combatant in slot pos always sits
// at index pos of Side.Pokemon.
func (b *Battle) switchIn(p *Pokemon, pos int, sourceEffect *Effect, isDrag bool) (bool, error) {
	if p == nil || p.IsActive {
		b.Hint("A switch failed because the Pokémon trying to switch in is already in.")
		return false, nil
	}
	side := p.Side
	if pos < 0 || pos >= len(side.Active) {
		return false, newError(CodeInvariant, "invalid switch position %d / %d", pos, len(side.Active)).
			WithMetadata("side_id", side.ID)
	}
	old := side.Active[pos]
	if old != nil && old.HP > 0 {
		if !old.skipBeforeSwitch && !isDrag {
			b.RunNotify(HookBeforeSwitchOut, EventArgs{Target: old})
			if b.Gen() >= 5 {
				b.EachEvent(HookUpdate)
			}
		}
		old.skipBeforeSwitch = false
		if b.RunGate(HookSwitchOut, EventArgs{Target: old}) != Continue {
			return false, nil
		}
		if old.HP <= 0 {
			return false, nil
		}
		if old.AbilityState != nil {
			b.SingleNotify(old.AbilityState.Effect, old.AbilityState, HookEnd, EventArgs{Target: old})
		}
		b.queue.CancelAction(old)
		old.ClearVolatiles()
	}
	if old != nil {
		old.IsActive = false
		old.IsStarted = false
		old.UsedItemThisTurn = false
		old.StatsRaisedThisTurn = false
		old.StatsLoweredThisTurn = false
		old.Position, p.Position = p.Position, pos
		side.Pokemon[p.Position] = p
		side.Pokemon[old.Position] = old
	} else {
		other := side.Pokemon[pos]
		other.Position, p.Position = p.Position, pos
		side.Pokemon[p.Position] = p
		side.Pokemon[other.Position] = other
	}
	p.IsActive = true
	side.Active[pos] = p
	p.ActiveTurns = 0
	p.ActiveMoveActions = 0
	for _, slot := range p.MoveSlots {
		slot.Used = false
	}

	kind := rules.EventSwitch
	if isDrag {
		kind = rules.EventDrag
	}
	line := []string{p.FullName(), p.Details(), p.Health()}
	if sourceEffect != nil {
		line = append(line, "[from] "+sourceEffect.FullName())
	}
	b.Add(kind, line...)
	p.AbilityOrder = b.abilityOrder
	b.abilityOrder++
	b.logger.Debug("switched in",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("pokemon", p.FullName()),
		zap.Bool("drag", isDrag),
	)

	if isDrag && b.Gen() >= 5 {
		if p.AbilityState != nil {
			b.SingleNotify(p.AbilityState.Effect, p.AbilityState, HookPreStart, EventArgs{Target: p})
		}
		b.runSwitch(p)
		return true, nil
	}
	if err := b.queue.InsertNow(
		&Action{Kind: ActionRunUnnerve, Pokemon: p},
		&Action{Kind: ActionRunSwitch, Pokemon: p},
	); err != nil {
		return false, err
	}
	return true, nil
}

// dragIn replaces the combatant in slot pos with a random benched one.
func (b *Battle) dragIn(side *Side, pos int) (bool, error) {
	choices := side.Switchable()
	if len(choices) == 0 {
		return false, nil
	}
	p := choices[b.Random(len(choices))]
	old := side.Active[pos]
	if old == nil {
		return false, newError(CodeInvariant, "nothing to drag out of %s slot %d", side.ID, pos)
	}
	if old.HP <= 0 {
		return false, nil
	}
	if b.RunGate(HookDragOut, EventArgs{Target: old}) != Continue {
		return false, nil
	}
	return b.switchIn(p, pos, nil, true)
}

// runSwitch finishes a switch-in: entry hazards and SwitchIn reactions,
// then the ability's and item's Start hooks.
func (b *Battle) runSwitch(p *Pokemon) bool {
	b.RunNotify(HookSwitchIn, EventArgs{Target: p})
	if p.HP <= 0 {
		return false
	}
	p.IsStarted = true
	if !p.Fainted {
		if p.AbilityState != nil {
			b.SingleGate(p.AbilityState.Effect, p.AbilityState, HookStart, EventArgs{Target: p})
		}
		if p.ItemState != nil {
			b.SingleGate(p.ItemState.Effect, p.ItemState, HookStart, EventArgs{Target: p})
		}
	}
	return true
}
