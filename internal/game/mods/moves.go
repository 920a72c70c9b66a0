package mods

import (
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// endLockedMove ends a rampage on its last turn so the user becomes
// confused right away.
func endLockedMove(c *battle.Context) {
	if lock := c.Target.Volatile("lockedmove"); lock != nil && lock.Duration == 1 {
		c.Target.RemoveVolatile("lockedmove")
	}
}

func moves() []*battle.Effect {
	return []*battle.Effect{
		{
			ID:   "facade",
			Name: "Facade",
			Handlers: []battle.Handler{
				{Hook: battle.HookBasePower, Modify: func(c *battle.Context, bp int) int {
					if s := c.Target.Status; s != "" && s != "slp" {
						c.ChainModify(2, 1)
					}
					return bp
				}},
			},
		},
		{
			ID:   "superfang",
			Name: "Super Fang",
			Handlers: []battle.Handler{
				{Hook: battle.HookDamageCallback, Modify: func(c *battle.Context, _ int) int {
					return max(c.Target.HP/2, 1)
				}},
			},
		},
		{
			ID:   "eruption",
			Name: "Eruption",
			Handlers: []battle.Handler{
				{Hook: battle.HookBasePowerCallback, Modify: func(c *battle.Context, bp int) int {
					user := c.Source
					return max(bp*user.HP/user.MaxHP, 1)
				}},
			},
		},
		{
			ID:   "stompingtantrum",
			Name: "Stomping Tantrum",
			Handlers: []battle.Handler{
				{Hook: battle.HookBasePowerCallback, Modify: func(c *battle.Context, bp int) int {
					if c.Source.MoveLastTurnResult == battle.MoveResultFailed {
						return bp * 2
					}
					return bp
				}},
			},
		},
		{
			ID:   "protect",
			Name: "Protect",
			Handlers: []battle.Handler{
				{Hook: battle.HookPrepareHit, Gate: func(c *battle.Context) battle.Outcome {
					if !c.Battle.Queue().WillAct() {
						return battle.Fail
					}
					user := c.Source
					stall := user.Volatile("stall")
					if stall != nil && !c.Battle.RandomChance(1, stall.Counter) {
						user.DeleteVolatile("stall")
						return battle.Fail
					}
					return battle.Continue
				}},
				{Hook: battle.HookHit, Gate: func(c *battle.Context) battle.Outcome {
					c.Source.AddVolatile("stall", nil, nil)
					return battle.Continue
				}},
			},
		},
		{
			ID:   "focuspunch",
			Name: "Focus Punch",
			Handlers: []battle.Handler{
				{Hook: battle.HookBeforeTurnCallback, Notify: func(c *battle.Context) {
					c.Target.AddVolatile("focuspunch", nil, nil)
				}},
				{Hook: battle.HookBeforeMoveCallback, Gate: func(c *battle.Context) battle.Outcome {
					if state := c.Target.Volatile("focuspunch"); state != nil && state.Flag {
						c.Add(rules.EventCant, c.Target.FullName(), "Focus Punch", "Focus Punch")
						return battle.Fail
					}
					return battle.Continue
				}},
			},
		},
		{
			ID:   "outrage",
			Name: "Outrage",
			Handlers: []battle.Handler{
				{Hook: battle.HookAfterMove, Notify: endLockedMove},
			},
		},
		{
			ID:   "petaldance",
			Name: "Petal Dance",
			Handlers: []battle.Handler{
				{Hook: battle.HookAfterMove, Notify: endLockedMove},
			},
		},
		{
			ID:   "struggle",
			Name: "Struggle",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyMove, Notify: func(c *battle.Context) {
					c.Add(rules.EventActivate, c.Target.FullName(), "move: Struggle")
				}},
			},
		},
	}
}
