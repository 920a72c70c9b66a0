package mods

import (
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// choiceItem boosts stat by half and locks the holder into the first
// move it uses.
func choiceItem(id dex.ID, name string, stat battle.Hook) *battle.Effect {
	return &battle.Effect{
		ID:   id,
		Name: name,
		Handlers: []battle.Handler{
			{Hook: stat, Priority: 1, Modify: chain(3, 2)},
			{Hook: battle.HookModifyMove, Notify: func(c *battle.Context) {
				c.Target.AddVolatile("choicelock", nil, nil)
			}},
		},
	}
}

// fullHPSurvival leaves the holder at 1 HP when a move would knock it
// out from full. use reports whether the effect may fire.
func fullHPSurvival(use func(c *battle.Context) bool) func(c *battle.Context, damage int) int {
	return func(c *battle.Context, damage int) int {
		p := c.Target
		if p.HP != p.MaxHP || damage < p.HP || c.Effect == nil || c.Effect.Kind != battle.KindMove {
			return damage
		}
		if !use(c) {
			return damage
		}
		return p.HP - 1
	}
}

func items() []*battle.Effect {
	return []*battle.Effect{
		{
			ID:   "leftovers",
			Name: "Leftovers",
			Handlers: []battle.Handler{
				{Hook: battle.HookResidual, Order: 5, SubOrder: 4, Notify: func(c *battle.Context) {
					p := c.Target
					c.Battle.Heal(p.MaxHP/16, p, p, c.State.Effect)
				}},
			},
		},
		{
			ID:   "lifeorb",
			Name: "Life Orb",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyDamage, Modify: func(c *battle.Context, damage int) int {
					c.ChainModifyRaw(5324)
					return damage
				}},
				{Hook: battle.HookAfterMoveSecondarySelf, Notify: func(c *battle.Context) {
					user := c.Target
					if c.Source == nil || c.Source == user || c.Move == nil || c.Move.IsStatus() || user.ForceSwitchFlag {
						return
					}
					c.Battle.Damage(user.MaxHP/10, user, user, c.State.Effect)
				}},
			},
		},
		choiceItem("choiceband", "Choice Band", battle.HookModifyAtk),
		choiceItem("choicescarf", "Choice Scarf", battle.HookModifySpe),
		choiceItem("choicespecs", "Choice Specs", battle.HookModifySpA),
		{
			ID:   "airballoon",
			Name: "Air Balloon",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.Add(rules.EventItem, c.Target.FullName(), "Air Balloon")
					return battle.Continue
				}},
				{Hook: battle.HookImmunity, Gate: func(c *battle.Context) battle.Outcome {
					if c.TypeName == "Ground" {
						return battle.Null
					}
					return battle.Continue
				}},
				{Hook: battle.HookDamagingHit, Notify: func(c *battle.Context) {
					if c.Move == nil || c.Move.IsStatus() {
						return
					}
					c.Add(rules.EventEndItem, c.Target.FullName(), "Air Balloon")
					c.Target.SetItem("")
				}},
			},
		},
		{
			ID:   "focussash",
			Name: "Focus Sash",
			Handlers: []battle.Handler{
				{Hook: battle.HookDamage, Priority: -40, Modify: fullHPSurvival(func(c *battle.Context) bool {
					return c.Target.UseItem()
				})},
			},
		},
		{
			ID:   "assaultvest",
			Name: "Assault Vest",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifySpD, Priority: 1, Modify: chain(3, 2)},
				{Hook: battle.HookDisableMove, Notify: func(c *battle.Context) {
					d := c.Battle.Dex()
					for _, slot := range c.Target.MoveSlots {
						if m, ok := d.Move(string(slot.ID)); ok && m.Category == dex.CategoryStatus {
							slot.Disabled = true
						}
					}
				}},
			},
		},
		{
			ID:   "quickclaw",
			Name: "Quick Claw",
			Handlers: []battle.Handler{
				{Hook: battle.HookFractionalPriority, Priority: -2, Modify: func(c *battle.Context, fraction int) int {
					if c.Move == nil || c.Move.Priority > 0 || !c.Battle.RandomChance(1, 5) {
						return fraction
					}
					c.Add(rules.EventActivate, c.Target.FullName(), "item: Quick Claw")
					return 1
				}},
			},
		},
		{
			ID:   "sitrusberry",
			Name: "Sitrus Berry",
			Handlers: []battle.Handler{
				{Hook: battle.HookUpdate, Notify: func(c *battle.Context) {
					p := c.Target
					if p.HP > p.MaxHP/2 || p.HP <= 0 {
						return
					}
					effect := c.State.Effect
					if p.UseItem() {
						c.Battle.Heal(p.MaxHP/4, p, p, effect)
					}
				}},
			},
		},
	}
}
