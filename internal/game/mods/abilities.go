package mods

import (
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

var ignoreImmunity = true

func chain(num, den int) func(c *battle.Context, v int) int {
	return func(c *battle.Context, v int) int {
		c.ChainModify(num, den)
		return v
	}
}

// pinch powers up moves of typ while the holder is at a third of its HP
// or less.
func pinch(id dex.ID, name, typ string) *battle.Effect {
	boost := func(c *battle.Context, v int) int {
		p := c.Target
		if c.Move != nil && c.Move.Type == typ && p.HP <= p.MaxHP/3 {
			c.ChainModify(3, 2)
		}
		return v
	}
	return &battle.Effect{
		ID:   id,
		Name: name,
		Handlers: []battle.Handler{
			{Hook: battle.HookModifyAtk, Priority: 5, Modify: boost},
			{Hook: battle.HookModifySpA, Priority: 5, Modify: boost},
		},
	}
}

// weatherSpeed doubles Speed under weather.
func weatherSpeed(id dex.ID, name string, weather dex.ID) *battle.Effect {
	return &battle.Effect{
		ID:   id,
		Name: name,
		Handlers: []battle.Handler{
			{Hook: battle.HookModifySpe, Modify: func(c *battle.Context, spe int) int {
				if c.Battle.Field.IsWeather(weather) {
					c.ChainModify(2, 1)
				}
				return spe
			}},
		},
	}
}

// weatherSetter starts weather when the holder enters the field.
func weatherSetter(id dex.ID, name string, weather dex.ID) *battle.Effect {
	return &battle.Effect{
		ID:   id,
		Name: name,
		Handlers: []battle.Handler{
			{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
				c.Battle.Field.SetWeather(weather, c.Target, c.State.Effect)
				return battle.Continue
			}},
		},
	}
}

// contactDamage hurts attackers that make contact by an eighth of their
// max HP.
func contactDamage(id dex.ID, name string) *battle.Effect {
	return &battle.Effect{
		ID:   id,
		Name: name,
		Handlers: []battle.Handler{
			{Hook: battle.HookDamagingHit, Order: 1, Notify: func(c *battle.Context) {
				if c.Move.HasFlag(dex.FlagContact) && c.Source.HP > 0 {
					c.Battle.Damage(c.Source.MaxHP/8, c.Source, c.Target, c.State.Effect)
				}
			}},
		},
	}
}

// statusImmunity keeps the holder free of the given statuses.
func statusImmunity(id dex.ID, name string, statuses ...dex.ID) *battle.Effect {
	blocked := func(s dex.ID) bool {
		for _, id := range statuses {
			if id == s {
				return true
			}
		}
		return false
	}
	return &battle.Effect{
		ID:   id,
		Name: name,
		Handlers: []battle.Handler{
			{Hook: battle.HookImmunity, Gate: func(c *battle.Context) battle.Outcome {
				if blocked(dex.ID(c.TypeName)) {
					return battle.Fail
				}
				return battle.Continue
			}},
			{Hook: battle.HookUpdate, Notify: func(c *battle.Context) {
				if blocked(c.Target.Status) {
					c.Add(rules.EventActivate, c.Target.FullName(), "ability: "+name)
					c.Target.CureStatus(false)
				}
			}},
		},
	}
}

func abilities() []*battle.Effect {
	return []*battle.Effect{
		{
			ID:   "static",
			Name: "Static",
			Handlers: []battle.Handler{
				{Hook: battle.HookDamagingHit, Order: 1, Notify: func(c *battle.Context) {
					if c.Move.HasFlag(dex.FlagContact) && c.Battle.RandomChance(3, 10) {
						c.Source.TrySetStatus("par", c.Target, c.State.Effect)
					}
				}},
			},
		},
		pinch("blaze", "Blaze", "Fire"),
		pinch("torrent", "Torrent", "Water"),
		pinch("overgrow", "Overgrow", "Grass"),
		weatherSpeed("chlorophyll", "Chlorophyll", "sunnyday"),
		weatherSpeed("swiftswim", "Swift Swim", "raindance"),
		{
			ID:   "levitate",
			Name: "Levitate",
			Handlers: []battle.Handler{
				{Hook: battle.HookImmunity, Gate: func(c *battle.Context) battle.Outcome {
					if c.TypeName == "Ground" {
						return battle.Null
					}
					return battle.Continue
				}},
			},
		},
		{
			ID:   "thickfat",
			Name: "Thick Fat",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyAtk, Scope: battle.ScopeSource, Priority: 6, Modify: thickFat},
				{Hook: battle.HookModifySpA, Scope: battle.ScopeSource, Priority: 5, Modify: thickFat},
			},
		},
		statusImmunity("immunity", "Immunity", "psn", "tox"),
		contactDamage("roughskin", "Rough Skin"),
		contactDamage("ironbarbs", "Iron Barbs"),
		{
			ID:   "intimidate",
			Name: "Intimidate",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: intimidate},
			},
		},
		{
			ID:   "guts",
			Name: "Guts",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyAtk, Priority: 5, Modify: func(c *battle.Context, atk int) int {
					if c.Target.Status != "" {
						c.ChainModify(3, 2)
					}
					return atk
				}},
			},
		},
		{
			ID:   "technician",
			Name: "Technician",
			Handlers: []battle.Handler{
				{Hook: battle.HookBasePower, Priority: 30, Modify: func(c *battle.Context, bp int) int {
					if bp <= 60 {
						c.ChainModify(3, 2)
					}
					return bp
				}},
			},
		},
		{
			ID:   "hugepower",
			Name: "Huge Power",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyAtk, Priority: 5, Modify: chain(2, 1)},
			},
		},
		{
			ID:   "serenegrace",
			Name: "Serene Grace",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyMove, Priority: -2, Notify: func(c *battle.Context) {
					for i := range c.Move.Secondaries {
						c.Move.Secondaries[i].Chance *= 2
					}
				}},
			},
		},
		{
			// Copying dances happens in the move pipeline.
			ID:   "dancer",
			Name: "Dancer",
		},
		weatherSetter("drizzle", "Drizzle", "raindance"),
		weatherSetter("drought", "Drought", "sunnyday"),
		weatherSetter("sandstream", "Sand Stream", "sandstorm"),
		{
			ID:   "multiscale",
			Name: "Multiscale",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyDamage, Scope: battle.ScopeSource, Modify: func(c *battle.Context, damage int) int {
					if p := c.Source; p.HP >= p.MaxHP {
						c.ChainModify(1, 2)
					}
					return damage
				}},
			},
		},
		{
			ID:   "prankster",
			Name: "Prankster",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyPriority, Modify: func(c *battle.Context, priority int) int {
					if c.Move != nil && c.Move.IsStatus() {
						c.Move.PranksterBoosted = true
						return priority + 1
					}
					return priority
				}},
			},
		},
		{
			ID:   "sturdy",
			Name: "Sturdy",
			Handlers: []battle.Handler{
				{Hook: battle.HookTryHit, Priority: 1, Gate: func(c *battle.Context) battle.Outcome {
					if c.Move != nil && c.Move.OHKO {
						c.Add(rules.EventImmune, c.Target.FullName(), "[from] ability: Sturdy")
						return battle.Null
					}
					return battle.Continue
				}},
				{Hook: battle.HookDamage, Priority: -30, Modify: func(c *battle.Context, damage int) int {
					p := c.Target
					if p.HP == p.MaxHP && damage >= p.HP && c.Effect != nil && c.Effect.Kind == battle.KindMove {
						c.Add(rules.EventActivate, p.FullName(), "ability: Sturdy")
						return p.HP - 1
					}
					return damage
				}},
			},
		},
		{
			ID:   "sandveil",
			Name: "Sand Veil",
			Handlers: []battle.Handler{
				{Hook: battle.HookImmunity, Gate: func(c *battle.Context) battle.Outcome {
					if c.TypeName == "sandstorm" {
						return battle.Fail
					}
					return battle.Continue
				}},
				{Hook: battle.HookModifyAccuracy, Priority: -1, Modify: func(c *battle.Context, accuracy int) int {
					if c.Battle.Field.IsWeather("sandstorm") {
						c.ChainModifyRaw(3277)
					}
					return accuracy
				}},
			},
		},
		{
			ID:   "synchronize",
			Name: "Synchronize",
			Handlers: []battle.Handler{
				{Hook: battle.HookAfterSetStatus, Notify: func(c *battle.Context) {
					if c.Source == nil || c.Source == c.Target || c.Status == "slp" || c.Status == "frz" {
						return
					}
					c.Add(rules.EventActivate, c.Target.FullName(), "ability: Synchronize")
					c.Source.TrySetStatus(c.Status, c.Target, c.State.Effect)
				}},
			},
		},
		{
			ID:   "shielddust",
			Name: "Shield Dust",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifySecondaries, Gate: func(c *battle.Context) battle.Outcome {
					return battle.Fail
				}},
			},
		},
		{
			ID:   "scrappy",
			Name: "Scrappy",
			Handlers: []battle.Handler{
				{Hook: battle.HookModifyMove, Priority: -5, Notify: func(c *battle.Context) {
					if t := c.Move.Type; t == "Normal" || t == "Fighting" {
						c.Move.IgnoreImmunity = &ignoreImmunity
					}
				}},
			},
		},
		{
			ID:   "innerfocus",
			Name: "Inner Focus",
			Handlers: []battle.Handler{
				{Hook: battle.HookTryAddVolatile, Gate: func(c *battle.Context) battle.Outcome {
					if c.Status == "flinch" {
						return battle.Null
					}
					return battle.Continue
				}},
			},
		},
		{
			ID:   "pressure",
			Name: "Pressure",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.Add(rules.EventAbility, c.Target.FullName(), "Pressure")
					return battle.Continue
				}},
				{Hook: battle.HookDeductPP, Modify: func(c *battle.Context, extra int) int {
					if c.Source == nil || c.Target.IsAlly(c.Source) {
						return extra
					}
					return extra + 1
				}},
			},
		},
	}
}

func thickFat(c *battle.Context, v int) int {
	if c.Move != nil && (c.Move.Type == "Fire" || c.Move.Type == "Ice") {
		c.ChainModify(1, 2)
	}
	return v
}

func intimidate(c *battle.Context) battle.Outcome {
	p := c.Target
	announced := false
	for _, foe := range p.AdjacentFoes() {
		if !announced {
			c.Add(rules.EventAbility, p.FullName(), "Intimidate", "boost")
			announced = true
		}
		c.Battle.SecondaryBoost(dex.BoostTable{dex.BoostAtk: -1}, foe, p, c.State.Effect)
	}
	return battle.Continue
}
