package mods

import (
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

var neverCrit = false

// statusStart announces a major status, crediting the ability that
// caused it.
func statusStart(id string) func(c *battle.Context) battle.Outcome {
	return func(c *battle.Context) battle.Outcome {
		line := []string{c.Target.FullName(), id}
		if c.Effect != nil && c.Effect.Kind == battle.KindAbility && c.Source != nil {
			line = append(line, "[from] ability: "+c.Effect.Name, "[of] "+c.Source.FullName())
		}
		c.Add(rules.EventStatus, line...)
		return battle.Continue
	}
}

func statuses() []*battle.Effect {
	return []*battle.Effect{
		{
			ID:   "brn",
			Name: "brn",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: statusStart("brn")},
				{Hook: battle.HookResidual, Order: 9, Notify: func(c *battle.Context) {
					p := c.Target
					c.Battle.Damage(p.MaxHP/16, p, nil, c.State.Effect)
				}},
			},
		},
		{
			ID:   "par",
			Name: "par",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: statusStart("par")},
				{Hook: battle.HookModifySpe, Priority: -101, Modify: func(c *battle.Context, spe int) int {
					if c.Battle.Gen() < 7 {
						return spe * 25 / 100
					}
					return spe * 50 / 100
				}},
				{Hook: battle.HookBeforeMove, Priority: 1, Gate: func(c *battle.Context) battle.Outcome {
					if c.Battle.RandomChance(1, 4) {
						c.Add(rules.EventCant, c.Target.FullName(), "par")
						return battle.Fail
					}
					return battle.Continue
				}},
			},
		},
		{
			ID:   "slp",
			Name: "slp",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					statusStart("slp")(c)
					// 1 to 3 turns asleep
					c.State.Time = c.Battle.RandomRange(2, 5)
					return battle.Continue
				}},
				{Hook: battle.HookBeforeMove, Priority: 10, Gate: sleepBeforeMove},
			},
		},
		{
			ID:   "frz",
			Name: "frz",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: statusStart("frz")},
				{Hook: battle.HookBeforeMove, Priority: 10, Gate: func(c *battle.Context) battle.Outcome {
					if c.Move != nil && c.Move.HasFlag(dex.FlagDefrost) {
						return battle.Continue
					}
					if c.Battle.RandomChance(1, 5) {
						c.Target.CureStatus(false)
						return battle.Continue
					}
					c.Add(rules.EventCant, c.Target.FullName(), "frz")
					return battle.Fail
				}},
				{Hook: battle.HookHit, Notify: func(c *battle.Context) {
					if c.Move != nil && c.Move.Type == "Fire" && !c.Move.IsStatus() {
						c.Target.CureStatus(false)
					}
				}},
			},
		},
		{
			ID:   "psn",
			Name: "psn",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: statusStart("psn")},
				{Hook: battle.HookResidual, Order: 9, Notify: func(c *battle.Context) {
					p := c.Target
					c.Battle.Damage(p.MaxHP/8, p, nil, c.State.Effect)
				}},
			},
		},
		{
			ID:   "tox",
			Name: "tox",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.State.Counter = 0
					return statusStart("tox")(c)
				}},
				{Hook: battle.HookSwitchIn, Notify: func(c *battle.Context) {
					if s := c.Target.StatusState; s != nil {
						s.Counter = 0
					}
				}},
				{Hook: battle.HookResidual, Order: 9, Notify: func(c *battle.Context) {
					if c.State.Counter < 15 {
						c.State.Counter++
					}
					p := c.Target
					c.Battle.Damage(max(p.MaxHP/16, 1)*c.State.Counter, p, nil, c.State.Effect)
				}},
			},
		},
	}
}

func sleepBeforeMove(c *battle.Context) battle.Outcome {
	p := c.Target
	p.StatusState.Time--
	if p.StatusState.Time <= 0 {
		p.CureStatus(false)
		return battle.Continue
	}
	c.Add(rules.EventCant, p.FullName(), "slp")
	if c.Move != nil && c.Move.SleepUsable {
		return battle.Continue
	}
	return battle.Fail
}

func volatiles() []*battle.Effect {
	return []*battle.Effect{
		{
			ID:   "confusion",
			Name: "confusion",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					if c.Effect != nil && c.Effect.ID == "lockedmove" {
						c.Add(rules.EventVolatileStart, c.Target.FullName(), "confusion", "[fatigue]")
					} else {
						c.Add(rules.EventVolatileStart, c.Target.FullName(), "confusion")
					}
					c.State.Time = c.Battle.RandomRange(2, 6)
					return battle.Continue
				}},
				{Hook: battle.HookEnd, Notify: func(c *battle.Context) {
					c.Add(rules.EventVolatileEnd, c.Target.FullName(), "confusion")
				}},
				{Hook: battle.HookBeforeMove, Priority: 3, Gate: confusionBeforeMove},
			},
		},
		{
			ID:       "flinch",
			Name:     "flinch",
			Duration: 1,
			Handlers: []battle.Handler{
				{Hook: battle.HookBeforeMove, Priority: 8, Gate: func(c *battle.Context) battle.Outcome {
					c.Add(rules.EventCant, c.Target.FullName(), "flinch")
					return battle.Fail
				}},
			},
		},
		lockedMove(),
		{
			ID:       "protect",
			Name:     "Protect",
			Duration: 1,
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.Add(rules.EventSingleTurn, c.Target.FullName(), "Protect")
					return battle.Continue
				}},
				{Hook: battle.HookTryHit, Priority: 3, Gate: func(c *battle.Context) battle.Outcome {
					if c.Move == nil || !c.Move.HasFlag(dex.FlagProtect) {
						return battle.Continue
					}
					c.Add(rules.EventActivate, c.Target.FullName(), "move: Protect")
					if lock := c.Source.Volatile("lockedmove"); lock != nil && lock.Duration == 2 {
						c.Source.DeleteVolatile("lockedmove")
					}
					return battle.NotFail
				}},
			},
		},
		{
			ID:       "stall",
			Name:     "stall",
			Duration: 2,
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.State.Counter = 3
					return battle.Continue
				}},
				{Hook: battle.HookRestart, Gate: func(c *battle.Context) battle.Outcome {
					c.State.Counter = min(c.State.Counter*3, 729)
					c.State.Duration = 2
					return battle.Continue
				}},
			},
		},
		{
			ID:       "encore",
			Name:     "Encore",
			Duration: 3,
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: encoreStart},
				{Hook: battle.HookOverrideAction, Override: func(c *battle.Context, move dex.ID) dex.ID {
					if move != c.State.Move {
						return c.State.Move
					}
					return move
				}},
				{Hook: battle.HookResidual, Order: 13, Notify: func(c *battle.Context) {
					if slot := c.Target.MoveSlot(c.State.Move); slot == nil || slot.PP <= 0 {
						c.Target.RemoveVolatile("encore")
					}
				}},
				{Hook: battle.HookEnd, Notify: func(c *battle.Context) {
					c.Add(rules.EventVolatileEnd, c.Target.FullName(), "Encore")
				}},
				{Hook: battle.HookDisableMove, Notify: func(c *battle.Context) {
					p := c.Target
					if !p.HasMove(c.State.Move) {
						return
					}
					for _, slot := range p.MoveSlots {
						if slot.ID != c.State.Move {
							slot.Disabled = true
						}
					}
				}},
			},
		},
		{
			ID:       "focuspunch",
			Name:     "Focus Punch",
			Duration: 1,
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.Add(rules.EventSingleTurn, c.Target.FullName(), "move: Focus Punch")
					return battle.Continue
				}},
				{Hook: battle.HookHit, Notify: func(c *battle.Context) {
					if c.Move != nil && !c.Move.IsStatus() {
						c.State.Flag = true
					}
				}},
			},
		},
		{
			ID:   "choicelock",
			Name: "choicelock",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					move := c.Battle.ActiveMove()
					if move == nil || move.ID == "struggle" {
						return battle.Fail
					}
					c.State.Move = move.ID
					return battle.Continue
				}},
				{Hook: battle.HookDisableMove, Notify: func(c *battle.Context) {
					p := c.Target
					if !p.HasItem("choiceband", "choicescarf", "choicespecs") {
						p.RemoveVolatile("choicelock")
						return
					}
					for _, slot := range p.MoveSlots {
						if slot.ID != c.State.Move {
							slot.Disabled = true
						}
					}
				}},
			},
		},
	}
}

func confusionBeforeMove(c *battle.Context) battle.Outcome {
	p := c.Target
	c.State.Time--
	if c.State.Time <= 0 {
		p.RemoveVolatile("confusion")
		return battle.Continue
	}
	c.Add(rules.EventActivate, p.FullName(), "confusion")
	if !c.Battle.RandomChance(1, 3) {
		return battle.Continue
	}
	self := &battle.ActiveMove{MoveData: dex.MoveData{
		ID:        "confused",
		Name:      "confused",
		Type:      dex.TypelessType,
		Category:  dex.CategoryPhysical,
		BasePower: 40,
		WillCrit:  &neverCrit,
	}}
	if res := c.Battle.CalcDamage(p, p, self); res.Kind == battle.DamageDealt {
		c.Battle.Damage(res.Amount, p, p, c.State.Effect)
	}
	return battle.Fail
}

func lockedMove() *battle.Effect {
	return &battle.Effect{
		ID:       "lockedmove",
		Name:     "lockedmove",
		Duration: 2,
		Handlers: []battle.Handler{
			{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
				c.State.Time = c.Battle.RandomRange(2, 4)
				if c.Effect != nil {
					c.State.Move = c.Effect.ID
				}
				return battle.Continue
			}},
			{Hook: battle.HookRestart, Gate: func(c *battle.Context) battle.Outcome {
				if c.State.Time >= 2 {
					c.State.Duration = 2
				}
				return battle.Continue
			}},
			{Hook: battle.HookResidual, Notify: func(c *battle.Context) {
				if c.Target.Status == "slp" {
					c.Target.DeleteVolatile("lockedmove")
				}
				c.State.Time--
			}},
			{Hook: battle.HookEnd, Notify: func(c *battle.Context) {
				if c.State.Time > 1 {
					return
				}
				c.Target.AddVolatile("confusion", nil, c.State.Effect)
			}},
			{Hook: battle.HookLockMove, Override: func(c *battle.Context, _ dex.ID) dex.ID {
				return c.State.Move
			}},
		},
	}
}

func encoreStart(c *battle.Context) battle.Outcome {
	p := c.Target
	last := p.LastMove
	slot := p.MoveSlot(last)
	if last == "" || last == "struggle" || last == "encore" || slot == nil || slot.PP <= 0 {
		return battle.Fail
	}
	c.State.Move = last
	c.Add(rules.EventVolatileStart, p.FullName(), "Encore")
	if c.Battle.Queue().WillMove(p) == nil {
		c.State.Duration++
	}
	return battle.Continue
}

// weatherEffect builds a weather condition. Weather lasts five turns;
// with doubled set, weather brought in by an ability lasts ten.
func weatherEffect(id dex.ID, name string, doubled bool, handlers ...battle.Handler) *battle.Effect {
	start := func(c *battle.Context) battle.Outcome {
		if doubled && c.Effect != nil && c.Effect.Kind == battle.KindAbility {
			c.State.Duration *= 2
		}
		c.Battle.Field.AnnounceWeather(name, c.Source, c.Effect)
		return battle.Continue
	}
	base := []battle.Handler{
		{Hook: battle.HookStart, Gate: start},
		{Hook: battle.HookResidual, Order: 1, Notify: func(c *battle.Context) {
			c.Add(rules.EventWeather, name, "[upkeep]")
			c.Battle.Field.WeatherUpkeep()
		}},
		{Hook: battle.HookEnd, Notify: func(c *battle.Context) {
			c.Add(rules.EventWeather, "none")
		}},
	}
	return &battle.Effect{ID: id, Name: name, Duration: 5, Handlers: append(base, handlers...)}
}

func weatherDamage(c *battle.Context) {
	p := c.Target
	c.Battle.Damage(p.MaxHP/16, p, nil, c.Effect)
}

// boostType returns a WeatherModifyDamage handler that strengthens moves
// of up and weakens moves of down.
func boostType(up, down string) battle.Handler {
	return battle.Handler{Hook: battle.HookWeatherModifyDamage, Modify: func(c *battle.Context, damage int) int {
		switch c.Move.Type {
		case up:
			c.ChainModify(3, 2)
		case down:
			c.ChainModify(1, 2)
		}
		return damage
	}}
}

func weathers(doubled bool) []*battle.Effect {
	return []*battle.Effect{
		weatherEffect("raindance", "RainDance", doubled, boostType("Water", "Fire")),
		weatherEffect("sunnyday", "SunnyDay", doubled,
			boostType("Fire", "Water"),
			battle.Handler{Hook: battle.HookImmunity, Gate: func(c *battle.Context) battle.Outcome {
				if c.TypeName == "frz" {
					return battle.Fail
				}
				return battle.Continue
			}},
		),
		weatherEffect("sandstorm", "Sandstorm", doubled,
			battle.Handler{Hook: battle.HookWeather, Notify: weatherDamage},
			battle.Handler{Hook: battle.HookModifySpD, Priority: 10, Modify: func(c *battle.Context, spd int) int {
				if c.Target.HasType("Rock") {
					c.ChainModify(3, 2)
				}
				return spd
			}},
		),
		weatherEffect("hail", "Hail", doubled,
			battle.Handler{Hook: battle.HookWeather, Notify: weatherDamage},
		),
	}
}

func sideName(s *battle.Side) string {
	return s.ID + ": " + s.Name
}

func sideConditions() []*battle.Effect {
	return []*battle.Effect{
		{
			ID:   "stealthrock",
			Name: "Stealth Rock",
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.Add(rules.EventSideStart, sideName(c.State.Side), "move: Stealth Rock")
					return battle.Continue
				}},
				{Hook: battle.HookSwitchIn, Notify: func(c *battle.Context) {
					p := c.Target
					steps := clamp(c.Battle.Dex().Types.Effectiveness("Rock", p.Types()), -6, 6)
					var amount int
					if steps >= 0 {
						amount = p.MaxHP << steps / 8
					} else {
						amount = p.MaxHP / (8 << -steps)
					}
					c.Battle.Damage(amount, p, nil, c.State.Effect)
				}},
			},
		},
		{
			ID:       "reflect",
			Name:     "Reflect",
			Duration: 5,
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					c.Add(rules.EventSideStart, sideName(c.State.Side), "Reflect")
					return battle.Continue
				}},
				{Hook: battle.HookModifyDamage, Scope: battle.ScopeFoe, Modify: func(c *battle.Context, damage int) int {
					defender := c.Source
					if defender == nil || defender.Side != c.State.Side || c.Move == nil {
						return damage
					}
					if c.Move.Category != dex.CategoryPhysical || c.Move.Crit(defender) {
						return damage
					}
					if len(defender.Side.Active) > 1 {
						c.ChainModifyRaw(2732)
					} else {
						c.ChainModify(1, 2)
					}
					return damage
				}},
				{Hook: battle.HookEnd, Notify: func(c *battle.Context) {
					c.Add(rules.EventSideEnd, sideName(c.State.Side), "Reflect")
				}},
			},
		},
	}
}

func pseudoWeathers() []*battle.Effect {
	return []*battle.Effect{
		{
			ID:       "trickroom",
			Name:     "Trick Room",
			Duration: 5,
			Handlers: []battle.Handler{
				{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
					line := []string{"move: Trick Room"}
					if c.Source != nil {
						line = append(line, "[of] "+c.Source.FullName())
					}
					c.Add(rules.EventFieldStart, line...)
					return battle.Continue
				}},
				{Hook: battle.HookRestart, Gate: func(c *battle.Context) battle.Outcome {
					c.Battle.Field.RemovePseudoWeather("trickroom")
					return battle.Continue
				}},
				{Hook: battle.HookEnd, Notify: func(c *battle.Context) {
					c.Add(rules.EventFieldEnd, "move: Trick Room")
				}},
			},
		},
	}
}

// aura strengthens every move its holder uses this turn.
func aura() *battle.Effect {
	return &battle.Effect{
		ID:       "aura",
		Name:     "Aura",
		Duration: 1,
		Handlers: []battle.Handler{
			{Hook: battle.HookStart, Gate: func(c *battle.Context) battle.Outcome {
				c.Add(rules.EventVolatileStart, c.Target.FullName(), "Aura")
				return battle.Continue
			}},
			{Hook: battle.HookBasePower, Priority: 8, Modify: func(c *battle.Context, basePower int) int {
				c.ChainModifyRaw(0x1A8E)
				return basePower
			}},
		},
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
