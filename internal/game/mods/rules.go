package mods

import (
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// announce is a rule that only reports itself when the battle starts.
func announce(id, name, desc string) *battle.Effect {
	return &battle.Effect{
		ID:   dex.ID(id),
		Name: name,
		Handlers: []battle.Handler{
			{Hook: battle.HookStart, Notify: func(c *battle.Context) {
				c.Add(rules.EventRule, name+": "+desc)
			}},
		},
	}
}

func ruleEffects() []*battle.Effect {
	sleep := announce(rules.ClauseSleep, "Sleep Clause Mod", "Limit one foe put to sleep")
	sleep.Handlers = append(sleep.Handlers, battle.Handler{Hook: battle.HookSetStatus, Gate: sleepClause})
	return []*battle.Effect{
		sleep,
		announce(rules.ClauseSpecies, "Species Clause", "Limit one of each Pokémon"),
		announce(rules.ClauseExactHP, "Exact HP Mod", "Exact HP is shown"),
		announce(rules.ClauseEndlessBattle, "Endless Battle Clause", "Forcing endless battles is banned"),
	}
}

// sleepClause refuses to put a second combatant of a side to sleep while
// one already sleeps from an opponent's doing.
func sleepClause(c *battle.Context) battle.Outcome {
	target, source := c.Target, c.Source
	if c.Status != "slp" || source == nil || source.Side == target.Side {
		return battle.Continue
	}
	for _, p := range target.Side.Pokemon {
		if p == target || p.HP <= 0 || p.Status != "slp" || p.StatusState == nil {
			continue
		}
		if by := p.StatusState.Source; by != nil && by.Side != p.Side {
			if c.Effect != nil && c.Effect.Kind == battle.KindMove {
				c.Add(rules.EventMessage, "Sleep Clause Mod activated.")
			}
			return battle.Null
		}
	}
	return battle.Continue
}

// poweredUpRule grants aura each turn to active combatants whose side is
// behind on remaining combatants.
func poweredUpRule() *battle.Effect {
	rule := announce(rules.ClausePoweredUp, "Powered Up", "The side behind on Pokémon gains an aura each turn")
	rule.Handlers = append(rule.Handlers, battle.Handler{Hook: battle.HookBeforeTurn, Notify: func(c *battle.Context) {
		p := c.Target
		if p == nil || p.Side.PokemonLeft >= p.Side.Foe.PokemonLeft {
			return
		}
		p.AddVolatile("aura", nil, c.State.Effect)
	}})
	return rule
}
