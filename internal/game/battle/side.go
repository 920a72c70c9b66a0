package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
)

// Side is one player's half of the battle.
type Side struct {
	battle *Battle

	ID          string
	Index       int
	Name        string
	Pokemon     []*Pokemon
	Active      []*Pokemon
	Conditions  []*EffectState
	Foe         *Side
	PokemonLeft int
	ZMoveUsed   bool

	FaintedThisTurn *Pokemon
	FaintedLastTurn *Pokemon
	TotalFainted    int

	choice *sideChoice
}

// Allies returns active, non-fainted combatants on the side in slot order.
func (s *Side) Allies() []*Pokemon {
	var out []*Pokemon
	for _, p := range s.Active {
		if p != nil && p.IsActive && p.HP > 0 {
			out = append(out, p)
		}
	}
	return out
}

// FoePokemonLeft is the number of opposing combatants still able to
// fight.
func (s *Side) FoePokemonLeft() int {
	return s.Foe.PokemonLeft
}

// CanSwitch returns how many benched combatants could be sent in.
func (s *Side) CanSwitch() int {
	n := 0
	for _, p := range s.Pokemon {
		if !p.IsActive && !p.Fainted && p.HP > 0 {
			n++
		}
	}
	return n
}

// Switchable returns benched combatants that could be sent in.
func (s *Side) Switchable() []*Pokemon {
	var out []*Pokemon
	for _, p := range s.Pokemon {
		if !p.IsActive && !p.Fainted && p.HP > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Condition returns the state of side condition id, or nil.
func (s *Side) Condition(id dex.ID) *EffectState {
	for _, c := range s.Conditions {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AddCondition starts side condition id. An existing condition is
// restarted if it supports that, otherwise the call fails.
func (s *Side) AddCondition(id dex.ID, source *Pokemon, sourceEffect *Effect) bool {
	b := s.battle
	effect := b.Effect(KindSideCondition, id)
	args := EventArgs{Side: s, Source: source, Effect: sourceEffect}
	if state := s.Condition(id); state != nil {
		if effect.Handler(HookRestart, ScopeSelf) == nil {
			return false
		}
		return b.SingleGate(effect, state, HookRestart, args) == Continue
	}
	state := b.newEffectState(id, effect)
	state.Side = s
	state.Source = source
	state.SourceEffect = sourceEffect
	state.Duration = effect.Duration
	if effect.DurationCallback != nil {
		state.Duration = effect.DurationCallback(&Context{Battle: b, EventArgs: args, State: state})
	}
	s.Conditions = append(s.Conditions, state)
	if b.SingleGate(effect, state, HookStart, args) != Continue {
		s.dropCondition(state)
		return false
	}
	return true
}

// RemoveCondition ends side condition id.
func (s *Side) RemoveCondition(id dex.ID) bool {
	state := s.Condition(id)
	if state == nil {
		return false
	}
	s.battle.SingleNotify(state.Effect, state, HookEnd, EventArgs{Side: s})
	s.dropCondition(state)
	return true
}

func (s *Side) dropCondition(state *EffectState) {
	state.removed = true
	for i, c := range s.Conditions {
		if c == state {
			s.Conditions = append(s.Conditions[:i], s.Conditions[i+1:]...)
			return
		}
	}
}

// PokemonByName finds a roster member by nickname or species id.
func (s *Side) PokemonByName(name string) *Pokemon {
	id := dex.ToID(name)
	for _, p := range s.Pokemon {
		if dex.ToID(p.Name) == id || p.Species.ID == id {
			return p
		}
	}
	return nil
}
