package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// Field holds battle-wide conditions: the weather and pseudo-weathers.
type Field struct {
	battle *Battle

	Weather       dex.ID
	WeatherState  *EffectState
	PseudoWeather []*EffectState
}

// IsWeather reports whether id is the current weather.
func (f *Field) IsWeather(id dex.ID) bool {
	return f.Weather != "" && f.Weather == id
}

// SetWeather replaces the weather. Setting the weather already in effect
// fails, except that an ability may replace weather that is running out.
func (f *Field) SetWeather(id dex.ID, source *Pokemon, sourceEffect *Effect) bool {
	b := f.battle
	effect := b.Effect(KindWeather, id)
	if f.Weather == id {
		if sourceEffect != nil && sourceEffect.Kind == KindAbility {
			if b.Gen() > 5 || f.WeatherState.Duration == 0 {
				return false
			}
		} else {
			return false
		}
	}
	prev, prevState := f.Weather, f.WeatherState
	f.Weather = id
	f.WeatherState = b.newEffectState(id, effect)
	f.WeatherState.Source = source
	f.WeatherState.SourceEffect = sourceEffect
	f.WeatherState.Duration = effect.Duration
	args := EventArgs{Source: source, Effect: sourceEffect}
	if effect.DurationCallback != nil {
		f.WeatherState.Duration = effect.DurationCallback(&Context{Battle: b, EventArgs: args, State: f.WeatherState})
	}
	if b.SingleGate(effect, f.WeatherState, HookStart, args) != Continue {
		f.WeatherState.removed = true
		f.Weather, f.WeatherState = prev, prevState
		return false
	}
	if prevState != nil {
		prevState.removed = true
	}
	return true
}

// ClearWeather ends the current weather.
func (f *Field) ClearWeather() bool {
	if f.Weather == "" {
		return false
	}
	state := f.WeatherState
	f.battle.SingleNotify(state.Effect, state, HookEnd, EventArgs{})
	state.removed = true
	f.Weather = ""
	f.WeatherState = nil
	return true
}

// PseudoWeatherState returns the state of pseudo-weather id, or nil.
func (f *Field) PseudoWeatherState(id dex.ID) *EffectState {
	for _, s := range f.PseudoWeather {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// HasPseudoWeather reports whether pseudo-weather id is in effect.
func (f *Field) HasPseudoWeather(id dex.ID) bool {
	return f.PseudoWeatherState(id) != nil
}

// AddPseudoWeather starts pseudo-weather id, or restarts it if present.
func (f *Field) AddPseudoWeather(id dex.ID, source *Pokemon, sourceEffect *Effect) bool {
	b := f.battle
	effect := b.Effect(KindPseudoWeather, id)
	args := EventArgs{Source: source, Effect: sourceEffect}
	if state := f.PseudoWeatherState(id); state != nil {
		if effect.Handler(HookRestart, ScopeSelf) == nil {
			return false
		}
		return b.SingleGate(effect, state, HookRestart, args) == Continue
	}
	state := b.newEffectState(id, effect)
	state.Source = source
	state.SourceEffect = sourceEffect
	state.Duration = effect.Duration
	if effect.DurationCallback != nil {
		state.Duration = effect.DurationCallback(&Context{Battle: b, EventArgs: args, State: state})
	}
	f.PseudoWeather = append(f.PseudoWeather, state)
	if b.SingleGate(effect, state, HookStart, args) != Continue {
		f.dropPseudoWeather(state)
		return false
	}
	return true
}

// RemovePseudoWeather ends pseudo-weather id.
func (f *Field) RemovePseudoWeather(id dex.ID) bool {
	state := f.PseudoWeatherState(id)
	if state == nil {
		return false
	}
	f.battle.SingleNotify(state.Effect, state, HookEnd, EventArgs{})
	f.dropPseudoWeather(state)
	return true
}

func (f *Field) dropPseudoWeather(state *EffectState) {
	state.removed = true
	for i, s := range f.PseudoWeather {
		if s == state {
			f.PseudoWeather = append(f.PseudoWeather[:i], f.PseudoWeather[i+1:]...)
			return
		}
	}
}

// WeatherUpkeep runs the Weather hook on each active combatant, fastest
// first, then resolves any faints it caused.
func (f *Field) WeatherUpkeep() {
	b := f.battle
	if f.Weather == "" {
		return
	}
	effect := f.WeatherState.Effect
	for _, p := range b.activeBySpeed() {
		if b.ended {
			return
		}
		if !p.canAct() {
			continue
		}
		b.RunNotify(HookWeather, EventArgs{Target: p, Effect: effect})
	}
	b.faintMessages(false, false, true)
}

// AnnounceWeather reports the weather starting, including the ability
// that set it.
func (f *Field) AnnounceWeather(name string, source *Pokemon, sourceEffect *Effect) {
	if sourceEffect != nil && sourceEffect.Kind == KindAbility && source != nil {
		f.battle.Add(rules.EventWeather, name, "[from] ability: "+sourceEffect.Name, "[of] "+source.FullName())
		return
	}
	f.battle.Add(rules.EventWeather, name)
}
