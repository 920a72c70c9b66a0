package battle

import (
	"go.uber.org/zap"
)

// residualHandler is one end-of-turn reaction, or a bare duration to
// count down.
type residualHandler struct {
	key     priorityKey
	handler *Handler
	state   *EffectState
	holder  *Pokemon
	side    *Side
	end     func()
}

// residualEvent runs every Residual handler in priority order, counting
// down effect durations as it goes. An effect whose duration reaches
// zero ends instead of running.
func (b *Battle) residualEvent() {
	var list []residualHandler
	add := func(state *EffectState, holder *Pokemon, side *Side, end func()) {
		h := state.Effect.Handler(HookResidual, ScopeSelf)
		if h == nil && state.Duration == 0 {
			return
		}
		rh := residualHandler{handler: h, state: state, holder: holder, side: side, end: end}
		rh.key.EffectOrder = state.EffectOrder
		rh.key.SubOrder = state.Effect.Kind.subOrder()
		if h != nil {
			rh.key.Order = h.Order
			rh.key.Priority = h.Priority
			if h.SubOrder != 0 {
				rh.key.SubOrder = h.SubOrder
			}
		}
		if holder != nil {
			rh.key.Speed = holder.ActionSpeed()
		}
		list = append(list, rh)
	}

	for _, state := range b.ruleStates {
		add(state, nil, nil, nil)
	}
	if f := b.Field; f.WeatherState != nil {
		add(f.WeatherState, nil, nil, func() { f.ClearWeather() })
	}
	for _, state := range b.Field.PseudoWeather {
		id := state.ID
		add(state, nil, nil, func() { b.Field.RemovePseudoWeather(id) })
	}
	for _, side := range b.Sides {
		for _, state := range side.Conditions {
			s, id := side, state.ID
			add(state, nil, side, func() { s.RemoveCondition(id) })
		}
		for _, p := range side.Active {
			if p == nil || !p.IsActive {
				continue
			}
			holder := p
			for _, state := range pokemonStates(p) {
				var end func()
				switch state {
				case p.StatusState:
					end = func() { holder.CureStatus(false) }
				case p.AbilityState, p.ItemState:
				default:
					id := state.ID
					end = func() { holder.RemoveVolatile(id) }
				}
				add(state, p, nil, end)
			}
		}
	}

	speedSort(b.prng, list, func(x, y residualHandler) int {
		return comparePriority(x.key, y.key)
	})

	for _, rh := range list {
		if rh.holder != nil && rh.holder.Fainted {
			continue
		}
		if !rh.state.Active() {
			continue
		}
		if rh.end != nil && rh.state.Duration > 0 {
			rh.state.Duration--
			if rh.state.Duration == 0 {
				b.logger.Debug("effect expired",
					zap.String("battle_id", b.ID),
					zap.Int("turn", b.Turn),
					zap.String("effect", string(rh.state.ID)),
				)
				rh.end()
				if b.ended {
					return
				}
				continue
			}
		}
		if rh.handler != nil && rh.handler.Notify != nil && !effectSuppressed(rh.state.Effect, rh.holder, HookResidual) {
			args := EventArgs{Target: rh.holder, Side: rh.side}
			if b.enter(HookResidual) {
				rh.handler.Notify(&Context{EventArgs: args, Battle: b, Hook: HookResidual, State: rh.state, frame: newEventFrame()})
				b.leave(HookResidual)
			}
		}
		b.faintMessages(false, false, true)
		if b.ended {
			return
		}
	}
}
