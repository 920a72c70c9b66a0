package battle

import (
	"math"
	"sort"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"go.uber.org/zap"
)

// eventFrame accumulates chained modifiers for one dispatch. Every
// dispatch gets its own frame so nested events never touch the outer
// accumulator.
type eventFrame struct {
	modifier int
}

func newEventFrame() *eventFrame {
	return &eventFrame{modifier: 4096}
}

func (f *eventFrame) chain(next int) {
	f.modifier = (f.modifier*next + 2048) >> 12
}

func (f *eventFrame) apply(v int) int {
	if f.modifier == 4096 || v < 0 {
		return v
	}
	return (v*f.modifier + 2047) / 4096
}

// boundHandler is a handler paired with the instance it runs for.
type boundHandler struct {
	handler     *Handler
	effect      *Effect
	state       *EffectState
	holder      *Pokemon
	order       int
	priority    int
	subOrder    int
	effectOrder int
}

func bindHandler(h *Handler, effect *Effect, state *EffectState, holder *Pokemon) boundHandler {
	sub := h.SubOrder
	if sub == 0 {
		sub = effect.Kind.subOrder()
	}
	bh := boundHandler{
		handler:  h,
		effect:   effect,
		state:    state,
		holder:   holder,
		order:    h.Order,
		priority: h.Priority,
		subOrder: sub,
	}
	if state != nil {
		bh.effectOrder = state.EffectOrder
	}
	return bh
}

// pokemonStates lists the effect instances carried by a combatant in the
// order they are consulted.
func pokemonStates(p *Pokemon) []*EffectState {
	var out []*EffectState
	if p.StatusState != nil {
		out = append(out, p.StatusState)
	}
	out = append(out, p.Volatiles...)
	if p.AbilityState != nil {
		out = append(out, p.AbilityState)
	}
	if p.ItemState != nil {
		out = append(out, p.ItemState)
	}
	return out
}

func collectPokemon(out []boundHandler, p *Pokemon, hook Hook, scope Scope) []boundHandler {
	for _, state := range pokemonStates(p) {
		if h := state.Effect.Handler(hook, scope); h != nil {
			out = append(out, bindHandler(h, state.Effect, state, p))
		}
	}
	return out
}

func collectStates(out []boundHandler, states []*EffectState, hook Hook, scope Scope) []boundHandler {
	for _, state := range states {
		if h := state.Effect.Handler(hook, scope); h != nil {
			out = append(out, bindHandler(h, state.Effect, state, nil))
		}
	}
	return out
}

// fieldStates lists the weather and pseudo-weather instances.
func (b *Battle) fieldStates() []*EffectState {
	var out []*EffectState
	if b.Field.WeatherState != nil {
		out = append(out, b.Field.WeatherState)
	}
	return append(out, b.Field.PseudoWeather...)
}

// findHandlers collects every handler that should observe hook for args,
// derived from current state, and returns them sorted.
func (b *Battle) findHandlers(hook Hook, args EventArgs) []boundHandler {
	var out []boundHandler
	target := args.Target
	prefixed := !unprefixed(hook)

	if target != nil {
		if target.IsActive || (args.Source != nil && args.Source.IsActive) {
			out = collectPokemon(out, target, hook, ScopeSelf)
		}
		if prefixed {
			for _, ally := range target.AlliesAndSelf() {
				out = collectPokemon(out, ally, hook, ScopeAlly)
				out = collectPokemon(out, ally, hook, ScopeAny)
			}
			for _, foe := range target.Foes() {
				out = collectPokemon(out, foe, hook, ScopeFoe)
				out = collectPokemon(out, foe, hook, ScopeAny)
			}
		}
	}
	if args.Source != nil && prefixed {
		out = collectPokemon(out, args.Source, hook, ScopeSource)
	}

	side := args.Side
	if target != nil {
		side = target.Side
	}
	if side != nil {
		for _, s := range b.Sides {
			if s == side {
				out = collectStates(out, s.Conditions, hook, ScopeSelf)
			} else if prefixed {
				out = collectStates(out, s.Conditions, hook, ScopeFoe)
			}
			if prefixed {
				out = collectStates(out, s.Conditions, hook, ScopeAny)
			}
		}
	}

	out = collectStates(out, b.fieldStates(), hook, ScopeSelf)
	out = collectStates(out, b.ruleStates, hook, ScopeSelf)

	if args.OnEffect && args.Effect != nil {
		if h := args.Effect.Handler(hook, ScopeSelf); h != nil {
			out = append([]boundHandler{bindHandler(h, args.Effect, nil, target)}, out...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lessHandler(out[i], out[j])
	})
	return out
}

func lessHandler(a, b boundHandler) bool {
	ao, bo := a.order, b.order
	if ao == 0 {
		ao = math.MaxInt32
	}
	if bo == 0 {
		bo = math.MaxInt32
	}
	if ao != bo {
		return ao < bo
	}
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.subOrder != b.subOrder {
		return a.subOrder < b.subOrder
	}
	return a.effectOrder < b.effectOrder
}

// suppressed reports whether a collected handler must be skipped at the
// moment it would run.
func suppressed(h boundHandler, hook Hook) bool {
	if h.state != nil && h.state.removed {
		return true
	}
	return effectSuppressed(h.effect, h.holder, hook)
}

func effectSuppressed(effect *Effect, holder *Pokemon, hook Hook) bool {
	if holder == nil || effect == nil {
		return false
	}
	switch effect.Kind {
	case KindStatus:
		return holder.Status != effect.ID
	case KindItem:
		switch hook {
		case HookStart, HookSwitchIn, HookTakeItem:
			return false
		}
		return holder.IgnoringItem()
	case KindAbility:
		if hook == HookEnd {
			return false
		}
		return holder.IgnoringAbility()
	}
	return false
}

func (b *Battle) enter(hook Hook) bool {
	if err := b.depth.Enter(string(hook)); err != nil {
		b.Add(rules.EventMessage, "STACK LIMIT EXCEEDED")
		b.logger.Warn("event dispatch too deep",
			zap.String("battle_id", b.ID),
			zap.String("hook", string(hook)),
			zap.Int("depth", b.depth.Depth()),
		)
		return false
	}
	return true
}

func (b *Battle) leave(hook Hook) {
	if err := b.depth.Leave(string(hook)); err != nil {
		b.logger.Warn("event dispatch unbalanced",
			zap.String("battle_id", b.ID),
			zap.String("hook", string(hook)),
			zap.Error(err),
		)
	}
}

func (b *Battle) newContext(hook Hook, args EventArgs, h boundHandler, frame *eventFrame) *Context {
	return &Context{EventArgs: args, Battle: b, Hook: hook, State: h.state, frame: frame}
}

// RunModify folds v through every Modify handler for hook. A handler that
// turns a non-zero value into zero halts the fold. Chained modifiers are
// applied once at the end.
func (b *Battle) RunModify(hook Hook, args EventArgs, v int) int {
	if !b.enter(hook) {
		return v
	}
	defer b.leave(hook)
	frame := newEventFrame()
	for _, h := range b.findHandlers(hook, args) {
		if h.handler.Modify == nil || suppressed(h, hook) {
			continue
		}
		in := v
		v = h.handler.Modify(b.newContext(hook, args, h, frame), v)
		if in != 0 && v == 0 {
			return 0
		}
	}
	return frame.apply(v)
}

// RunGate runs Gate handlers for hook until one returns anything but
// Continue.
func (b *Battle) RunGate(hook Hook, args EventArgs) Outcome {
	if !b.enter(hook) {
		return Fail
	}
	defer b.leave(hook)
	frame := newEventFrame()
	for _, h := range b.findHandlers(hook, args) {
		if h.handler.Gate == nil || suppressed(h, hook) {
			continue
		}
		if out := h.handler.Gate(b.newContext(hook, args, h, frame)); out != Continue {
			return out
		}
	}
	return Continue
}

// RunNotify runs every Notify handler for hook.
func (b *Battle) RunNotify(hook Hook, args EventArgs) {
	if !b.enter(hook) {
		return
	}
	defer b.leave(hook)
	frame := newEventFrame()
	for _, h := range b.findHandlers(hook, args) {
		if h.handler.Notify == nil || suppressed(h, hook) {
			continue
		}
		h.handler.Notify(b.newContext(hook, args, h, frame))
	}
}

// RunOverride folds a move id through every Override handler for hook.
func (b *Battle) RunOverride(hook Hook, args EventArgs, move dex.ID) dex.ID {
	if !b.enter(hook) {
		return move
	}
	defer b.leave(hook)
	frame := newEventFrame()
	for _, h := range b.findHandlers(hook, args) {
		if h.handler.Override == nil || suppressed(h, hook) {
			continue
		}
		move = h.handler.Override(b.newContext(hook, args, h, frame), move)
	}
	return move
}

// RunBoost lets every Boost handler for hook edit boosts in place.
func (b *Battle) RunBoost(hook Hook, args EventArgs, boosts dex.BoostTable) {
	if !b.enter(hook) {
		return
	}
	defer b.leave(hook)
	frame := newEventFrame()
	for _, h := range b.findHandlers(hook, args) {
		if h.handler.Boost == nil || suppressed(h, hook) {
			continue
		}
		h.handler.Boost(b.newContext(hook, args, h, frame), boosts)
	}
}

// single resolves the one handler a SingleX call runs, or nil when the
// effect has none or is suppressed on its holder.
func (b *Battle) single(effect *Effect, state *EffectState, hook Hook, args EventArgs) (boundHandler, bool) {
	h := effect.Handler(hook, ScopeSelf)
	if h == nil {
		return boundHandler{}, false
	}
	holder := args.Target
	if holder == nil && state != nil {
		holder = state.Pokemon
	}
	if effectSuppressed(effect, holder, hook) {
		return boundHandler{}, false
	}
	return bindHandler(h, effect, state, holder), true
}

// SingleModify runs effect's own Modify handler for hook.
func (b *Battle) SingleModify(effect *Effect, state *EffectState, hook Hook, args EventArgs, v int) int {
	h, ok := b.single(effect, state, hook, args)
	if !ok || h.handler.Modify == nil {
		return v
	}
	if !b.enter(hook) {
		return v
	}
	defer b.leave(hook)
	frame := newEventFrame()
	v = h.handler.Modify(b.newContext(hook, args, h, frame), v)
	return frame.apply(v)
}

// SingleGate runs effect's own Gate handler for hook.
func (b *Battle) SingleGate(effect *Effect, state *EffectState, hook Hook, args EventArgs) Outcome {
	h, ok := b.single(effect, state, hook, args)
	if !ok || h.handler.Gate == nil {
		return Continue
	}
	if !b.enter(hook) {
		return Fail
	}
	defer b.leave(hook)
	return h.handler.Gate(b.newContext(hook, args, h, newEventFrame()))
}

// SingleNotify runs effect's own Notify handler for hook.
func (b *Battle) SingleNotify(effect *Effect, state *EffectState, hook Hook, args EventArgs) {
	h, ok := b.single(effect, state, hook, args)
	if !ok || h.handler.Notify == nil {
		return
	}
	if !b.enter(hook) {
		return
	}
	defer b.leave(hook)
	h.handler.Notify(b.newContext(hook, args, h, newEventFrame()))
}

// SingleOverride runs effect's own Override handler for hook.
func (b *Battle) SingleOverride(effect *Effect, state *EffectState, hook Hook, args EventArgs, move dex.ID) dex.ID {
	h, ok := b.single(effect, state, hook, args)
	if !ok || h.handler.Override == nil {
		return move
	}
	if !b.enter(hook) {
		return move
	}
	defer b.leave(hook)
	return h.handler.Override(b.newContext(hook, args, h, newEventFrame()), move)
}
