package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// EffectKind identifies what an effect is attached to.
type EffectKind int

const (
	KindCondition EffectKind = iota
	KindStatus
	KindWeather
	KindSideCondition
	KindPseudoWeather
	KindAbility
	KindItem
	KindMove
	KindRule
)

func (k EffectKind) String() string {
	switch k {
	case KindCondition:
		return "Condition"
	case KindStatus:
		return "Status"
	case KindWeather:
		return "Weather"
	case KindSideCondition:
		return "SideCondition"
	case KindPseudoWeather:
		return "PseudoWeather"
	case KindAbility:
		return "Ability"
	case KindItem:
		return "Item"
	case KindMove:
		return "Move"
	case KindRule:
		return "Rule"
	}
	return "Unknown"
}

// subOrder is the tie-break rank between effect kinds at equal priority.
// Lower runs first.
func (k EffectKind) subOrder() int {
	switch k {
	case KindCondition, KindStatus:
		return 2
	case KindSideCondition:
		return 4
	case KindWeather, KindPseudoWeather, KindRule:
		return 5
	case KindAbility:
		return 7
	case KindItem:
		return 8
	}
	return 0
}

// Scope restricts which events a handler observes relative to the effect
// holder.
type Scope int

const (
	// ScopeSelf fires when the holder is the event target.
	ScopeSelf Scope = iota
	// ScopeFoe fires when the event target is an opponent of the holder.
	ScopeFoe
	// ScopeAlly fires when the event target is the holder or its ally.
	ScopeAlly
	// ScopeSource fires when the holder is the event source.
	ScopeSource
	// ScopeAny fires for every event.
	ScopeAny
)

// Outcome is the result of a gate handler.
type Outcome int

const (
	// Continue lets the event proceed.
	Continue Outcome = iota
	// Fail stops the event and reports a failure.
	Fail
	// Null stops the event silently; a handler already explained why.
	Null
	// NotFail stops the event without it counting as a failure.
	NotFail
)

// Handler is one reaction of an effect to a hook. Exactly one of the
// function fields is set, matching the hook's kind.
type Handler struct {
	Hook     Hook
	Scope    Scope
	Order    int // 0 means unordered and runs after every ordered handler
	Priority int
	SubOrder int // overrides the kind-derived sub-order when non-zero

	Modify   func(c *Context, v int) int
	Gate     func(c *Context) Outcome
	Notify   func(c *Context)
	Override func(c *Context, move dex.ID) dex.ID
	Boost    func(c *Context, boosts dex.BoostTable)
}

// Effect is a reusable definition of behavior attached to a holder:
// a status, volatile, weather, side condition, ability, item, move or rule.
type Effect struct {
	ID       dex.ID
	Name     string
	Kind     EffectKind
	Duration int
	// DurationCallback, when set, decides the duration at creation.
	DurationCallback func(c *Context) int
	Handlers []Handler
}

// Handler returns the effect's handler for hook at scope, if any.
func (e *Effect) Handler(hook Hook, scope Scope) *Handler {
	if e == nil {
		return nil
	}
	for i := range e.Handlers {
		h := &e.Handlers[i]
		if h.Hook == hook && h.Scope == scope {
			return h
		}
	}
	return nil
}

// FullName is the display name used in protocol lines, such as
// "ability: Intimidate".
func (e *Effect) FullName() string {
	switch e.Kind {
	case KindAbility:
		return "ability: " + e.Name
	case KindItem:
		return "item: " + e.Name
	case KindMove:
		return "move: " + e.Name
	}
	return e.Name
}

// EffectState is the per-instance data of an effect on a holder.
type EffectState struct {
	ID           dex.ID
	Effect       *Effect
	Pokemon      *Pokemon // holder, for pokemon-level effects
	Side         *Side    // holder, for side conditions
	Source       *Pokemon
	SourceEffect *Effect
	Duration     int
	EffectOrder  int
	Counter      int
	Layers       int
	Time         int
	StartTime    int
	Move         dex.ID
	TargetLoc    int
	Flag         bool

	removed bool
}

// Active reports whether the state is still attached to its holder.
func (s *EffectState) Active() bool {
	return s != nil && !s.removed
}

// EffectLibrary resolves effect definitions by kind and id. A nil result
// means the id has no behavior.
type EffectLibrary interface {
	Lookup(kind EffectKind, id dex.ID) *Effect
}

// EventArgs describes the subject of a dispatched event.
type EventArgs struct {
	Target   *Pokemon
	Side     *Side
	Source   *Pokemon
	Effect   *Effect
	Move     *ActiveMove
	TypeName string
	Status   dex.ID
	// OnEffect includes Effect's own handler for the hook.
	OnEffect bool
}

// Context is passed to every handler invocation.
type Context struct {
	EventArgs
	Battle *Battle
	Hook   Hook
	State  *EffectState

	frame *eventFrame
}

// Holder returns the pokemon holding the effect being run, if any.
func (c *Context) Holder() *Pokemon {
	if c.State == nil {
		return nil
	}
	return c.State.Pokemon
}

// ChainModify multiplies the event's pending modifier by num/den using
// 4096-based fixed point.
func (c *Context) ChainModify(num, den int) {
	if c.frame == nil {
		return
	}
	c.frame.chain(num * 4096 / den)
}

// ChainModifyRaw multiplies the event's pending modifier by a value
// already expressed over 4096.
func (c *Context) ChainModifyRaw(mod4096 int) {
	if c.frame == nil {
		return
	}
	c.frame.chain(mod4096)
}

// Add appends a protocol line to the battle log.
func (c *Context) Add(eventType rules.EventType, args ...string) {
	c.Battle.Add(eventType, args...)
}
