// Package mods holds the behavior of conditions, abilities, items, moves
// and rules, and the formats that combine them with a data set.
package mods

import (
	"fmt"
	"sync"

	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
)

type libraryKey struct {
	kind battle.EffectKind
	id   dex.ID
}

// Library is a set of effect definitions keyed by kind and id. It
// implements battle.EffectLibrary.
type Library struct {
	effects map[libraryKey]*battle.Effect
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{effects: make(map[libraryKey]*battle.Effect)}
}

// Add registers effects under kind. An id registered twice under the same
// kind is a programming error.
func (l *Library) Add(kind battle.EffectKind, effects ...*battle.Effect) {
	for _, e := range effects {
		key := libraryKey{kind: kind, id: e.ID}
		if _, dup := l.effects[key]; dup {
			panic(fmt.Sprintf("mods: %s %s registered twice", kind, e.ID))
		}
		e.Kind = kind
		l.effects[key] = e
	}
}

// Lookup implements battle.EffectLibrary.
func (l *Library) Lookup(kind battle.EffectKind, id dex.ID) *battle.Effect {
	return l.effects[libraryKey{kind: kind, id: id}]
}

// Len returns the number of registered effects.
func (l *Library) Len() int {
	return len(l.effects)
}

// Override returns a copy of l in which effects replace the entries of
// kind with the same id.
func (l *Library) Override(kind battle.EffectKind, effects ...*battle.Effect) *Library {
	out := &Library{effects: make(map[libraryKey]*battle.Effect, len(l.effects)+len(effects))}
	for k, e := range l.effects {
		out.effects[k] = e
	}
	for _, e := range effects {
		e.Kind = kind
		out.effects[libraryKey{kind: kind, id: e.ID}] = e
	}
	return out
}

var standard = sync.OnceValue(func() *Library {
	l := NewLibrary()
	l.Add(battle.KindStatus, statuses()...)
	l.Add(battle.KindCondition, volatiles()...)
	l.Add(battle.KindWeather, weathers(false)...)
	l.Add(battle.KindSideCondition, sideConditions()...)
	l.Add(battle.KindPseudoWeather, pseudoWeathers()...)
	l.Add(battle.KindAbility, abilities()...)
	l.Add(battle.KindItem, items()...)
	l.Add(battle.KindMove, moves()...)
	l.Add(battle.KindRule, ruleEffects()...)
	return l
})

// Standard returns the shared library used by most formats. It must not
// be modified; use Override to derive variants.
func Standard() *Library {
	return standard()
}

var poweredUp = sync.OnceValue(func() *Library {
	l := Standard().Override(battle.KindWeather, weathers(true)...)
	l = l.Override(battle.KindCondition, aura())
	return l.Override(battle.KindRule, poweredUpRule())
})

// PoweredUp returns the library of the Powered Up variant: weather set by
// an ability lasts twice as long, and the side behind on combatants gains
// an aura each turn.
func PoweredUp() *Library {
	return poweredUp()
}
