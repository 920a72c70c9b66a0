// Package watchers keeps per-side battle statistics by following the
// battle's event stream.
package watchers

import (
	"strings"

	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// Watcher keys.
const (
	KeyMovesUsed = "moves_used"
	KeyFaints    = "faints"
	KeySwitches  = "switches"
)

// SideOf extracts the side id from a protocol ident such as "p1a: Pikachu"
// or "p2: Gengar".
func SideOf(ident string) string {
	head, _, ok := strings.Cut(ident, ":")
	if !ok || len(head) < 2 {
		return ""
	}
	return head[:2]
}

// pokemonKey drops the slot letter so a combatant keeps one key wherever
// it stands.
func pokemonKey(ident string) string {
	side := SideOf(ident)
	_, name, _ := strings.Cut(ident, ":")
	return side + ":" + name
}

// counter is a per-side tally with a per-turn part.
type counter struct {
	total map[string]int
	turn  map[string]int
}

func newCounter() counter {
	return counter{total: make(map[string]int), turn: make(map[string]int)}
}

func (c *counter) inc(side string) {
	c.total[side]++
	c.turn[side]++
}

func (c *counter) reset() {
	c.turn = make(map[string]int)
}

// MovesUsedWatcher counts executed moves per side and per combatant.
type MovesUsedWatcher struct {
	counter
	byPokemon map[string]map[string]int
}

func NewMovesUsedWatcher() *MovesUsedWatcher {
	return &MovesUsedWatcher{counter: newCounter(), byPokemon: make(map[string]map[string]int)}
}

func (w *MovesUsedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventMove || len(event.Args) < 2 {
		return
	}
	side := SideOf(event.Args[0])
	if side == "" {
		return
	}
	w.inc(side)
	key := pokemonKey(event.Args[0])
	if w.byPokemon[key] == nil {
		w.byPokemon[key] = make(map[string]int)
	}
	w.byPokemon[key][event.Args[1]]++
}

func (w *MovesUsedWatcher) Reset()                    { w.reset() }
func (w *MovesUsedWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeSide }
func (w *MovesUsedWatcher) Key() string               { return KeyMovesUsed }

// Count returns the moves side has used in the battle.
func (w *MovesUsedWatcher) Count(side string) int { return w.total[side] }

// CountThisTurn returns the moves side has used this turn.
func (w *MovesUsedWatcher) CountThisTurn(side string) int { return w.turn[side] }

// Uses returns how often the combatant named ident used the named move.
func (w *MovesUsedWatcher) Uses(ident, move string) int {
	return w.byPokemon[pokemonKey(ident)][move]
}

// FaintsWatcher counts fainted combatants per side.
type FaintsWatcher struct {
	counter
}

func NewFaintsWatcher() *FaintsWatcher {
	return &FaintsWatcher{counter: newCounter()}
}

func (w *FaintsWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventFaint || len(event.Args) == 0 {
		return
	}
	if side := SideOf(event.Args[0]); side != "" {
		w.inc(side)
	}
}

func (w *FaintsWatcher) Reset()                    { w.reset() }
func (w *FaintsWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeSide }
func (w *FaintsWatcher) Key() string               { return KeyFaints }

// Count returns how many of side's combatants have fainted.
func (w *FaintsWatcher) Count(side string) int { return w.total[side] }

// CountThisTurn returns side's faints in the current turn.
func (w *FaintsWatcher) CountThisTurn(side string) int { return w.turn[side] }

// SwitchesWatcher counts switch-ins after the leads, with forced ones
// (drags) tallied separately as well.
type SwitchesWatcher struct {
	counter
	drags map[string]int
}

func NewSwitchesWatcher() *SwitchesWatcher {
	return &SwitchesWatcher{counter: newCounter(), drags: make(map[string]int)}
}

func (w *SwitchesWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSwitch && event.Type != rules.EventDrag {
		return
	}
	// Leads come out before turn 1.
	if event.Turn == 0 || len(event.Args) == 0 {
		return
	}
	side := SideOf(event.Args[0])
	if side == "" {
		return
	}
	w.inc(side)
	if event.Type == rules.EventDrag {
		w.drags[side]++
	}
}

func (w *SwitchesWatcher) Reset()                    { w.reset() }
func (w *SwitchesWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeSide }
func (w *SwitchesWatcher) Key() string               { return KeySwitches }

// Count returns side's switch-ins, drags included.
func (w *SwitchesWatcher) Count(side string) int { return w.total[side] }

// Drags returns how often side was forced out.
func (w *SwitchesWatcher) Drags(side string) int { return w.drags[side] }
