package watchers

import (
	"testing"

	"github.com/magefree/battle-sim-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
)

func at(turn int, t rules.EventType, args ...string) rules.Event {
	e := rules.NewEvent(t, args...)
	e.Turn = turn
	return e
}

func TestSideOf(t *testing.T) {
	tests := map[string]string{
		"p1a: Pikachu": "p1",
		"p2b: Gengar":  "p2",
		"p2: Lapras":   "p2",
		"Pikachu":      "",
		"p: x":         "",
	}
	for ident, want := range tests {
		assert.Equal(t, want, SideOf(ident), ident)
	}
}

func TestMovesUsedWatcher(t *testing.T) {
	w := NewMovesUsedWatcher()
	w.Watch(at(1, rules.EventMove, "p1a: Pikachu", "Thunderbolt", "p2a: Gyarados"))
	w.Watch(at(1, rules.EventMove, "p2a: Gyarados", "Waterfall", "p1a: Pikachu"))
	w.Watch(at(1, rules.EventMove, "p1b: Pikachu", "Thunderbolt", "p2a: Gyarados"))
	w.Watch(at(1, rules.EventDamage, "p2a: Gyarados", "10/100"))
	w.Watch(at(1, rules.EventMove, "garbage"))

	assert.Equal(t, 2, w.Count("p1"))
	assert.Equal(t, 1, w.Count("p2"))
	assert.Equal(t, 2, w.Uses("p1a: Pikachu", "Thunderbolt"), "slot letter is ignored")
	assert.Equal(t, 0, w.Uses("p1a: Pikachu", "Surf"))

	w.Reset()
	assert.Equal(t, 0, w.CountThisTurn("p1"))
	assert.Equal(t, 2, w.Count("p1"), "totals survive a reset")
	assert.Equal(t, KeyMovesUsed, w.Key())
	assert.Equal(t, rules.WatcherScopeSide, w.Scope())
}

func TestFaintsWatcher(t *testing.T) {
	w := NewFaintsWatcher()
	w.Watch(at(3, rules.EventFaint, "p2a: Magikarp"))
	w.Watch(at(3, rules.EventSwitch, "p2a: Gyarados", "Gyarados", "100/100"))
	assert.Equal(t, 1, w.Count("p2"))
	assert.Equal(t, 1, w.CountThisTurn("p2"))
	assert.Equal(t, 0, w.Count("p1"))
	w.Reset()
	assert.Equal(t, 0, w.CountThisTurn("p2"))
	assert.Equal(t, 1, w.Count("p2"))
}

func TestSwitchesWatcher(t *testing.T) {
	w := NewSwitchesWatcher()
	w.Watch(at(0, rules.EventSwitch, "p1a: Pikachu", "Pikachu", "100/100"))
	w.Watch(at(2, rules.EventSwitch, "p1a: Lapras", "Lapras", "100/100"))
	w.Watch(at(4, rules.EventDrag, "p1a: Pikachu", "Pikachu", "100/100"))
	assert.Equal(t, 2, w.Count("p1"), "leads are not counted")
	assert.Equal(t, 1, w.Drags("p1"))
	assert.Equal(t, 0, w.Count("p2"))
}

func TestStatsFollowsBus(t *testing.T) {
	bus := rules.NewEventBus()
	stats := NewStats()
	stats.Attach(bus)

	bus.Publish(at(0, rules.EventSwitch, "p1a: Pikachu", "Pikachu", "100/100"))
	bus.Publish(at(1, rules.EventTurn, "1"))
	bus.Publish(at(1, rules.EventMove, "p1a: Pikachu", "Thunderbolt", "p2a: Gyarados"))
	bus.Publish(at(1, rules.EventFaint, "p2a: Gyarados"))
	bus.Publish(at(1, rules.EventSwitch, "p2a: Lapras", "Lapras", "100/100"))

	assert.Equal(t, SideStats{MovesUsed: 1, MovesThisTurn: 1}, stats.Side("p1"))
	assert.Equal(t, SideStats{Faints: 1, Switches: 1}, stats.Side("p2"))

	bus.Publish(at(2, rules.EventTurn, "2"))
	assert.Equal(t, SideStats{MovesUsed: 1}, stats.Side("p1"))

	stats.Detach()
	bus.Publish(at(2, rules.EventMove, "p1a: Pikachu", "Thunderbolt", "p2a: Lapras"))
	assert.Equal(t, 1, stats.Moves().Count("p1"))
	assert.NotNil(t, stats.Registry().Get(KeyFaints))
}
