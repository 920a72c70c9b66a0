package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWatcher struct {
	key          string
	scope        WatcherScope
	total, turn  int
	resets       int
	watchedTypes []EventType
}

func (w *countingWatcher) Watch(event Event) {
	w.watchedTypes = append(w.watchedTypes, event.Type)
	if event.Type == EventMove {
		w.total++
		w.turn++
	}
}

func (w *countingWatcher) Reset() {
	w.turn = 0
	w.resets++
}

func (w *countingWatcher) Scope() WatcherScope { return w.scope }
func (w *countingWatcher) Key() string         { return w.key }

func TestWatcherRegistry(t *testing.T) {
	registry := NewWatcherRegistry()
	moves := &countingWatcher{key: "moves", scope: WatcherScopeSide}
	other := &countingWatcher{key: "other", scope: WatcherScopeBattle}
	require.NoError(t, registry.Add(moves))
	require.NoError(t, registry.Add(other))
	assert.Error(t, registry.Add(&countingWatcher{key: "moves"}))

	assert.Same(t, moves, registry.Get("moves"))
	assert.Nil(t, registry.Get("missing"))
	assert.Equal(t, []Watcher{moves}, registry.ByScope(WatcherScopeSide))

	registry.Notify(NewEvent(EventMove, "p1a: Pikachu", "Tackle", "p2a: Eevee"))
	registry.Notify(NewEvent(EventMove, "p2a: Eevee", "Tackle", "p1a: Pikachu"))
	assert.Equal(t, 2, moves.total)
	assert.Equal(t, 2, moves.turn)

	registry.Notify(NewEvent(EventTurn, "2"))
	assert.Equal(t, 2, moves.total)
	assert.Equal(t, 0, moves.turn)
	assert.Equal(t, 1, moves.resets)
	assert.Equal(t, 1, other.resets)

	registry.Remove("other")
	assert.Nil(t, registry.Get("other"))
	registry.Notify(NewEvent(EventFaint, "p1a: Pikachu"))
	assert.Len(t, other.watchedTypes, 3)
	assert.Len(t, moves.watchedTypes, 4)
}

func TestWatcherRegistryAttach(t *testing.T) {
	bus := NewEventBus()
	registry := NewWatcherRegistry()
	w := &countingWatcher{key: "moves"}
	require.NoError(t, registry.Add(w))

	registry.Attach(bus)
	bus.Publish(NewEvent(EventMove, "p1a: Pikachu", "Tackle"))
	assert.Equal(t, 1, w.total)

	other := NewEventBus()
	registry.Attach(other)
	bus.Publish(NewEvent(EventMove, "p1a: Pikachu", "Tackle"))
	assert.Equal(t, 1, w.total)
	other.Publish(NewEvent(EventMove, "p1a: Pikachu", "Tackle"))
	assert.Equal(t, 2, w.total)

	registry.Detach()
	other.Publish(NewEvent(EventMove, "p1a: Pikachu", "Tackle"))
	assert.Equal(t, 2, w.total)
	registry.Detach()
}

func TestWatcherScopeString(t *testing.T) {
	assert.Equal(t, "BATTLE", WatcherScopeBattle.String())
	assert.Equal(t, "SIDE", WatcherScopeSide.String())
	assert.Equal(t, "POKEMON", WatcherScopePokemon.String())
	assert.Equal(t, "UNKNOWN", WatcherScope(9).String())
}
