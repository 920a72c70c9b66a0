package rules

import (
	"fmt"
	"sync"
)

// WatcherScope says what a watcher keeps counts for.
type WatcherScope int

const (
	// WatcherScopeBattle tracks the battle as a whole.
	WatcherScopeBattle WatcherScope = iota
	// WatcherScopeSide tracks each side separately.
	WatcherScopeSide
	// WatcherScopePokemon tracks individual combatants.
	WatcherScopePokemon
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeBattle:
		return "BATTLE"
	case WatcherScopeSide:
		return "SIDE"
	case WatcherScopePokemon:
		return "POKEMON"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes the event stream and keeps running counts. Reset
// clears the per-turn part of its state; totals survive it.
type Watcher interface {
	Watch(event Event)
	Reset()
	Scope() WatcherScope
	Key() string
}

// WatcherRegistry fans events out to its watchers in registration order
// and resets them at the start of every turn.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	order    []string

	bus    *EventBus
	handle int
}

// NewWatcherRegistry returns an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{watchers: make(map[string]Watcher), handle: -1}
}

// Add registers w. Keys must be unique.
func (r *WatcherRegistry) Add(w Watcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := w.Key()
	if _, ok := r.watchers[key]; ok {
		return fmt.Errorf("watcher %q already registered", key)
	}
	r.watchers[key] = w
	r.order = append(r.order, key)
	return nil
}

// Get returns the watcher registered under key, or nil.
func (r *WatcherRegistry) Get(key string) Watcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.watchers[key]
}

// Remove drops the watcher registered under key.
func (r *WatcherRegistry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchers[key]; !ok {
		return
	}
	delete(r.watchers, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// ByScope lists the watchers with the given scope.
func (r *WatcherRegistry) ByScope(scope WatcherScope) []Watcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Watcher
	for _, key := range r.order {
		if w := r.watchers[key]; w.Scope() == scope {
			out = append(out, w)
		}
	}
	return out
}

// Notify delivers event to every watcher. A turn line resets them first,
// so per-turn counts always describe the current turn.
func (r *WatcherRegistry) Notify(event Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		w := r.watchers[key]
		if event.Type == EventTurn {
			w.Reset()
		}
		w.Watch(event)
	}
}

// Attach subscribes the registry to bus. A registry follows one bus at a
// time; attaching again moves it.
func (r *WatcherRegistry) Attach(bus *EventBus) {
	r.Detach()
	handle := bus.Subscribe(r.Notify)
	r.mu.Lock()
	r.bus, r.handle = bus, handle
	r.mu.Unlock()
}

// Detach unsubscribes from the current bus, if any.
func (r *WatcherRegistry) Detach() {
	r.mu.Lock()
	bus, handle := r.bus, r.handle
	r.bus, r.handle = nil, -1
	r.mu.Unlock()
	if bus != nil {
		bus.Unsubscribe(handle)
	}
}
