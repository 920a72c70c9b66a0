package watchers

import (
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// SideStats summarises one side's battle so far.
type SideStats struct {
	MovesUsed     int
	MovesThisTurn int
	Faints        int
	Switches      int
	Drags         int
}

// Stats bundles the common watchers in one registry.
type Stats struct {
	registry *rules.WatcherRegistry
	moves    *MovesUsedWatcher
	faints   *FaintsWatcher
	switches *SwitchesWatcher
}

// NewStats creates the common watchers, not yet attached to any battle.
func NewStats() *Stats {
	s := &Stats{
		registry: rules.NewWatcherRegistry(),
		moves:    NewMovesUsedWatcher(),
		faints:   NewFaintsWatcher(),
		switches: NewSwitchesWatcher(),
	}
	for _, w := range []rules.Watcher{s.moves, s.faints, s.switches} {
		// keys are distinct constants
		_ = s.registry.Add(w)
	}
	return s
}

// Attach starts following bus.
func (s *Stats) Attach(bus *rules.EventBus) {
	s.registry.Attach(bus)
}

// Detach stops following the current bus; counts are kept.
func (s *Stats) Detach() {
	s.registry.Detach()
}

// Registry exposes the underlying registry so callers can add watchers.
func (s *Stats) Registry() *rules.WatcherRegistry {
	return s.registry
}

// Moves returns the moves-used watcher.
func (s *Stats) Moves() *MovesUsedWatcher { return s.moves }

// Side returns the summary for side.
func (s *Stats) Side(side string) SideStats {
	return SideStats{
		MovesUsed:     s.moves.Count(side),
		MovesThisTurn: s.moves.CountThisTurn(side),
		Faints:        s.faints.Count(side),
		Switches:      s.switches.Count(side),
		Drags:         s.switches.Drags(side),
	}
}
