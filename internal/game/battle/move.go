package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
)

// hitData is what one execution of a move recorded about one target.
type hitData struct {
	crit          bool
	effectiveness int
}

// ActiveMove is a per-execution copy of a move. Handlers may change its
// power, type, priority or flags without touching the dex entry.
type ActiveMove struct {
	dex.MoveData

	Effect       *Effect
	SourceEffect *Effect

	Hit              int
	TotalDamage      int
	SpreadHit        bool
	IsExternal       bool
	PranksterBoosted bool
	// SelfDropped is set once a single-hit move has applied its self
	// boosts, so later targets of a spread move do not apply them again.
	SelfDropped bool

	hitTargets map[*Pokemon]*hitData
	stages     *stageTracker
}

// newActiveMove copies the dex entry for id.
func (b *Battle) newActiveMove(id dex.ID) (*ActiveMove, error) {
	data, ok := b.dex.Move(string(id))
	if !ok {
		return nil, newError(CodeDataInconsistency, "unknown move %q", id)
	}
	m := &ActiveMove{MoveData: *data}
	m.Flags = append([]string(nil), data.Flags...)
	m.Boosts = data.Boosts.Clone()
	m.Secondaries = append([]dex.Secondary(nil), data.Secondaries...)
	m.Effect = b.Effect(KindMove, id)
	return m, nil
}

// mustActiveMove is newActiveMove for ids already validated at team
// construction or coded into effects.
func (b *Battle) mustActiveMove(id dex.ID) *ActiveMove {
	m, err := b.newActiveMove(id)
	if err != nil {
		b.fail(wrapError(CodeDataInconsistency, err, "build active move"))
		return nil
	}
	return m
}

// hitDataFor returns the per-target record, creating it on first use.
func (m *ActiveMove) hitDataFor(target *Pokemon) *hitData {
	if m.hitTargets == nil {
		m.hitTargets = make(map[*Pokemon]*hitData)
	}
	hd, ok := m.hitTargets[target]
	if !ok {
		hd = &hitData{}
		m.hitTargets[target] = hd
	}
	return hd
}

// Crit reports whether the move landed a critical hit on target.
func (m *ActiveMove) Crit(target *Pokemon) bool {
	if hd, ok := m.hitTargets[target]; ok {
		return hd.crit
	}
	return false
}

// TypeEffectiveness returns the effectiveness steps recorded against
// target.
func (m *ActiveMove) TypeEffectiveness(target *Pokemon) int {
	if hd, ok := m.hitTargets[target]; ok {
		return hd.effectiveness
	}
	return 0
}

// IsMultiHit reports whether the move strikes more than once.
func (m *ActiveMove) IsMultiHit() bool {
	return len(m.MultiHit) > 0
}

// IsStatus reports whether the move is a status move.
func (m *ActiveMove) IsStatus() bool {
	return m.Category == dex.CategoryStatus
}

// hasSelfEffect reports whether the move carries a self effect.
func (m *ActiveMove) hasSelfEffect() bool {
	return m.Self != nil && (len(m.Self.Boosts) > 0 || m.Self.VolatileStatus != "")
}
