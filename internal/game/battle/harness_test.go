package battle

import (
	"testing"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// effectTable is a hand-built effect library for engine tests.
type effectTable map[EffectKind]map[dex.ID]*Effect

func (t effectTable) Lookup(kind EffectKind, id dex.ID) *Effect {
	return t[kind][id]
}

func (t effectTable) add(kind EffectKind, e *Effect) effectTable {
	if t[kind] == nil {
		t[kind] = make(map[dex.ID]*Effect)
	}
	e.Kind = kind
	t[kind][e.ID] = e
	return t
}

func testFormat(t *testing.T, effects effectTable) *Format {
	t.Helper()
	d, err := dex.Default()
	require.NoError(t, err)
	if effects == nil {
		effects = effectTable{}
	}
	return &Format{
		ID:       "test",
		Name:     "Test",
		Gen:      7,
		GameType: rules.GameTypeSingles,
		TeamSize: 1,
		Dex:      d,
		Effects:  effects,
	}
}

// newTestBattle starts a singles battle between p1 and p2.
func newTestBattle(t *testing.T, effects effectTable, p1, p2 PokemonSet) *Battle {
	t.Helper()
	b, err := New(testFormat(t, effects),
		PlayerSpec{Name: "Alice", Team: []PokemonSet{p1}},
		PlayerSpec{Name: "Bob", Team: []PokemonSet{p2}},
		Options{Seed: 11, Logger: zaptest.NewLogger(t)},
	)
	require.NoError(t, err)
	_, err = b.Start()
	require.NoError(t, err)
	return b
}

func mon(species string, moves ...string) PokemonSet {
	return PokemonSet{Species: species, Moves: moves}
}
