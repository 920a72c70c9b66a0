package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// holder builds a battle where p1's Snorlax carries ability and item.
func holder(t *testing.T, ability, item []Handler) (*Battle, *Pokemon) {
	t.Helper()
	effects := effectTable{}.
		add(KindAbility, &Effect{ID: "thickfat", Name: "Thick Fat", Handlers: ability}).
		add(KindItem, &Effect{ID: "leftovers", Name: "Leftovers", Handlers: item})
	set := mon("Snorlax", "tackle")
	set.Item = "Leftovers"
	b := newTestBattle(t, effects, set, mon("Mew", "tackle"))
	return b, b.Sides[0].Active[0]
}

func TestRunModifyOrder(t *testing.T) {
	double := func(_ *Context, v int) int { return v * 2 }
	plusThree := func(_ *Context, v int) int { return v + 3 }

	tests := []struct {
		name    string
		ability Handler
		item    Handler
		want    int
	}{
		{
			name:    "higher priority first",
			ability: Handler{Hook: HookModifyDamage, Priority: 1, Modify: double},
			item:    Handler{Hook: HookModifyDamage, Priority: 5, Modify: plusThree},
			want:    26,
		},
		{
			name:    "order beats priority",
			ability: Handler{Hook: HookModifyDamage, Order: 1, Modify: double},
			item:    Handler{Hook: HookModifyDamage, Priority: 5, Modify: plusThree},
			want:    23,
		},
		{
			name:    "abilities before items at equal priority",
			ability: Handler{Hook: HookModifyDamage, Modify: double},
			item:    Handler{Hook: HookModifyDamage, Modify: plusThree},
			want:    23,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, p := holder(t, []Handler{tt.ability}, []Handler{tt.item})
			assert.Equal(t, tt.want, b.RunModify(HookModifyDamage, EventArgs{Target: p}, 10))
		})
	}
}

func TestRunModifyChains(t *testing.T) {
	b, p := holder(t,
		[]Handler{{Hook: HookModifyDamage, Modify: func(c *Context, v int) int {
			c.ChainModify(3, 2)
			return v
		}}},
		[]Handler{{Hook: HookModifyDamage, Modify: func(c *Context, v int) int {
			c.ChainModify(2, 1)
			return v
		}}},
	)
	assert.Equal(t, 300, b.RunModify(HookModifyDamage, EventArgs{Target: p}, 100))

	// no handler for the hook leaves the value alone
	assert.Equal(t, 100, b.RunModify(HookModifySpA, EventArgs{Target: p}, 100))
}

func TestRunModifyZeroHalts(t *testing.T) {
	called := false
	b, p := holder(t,
		[]Handler{{Hook: HookModifyDamage, Priority: 2, Modify: func(*Context, int) int { return 0 }}},
		[]Handler{{Hook: HookModifyDamage, Priority: 1, Modify: func(_ *Context, v int) int {
			called = true
			return v + 1
		}}},
	)
	assert.Equal(t, 0, b.RunModify(HookModifyDamage, EventArgs{Target: p}, 10))
	assert.False(t, called)
}

func TestRunGateStopsAtFirstVerdict(t *testing.T) {
	calls := 0
	b, p := holder(t,
		[]Handler{{Hook: HookTryHit, Priority: 3, Gate: func(*Context) Outcome {
			calls++
			return Null
		}}},
		[]Handler{{Hook: HookTryHit, Gate: func(*Context) Outcome {
			calls++
			return Fail
		}}},
	)
	assert.Equal(t, Null, b.RunGate(HookTryHit, EventArgs{Target: p}))
	assert.Equal(t, 1, calls)
}

func TestScopes(t *testing.T) {
	var seen []string
	record := func(tag string) func(*Context) {
		return func(*Context) { seen = append(seen, tag) }
	}
	b, p := holder(t,
		[]Handler{
			{Hook: HookAfterMove, Scope: ScopeSelf, Notify: record("self")},
			{Hook: HookAfterMove, Scope: ScopeFoe, Priority: -1, Notify: record("foe")},
		},
		[]Handler{{Hook: HookAfterMove, Scope: ScopeSource, Notify: record("source")}},
	)
	foe := b.Sides[1].Active[0]

	b.RunNotify(HookAfterMove, EventArgs{Target: p})
	assert.Equal(t, []string{"self"}, seen)

	seen = nil
	b.RunNotify(HookAfterMove, EventArgs{Target: foe, Source: p})
	assert.ElementsMatch(t, []string{"foe", "source"}, seen)
}

func TestNestedDispatchKeepsOuterFold(t *testing.T) {
	b, p := holder(t,
		[]Handler{{Hook: HookModifyDamage, Priority: 1, Modify: func(c *Context, v int) int {
			c.ChainModify(2, 1)
			inner := c.Battle.RunModify(HookModifyAtk, EventArgs{Target: c.Target}, 1)
			return v + inner
		}}},
		[]Handler{
			{Hook: HookModifyDamage, Modify: func(_ *Context, v int) int { return v + 1 }},
			{Hook: HookModifyAtk, Modify: func(c *Context, v int) int {
				c.ChainModify(5, 1)
				return v * 10
			}},
		},
	)
	// inner: 1*10 chained by 5 = 50; outer: (10+50+1) chained by 2
	assert.Equal(t, 122, b.RunModify(HookModifyDamage, EventArgs{Target: p}, 10))
}

func TestDispatchDepthLimit(t *testing.T) {
	b, p := holder(t,
		[]Handler{{Hook: HookModifyDamage, Modify: func(c *Context, v int) int {
			return c.Battle.RunModify(HookModifyDamage, c.EventArgs, v) + 1
		}}},
		nil,
	)
	require.NotPanics(t, func() {
		got := b.RunModify(HookModifyDamage, EventArgs{Target: p}, 0)
		assert.Positive(t, got)
	})
	found := false
	for _, e := range b.Log() {
		if e.String() == "|message|STACK LIMIT EXCEEDED" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRemovedStateSkippedMidDispatch(t *testing.T) {
	calls := 0
	effects := effectTable{}.
		add(KindCondition, &Effect{
			ID:   "marker",
			Name: "Marker",
			Handlers: []Handler{{Hook: HookAfterMove, Notify: func(*Context) {
				calls++
			}}},
		}).
		add(KindItem, &Effect{
			ID:   "leftovers",
			Name: "Leftovers",
			Handlers: []Handler{{Hook: HookAfterMove, Priority: 5, Notify: func(c *Context) {
				c.Target.RemoveVolatile("marker")
			}}},
		})
	set := mon("Snorlax", "tackle")
	set.Item = "Leftovers"
	b := newTestBattle(t, effects, set, mon("Mew", "tackle"))
	p := b.Sides[0].Active[0]
	require.True(t, p.AddVolatile("marker", nil, nil))
	assert.False(t, p.AddVolatile("marker", nil, nil), "already present")

	b.RunNotify(HookAfterMove, EventArgs{Target: p})
	assert.Equal(t, 0, calls)
	assert.False(t, p.HasVolatile("marker"))
}
