package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleHappyPath(t *testing.T) {
	ctx := context.Background()
	var transitions []string
	l := NewLifecycle(func(from, to BattleState) {
		transitions = append(transitions, string(from)+">"+string(to))
	})

	assert.Equal(t, StateCreated, l.State())
	require.NoError(t, l.Fire(ctx, TransitionStart))
	require.NoError(t, l.Fire(ctx, TransitionResolve))
	require.NoError(t, l.Fire(ctx, TransitionRequestSwitch))
	assert.True(t, l.Is(StateAwaitingSwitch))
	require.NoError(t, l.Fire(ctx, TransitionResume))
	require.NoError(t, l.Fire(ctx, TransitionNextTurn))
	require.NoError(t, l.Fire(ctx, TransitionEnd))
	assert.Equal(t, StateEnded, l.State())

	assert.Equal(t, []string{
		"created>awaiting_decisions",
		"awaiting_decisions>resolving",
		"resolving>awaiting_switch",
		"awaiting_switch>resolving",
		"resolving>awaiting_decisions",
		"awaiting_decisions>ended",
	}, transitions)
}

func TestLifecycleRejectsOutOfOrder(t *testing.T) {
	ctx := context.Background()
	l := NewLifecycle(nil)

	assert.False(t, l.Can(TransitionResolve))
	require.Error(t, l.Fire(ctx, TransitionResolve))

	require.NoError(t, l.Fire(ctx, TransitionEnd))
	assert.False(t, l.Can(TransitionStart))
	require.Error(t, l.Fire(ctx, TransitionStart))
}

func TestRuleTable(t *testing.T) {
	rt := NewRuleTable(7, GameTypeDoubles, 4, []string{ClauseSleep, ClauseSpecies})
	assert.True(t, rt.Has(ClauseSleep))
	assert.False(t, rt.Has(ClauseExactHP))
	assert.Equal(t, 7, rt.Generation())
	assert.Equal(t, GameTypeDoubles, rt.GameType())
	assert.Equal(t, 2, rt.GameType().ActivePerSide())
	assert.Equal(t, 4, rt.TeamSize())
	assert.Equal(t, []string{ClauseSleep, ClauseSpecies}, rt.Clauses())
}
