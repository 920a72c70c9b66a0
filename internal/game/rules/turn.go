package rules

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// BattleState is a phase of the battle lifecycle.
type BattleState string

const (
	StateCreated           BattleState = "created"
	StateAwaitingDecisions BattleState = "awaiting_decisions"
	StateResolving         BattleState = "resolving"
	StateAwaitingSwitch    BattleState = "awaiting_switch"
	StateEnded             BattleState = "ended"
)

// Lifecycle transitions.
const (
	TransitionStart         = "start"
	TransitionResolve       = "resolve"
	TransitionRequestSwitch = "request_switch"
	TransitionResume        = "resume"
	TransitionNextTurn      = "next_turn"
	TransitionEnd           = "end"
)

// Lifecycle tracks which phase a battle is in and rejects out-of-order
// calls: decisions can only be resolved when every side has chosen, and
// nothing can happen after the battle ended.
type Lifecycle struct {
	machine *fsm.FSM
	onEnter func(from, to BattleState)
}

// NewLifecycle creates a lifecycle in StateCreated. onEnter, if non-nil,
// is called after every state change.
func NewLifecycle(onEnter func(from, to BattleState)) *Lifecycle {
	l := &Lifecycle{onEnter: onEnter}
	l.machine = fsm.NewFSM(
		string(StateCreated),
		fsm.Events{
			{Name: TransitionStart, Src: []string{string(StateCreated)}, Dst: string(StateAwaitingDecisions)},
			{Name: TransitionResolve, Src: []string{string(StateAwaitingDecisions)}, Dst: string(StateResolving)},
			{Name: TransitionRequestSwitch, Src: []string{string(StateResolving), string(StateCreated)}, Dst: string(StateAwaitingSwitch)},
			{Name: TransitionResume, Src: []string{string(StateAwaitingSwitch)}, Dst: string(StateResolving)},
			{Name: TransitionNextTurn, Src: []string{string(StateResolving)}, Dst: string(StateAwaitingDecisions)},
			{Name: TransitionEnd, Src: []string{
				string(StateCreated), string(StateAwaitingDecisions), string(StateResolving), string(StateAwaitingSwitch),
			}, Dst: string(StateEnded)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if l.onEnter != nil {
					l.onEnter(BattleState(e.Src), BattleState(e.Dst))
				}
			},
		},
	)
	return l
}

// State returns the current phase.
func (l *Lifecycle) State() BattleState {
	return BattleState(l.machine.Current())
}

// Is reports whether the lifecycle is in state.
func (l *Lifecycle) Is(state BattleState) bool {
	return l.machine.Is(string(state))
}

// Can reports whether transition is allowed from the current phase.
func (l *Lifecycle) Can(transition string) bool {
	return l.machine.Can(transition)
}

// Fire performs transition.
func (l *Lifecycle) Fire(ctx context.Context, transition string) error {
	if err := l.machine.Event(ctx, transition); err != nil {
		return fmt.Errorf("battle %s -> %s: %w", l.machine.Current(), transition, err)
	}
	return nil
}
