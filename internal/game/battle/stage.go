package battle

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"go.uber.org/zap"
)

// Stage is a step of one move execution.
type Stage string

const (
	StageOverrideCheck    Stage = "override_check"
	StagePreMoveGate      Stage = "pre_move_gate"
	StageCostPayment      Stage = "cost_payment"
	StageTargetResolution Stage = "target_resolution"
	StageHitLoop          Stage = "hit_loop"
	StageSecondaryEffects Stage = "secondary_effects"
	StagePostMove         Stage = "post_move"
	StageDone             Stage = "done"
)

// stageOrder is the forward order of the stages. Stages may be skipped
// but never revisited, except that a multi-hit move returns from
// SecondaryEffects to HitLoop for its next hit.
var stageOrder = []Stage{
	StageOverrideCheck,
	StagePreMoveGate,
	StageCostPayment,
	StageTargetResolution,
	StageHitLoop,
	StageSecondaryEffects,
	StagePostMove,
	StageDone,
}

// StageEvent reports a move execution entering a stage.
type StageEvent struct {
	BattleID string
	Turn     int
	Pokemon  string
	Move     dex.ID
	From     Stage
	To       Stage
	// Aborted is set when the execution jumped to StageDone early.
	Aborted bool
}

// StageObserver receives every stage change of every move execution.
type StageObserver func(StageEvent)

var stageEvents = func() fsm.Events {
	var events fsm.Events
	for i, to := range stageOrder[1:] {
		src := make([]string, 0, i+2)
		for _, s := range stageOrder[:i+1] {
			src = append(src, string(s))
		}
		if to == StageHitLoop {
			src = append(src, string(StageSecondaryEffects))
		}
		events = append(events, fsm.EventDesc{Name: string(to), Src: src, Dst: string(to)})
	}
	return events
}()

// stageTracker follows one move execution through its stages.
type stageTracker struct {
	battle  *Battle
	user    *Pokemon
	move    dex.ID
	machine *fsm.FSM
	aborted bool
}

func (b *Battle) newStageTracker(user *Pokemon, move dex.ID) *stageTracker {
	t := &stageTracker{battle: b, user: user, move: move}
	t.machine = fsm.NewFSM(string(StageOverrideCheck), stageEvents, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			t.entered(Stage(e.Src), Stage(e.Dst))
		},
	})
	return t
}

func (t *stageTracker) entered(from, to Stage) {
	b := t.battle
	if b.observer == nil {
		return
	}
	b.observer(StageEvent{
		BattleID: b.ID,
		Turn:     b.Turn,
		Pokemon:  t.user.FullName(),
		Move:     t.move,
		From:     from,
		To:       to,
		Aborted:  to == StageDone && t.aborted,
	})
}

// current returns the stage the execution is in.
func (t *stageTracker) current() Stage {
	if t == nil {
		return ""
	}
	return Stage(t.machine.Current())
}

// advance moves to stage. Staying in the current stage is a no-op;
// moving backwards is refused and logged.
func (t *stageTracker) advance(to Stage) {
	if t == nil || t.machine.Current() == string(to) {
		return
	}
	if err := t.machine.Event(context.Background(), string(to)); err != nil {
		t.battle.logger.Debug("move stage change refused",
			zap.String("battle_id", t.battle.ID),
			zap.String("move_id", string(t.move)),
			zap.String("from", t.machine.Current()),
			zap.String("to", string(to)),
			zap.Error(err),
		)
	}
}

// abort ends the execution early.
func (t *stageTracker) abort() {
	if t == nil || t.machine.Current() == string(StageDone) {
		return
	}
	t.aborted = true
	t.advance(StageDone)
}

// finish ends the execution normally.
func (t *stageTracker) finish() {
	t.advance(StageDone)
}

// Stage returns the stage the move's execution is in, or "" when it is
// not being executed.
func (m *ActiveMove) Stage() Stage {
	return m.stages.current()
}
