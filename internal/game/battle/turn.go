package battle

import (
	"context"
	"strconv"

	"github.com/magefree/battle-sim-go/internal/game/rules"
	"go.uber.org/zap"
)

// BattleOutcome is the terminal state reported with every turn.
type BattleOutcome string

const (
	OutcomeOngoing BattleOutcome = "ongoing"
	OutcomeP1Win   BattleOutcome = "p1"
	OutcomeP2Win   BattleOutcome = "p2"
	OutcomeTie     BattleOutcome = "tie"
)

// TurnResult is what one call to Start or AdvanceTurn produced.
type TurnResult struct {
	Turn    int
	Events  []rules.Event
	Request *Request
	Outcome BattleOutcome
}

// Start emits the battle header, sends in each side's leads and runs
// until the first decisions are needed.
func (b *Battle) Start() (*TurnResult, error) {
	if b.ended {
		return nil, newError(CodeBattleEnded, "battle %s is over", b.ID)
	}
	if b.started {
		return nil, newError(CodeInvalidDecision, "battle %s already started", b.ID)
	}
	b.started = true

	b.Add(rules.EventGameType, string(b.rules.GameType()))
	for _, side := range b.Sides {
		b.Add(rules.EventPlayer, side.ID, side.Name)
	}
	for _, side := range b.Sides {
		b.Add(rules.EventTeamSize, side.ID, strconv.Itoa(len(side.Pokemon)))
	}
	b.Add(rules.EventGen, strconv.Itoa(b.Gen()))
	for _, state := range b.ruleStates {
		b.SingleNotify(state.Effect, state, HookStart, EventArgs{})
	}

	if err := b.queue.Enqueue(&Action{Kind: ActionStart}); err != nil {
		return nil, b.fail(err)
	}
	b.midTurn = true
	b.logger.Info("battle started",
		zap.String("battle_id", b.ID),
		zap.String("format", b.format.ID),
	)
	err := b.run()
	return b.result(), err
}

// AdvanceTurn commits every side's pending decisions and runs the battle
// until the next request or its end.
func (b *Battle) AdvanceTurn() (*TurnResult, error) {
	if b.ended {
		return nil, newError(CodeBattleEnded, "battle %s is over", b.ID)
	}
	if !b.started {
		return nil, newError(CodeInvalidDecision, "battle %s has not started", b.ID)
	}
	if b.request == RequestNone {
		return nil, newError(CodeInvalidDecision, "no decisions are pending")
	}
	for _, side := range b.Sides {
		if !b.choiceDone(side) {
			return nil, newError(CodeInvalidDecision, "%s has not chosen", side.ID).
				WithMetadata("side_id", side.ID)
		}
	}
	err := b.commitChoices()
	return b.result(), err
}

// Outcome reports how the battle stands.
func (b *Battle) Outcome() BattleOutcome {
	if !b.ended || b.fatal != nil {
		return OutcomeOngoing
	}
	switch b.winnerSide {
	case nil:
		return OutcomeTie
	case b.Sides[0]:
		return OutcomeP1Win
	}
	return OutcomeP2Win
}

// Err returns the invariant failure that aborted the battle, if any.
func (b *Battle) Err() error {
	return b.fatal
}

func (b *Battle) result() *TurnResult {
	events := make([]rules.Event, len(b.log)-b.reported)
	copy(events, b.log[b.reported:])
	b.reported = len(b.log)
	return &TurnResult{
		Turn:    b.Turn,
		Events:  events,
		Request: b.Request(),
		Outcome: b.Outcome(),
	}
}

// transition moves the lifecycle along, ignoring transitions that do not
// apply to the current phase.
func (b *Battle) transition(t string) {
	if !b.lifecycle.Can(t) {
		b.logger.Debug("lifecycle transition skipped",
			zap.String("battle_id", b.ID),
			zap.String("state", string(b.lifecycle.State())),
			zap.String("transition", t),
		)
		return
	}
	if err := b.lifecycle.Fire(context.Background(), t); err != nil {
		b.logger.Warn("lifecycle transition failed",
			zap.String("battle_id", b.ID),
			zap.String("transition", t),
			zap.Error(err),
		)
	}
}

// commitChoices queues every side's decisions ahead of whatever was left
// over from a mid-turn request and resumes the turn.
func (b *Battle) commitChoices() error {
	old := append([]*Action(nil), b.queue.List()...)
	b.queue.Clear()
	for _, side := range b.Sides {
		if line := side.choice.String(); line != "" {
			b.inputLog = append(b.inputLog, ">"+side.ID+" "+line)
		}
	}
	for _, side := range b.Sides {
		if err := b.queue.Enqueue(side.choice.list()...); err != nil {
			return b.fail(err)
		}
	}
	b.queue.Sort()
	for _, a := range old {
		b.queue.list = append(b.queue.list, a)
	}

	switch b.request {
	case RequestSwitch:
		b.transition(rules.TransitionResume)
	default:
		b.transition(rules.TransitionResolve)
	}
	b.request = RequestNone
	for _, side := range b.Sides {
		side.choice = nil
	}
	return b.run()
}

// run executes queued actions until a decision is needed or the battle
// ends. A turn that completes moves on to the next one.
func (b *Battle) run() error {
	b.Add(rules.EventSpacer)
	b.request = RequestNone
	if !b.midTurn {
		if err := b.queue.InsertNow(&Action{Kind: ActionBeforeTurn}); err != nil {
			return b.fail(err)
		}
		if err := b.queue.Enqueue(&Action{Kind: ActionResidual}); err != nil {
			return b.fail(err)
		}
		b.midTurn = true
	}
	for {
		a := b.queue.Shift()
		if a == nil {
			break
		}
		b.logger.Debug("running action",
			zap.String("battle_id", b.ID),
			zap.Int("turn", b.Turn),
			zap.String("action", a.String()),
		)
		if err := b.runAction(a); err != nil {
			return b.fail(err)
		}
		if b.fatal != nil {
			return b.fatal
		}
		if b.request != RequestNone || b.ended {
			return nil
		}
	}
	b.nextTurn()
	b.midTurn = false
	b.queue.Clear()
	return b.fatal
}

// checkActor rejects actions whose actor can no longer act. Fainting and
// switching out cancel an actor's actions, so reaching here means the
// queue is out of step with the field.
func checkActor(a *Action) error {
	p := a.Pokemon
	if p == nil {
		return newError(CodeInvariant, "%s action has no actor", a.Kind)
	}
	if !p.IsActive || p.Fainted {
		return newError(CodeInvariant, "%s action for %s, which cannot act", a.Kind, p.FullName()).
			WithMetadata("side_id", p.Side.ID)
	}
	return nil
}

func (b *Battle) runAction(a *Action) error {
	switch a.Kind {
	case ActionStart:
		b.Add(rules.EventStart)
		for _, side := range b.Sides {
			for pos := range side.Active {
				if pos >= len(side.Pokemon) {
					break
				}
				if _, err := b.switchIn(side.Pokemon[pos], pos, nil, false); err != nil {
					return err
				}
			}
		}
		b.midTurn = true

	case ActionMove:
		if err := checkActor(a); err != nil {
			return err
		}
		if len(a.Linked) == 2 && !a.linkedPart {
			b.expandLinked(a)
			return nil
		}
		if a.linkedPartner && !b.partnerUsable(a) {
			return nil
		}
		b.runMove(a.Move, a.Pokemon, a.TargetLoc, a.SourceEffect, false)

	case ActionBeforeTurnMove:
		if err := checkActor(a); err != nil {
			return err
		}
		target := b.getTarget(a.Pokemon, a.Move, a.TargetLoc)
		if target == nil {
			return nil
		}
		b.SingleNotify(a.Move.Effect, nil, HookBeforeTurnCallback, EventArgs{Target: a.Pokemon, Source: target, Move: a.Move})

	case ActionEvent:
		b.RunNotify(a.Event, EventArgs{Target: a.Pokemon})

	case ActionSwitch, ActionInstaSwitch:
		if a.Kind == ActionSwitch {
			if err := checkActor(a); err != nil {
				return err
			}
		}
		if a.Target == nil {
			return newError(CodeInvariant, "%s action has no switch target", a.Kind)
		}
		if a.Target.IsActive {
			b.Hint("Switch failed; switch target is already active")
			break
		}
		if _, err := b.switchIn(a.Target, a.Pokemon.Position, a.SourceEffect, false); err != nil {
			return err
		}

	case ActionRunUnnerve:
		if p := a.Pokemon; p.AbilityState != nil {
			b.SingleNotify(p.AbilityState.Effect, p.AbilityState, HookPreStart, EventArgs{Target: p})
		}

	case ActionRunSwitch:
		b.runSwitch(a.Pokemon)

	case ActionBeforeTurn:
		b.EachEvent(HookBeforeTurn)

	case ActionResidual:
		b.Add(rules.EventSpacer)
		b.clearActiveMove()
		b.residualEvent()
		b.Add(rules.EventUpkeep)

	default:
		return newError(CodeInvariant, "%s actions are not supported in %s", a.Kind, b.rules.GameType())
	}

	for _, side := range b.Sides {
		for _, p := range side.Active {
			if p == nil || !p.ForceSwitchFlag {
				continue
			}
			if p.HP > 0 {
				if _, err := b.dragIn(side, p.Position); err != nil {
					return err
				}
			}
			p.ForceSwitchFlag = false
		}
	}

	b.clearActiveMove()
	b.faintMessages(false, false, true)
	if b.ended {
		return nil
	}

	if next := b.queue.Peek(); next == nil {
		b.checkFainted()
	} else if next.Kind == ActionInstaSwitch {
		return nil
	}

	needSwitch := false
	for _, side := range b.Sides {
		flagged := false
		for _, p := range side.Active {
			if p != nil && p.SwitchFlag {
				flagged = true
			}
		}
		if flagged && side.CanSwitch() == 0 {
			for _, p := range side.Active {
				if p != nil {
					p.SwitchFlag = false
				}
			}
			flagged = false
		}
		needSwitch = needSwitch || flagged
	}
	if needSwitch {
		if b.Gen() >= 5 {
			b.EachEvent(HookUpdate)
		}
		b.makeRequest(RequestSwitch)
		return nil
	}
	b.EachEvent(HookUpdate)
	return nil
}

// expandLinked replaces a linked pair with one move action per member,
// run back to back in slot order.
func (b *Battle) expandLinked(a *Action) {
	p := a.Pokemon
	for i := len(a.Linked) - 1; i >= 0; i-- {
		m := a.Linked[i]
		loc := a.TargetLoc
		if !b.strategies.Targeting.ValidTargetLoc(b, p, loc, m.Target) {
			loc = 0
			if target := b.getRandomTarget(p, m); target != nil {
				loc = p.LocOf(target)
			}
		}
		b.queue.Unshift(&Action{
			Kind:               ActionMove,
			Order:              a.Order,
			Priority:           a.Priority,
			FractionalPriority: a.FractionalPriority,
			Speed:              a.Speed,
			Pokemon:            p,
			TargetLoc:          loc,
			OriginalTarget:     a.OriginalTarget,
			MoveID:             m.ID,
			Move:               m,
			linkedPart:         true,
			linkedPartner:      i > 0,
		})
	}
	b.logger.Debug("linked pair expanded",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("pokemon", p.FullName()),
		zap.String("first", string(a.Linked[0].ID)),
		zap.String("second", string(a.Linked[1].ID)),
	)
}

// partnerUsable reports whether the second half of a linked pair may
// still run. A partner disabled or drained of PP since the choice was
// made is dropped.
func (b *Battle) partnerUsable(a *Action) bool {
	slot := a.Pokemon.MoveSlot(a.MoveID)
	if slot != nil && !slot.Disabled && slot.PP > 0 {
		return true
	}
	b.logger.Debug("linked partner dropped",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("pokemon", a.Pokemon.FullName()),
		zap.String("move_id", string(a.MoveID)),
	)
	return false
}

// nextTurn resets per-turn state and asks for the next decisions.
func (b *Battle) nextTurn() {
	b.Turn++
	for _, side := range b.Sides {
		for _, p := range side.Active {
			if p == nil || !p.IsActive {
				continue
			}
			p.MoveThisTurn = ""
			p.MoveLastTurnResult = p.MoveThisTurnResult
			p.MoveThisTurnResult = MoveResultUnset
			p.HurtThisTurn = 0
			p.UsedItemThisTurn = false
			p.StatsRaisedThisTurn = false
			p.StatsLoweredThisTurn = false
			p.ActiveTurns++
			for _, slot := range p.MoveSlots {
				slot.Disabled = false
			}
			b.RunNotify(HookDisableMove, EventArgs{Target: p})
			if !p.AteBerry {
				p.DisableMove("belch")
			}
		}
		side.FaintedLastTurn = side.FaintedThisTurn
		side.FaintedThisTurn = nil
	}

	if b.maxTurns > 0 && b.Turn >= b.maxTurns {
		b.Add(rules.EventMessage, "It is turn "+strconv.Itoa(b.Turn)+". You have hit the turn limit!")
		b.Tie()
		return
	}
	b.Add(rules.EventTurn, strconv.Itoa(b.Turn))
	b.logger.Debug("turn started",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
	)
	b.makeRequest(RequestMove)
}

// makeRequest asks every side for a new set of decisions.
func (b *Battle) makeRequest(kind RequestKind) {
	b.request = kind
	for _, side := range b.Sides {
		side.choice = nil
	}
	switch kind {
	case RequestMove:
		if b.lifecycle.Is(rules.StateCreated) {
			b.transition(rules.TransitionStart)
		} else {
			b.transition(rules.TransitionNextTurn)
		}
	case RequestSwitch:
		b.transition(rules.TransitionRequestSwitch)
	}
	b.logger.Debug("decisions requested",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("kind", string(kind)),
	)
}

// faintMessages resolves every queued faint. With lastFirst the most
// recent faint is announced first. It reports whether the battle ended.
func (b *Battle) faintMessages(lastFirst, forceCheck, checkWin bool) bool {
	if b.ended {
		return false
	}
	if len(b.faintQueue) == 0 {
		return forceCheck && b.checkWin()
	}
	if lastFirst {
		last := b.faintQueue[len(b.faintQueue)-1]
		b.faintQueue = append([]faintRecord{last}, b.faintQueue[:len(b.faintQueue)-1]...)
	}
	for len(b.faintQueue) > 0 {
		left := len(b.faintQueue)
		rec := b.faintQueue[0]
		b.faintQueue = b.faintQueue[1:]
		p := rec.target
		if p.Fainted {
			continue
		}
		args := EventArgs{Target: p, Source: rec.source, Effect: rec.effect}
		if b.RunGate(HookBeforeFaint, args) != Continue {
			p.faintQueued = false
			continue
		}
		b.Add(rules.EventFaint, p.FullName())
		p.Side.PokemonLeft--
		p.Side.TotalFainted++
		b.RunNotify(HookFaint, args)
		if p.AbilityState != nil {
			b.SingleNotify(p.AbilityState.Effect, p.AbilityState, HookEnd, EventArgs{Target: p})
		}
		p.ClearVolatiles()
		p.Fainted = true
		p.IsActive = false
		p.IsStarted = false
		p.Side.FaintedThisTurn = p
		b.lastFainted = p
		b.queue.CancelAction(p)
		b.logger.Debug("fainted",
			zap.String("battle_id", b.ID),
			zap.Int("turn", b.Turn),
			zap.String("pokemon", p.FullName()),
		)
		if len(b.faintQueue) >= left {
			checkWin = true
		}
	}
	return checkWin && b.checkWin()
}

// checkFainted flags fainted actives for replacement.
func (b *Battle) checkFainted() {
	for _, side := range b.Sides {
		for _, p := range side.Active {
			if p != nil && p.Fainted {
				p.Status = "fnt"
				p.SwitchFlag = true
			}
		}
	}
}
