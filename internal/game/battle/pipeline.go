package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"go.uber.org/zap"
)

// ppHints names the console the out-of-PP behavior was checked on.
var ppHints = map[int]string{
	4: "DS",
	5: "DS",
	6: "3DS",
	7: "3DS",
}

// runMove executes a move chosen by (or forced on) user: the override
// check, the pre-move gate, PP payment, the move itself and everything
// that follows it. External moves, such as Dancer copies, pay no PP and
// are not recorded as the user's last move.
func (b *Battle) runMove(move *ActiveMove, user *Pokemon, targetLoc int, sourceEffect *Effect, external bool) {
	user.ActiveMoveActions++
	if move.stages == nil {
		move.stages = b.newStageTracker(user, move.ID)
	}
	target := b.getTarget(user, move, targetLoc)
	b.logger.Debug("running move",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("pokemon", user.FullName()),
		zap.String("move_id", string(move.ID)),
		zap.Int("target_loc", targetLoc),
		zap.Bool("external", external),
	)

	if !external && move.ID != "struggle" {
		args := EventArgs{Target: user, Source: target, Move: move}
		if changed := b.RunOverride(HookOverrideAction, args, move.ID); changed != "" && changed != move.ID {
			next, err := b.newActiveMove(changed)
			if err != nil {
				b.fail(wrapError(CodeDataInconsistency, err, "override %s", move.ID))
				return
			}
			next.PranksterBoosted = move.PranksterBoosted
			next.stages = move.stages
			next.stages.move = changed
			move = next
			target = b.getRandomTarget(user, move)
		}
	}
	move.IsExternal = external
	b.setActiveMove(move, user, target)
	move.stages.advance(StagePreMoveGate)

	if out := b.RunGate(HookBeforeMove, EventArgs{Target: user, Source: target, Move: move}); out != Continue {
		b.RunNotify(HookMoveAborted, EventArgs{Target: user, Source: target, Move: move})
		b.clearActiveMove()
		user.MoveThisTurnResult = MoveResultFailed
		if out == Null {
			user.MoveThisTurnResult = MoveResultNoChoice
		}
		move.stages.abort()
		return
	}
	if move.Effect.Handler(HookBeforeMoveCallback, ScopeSelf) != nil {
		if b.SingleGate(move.Effect, nil, HookBeforeMoveCallback, EventArgs{Target: user, Source: target, Move: move}) != Continue {
			b.clearActiveMove()
			user.MoveThisTurnResult = MoveResultFailed
			move.stages.abort()
			return
		}
	}
	user.LastDamage = 0

	var lockedMove dex.ID
	if !external {
		move.stages.advance(StageCostPayment)
		lockedMove = b.RunOverride(HookLockMove, EventArgs{Target: user}, "")
		if lockedMove == "" {
			if user.DeductPP(move.ID, 1) == 0 && move.ID != "struggle" {
				b.Add(rules.EventCant, user.FullName(), "nopp", move.Name)
				if console, ok := ppHints[b.Gen()]; ok {
					b.Hint("This is not a bug, this is really how it works on the " + console + "; try it yourself if you don't believe us.")
				}
				b.clearActiveMove()
				user.MoveThisTurnResult = MoveResultFailed
				move.stages.abort()
				return
			}
		} else {
			sourceEffect = b.Effect(KindCondition, "lockedmove")
		}
		user.LastMove = move.ID
		user.MoveThisTurn = move.ID
		user.LastMoveTargetLoc = targetLoc
	}
	noLock := external && !user.HasVolatile("lockedmove")

	didSomething := b.useMove(move, user, target, sourceEffect)
	if b.ended {
		return
	}
	if move.Stage() != StageDone {
		move.stages.advance(StagePostMove)
	}
	b.activeMove = move
	b.SingleNotify(move.Effect, nil, HookAfterMove, EventArgs{Target: user, Source: target, Move: move})
	b.RunNotify(HookAfterMove, EventArgs{Target: user, Source: target, Move: move})

	if move.HasFlag(dex.FlagDance) && didSomething && !external {
		b.runDancers(move, user)
	}
	if noLock && user.HasVolatile("lockedmove") {
		user.DeleteVolatile("lockedmove")
	}
	move.stages.finish()
}

// runDancers makes every other active Dancer repeat a dance move. The
// slowest Dancer goes first; at equal speed, the one that gained its
// ability most recently goes first.
func (b *Battle) runDancers(move *ActiveMove, user *Pokemon) {
	var dancers []*Pokemon
	for _, p := range b.activeBySpeed() {
		if p != user && p.HP > 0 && p.HasAbility("dancer") && !p.IsSemiInvulnerable() {
			dancers = append(dancers, p)
		}
	}
	speedSort(b.prng, dancers, func(x, y *Pokemon) int {
		if d := x.StoredStats.Spe - y.StoredStats.Spe; d != 0 {
			return d
		}
		return y.AbilityOrder - x.AbilityOrder
	})
	for _, dancer := range dancers {
		if b.faintMessages(false, false, true) {
			return
		}
		ability := b.Effect(KindAbility, "dancer")
		b.Add(rules.EventActivate, dancer.FullName(), "ability: Dancer")
		copied, err := b.newActiveMove(move.ID)
		if err != nil {
			b.fail(wrapError(CodeDataInconsistency, err, "dancer copy of %s", move.ID))
			return
		}
		b.runMove(copied, dancer, 0, ability, true)
		dancer.ActiveTurns++
		if b.ended {
			return
		}
	}
}

// IsSemiInvulnerable reports whether the combatant is out of reach, as
// in the charge turn of Fly.
func (p *Pokemon) IsSemiInvulnerable() bool {
	for _, id := range []dex.ID{"fly", "bounce", "dig", "dive", "phantomforce", "shadowforce", "skydrop"} {
		if p.HasVolatile(id) {
			return true
		}
	}
	return false
}

// useMove runs the move itself and records its result unless a step
// recorded one first.
func (b *Battle) useMove(move *ActiveMove, user, target *Pokemon, sourceEffect *Effect) bool {
	user.MoveThisTurnResult = MoveResultUnset
	ok := b.useMoveInner(move, user, target, sourceEffect)
	if user.MoveThisTurnResult == MoveResultUnset {
		if ok {
			user.MoveThisTurnResult = MoveResultSucceeded
		} else {
			user.MoveThisTurnResult = MoveResultFailed
		}
	}
	return ok
}

func (b *Battle) useMoveInner(move *ActiveMove, user, target *Pokemon, sourceEffect *Effect) bool {
	if move.stages == nil {
		move.stages = b.newStageTracker(user, move.ID)
	}
	move.stages.advance(StageTargetResolution)
	if b.activeMove != nil && b.activeMove != move {
		move.Priority = b.activeMove.Priority
		move.PranksterBoosted = b.activeMove.PranksterBoosted
	}
	baseTarget := move.Target
	if target == nil {
		target = b.getRandomTarget(user, move)
	}
	if move.Target == dex.TargetSelf {
		target = user
	}
	if sourceEffect != nil {
		move.SourceEffect = sourceEffect
	}
	b.setActiveMove(move, user, target)

	args := EventArgs{Target: user, Source: target, Move: move}
	b.SingleNotify(move.Effect, nil, HookModifyType, args)
	b.SingleNotify(move.Effect, nil, HookModifyMove, args)
	if baseTarget != move.Target {
		target = b.getRandomTarget(user, move)
	}
	b.RunNotify(HookModifyType, args)
	b.RunNotify(HookModifyMove, args)
	if baseTarget != move.Target {
		target = b.getRandomTarget(user, move)
	}
	if user.Fainted {
		move.stages.abort()
		return false
	}

	line := []string{user.FullName(), move.Name}
	if target != nil {
		line = append(line, target.FullName())
	} else {
		line = append(line, "")
	}
	if sourceEffect != nil {
		line = append(line, "[from]"+sourceEffect.FullName())
	}
	b.Add(rules.EventMove, line...)

	if target == nil {
		b.Add(rules.EventNoTarget, user.FullName())
		move.stages.abort()
		return false
	}
	targets, pressure := b.moveTargets(user, move, target)
	if len(targets) > 0 {
		target = targets[len(targets)-1]
	}

	if sourceEffect == nil || sourceEffect.Kind == KindMove {
		extra := 0
		for _, p := range pressure {
			extra += b.RunModify(HookDeductPP, EventArgs{Target: p, Source: user, Move: move}, 0)
		}
		if extra > 0 {
			user.DeductPP(move.ID, extra)
		}
	}

	args = EventArgs{Target: user, Source: target, Move: move}
	if b.SingleGate(move.Effect, nil, HookTryMove, args) != Continue || b.RunGate(HookTryMove, args) != Continue {
		move.stages.abort()
		return false
	}

	var moveResult bool
	if move.Target.IsFieldTarget() {
		r := b.tryMoveHit(targets, user, move)
		if r.kind == hitNotFail {
			user.MoveThisTurnResult = MoveResultNoChoice
		}
		moveResult = r.truthy() || r.kind == hitNumber || r.kind == hitUndefined
	} else {
		if len(targets) == 0 {
			b.Add(rules.EventNoTarget, user.FullName())
			move.stages.abort()
			return false
		}
		moveResult = b.trySpreadMoveHit(targets, user, move)
	}
	if user.HP <= 0 {
		user.faint(user, move.Effect)
	}
	if !moveResult {
		if move.Stage() != StageHitLoop && move.Stage() != StageSecondaryEffects {
			move.stages.abort()
		}
		b.SingleNotify(move.Effect, nil, HookMoveFail, EventArgs{Target: target, Source: user, Move: move})
		return false
	}

	b.SingleNotify(move.Effect, nil, HookAfterMoveSecondarySelf, EventArgs{Target: user, Source: target, Move: move})
	b.RunNotify(HookAfterMoveSecondarySelf, EventArgs{Target: user, Source: target, Move: move})
	return true
}
