package battle

import (
	"strconv"
	"strings"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"go.uber.org/zap"
)

// hitKind ranks the kinds of per-target result a hit step can produce.
// combineResults prefers the higher kind.
type hitKind int

const (
	hitUndefined hitKind = iota
	hitNotFail
	hitNull
	hitBool
	hitNumber
)

// hit is the result of one step of a move against one target: nothing,
// a silent stop, a success flag or an amount of damage.
type hit struct {
	kind hitKind
	ok   bool
	n    int
}

var (
	hitNone   = hit{}
	hitTrue   = hit{kind: hitBool, ok: true}
	hitFalse  = hit{kind: hitBool}
	hitSilent = hit{kind: hitNull}
	hitNoFail = hit{kind: hitNotFail}
)

func hitAmount(n int) hit {
	return hit{kind: hitNumber, n: n}
}

func (h hit) truthy() bool {
	return h.kind == hitBool && h.ok || h.kind == hitNumber && h.n != 0
}

// landed reports whether the target stays in the move's target list.
func (h hit) landed() bool {
	return h.truthy() || h.kind == hitNumber
}

func (h hit) failed() bool {
	return h.kind == hitBool && !h.ok
}

func gateHit(o Outcome) hit {
	switch o {
	case Continue:
		return hitTrue
	case Fail:
		return hitFalse
	case Null:
		return hitSilent
	}
	return hitNoFail
}

func boolHit(ok bool) hit {
	if ok {
		return hitTrue
	}
	return hitFalse
}

// combineResults merges two results for the same target. Damage wins
// over flags, flags over silent stops; two amounts add up.
func combineResults(left, right hit) hit {
	if left.kind > right.kind {
		return left
	}
	if left.truthy() && !right.truthy() && right.kind != hitNumber {
		return left
	}
	if left.kind == hitNumber && right.kind == hitNumber {
		return hitAmount(left.n + right.n)
	}
	return right
}

// hitEffect is what one application of a move does: the primary effect,
// one of its secondaries, or a self effect.
type hitEffect struct {
	boosts        dex.BoostTable
	heal          dex.Fraction
	status        dex.ID
	volatile      dex.ID
	sideCondition dex.ID
	weather       dex.ID
	pseudoWeather dex.ID
	forceSwitch   bool
	selfSwitch    bool
	self          *dex.SelfEffect
	secondaries   []dex.Secondary
	// effect carries the TryHit and Hit handlers; only the primary
	// effect has one.
	effect *Effect
}

func primaryEffect(m *ActiveMove) *hitEffect {
	return &hitEffect{
		boosts:        m.Boosts,
		heal:          m.Heal,
		status:        m.Status,
		volatile:      m.VolatileStatus,
		sideCondition: m.SideCondition,
		weather:       m.Weather,
		pseudoWeather: m.PseudoWeather,
		forceSwitch:   m.ForceSwitch,
		selfSwitch:    m.SelfSwitch,
		self:          m.Self,
		secondaries:   m.Secondaries,
		effect:        m.Effect,
	}
}

func secondaryEffect(s dex.Secondary) *hitEffect {
	return &hitEffect{boosts: s.Boosts, status: s.Status, volatile: s.VolatileStatus, self: s.Self}
}

func selfEffect(s *dex.SelfEffect) *hitEffect {
	return &hitEffect{boosts: s.Boosts, volatile: s.VolatileStatus}
}

func (e *hitEffect) hasSelf() bool {
	return e.self != nil && (len(e.self.Boosts) > 0 || e.self.VolatileStatus != "")
}

func (b *Battle) failMove(user *Pokemon) {
	b.Add(rules.EventFail, user.FullName())
}

// tryMoveHit runs a move that targets a side or the whole field.
func (b *Battle) tryMoveHit(targets []*Pokemon, user *Pokemon, move *ActiveMove) hit {
	target := user
	if len(targets) > 0 {
		target = targets[0]
	} else if foe := user.Side.Foe.Active[0]; move.Target == dex.TargetFoeSide && foe != nil {
		target = foe
	}
	b.setActiveMove(move, user, target)
	if r := b.tryPrepareHit(user, target, move); !r.truthy() {
		return r
	}
	hook := HookTryHitSide
	if move.Target == dex.TargetAll {
		hook = HookTryHitField
	}
	if out := b.RunGate(hook, EventArgs{Target: target, Source: user, Move: move}); out != Continue {
		if out == Fail {
			b.failMove(user)
		}
		return gateHit(out)
	}
	move.stages.advance(StageHitLoop)
	return b.moveHit(target, user, move, primaryEffect(move), false, false)
}

// tryPrepareHit runs the move's Try and PrepareHit gates.
func (b *Battle) tryPrepareHit(user, target *Pokemon, move *ActiveMove) hit {
	args := EventArgs{Target: user, Source: target, Move: move}
	out := b.SingleGate(move.Effect, nil, HookTry, args)
	if out == Continue {
		out = b.SingleGate(move.Effect, nil, HookPrepareHit, EventArgs{Target: target, Source: user, Move: move})
	}
	if out == Continue {
		out = b.RunGate(HookPrepareHit, args)
	}
	if out == Fail {
		b.failMove(user)
	}
	return gateHit(out)
}

// moveHit applies data to a single target and returns its result.
func (b *Battle) moveHit(target, user *Pokemon, move *ActiveMove, data *hitEffect, isSecondary, isSelf bool) hit {
	damage, _ := b.spreadMoveHit([]*Pokemon{target}, user, move, data, isSecondary, isSelf)
	if damage[0] == hitTrue {
		return hitNone
	}
	return damage[0]
}

// hitStep filters a move's targets. It returns one result per target.
type hitStep func(b *Battle, targets []*Pokemon, user *Pokemon, move *ActiveMove) []hit

// trySpreadMoveHit runs a move against its targets and reports whether
// it hit any of them.
func (b *Battle) trySpreadMoveHit(targets []*Pokemon, user *Pokemon, move *ActiveMove) bool {
	if len(targets) > 1 {
		move.SpreadHit = true
	}
	steps := []hitStep{stepTryHit, stepTypeImmunity, stepTryImmunity, stepAccuracy, stepHitLoop}
	if b.Gen() <= 6 {
		steps[0], steps[1] = steps[1], steps[0]
	}

	b.setActiveMove(move, user, targets[0])
	if r := b.tryPrepareHit(user, targets[0], move); !r.truthy() {
		return r.kind == hitNotFail
	}

	var failure bool
	for _, step := range steps {
		results := step(b, targets, user, move)
		kept := targets[:0:0]
		for i, r := range results {
			if r.landed() {
				kept = append(kept, targets[i])
			}
			if r.failed() {
				failure = true
			}
		}
		targets = kept
		if len(targets) == 0 {
			break
		}
	}
	if len(targets) == 0 && !failure {
		user.MoveThisTurnResult = MoveResultNoChoice
	}
	if move.SpreadHit {
		b.logger.Debug("spread move resolved",
			zap.String("battle_id", b.ID),
			zap.String("move_id", string(move.ID)),
			zap.String("slots", spreadTargets(targets)),
		)
	}
	return len(targets) > 0
}

func stepTryHit(b *Battle, targets []*Pokemon, user *Pokemon, move *ActiveMove) []hit {
	results := make([]hit, len(targets))
	var anyTrue, anyFalse bool
	for i, target := range targets {
		out := b.RunGate(HookTryHit, EventArgs{Target: target, Source: user, Move: move})
		results[i] = gateHit(out)
		anyTrue = anyTrue || out == Continue
		anyFalse = anyFalse || out == Fail
		if out == Null {
			results[i] = hitFalse
		}
	}
	if !anyTrue && anyFalse {
		b.failMove(user)
	}
	return results
}

func stepTypeImmunity(b *Battle, targets []*Pokemon, user *Pokemon, move *ActiveMove) []hit {
	results := make([]hit, len(targets))
	for i, target := range targets {
		results[i] = boolHit(move.IgnoresImmunity() || target.RunImmunity(move.Type, true))
	}
	return results
}

func stepTryImmunity(b *Battle, targets []*Pokemon, user *Pokemon, move *ActiveMove) []hit {
	results := make([]hit, len(targets))
	for i, target := range targets {
		switch {
		case b.Gen() >= 6 && move.HasFlag(dex.FlagPowder) && target != user && !target.RunStatusImmunity("powder", false):
			b.Add(rules.EventImmune, target.FullName())
			results[i] = hitFalse
		case b.SingleGate(move.Effect, nil, HookTryImmunity, EventArgs{Target: target, Source: user, Move: move}) != Continue:
			b.Add(rules.EventImmune, target.FullName())
			results[i] = hitFalse
		case b.Gen() >= 7 && move.PranksterBoosted && user.HasAbility("prankster") && !target.IsAlly(user) && !target.RunStatusImmunity("prankster", false):
			b.Hint("Since gen 7, Dark is immune to Prankster moves.")
			b.Add(rules.EventImmune, target.FullName())
			results[i] = hitFalse
		default:
			results[i] = hitTrue
		}
	}
	return results
}

func stepAccuracy(b *Battle, targets []*Pokemon, user *Pokemon, move *ActiveMove) []hit {
	results := make([]hit, len(targets))
	for i, target := range targets {
		b.activeTarget = target
		accuracy := move.Accuracy
		args := EventArgs{Target: target, Source: user, Move: move}
		if move.OHKO {
			if user.Level < target.Level {
				b.Add(rules.EventImmune, target.FullName(), "[ohko]")
				results[i] = hitFalse
				continue
			}
			accuracy = 30 + user.Level - target.Level
		} else if accuracy != 0 {
			accuracy = b.RunModify(HookModifyAccuracy, args, accuracy)
			if accuracy != 0 {
				boost := 0
				if !move.IgnoreAccuracy {
					boost = clampInt(user.boostsFor(nil)[dex.BoostAccuracy], -6, 6)
				}
				if !move.IgnoreEvasion {
					boost = clampInt(boost-target.boostsFor(nil)[dex.BoostEvasion], -6, 6)
				}
				if boost > 0 {
					accuracy = accuracy * (3 + boost) / 3
				} else if boost < 0 {
					accuracy = accuracy * 3 / (3 - boost)
				}
			}
		}
		if move.Target == dex.TargetSelf && move.IsStatus() {
			accuracy = 0
		} else if accuracy != 0 {
			accuracy = b.RunModify(HookAccuracy, args, accuracy)
		}
		if accuracy != 0 && !b.RandomChance(accuracy, 100) {
			b.Add(rules.EventMiss, user.FullName(), target.FullName())
			results[i] = hitFalse
			continue
		}
		results[i] = hitTrue
	}
	return results
}

// multiHitCounts is the 2-5 hit distribution from generation 5 on.
var multiHitCounts = []int{2, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3, 3, 4, 4, 4, 5, 5, 5}

// multiHitCountsOld is the 2-5 hit distribution up to generation 4.
var multiHitCountsOld = []int{2, 2, 2, 3, 3, 3, 4, 5}

func (b *Battle) hitCount(move *ActiveMove) int {
	switch len(move.MultiHit) {
	case 0:
		return 1
	case 1:
		return move.MultiHit[0]
	}
	lo, hi := move.MultiHit[0], move.MultiHit[1]
	if lo == 2 && hi == 5 {
		table := multiHitCounts
		if b.Gen() < 5 {
			table = multiHitCountsOld
		}
		return table[b.Random(len(table))]
	}
	return b.RandomRange(lo, hi+1)
}

// stepHitLoop strikes the surviving targets up to the move's hit count.
func stepHitLoop(b *Battle, targets []*Pokemon, user *Pokemon, move *ActiveMove) []hit {
	damage := make([]hit, len(targets))
	for i := range damage {
		damage[i] = hitAmount(0)
	}
	move.TotalDamage = 0
	user.LastDamage = 0
	hits := b.hitCount(move)

	nullDamage := true
	moveDamage := make([]hit, len(targets))
	struck := make([]*Pokemon, len(targets))
	n := 1
	for ; n <= hits; n++ {
		if anyFailed(damage) {
			break
		}
		if n > 1 && user.Status == "slp" && !move.SleepUsable {
			break
		}
		if allFainted(targets) {
			break
		}
		move.Hit = n
		move.stages.advance(StageHitLoop)
		copy(struck, targets)
		var thisHit []hit
		thisHit, struck = b.spreadMoveHit(struck, user, move, primaryEffect(move), false, false)
		if allFailed(thisHit) {
			break
		}
		nullDamage = false
		for i, md := range thisHit {
			if damage[i].failed() {
				continue
			}
			moveDamage[i] = md
			if md.kind == hitNumber {
				damage[i] = md
			} else {
				damage[i] = hitAmount(0)
			}
			move.TotalDamage += damage[i].n
		}
		b.EachEvent(HookUpdate)
		if user.HP <= 0 && len(targets) == 1 {
			n++
			break
		}
	}
	if n == 1 || nullDamage {
		for i := range damage {
			damage[i] = hitFalse
		}
		return damage
	}

	b.faintMessages(false, false, user.HP <= 0)
	if move.IsMultiHit() {
		b.Add(rules.EventHitCount, targets[0].FullName(), strconv.Itoa(n-1))
	}
	if !move.Recoil.IsZero() && move.TotalDamage > 0 {
		b.Damage(max(move.Recoil.Of(move.TotalDamage), 1), user, user, b.Effect(KindCondition, "recoil"))
	}
	if move.ID == "struggle" {
		recoil := max((user.MaxHP+2)/4, 1)
		if b.Gen() < 5 {
			recoil = max(user.MaxHP/4, 1)
		}
		b.DirectDamage(recoil, user, user, b.Effect(KindCondition, "strugglerecoil"))
	}
	for i, target := range struck {
		if target != nil && target != user && moveDamage[i].kind == hitNumber {
			target.HurtThisTurn = target.HP
		}
	}
	if move.OHKO && targets[0].HP <= 0 {
		b.Add(rules.EventOHKO)
	}
	landed := false
	for _, d := range damage {
		landed = landed || d.landed()
	}
	if !landed {
		return damage
	}

	b.EachEvent(HookUpdate)
	var hitTargets []*Pokemon
	for _, t := range struck {
		if t != nil {
			hitTargets = append(hitTargets, t)
		}
	}
	if len(hitTargets) > 0 {
		b.SingleNotify(move.Effect, nil, HookAfterMoveSecondary, EventArgs{Target: hitTargets[0], Source: user, Move: move})
		for _, t := range hitTargets {
			b.RunNotify(HookAfterMoveSecondary, EventArgs{Target: t, Source: user, Move: move})
		}
	}
	return damage
}

func anyFailed(results []hit) bool {
	for _, r := range results {
		if r.failed() {
			return true
		}
	}
	return false
}

func allFailed(results []hit) bool {
	for _, r := range results {
		if !r.failed() {
			return false
		}
	}
	return true
}

func allFainted(targets []*Pokemon) bool {
	for _, t := range targets {
		if t != nil && t.HP > 0 {
			return false
		}
	}
	return true
}

// spreadMoveHit applies one hit of data to every target. Targets that
// drop out are set to nil in the returned slice.
func (b *Battle) spreadMoveHit(targets []*Pokemon, user *Pokemon, move *ActiveMove, data *hitEffect, isSecondary, isSelf bool) ([]hit, []*Pokemon) {
	damage := make([]hit, len(targets))
	for i := range damage {
		damage[i] = hitTrue
	}
	fieldTarget := move.Target.IsFieldTarget()

	if !isSecondary && !isSelf && data.effect != nil {
		for i, target := range targets {
			if target == nil {
				continue
			}
			hook := HookTryHit
			switch {
			case move.Target == dex.TargetAll:
				hook = HookTryHitField
			case fieldTarget:
				hook = HookTryHitSide
			}
			out := b.SingleGate(data.effect, nil, hook, EventArgs{Target: target, Side: target.Side, Source: user, Move: move})
			if out != Continue {
				if out == Fail {
					b.Add(rules.EventFail, target.FullName())
				}
				damage[i] = gateHit(out)
				targets[i] = nil
			}
		}
	}

	// Damage.
	for i, target := range targets {
		if target == nil {
			continue
		}
		damage[i] = hitNone
		if isSecondary || isSelf || data.effect == nil {
			continue
		}
		result := b.strategies.Damage.Damage(b, user, target, move, false)
		switch result.Kind {
		case DamageFailed:
			damage[i] = hitFalse
			targets[i] = nil
		case DamageDealt:
			damage[i] = hitAmount(result.Amount)
		}
	}
	damage = b.spreadDamage(damage, targets, user, move.Effect, move)
	for i := range targets {
		if damage[i].failed() {
			targets[i] = nil
		}
	}

	damage = b.runMoveEffects(damage, targets, user, move, data, isSecondary, isSelf)
	for i := range targets {
		if !damage[i].landed() {
			targets[i] = nil
		}
	}

	if data.hasSelf() && !move.SelfDropped {
		b.selfDrops(targets, user, move, data, isSecondary)
	}
	if len(data.secondaries) > 0 {
		if !isSecondary && !isSelf {
			move.stages.advance(StageSecondaryEffects)
		}
		b.secondaries(targets, user, move, data, isSelf)
	}
	if data.forceSwitch {
		damage = b.forceSwitch(damage, targets, user, move)
	}

	if !isSecondary && !isSelf {
		for i, target := range targets {
			if target == nil || damage[i].kind != hitNumber {
				continue
			}
			b.RunNotify(HookDamagingHit, EventArgs{Target: target, Source: user, Move: move})
		}
	}
	return damage, targets
}

// runMoveEffects applies the non-damage parts of data to each target.
func (b *Battle) runMoveEffects(damage []hit, targets []*Pokemon, user *Pokemon, move *ActiveMove, data *hitEffect, isSecondary, isSelf bool) []hit {
	didAnything := hitNone
	for i, d := range damage {
		if i == 0 {
			didAnything = d
		} else {
			didAnything = combineResults(didAnything, d)
		}
	}
	sourceEffect := move.Effect
	fieldTarget := move.Target.IsFieldTarget()

	for i, target := range targets {
		if target == nil {
			continue
		}
		var didSomething hit
		if len(data.boosts) > 0 && !target.Fainted {
			didSomething = b.boost(data.boosts, target, user, sourceEffect, isSecondary, isSelf)
		}
		if !data.heal.IsZero() && !target.Fainted {
			if target.HP >= target.MaxHP {
				b.Add(rules.EventFail, target.FullName(), "heal")
				damage[i] = combineResults(damage[i], hitFalse)
				didAnything = combineResults(didAnything, hitSilent)
				continue
			}
			amount := target.MaxHP * data.heal[0] / data.heal[1]
			if b.Gen() >= 5 {
				amount = data.heal.Of(target.MaxHP)
			}
			if target.heal(amount) == 0 {
				b.failMove(user)
				damage[i] = combineResults(damage[i], hitFalse)
				didAnything = combineResults(didAnything, hitSilent)
				continue
			}
			b.Add(rules.EventHeal, target.FullName(), target.Health())
			didSomething = hitTrue
		}
		if data.status != "" {
			ok := target.TrySetStatus(data.status, user, sourceEffect)
			if !ok && move.Status != "" {
				damage[i] = combineResults(damage[i], hitFalse)
				didAnything = combineResults(didAnything, hitSilent)
				continue
			}
			didSomething = combineResults(didSomething, boolHit(ok))
		}
		if data.volatile != "" {
			didSomething = combineResults(didSomething, boolHit(target.AddVolatile(data.volatile, user, sourceEffect)))
		}
		if data.sideCondition != "" {
			didSomething = combineResults(didSomething, boolHit(target.Side.AddCondition(data.sideCondition, user, sourceEffect)))
		}
		if data.weather != "" {
			didSomething = combineResults(didSomething, boolHit(b.Field.SetWeather(data.weather, user, sourceEffect)))
		}
		if data.pseudoWeather != "" {
			didSomething = combineResults(didSomething, boolHit(b.Field.AddPseudoWeather(data.pseudoWeather, user, sourceEffect)))
		}
		if data.forceSwitch {
			didSomething = combineResults(didSomething, boolHit(target.Side.CanSwitch() > 0))
		}

		args := EventArgs{Target: target, Side: target.Side, Source: user, Move: move}
		switch {
		case move.Target == dex.TargetAll && !isSelf:
			if data.effect.Handler(HookHitField, ScopeSelf) != nil {
				didSomething = combineResults(didSomething, gateHit(b.SingleGate(data.effect, nil, HookHitField, args)))
			}
		case fieldTarget && !isSelf:
			if data.effect.Handler(HookHitSide, ScopeSelf) != nil {
				didSomething = combineResults(didSomething, gateHit(b.SingleGate(data.effect, nil, HookHitSide, args)))
			}
		default:
			if data.effect.Handler(HookHit, ScopeSelf) != nil {
				didSomething = combineResults(didSomething, gateHit(b.SingleGate(data.effect, nil, HookHit, args)))
			}
			if !isSelf && !isSecondary {
				b.RunNotify(HookHit, EventArgs{Target: target, Source: user, Move: move})
			}
		}
		if data.selfSwitch {
			if user.Side.CanSwitch() > 0 {
				didSomething = hitTrue
			} else {
				didSomething = combineResults(didSomething, hitFalse)
			}
		}

		if didSomething.kind == hitUndefined {
			didSomething = hitTrue
		}
		if didSomething.kind == hitNull {
			damage[i] = combineResults(damage[i], hitFalse)
		} else {
			damage[i] = combineResults(damage[i], didSomething)
		}
		didAnything = combineResults(didAnything, didSomething)
	}

	if !didAnything.truthy() && didAnything.kind != hitNumber && !data.hasSelf() {
		if !isSelf && !isSecondary && didAnything.failed() {
			b.failMove(user)
		}
	} else if data.selfSwitch && user.HP > 0 {
		user.SwitchFlag = true
		user.selfSwitchMove = move.ID
	}
	return damage
}

// selfDrops applies data's self effect to the user once per target.
func (b *Battle) selfDrops(targets []*Pokemon, user *Pokemon, move *ActiveMove, data *hitEffect, isSecondary bool) {
	for _, target := range targets {
		if target == nil {
			continue
		}
		if move.SelfDropped {
			return
		}
		if !isSecondary && len(data.self.Boosts) > 0 {
			roll := b.Random(100)
			if data.self.Chance == 0 || roll <= data.self.Chance {
				b.moveHit(user, user, move, selfEffect(data.self), isSecondary, true)
			}
			if !move.IsMultiHit() {
				move.SelfDropped = true
			}
			continue
		}
		b.moveHit(user, user, move, selfEffect(data.self), isSecondary, true)
	}
}

// secondaries rolls each secondary of data against every target.
func (b *Battle) secondaries(targets []*Pokemon, user *Pokemon, move *ActiveMove, data *hitEffect, isSelf bool) {
	for _, target := range targets {
		if target == nil {
			continue
		}
		list := data.secondaries
		if b.RunGate(HookModifySecondaries, EventArgs{Target: target, Source: user, Move: move}) != Continue {
			var kept []dex.Secondary
			for _, s := range list {
				if s.Self != nil {
					kept = append(kept, s)
				}
			}
			list = kept
		}
		for _, s := range list {
			roll := b.Random(100)
			chance := s.Chance
			if (len(s.Boosts) > 0 || s.Self != nil) && b.Gen() <= 8 {
				chance %= 256
			}
			if s.Chance == 0 || roll < chance {
				b.moveHit(target, user, move, secondaryEffect(s), true, isSelf)
			}
		}
	}
}

// forceSwitch marks targets to be dragged out after the move.
func (b *Battle) forceSwitch(damage []hit, targets []*Pokemon, user *Pokemon, move *ActiveMove) []hit {
	for i, target := range targets {
		if target == nil || target.HP <= 0 || user.HP <= 0 || target.Side.CanSwitch() == 0 {
			continue
		}
		out := b.RunGate(HookDragOut, EventArgs{Target: target, Source: user, Move: move})
		if out == Continue {
			target.ForceSwitchFlag = true
		} else if out == Fail && move.IsStatus() {
			b.failMove(user)
			damage[i] = hitFalse
		}
	}
	return damage
}

// spreadTargets renders the slots a spread move struck, e.g. "p2a,p2b".
func spreadTargets(targets []*Pokemon) string {
	slots := make([]string, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			slots = append(slots, t.Side.ID+string(rune('a'+t.Position)))
		}
	}
	return strings.Join(slots, ",")
}
