package battle

import (
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"go.uber.org/zap"
)

// Queue holds the actions left to run this turn in execution order.
// The pipeline mutates it while running: actions may be inserted ahead of
// the remainder, cancelled or moved to the front.
type Queue struct {
	battle *Battle
	list   []*Action
	seq    int
}

func newQueue(b *Battle) *Queue {
	return &Queue{battle: b, list: make([]*Action, 0, 16)}
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	return len(q.list)
}

// List returns the queued actions in order. The slice must not be
// modified.
func (q *Queue) List() []*Action {
	return q.list
}

// Peek returns the next action without removing it.
func (q *Queue) Peek() *Action {
	if len(q.list) == 0 {
		return nil
	}
	return q.list[0]
}

// Shift removes and returns the next action.
func (q *Queue) Shift() *Action {
	if len(q.list) == 0 {
		return nil
	}
	a := q.list[0]
	q.list[0] = nil
	q.list = q.list[1:]
	return a
}

// Unshift puts actions at the front, in the order given.
func (q *Queue) Unshift(actions ...*Action) {
	for _, a := range actions {
		q.stamp(a)
	}
	q.list = append(append([]*Action(nil), actions...), q.list...)
}

// Clear drops every queued action.
func (q *Queue) Clear() {
	q.list = q.list[:0]
}

func (q *Queue) stamp(a *Action) {
	if a.seq == 0 {
		q.seq++
		a.seq = q.seq
	}
}

// Enqueue resolves each action and appends the result. Call Sort once
// every side's actions are in.
func (q *Queue) Enqueue(actions ...*Action) error {
	for _, a := range actions {
		resolved, err := q.resolveAction(a, false)
		if err != nil {
			return err
		}
		for _, r := range resolved {
			q.stamp(r)
			q.list = append(q.list, r)
		}
	}
	return nil
}

// Sort puts the queue into execution order. Exact ties between
// combatant actions are broken with the PRNG; ties between system
// actions keep insertion order.
func (q *Queue) Sort() {
	speedSort(q.battle.prng, q.list, func(a, b *Action) int {
		if d := compareActions(a, b); d != 0 || a.Pokemon != nil || b.Pokemon != nil {
			return d
		}
		return a.seq - b.seq
	})
}

// ResolveOrder sorts the queue and returns it.
func (q *Queue) ResolveOrder() []*Action {
	q.Sort()
	return q.list
}

// InsertNow resolves a mid-turn action and inserts it into the already
// sorted queue. Among actions it ties with, its slot is chosen with the
// PRNG.
func (q *Queue) InsertNow(actions ...*Action) error {
	for _, a := range actions {
		resolved, err := q.resolveAction(a, true)
		if err != nil {
			return err
		}
		for _, r := range resolved {
			q.stamp(r)
			q.insert(r)
		}
	}
	return nil
}

func (q *Queue) insert(a *Action) {
	first, last := -1, -1
	for i, cur := range q.list {
		cmp := compareActions(a, cur)
		if cmp <= 0 && first < 0 {
			first = i
		}
		if cmp < 0 {
			last = i
			break
		}
	}
	if first < 0 {
		q.list = append(q.list, a)
		return
	}
	if last < 0 {
		last = len(q.list)
	}
	index := first
	if first != last {
		index = q.battle.RandomRange(first, last+1)
	}
	q.list = append(q.list, nil)
	copy(q.list[index+1:], q.list[index:])
	q.list[index] = a
}

// CancelAction removes every queued action of p and reports whether any
// was removed.
func (q *Queue) CancelAction(p *Pokemon) bool {
	n := len(q.list)
	kept := q.list[:0]
	for _, a := range q.list {
		if a.Pokemon != p {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < n; i++ {
		q.list[i] = nil
	}
	q.list = kept
	return len(kept) != n
}

// CancelMove removes p's queued move and reports whether it had one.
func (q *Queue) CancelMove(p *Pokemon) bool {
	for i, a := range q.list {
		if a.Kind == ActionMove && a.Pokemon == p {
			q.list = append(q.list[:i], q.list[i+1:]...)
			return true
		}
	}
	return false
}

// WillMove returns p's queued move action, or nil.
func (q *Queue) WillMove(p *Pokemon) *Action {
	if p.Fainted {
		return nil
	}
	for _, a := range q.list {
		if a.Kind == ActionMove && a.Pokemon == p {
			return a
		}
	}
	return nil
}

// WillAct reports whether any non-system action is still queued.
func (q *Queue) WillAct() bool {
	for _, a := range q.list {
		switch a.Kind {
		case ActionMove, ActionSwitch, ActionInstaSwitch, ActionShift:
			return true
		}
	}
	return false
}

// PrioritizeAction moves a to the front of the queue to run next, as an
// instant action caused by source.
func (q *Queue) PrioritizeAction(a *Action, source *Effect) {
	for i, cur := range q.list {
		if cur == a {
			q.list = append(q.list[:i], q.list[i+1:]...)
			break
		}
	}
	a.Order = actionOrder[ActionInstaSwitch]
	a.SourceEffect = source
	q.Unshift(a)
}

// resolveAction fills in an action's ordering fields and expands it into
// the actions it implies.
func (q *Queue) resolveAction(a *Action, midTurn bool) ([]*Action, error) {
	b := q.battle
	if a.Kind == "" {
		return nil, newError(CodeInvariant, "action has no kind")
	}
	if a.Kind == ActionPass {
		return nil, nil
	}
	out := []*Action{a}
	if a.Order == 0 {
		order, ok := actionOrder[a.Kind]
		if !ok {
			return nil, newError(CodeInvariant, "action %s has no order", a.Kind)
		}
		a.Order = order
	}

	if a.Kind == ActionMove {
		if a.Move == nil {
			m, err := b.newActiveMove(a.MoveID)
			if err != nil {
				return nil, err
			}
			a.Move = m
		}
		a.MoveID = a.Move.ID
	}

	if !midTurn {
		switch a.Kind {
		case ActionMove:
			if a.Move.Effect.Handler(HookBeforeTurnCallback, ScopeSelf) != nil {
				pre, err := q.resolveAction(&Action{Kind: ActionBeforeTurnMove, Pokemon: a.Pokemon, MoveID: a.MoveID, Move: a.Move, TargetLoc: a.TargetLoc}, false)
				if err != nil {
					return nil, err
				}
				out = append(pre, out...)
			}
			if pair := b.linkedPair(a.Pokemon, a.MoveID, false); pair != nil && !b.holdsChoiceItem(a.Pokemon) {
				a.Linked = make([]*ActiveMove, 0, 2)
				other := 0
				for i, id := range pair {
					m, err := b.newActiveMove(id)
					if err != nil {
						return nil, err
					}
					a.Linked = append(a.Linked, m)
					if id != a.MoveID {
						other = i
					}
				}
				partner := a.Linked[other]
				if partner.Effect.Handler(HookBeforeTurnCallback, ScopeSelf) != nil {
					pre, err := q.resolveAction(&Action{Kind: ActionBeforeTurnMove, Pokemon: a.Pokemon, MoveID: partner.ID, Move: partner, TargetLoc: a.TargetLoc}, false)
					if err != nil {
						return nil, err
					}
					out = append(pre, out...)
				}
			}
			a.FractionalPriority = b.RunModify(HookFractionalPriority, EventArgs{Target: a.Pokemon, Move: a.Move}, 0)
		case ActionSwitch, ActionInstaSwitch:
			if a.Pokemon.selfSwitchMove != "" {
				a.SourceEffect = b.Effect(KindMove, a.Pokemon.selfSwitchMove)
			}
			a.Pokemon.selfSwitchMove = ""
			a.Pokemon.SwitchFlag = false
		}
	}

	if a.Kind == ActionMove {
		var target *Pokemon
		if a.TargetLoc == 0 {
			target = b.strategies.Targeting.RandomTarget(b, a.Pokemon, a.Move)
			if target != nil {
				a.TargetLoc = a.Pokemon.LocOf(target)
			}
		}
		a.OriginalTarget = a.Pokemon.AtLoc(a.TargetLoc)
		if a.Priority == 0 {
			q.resolvePriority(a, target)
		}
	}
	if a.Speed == 0 {
		if a.Pokemon == nil {
			a.Speed = 1
		} else {
			a.Speed = a.Pokemon.ActionSpeed()
		}
	}
	return out, nil
}

// resolvePriority applies ModifyPriority to a move action. Linked pairs
// run at the lower of both moves' priorities.
func (q *Queue) resolvePriority(a *Action, target *Pokemon) {
	b := q.battle
	move := a.Move
	if len(a.Linked) == 2 {
		idx := 0
		if a.Linked[1].ID == a.MoveID {
			idx = 1
		}
		this, other := a.Linked[idx], a.Linked[1-idx]
		p1 := b.RunModify(HookModifyPriority, EventArgs{Target: a.Pokemon, Source: target, Move: this}, this.Priority)
		p2 := b.RunModify(HookModifyPriority, EventArgs{Target: a.Pokemon, Source: target, Move: other}, other.Priority)
		priority := min(p1, p2)
		a.Priority = priority
		if b.Gen() > 5 {
			this.Priority = priority
			other.Priority = priority
		}
		b.logger.Debug("linked priority resolved",
			zap.String("battle_id", b.ID),
			zap.String("pokemon", a.Pokemon.FullName()),
			zap.Int("first", p1),
			zap.Int("second", p2),
		)
		return
	}
	priority := b.SingleModify(move.Effect, nil, HookModifyPriority, EventArgs{Target: a.Pokemon, Source: target, Move: move}, move.Priority)
	priority = b.RunModify(HookModifyPriority, EventArgs{Target: a.Pokemon, Source: target, Move: move}, priority)
	a.Priority = priority
	if b.Gen() > 5 {
		move.Priority = priority
	}
}

func (b *Battle) holdsChoiceItem(p *Pokemon) bool {
	if p.Item == "" {
		return false
	}
	it, ok := b.dex.Item(string(p.Item))
	return ok && it.IsChoice
}

// moveAction builds a queued move for p.
func moveAction(p *Pokemon, id dex.ID, targetLoc int) *Action {
	return &Action{Kind: ActionMove, Pokemon: p, MoveID: id, TargetLoc: targetLoc}
}
