package battle

import (
	"math"

	"github.com/magefree/battle-sim-go/internal/game/prng"
)

// priorityKey is the ordering key shared by queued actions and residual
// handlers.
type priorityKey struct {
	Order              int // lower first; 0 sorts last
	Priority           int // higher first
	FractionalPriority int // higher first
	Speed              int // higher first
	SubOrder           int // lower first
	EffectOrder        int // lower first
}

// comparePriority returns a negative number when a goes before b, a
// positive one when b goes first and 0 on an exact tie.
func comparePriority(a, b priorityKey) int {
	ao, bo := a.Order, b.Order
	if ao == 0 {
		ao = math.MaxInt32
	}
	if bo == 0 {
		bo = math.MaxInt32
	}
	if ao != bo {
		return ao - bo
	}
	if a.Priority != b.Priority {
		return b.Priority - a.Priority
	}
	if a.FractionalPriority != b.FractionalPriority {
		return b.FractionalPriority - a.FractionalPriority
	}
	if a.Speed != b.Speed {
		return b.Speed - a.Speed
	}
	if a.SubOrder != b.SubOrder {
		return a.SubOrder - b.SubOrder
	}
	return a.EffectOrder - b.EffectOrder
}

// speedSort sorts list in place with a selection sort, shuffling each
// group of exact ties with r. Ties therefore depend only on the PRNG
// state, never on the input order of unequal elements.
func speedSort[T any](r *prng.PRNG, list []T, cmp func(a, b T) int) {
	if len(list) < 2 {
		return
	}
	sorted := 0
	for sorted+1 < len(list) {
		next := []int{sorted}
		for i := sorted + 1; i < len(list); i++ {
			delta := cmp(list[next[0]], list[i])
			if delta < 0 {
				continue
			}
			if delta > 0 {
				next = next[:0]
			}
			next = append(next, i)
		}
		for i, idx := range next {
			list[sorted+i], list[idx] = list[idx], list[sorted+i]
		}
		if len(next) > 1 {
			r.Shuffle(sorted, sorted+len(next), func(i, j int) {
				list[i], list[j] = list[j], list[i]
			})
		}
		sorted += len(next)
	}
}
