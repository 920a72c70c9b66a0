package rules

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds how deeply hook dispatches may nest.
const DefaultMaxDepth = 8

// ErrDepthExceeded is returned by Enter once the nesting limit is hit.
var ErrDepthExceeded = errors.New("dispatch depth exceeded")

// DispatchDepth tracks the chain of hooks currently being dispatched so
// that handlers re-entering the dispatcher stay bounded. It belongs to a
// single battle and is not safe for concurrent use.
type DispatchDepth struct {
	hooks []string // innermost last
	limit int
}

// NewDispatchDepth allows limit nested dispatches; non-positive values
// use DefaultMaxDepth.
func NewDispatchDepth(limit int) *DispatchDepth {
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	return &DispatchDepth{hooks: make([]string, 0, limit), limit: limit}
}

// Enter pushes hook.
func (d *DispatchDepth) Enter(hook string) error {
	if len(d.hooks) >= d.limit {
		return fmt.Errorf("%w: %s at depth %d", ErrDepthExceeded, hook, d.limit)
	}
	d.hooks = append(d.hooks, hook)
	return nil
}

// Leave pops hook, which must be the innermost one.
func (d *DispatchDepth) Leave(hook string) error {
	n := len(d.hooks)
	switch {
	case n == 0:
		return fmt.Errorf("leave %s: nothing is being dispatched", hook)
	case d.hooks[n-1] != hook:
		return fmt.Errorf("leave %s: innermost dispatch is %s", hook, d.hooks[n-1])
	}
	d.hooks = d.hooks[:n-1]
	return nil
}

// Depth is the current nesting level.
func (d *DispatchDepth) Depth() int { return len(d.hooks) }

// Current returns the innermost hook, or "".
func (d *DispatchDepth) Current() string {
	if len(d.hooks) == 0 {
		return ""
	}
	return d.hooks[len(d.hooks)-1]
}

// Reset forgets every open dispatch.
func (d *DispatchDepth) Reset() { d.hooks = d.hooks[:0] }
