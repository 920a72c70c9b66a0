package replay

import (
	"strings"
	"sync"
)

// Viewer steps through a replay's log one turn at a time. Frame 0 is
// the battle header up to the first turn marker; frame n holds turn n.
type Viewer struct {
	mu      sync.RWMutex
	frames  [][]string
	current int
}

// NewViewer splits r's log into frames.
func NewViewer(r *Replay) *Viewer {
	return &Viewer{frames: frames(r.Log), current: -1}
}

func frames(log []string) [][]string {
	var out [][]string
	var cur []string
	for _, line := range log {
		cur = append(cur, line)
		if strings.HasPrefix(line, "|turn|") {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Size returns the number of frames.
func (v *Viewer) Size() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.frames)
}

// Start rewinds to the first frame and returns it.
func (v *Viewer) Start() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.frames) == 0 {
		return nil
	}
	v.current = 0
	return v.frames[0]
}

// Next advances one frame. It returns nil past the end.
func (v *Viewer) Next() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current+1 >= len(v.frames) {
		return nil
	}
	v.current++
	return v.frames[v.current]
}

// Previous steps back one frame. It returns nil before the start.
func (v *Viewer) Previous() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current <= 0 {
		return nil
	}
	v.current--
	return v.frames[v.current]
}

// Skip moves by n frames in either direction, clamped to the log.
func (v *Viewer) Skip(n int) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.frames) == 0 {
		return nil
	}
	target := v.current + n
	if target < 0 {
		target = 0
	}
	if target >= len(v.frames) {
		target = len(v.frames) - 1
	}
	v.current = target
	return v.frames[target]
}

// Frame returns frame i without moving.
func (v *Viewer) Frame(i int) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i < 0 || i >= len(v.frames) {
		return nil
	}
	return v.frames[i]
}
