// Package prng implements the seeded pseudo-random source used by battles.
//
// Every random decision a battle makes (damage rolls, critical hits, speed
// ties, secondary chances) goes through a single PRNG so that a seed plus a
// decision log reproduces the exact same battle.
package prng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

const (
	multiplier uint64 = 0x5D588B656C078965
	increment  uint64 = 0x269EC3
)

// PRNG is a 64-bit linear congruential generator. The upper 32 bits of
// each state are used as output.
type PRNG struct {
	initial uint64
	state   uint64
	calls   int
}

// New creates a generator starting from seed.
func New(seed uint64) *PRNG {
	return &PRNG{initial: seed, state: seed}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Seed returns the seed the generator was created with.
func (p *PRNG) Seed() uint64 {
	return p.initial
}

// State returns the current internal state.
func (p *PRNG) State() uint64 {
	return p.state
}

// Calls returns how many values have been drawn.
func (p *PRNG) Calls() int {
	return p.calls
}

// Clone returns an independent generator with identical state.
func (p *PRNG) Clone() *PRNG {
	c := *p
	return &c
}

// Next advances the generator and returns the next 32-bit value.
func (p *PRNG) Next() uint32 {
	p.state = p.state*multiplier + increment
	p.calls++
	return uint32(p.state >> 32)
}

// Intn returns a uniform integer in [0, n). n <= 0 yields 0 without
// advancing the state.
func (p *PRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int((uint64(p.Next()) * uint64(n)) >> 32)
}

// Range returns a uniform integer in [lo, hi).
func (p *PRNG) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.Intn(hi-lo)
}

// Chance reports true with probability num/den.
func (p *PRNG) Chance(num, den int) bool {
	return p.Intn(den) < num
}

// Shuffle permutes the half-open range [start, end) using swap.
// For each i the partner is drawn from [i, end).
func (p *PRNG) Shuffle(start, end int, swap func(i, j int)) {
	for i := start; i < end-1; i++ {
		j := p.Range(i, end)
		if j != i {
			swap(i, j)
		}
	}
}

// WeightedIndex picks an index with probability proportional to its
// weight. Non-positive weights are never picked. Returns -1 when every
// weight is non-positive.
func (p *PRNG) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	roll := p.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}

// Sample returns a uniformly chosen element of items.
func Sample[T any](p *PRNG, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[p.Intn(len(items))], true
}
