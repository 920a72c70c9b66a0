package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPRNGDeterminism(t *testing.T) {
	a := New(0xDEADBEEF)
	b := New(0xDEADBEEF)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
	assert.Equal(t, 100, a.Calls())
	assert.Equal(t, uint64(0xDEADBEEF), a.Seed())
}

func TestPRNGFirstValue(t *testing.T) {
	p := New(1)
	want := uint32((uint64(1)*multiplier + increment) >> 32)
	assert.Equal(t, want, p.Next())
}

func TestIntnBounds(t *testing.T) {
	p := New(42)
	for i := 0; i < 1000; i++ {
		v := p.Intn(16)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 16)
	}
	calls := p.Calls()
	assert.Equal(t, 0, p.Intn(0))
	assert.Equal(t, calls, p.Calls(), "Intn(0) must not consume state")
}

func TestRange(t *testing.T) {
	p := New(7)
	for i := 0; i < 500; i++ {
		v := p.Range(2, 6)
		require.GreaterOrEqual(t, v, 2)
		require.Less(t, v, 6)
	}
	assert.Equal(t, 3, p.Range(3, 3))
}

func TestCloneIsIndependent(t *testing.T) {
	p := New(99)
	p.Next()
	c := p.Clone()
	assert.Equal(t, p.Next(), c.Next())
	c.Next()
	assert.NotEqual(t, p.State(), c.State())
}

func TestShuffleIsPermutation(t *testing.T) {
	p := New(5)
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	p.Shuffle(0, len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	seen := make(map[int]bool)
	for _, v := range items {
		seen[v] = true
	}
	assert.Len(t, seen, 8)

	again := []int{0, 1, 2, 3, 4, 5, 6, 7}
	q := New(5)
	q.Shuffle(0, len(again), func(i, j int) { again[i], again[j] = again[j], again[i] })
	assert.Equal(t, items, again)
}

func TestShuffleSubrangeLeavesOutsideUntouched(t *testing.T) {
	p := New(11)
	items := []int{9, 1, 2, 3, 8}
	p.Shuffle(1, 4, func(i, j int) { items[i], items[j] = items[j], items[i] })
	assert.Equal(t, 9, items[0])
	assert.Equal(t, 8, items[4])
}

func TestWeightedIndex(t *testing.T) {
	p := New(3)
	assert.Equal(t, -1, p.WeightedIndex([]int{0, -1}))
	for i := 0; i < 200; i++ {
		require.Equal(t, 1, p.WeightedIndex([]int{0, 5, 0}))
	}
}

func TestSample(t *testing.T) {
	p := New(8)
	_, ok := Sample(p, []string{})
	assert.False(t, ok)
	v, ok := Sample(p, []string{"a"})
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
