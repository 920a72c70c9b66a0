package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchDepth(t *testing.T) {
	t.Run("enter and leave", func(t *testing.T) {
		d := NewDispatchDepth(0)
		assert.Equal(t, 0, d.Depth())

		require.NoError(t, d.Enter("BasePower"))
		assert.Equal(t, 1, d.Depth())
		assert.Equal(t, "BasePower", d.Current())

		require.NoError(t, d.Leave("BasePower"))
		assert.Equal(t, "", d.Current())
	})

	t.Run("nested", func(t *testing.T) {
		d := NewDispatchDepth(0)
		require.NoError(t, d.Enter("DamagingHit"))
		require.NoError(t, d.Enter("Boost"))
		assert.Equal(t, 2, d.Depth())

		err := d.Leave("DamagingHit")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "innermost dispatch is Boost")

		require.NoError(t, d.Leave("Boost"))
		require.NoError(t, d.Leave("DamagingHit"))
	})

	t.Run("limit", func(t *testing.T) {
		d := NewDispatchDepth(3)
		for i := 0; i < 3; i++ {
			require.NoError(t, d.Enter("Loop"))
		}
		assert.ErrorIs(t, d.Enter("Loop"), ErrDepthExceeded)
		assert.Equal(t, 3, d.Depth())

		d.Reset()
		assert.Equal(t, 0, d.Depth())
	})

	t.Run("leave without enter", func(t *testing.T) {
		require.Error(t, NewDispatchDepth(0).Leave("Nothing"))
	})
}
