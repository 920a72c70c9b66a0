package dex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToID(t *testing.T) {
	tests := map[string]ID{
		"Thunderbolt":  "thunderbolt",
		"U-turn":       "uturn",
		"Flabébé":      "flabebe",
		"Will-O-Wisp":  "willowisp",
		"Porygon2":     "porygon2",
		"  Mr. Mime  ": "mrmime",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ToID(in))
		})
	}
}

func TestDefaultDex(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, d, again)

	m, ok := d.Move("Thunderbolt")
	require.True(t, ok)
	assert.Equal(t, ID("thunderbolt"), m.ID)
	assert.Equal(t, CategorySpecial, m.Category)
	require.Len(t, m.Secondaries, 1)
	assert.Equal(t, ID("par"), m.Secondaries[0].Status)

	outrage, ok := d.Move("outrage")
	require.True(t, ok)
	require.NotNil(t, outrage.Self)
	assert.Equal(t, ID("lockedmove"), outrage.Self.VolatileStatus)

	dbl, _ := d.Move("Double-Edge")
	assert.Equal(t, Fraction{33, 100}, dbl.Recoil)

	tackle, _ := d.Move("tackle")
	assert.Equal(t, TargetNormal, tackle.Target)
	assert.True(t, tackle.HasFlag(FlagContact))
	assert.Equal(t, 56, tackle.MaxPP())

	s, ok := d.SpeciesByName("Garchomp")
	require.True(t, ok)
	assert.True(t, s.HasType("Ground"))
	assert.Equal(t, 102, s.BaseStats.Spe)

	it, ok := d.Item("Choice Band")
	require.True(t, ok)
	assert.True(t, it.IsChoice)
}

func TestTypeChart(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	tc := d.Types

	assert.Equal(t, 1, tc.Effectiveness("Water", []string{"Fire"}))
	assert.Equal(t, 2, tc.Effectiveness("Ice", []string{"Dragon", "Flying"}))
	assert.Equal(t, -2, tc.Effectiveness("Fire", []string{"Water", "Dragon"}))
	assert.Equal(t, 0, tc.Effectiveness("Water", []string{"Water", "Ground"}))
	assert.Equal(t, 0, tc.Effectiveness(TypelessType, []string{"Steel"}))

	assert.True(t, tc.Immune("Ground", []string{"Electric", "Flying"}))
	assert.True(t, tc.Immune("Normal", []string{"Ghost"}))
	assert.False(t, tc.Immune("Fire", []string{"Grass"}))
	assert.True(t, tc.Immune("brn", []string{"Fire"}))
	assert.True(t, tc.Immune("sandstorm", []string{"Steel"}))
}

func TestCalcStat(t *testing.T) {
	// Garchomp, level 100, 31 IVs, 252 EVs in attack, Adamant.
	adamant := &Nature{Name: "Adamant", Plus: StatAtk, Minus: StatSpA}
	assert.Equal(t, 394, CalcStat(StatAtk, 130, 31, 252, 100, adamant))
	assert.Equal(t, 357, CalcStat(StatHP, 108, 31, 0, 100, nil))
	assert.Equal(t, 176, CalcStat(StatSpA, 80, 31, 0, 100, adamant))
	assert.Equal(t, 1, CalcStat(StatHP, 1, 31, 252, 100, nil))
}

func TestParseRejectsBadData(t *testing.T) {
	_, err := Load(strings.NewReader("types: {}\n"))
	require.Error(t, err)

	bad := `
types:
  Normal: {}
moves:
  zap: {name: Zap, type: Electric, category: Special}
`
	_, err = Parse([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")

	badCat := `
types:
  Normal: {}
moves:
  zap: {name: Zap, type: Normal, category: Weird}
`
	_, err = Parse([]byte(badCat))
	require.Error(t, err)
}
