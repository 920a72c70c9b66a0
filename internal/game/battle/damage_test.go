package battle

import (
	"testing"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/prng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseDamage(t *testing.T) {
	tests := []struct {
		level, power, atk, def int
		want                   int
	}{
		{50, 80, 100, 100, 37},
		{100, 100, 200, 100, 170},
		{1, 40, 10, 300, 2},
		{100, 100, 200, 0, 16802},
		{80, 80, 150, 100, 83},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseDamage(tt.level, tt.power, tt.atk, tt.def))
	}
}

func TestModify(t *testing.T) {
	assert.Equal(t, 150, modify(100, 3, 2))
	assert.Equal(t, 28, modify(37, 3, 4))
	assert.Equal(t, 50, modify(100, 1, 2))
	assert.Equal(t, 0, modify(0, 3, 2))
}

func TestCritDenominator(t *testing.T) {
	tests := []struct {
		name       string
		gen, ratio int
		want       int
	}{
		{"no crit", 7, 0, 0},
		{"base gen 7", 7, 1, 16},
		{"high ratio gen 7", 7, 2, 8},
		{"stage 3 gen 7", 7, 3, 2},
		{"always gen 7", 7, 4, 1},
		{"clamped gen 7", 7, 9, 1},
		{"base gen 5", 5, 1, 16},
		{"stage 3 gen 5", 5, 3, 4},
		{"stage 4 gen 5", 5, 4, 3},
		{"clamped gen 5", 5, 9, 2},
		{"negative ratio", 7, -2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CritDenominator(tt.gen, tt.ratio))
		})
	}
}

func TestEffectiveness(t *testing.T) {
	b := newTestBattle(t, nil, mon("Pikachu", "thunderbolt", "tackle"), mon("Gyarados", "tackle"))
	gyarados := b.Sides[1].Active[0]

	bolt := b.mustActiveMove("thunderbolt")
	assert.Equal(t, 2, gyarados.RunEffectiveness(bolt))
	assert.Equal(t, 400, applyEffectiveness(b, gyarados, bolt, 100, false))
	assert.Equal(t, 2, bolt.TypeEffectiveness(gyarados))

	quake := b.mustActiveMove("earthquake")
	assert.False(t, gyarados.RunImmunity(quake.Type, false), "flying types ignore ground moves")

	pikachu := b.Sides[0].Active[0]
	assert.Equal(t, -1, pikachu.RunEffectiveness(bolt))
	assert.Equal(t, 50, applyEffectiveness(b, pikachu, bolt, 100, true))
}

// maxRollSeed makes the first Intn(16) draw return 0.
const maxRollSeed = 0xc19265fb48c9f8db

func TestStandardDamageReference(t *testing.T) {
	// Fighting user, Normal move, Normal target: no STAB, neutral.
	b := newTestBattle(t, nil, mon("Machamp", "tackle"), mon("Snorlax", "tackle"))
	user, target := b.Sides[0].Active[0], b.Sides[1].Active[0]
	user.Level = 80
	user.StoredStats.Set(dex.StatAtk, 150)
	target.StoredStats.Set(dex.StatDef, 100)

	move := b.mustActiveMove("tackle")
	move.BasePower = 80
	noCrit := false
	move.WillCrit = &noCrit

	b.prng = prng.New(maxRollSeed)
	res := StandardDamage{}.Damage(b, user, target, move, false)
	assert.Equal(t, Dealt(83), res)
	assert.Equal(t, 1, b.PRNG().Calls(), "only the damage roll is drawn")
	assert.Equal(t, 0, prng.New(maxRollSeed).Intn(16))
}

func TestStandardDamageIsSeeded(t *testing.T) {
	roll := func() []int {
		b := newTestBattle(t, nil, mon("Machamp", "closecombat"), mon("Snorlax", "tackle"))
		user, target := b.Sides[0].Active[0], b.Sides[1].Active[0]
		var out []int
		for i := 0; i < 5; i++ {
			move := b.mustActiveMove("closecombat")
			res := StandardDamage{}.Damage(b, user, target, move, true)
			require.Equal(t, DamageDealt, res.Kind)
			out = append(out, res.Amount)
		}
		return out
	}
	first := roll()
	assert.Equal(t, first, roll())
	for _, d := range first {
		assert.Positive(t, d)
	}
}

func TestDamagePrelude(t *testing.T) {
	b := newTestBattle(t, nil, mon("Gengar", "nightshade", "shadowball"), mon("Snorlax", "seismictoss", "dragonrage"))
	gengar, snorlax := b.Sides[0].Active[0], b.Sides[1].Active[0]

	res := StandardDamage{}.Damage(b, gengar, snorlax, b.mustActiveMove("nightshade"), true)
	assert.Equal(t, DamageFailed, res.Kind, "normal types are immune to ghost moves")

	res = StandardDamage{}.Damage(b, snorlax, gengar, b.mustActiveMove("dragonrage"), true)
	assert.Equal(t, Dealt(40), res)

	res = StandardDamage{}.Damage(b, snorlax, gengar, b.mustActiveMove("seismictoss"), true)
	assert.Equal(t, DamageFailed, res.Kind, "ghost types are immune to fighting moves")

	res = StandardDamage{}.Damage(b, gengar, snorlax, b.mustActiveMove("recover"), true)
	assert.Equal(t, NoDamage, res.Kind)
}

func TestSkillmonsDamageHasNoRoll(t *testing.T) {
	b := newTestBattle(t, nil, mon("Machamp", "stoneedge"), mon("Snorlax", "tackle"))
	user, target := b.Sides[0].Active[0], b.Sides[1].Active[0]
	calls := b.PRNG().Calls()
	a := SkillmonsDamage{}.Damage(b, user, target, b.mustActiveMove("stoneedge"), true)
	c := SkillmonsDamage{}.Damage(b, user, target, b.mustActiveMove("stoneedge"), true)
	assert.Equal(t, a, c)
	assert.Equal(t, calls, b.PRNG().Calls())
}
