package mods_test

import (
	"strings"
	"testing"

	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/mods"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func mon(species string, moves ...string) battle.PokemonSet {
	return battle.PokemonSet{Species: species, Moves: moves}
}

func startBattle(t *testing.T, format string, p1, p2 []battle.PokemonSet) *battle.Battle {
	t.Helper()
	f, err := mods.Format(format, nil)
	require.NoError(t, err)
	b, err := battle.New(f,
		battle.PlayerSpec{Name: "Alice", Team: p1},
		battle.PlayerSpec{Name: "Bob", Team: p2},
		battle.Options{Seed: 7, Logger: zaptest.NewLogger(t)},
	)
	require.NoError(t, err)
	_, err = b.Start()
	require.NoError(t, err)
	return b
}

func playTurn(t *testing.T, b *battle.Battle, p1, p2 string) {
	t.Helper()
	require.NoError(t, b.Choose("p1", p1))
	require.NoError(t, b.Choose("p2", p2))
	_, err := b.AdvanceTurn()
	require.NoError(t, err)
}

func logLines(b *battle.Battle) []string {
	var out []string
	for _, e := range b.Log() {
		out = append(out, e.String())
	}
	return out
}

func indexOf(lines []string, prefix string) int {
	for i, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return i
		}
	}
	return -1
}

func active(b *battle.Battle, side int) *battle.Pokemon {
	return b.Sides[side].Active[0]
}

func TestIntimidateOnEntry(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Gyarados", "swordsdance")},
		[]battle.PokemonSet{mon("Machamp", "swordsdance")},
	)
	assert.Equal(t, -1, active(b, 1).Boosts[dex.BoostAtk])
	lines := logLines(b)
	assert.Contains(t, lines, "|-ability|p1a: Gyarados|Intimidate|boost")
	assert.Contains(t, lines, "|-unboost|p2a: Machamp|atk|1")
}

func TestWeatherAbilities(t *testing.T) {
	tests := []struct {
		format   string
		duration int
	}{
		{"gen7singles", 5},
		{"gen7poweredup", 10},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			b := startBattle(t, tt.format,
				[]battle.PokemonSet{mon("Politoed", "swordsdance")},
				[]battle.PokemonSet{mon("Snorlax", "swordsdance")},
			)
			assert.True(t, b.Field.IsWeather("raindance"))
			assert.Equal(t, tt.duration, b.Field.WeatherState.Duration)
			assert.Contains(t, logLines(b), "|-weather|RainDance|[from] ability: Drizzle|[of] p1a: Politoed")
		})
	}
}

func TestSandstormResidual(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Tyranitar", "swordsdance")},
		[]battle.PokemonSet{mon("Pikachu", "swordsdance")},
	)
	playTurn(t, b, "move 1", "move 1")

	ttar, pika := active(b, 0), active(b, 1)
	assert.Equal(t, ttar.MaxHP, ttar.HP, "rock types take no sand damage")
	assert.Equal(t, pika.MaxHP-pika.MaxHP/16, pika.HP)
	assert.Equal(t, 4, b.Field.WeatherState.Duration)

	lines := logLines(b)
	assert.Contains(t, lines, "|-weather|Sandstorm|[upkeep]")
	assert.NotEqual(t, -1, indexOf(lines, "|-damage|p2a: Pikachu|"))
}

func TestStealthRockOnSwitchIn(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Skarmory", "stealthrock", "swordsdance")},
		[]battle.PokemonSet{mon("Charizard", "swordsdance"), mon("Pikachu", "swordsdance")},
	)
	playTurn(t, b, "move stealthrock", "move swordsdance")
	require.NotNil(t, b.Sides[1].Condition("stealthrock"))
	assert.Contains(t, logLines(b), "|-sidestart|p2: Bob|move: Stealth Rock")

	playTurn(t, b, "move swordsdance", "switch 2")
	pika := active(b, 1)
	require.Equal(t, "Pikachu", pika.Name)
	assert.Equal(t, pika.MaxHP-pika.MaxHP/8, pika.HP)
}

func TestTrickRoomReversesOrder(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Ferrothorn", "trickroom", "tackle")},
		[]battle.PokemonSet{mon("Dugtrio", "swordsdance", "tackle")},
	)
	playTurn(t, b, "move trickroom", "move swordsdance")
	require.True(t, b.Field.HasPseudoWeather("trickroom"))
	assert.Greater(t, active(b, 0).ActionSpeed(), active(b, 1).ActionSpeed())

	before := len(b.Log())
	playTurn(t, b, "move tackle", "move tackle")
	turn := logLines(b)[before:]
	ferro := indexOf(turn, "|move|p1a: Ferrothorn|Tackle")
	dug := indexOf(turn, "|move|p2a: Dugtrio|Tackle")
	require.NotEqual(t, -1, ferro)
	require.NotEqual(t, -1, dug)
	assert.Less(t, ferro, dug)
}

func TestProtectBlocksAttack(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Snorlax", "protect")},
		[]battle.PokemonSet{mon("Machamp", "closecombat")},
	)
	playTurn(t, b, "move protect", "move closecombat")

	snorlax := active(b, 0)
	assert.Equal(t, snorlax.MaxHP, snorlax.HP)
	assert.True(t, snorlax.HasVolatile("stall"))
	assert.Contains(t, logLines(b), "|-activate|p1a: Snorlax|move: Protect")
}

func TestSturdyBlocksOHKO(t *testing.T) {
	sturdy := mon("Snorlax", "swordsdance")
	sturdy.Ability = "Sturdy"
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{sturdy},
		[]battle.PokemonSet{mon("Dugtrio", "fissure")},
	)
	playTurn(t, b, "move 1", "move fissure")

	snorlax := active(b, 0)
	assert.Equal(t, snorlax.MaxHP, snorlax.HP)
	assert.Contains(t, logLines(b), "|-immune|p1a: Snorlax|[from] ability: Sturdy")
}

func TestLevitateGroundImmunity(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Garchomp", "earthquake")},
		[]battle.PokemonSet{mon("Gengar", "swordsdance")},
	)
	playTurn(t, b, "move earthquake", "move swordsdance")

	gengar := active(b, 1)
	assert.Equal(t, gengar.MaxHP, gengar.HP)
	assert.Contains(t, logLines(b), "|-immune|p2a: Gengar|[from] ground immunity")
}

func TestParalysisHalvesSpeed(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Machamp", "swordsdance")},
		[]battle.PokemonSet{mon("Pikachu", "swordsdance")},
	)
	machamp := active(b, 0)
	speed := machamp.ActionSpeed()
	require.True(t, machamp.SetStatus("par", nil, nil))
	assert.Equal(t, speed/2, machamp.ActionSpeed())

	// electric types cannot be paralyzed
	assert.False(t, active(b, 1).SetStatus("par", nil, nil))
}

func TestChoiceScarf(t *testing.T) {
	scarf := mon("Pikachu", "swordsdance", "tackle")
	scarf.Item = "Choice Scarf"
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{scarf},
		[]battle.PokemonSet{mon("Snorlax", "swordsdance")},
	)
	pika := active(b, 0)
	assert.Equal(t, pika.StoredStats.Spe*3/2, pika.ActionSpeed())

	playTurn(t, b, "move swordsdance", "move swordsdance")
	require.True(t, pika.HasVolatile("choicelock"))

	req := b.Request()
	require.NotNil(t, req)
	moves := req.Sides[0].Active[0].Moves
	require.Len(t, moves, 2)
	assert.False(t, moves[0].Disabled)
	assert.True(t, moves[1].Disabled)
}

func TestToxicCounter(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Mew", "swordsdance")},
		[]battle.PokemonSet{mon("Lapras", "swordsdance")},
	)
	mew := active(b, 0)
	require.True(t, mew.SetStatus("tox", nil, nil))
	step := mew.MaxHP / 16

	playTurn(t, b, "move 1", "move 1")
	assert.Equal(t, mew.MaxHP-step, mew.HP)
	playTurn(t, b, "move 1", "move 1")
	assert.Equal(t, mew.MaxHP-3*step, mew.HP)
	assert.Equal(t, 2, mew.StatusState.Counter)
}

func TestSleepClause(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Venusaur", "spore")},
		[]battle.PokemonSet{mon("Snorlax", "swordsdance"), mon("Lapras", "swordsdance")},
	)
	user := active(b, 0)
	spore := b.Effect(battle.KindMove, "spore")
	snorlax, lapras := b.Sides[1].Pokemon[0], b.Sides[1].Pokemon[1]

	require.True(t, lapras.SetStatus("slp", user, spore))
	assert.False(t, snorlax.SetStatus("slp", user, spore))
	assert.Contains(t, logLines(b), "|message|Sleep Clause Mod activated.")

	// self-inflicted sleep does not count
	lapras.CureStatus(true)
	require.True(t, lapras.SetStatus("slp", nil, nil))
	assert.True(t, snorlax.SetStatus("slp", user, spore))
}

func TestEncoreNeedsLastMove(t *testing.T) {
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Clefable", "encore")},
		[]battle.PokemonSet{mon("Snorlax", "swordsdance", "tackle")},
	)
	snorlax := active(b, 1)
	encore := b.Effect(battle.KindMove, "encore")
	assert.False(t, snorlax.AddVolatile("encore", active(b, 0), encore))

	// Clefable moves first, before Snorlax has a move to repeat
	playTurn(t, b, "move encore", "move swordsdance")
	assert.False(t, snorlax.HasVolatile("encore"))

	playTurn(t, b, "move encore", "move swordsdance")
	state := snorlax.Volatile("encore")
	require.NotNil(t, state, "encore lands after a move was used")
	assert.Equal(t, dex.ID("swordsdance"), state.Move)

	req := b.Request()
	moves := req.Sides[1].Active[0].Moves
	require.Len(t, moves, 2)
	assert.True(t, moves[1].Disabled)
}

func TestFocusSash(t *testing.T) {
	sash := mon("Pikachu", "swordsdance")
	sash.Item = "Focus Sash"
	sash.Level = 5
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{mon("Machamp", "closecombat")},
		[]battle.PokemonSet{sash},
	)
	playTurn(t, b, "move closecombat", "move swordsdance")

	pika := active(b, 1)
	assert.Equal(t, 1, pika.HP)
	assert.Equal(t, dex.ID(""), pika.Item)
	assert.Contains(t, logLines(b), "|-enditem|p2a: Pikachu|Focus Sash")
}

func TestLifeOrbRecoil(t *testing.T) {
	orb := mon("Machamp", "closecombat")
	orb.Item = "Life Orb"
	b := startBattle(t, "gen7singles",
		[]battle.PokemonSet{orb},
		[]battle.PokemonSet{mon("Skarmory", "swordsdance")},
	)
	playTurn(t, b, "move closecombat", "move swordsdance")

	machamp := active(b, 0)
	assert.Equal(t, machamp.MaxHP-machamp.MaxHP/10, machamp.HP)
	assert.NotEqual(t, -1, indexOf(logLines(b), "|-damage|p1a: Machamp|"))
}

func TestPoweredUpAura(t *testing.T) {
	b := startBattle(t, "gen7poweredup",
		[]battle.PokemonSet{mon("Snorlax", "swordsdance")},
		[]battle.PokemonSet{mon("Lapras", "swordsdance"), mon("Mew", "swordsdance")},
	)
	playTurn(t, b, "move 1", "move 1")

	lines := logLines(b)
	assert.Contains(t, lines, "|-start|p1a: Snorlax|Aura")
	assert.NotContains(t, lines, "|-start|p2a: Lapras|Aura")
	assert.False(t, active(b, 0).HasVolatile("aura"), "aura lasts one turn")
}
