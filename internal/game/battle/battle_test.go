package battle_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/mods"
	"github.com/magefree/battle-sim-go/internal/game/prng"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func set(species string, moves ...string) battle.PokemonSet {
	return battle.PokemonSet{Species: species, Moves: moves}
}

func team(sets ...battle.PokemonSet) []battle.PokemonSet {
	return sets
}

func newBattle(t *testing.T, format string, p1, p2 []battle.PokemonSet, opts battle.Options) *battle.Battle {
	t.Helper()
	f, err := mods.Format(format, nil)
	require.NoError(t, err)
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	b, err := battle.New(f,
		battle.PlayerSpec{Name: "Alice", Team: p1},
		battle.PlayerSpec{Name: "Bob", Team: p2},
		opts,
	)
	require.NoError(t, err)
	return b
}

func started(t *testing.T, format string, p1, p2 []battle.PokemonSet) *battle.Battle {
	t.Helper()
	b := newBattle(t, format, p1, p2, battle.Options{})
	_, err := b.Start()
	require.NoError(t, err)
	return b
}

func turn(t *testing.T, b *battle.Battle, p1, p2 string) *battle.TurnResult {
	t.Helper()
	require.NoError(t, b.Choose("p1", p1))
	require.NoError(t, b.Choose("p2", p2))
	res, err := b.AdvanceTurn()
	require.NoError(t, err)
	return res
}

func lines(events []rules.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.String())
	}
	return out
}

func find(ls []string, prefix string) int {
	for i, l := range ls {
		if strings.HasPrefix(l, prefix) {
			return i
		}
	}
	return -1
}

func TestNewRejectsBadRosters(t *testing.T) {
	tests := []struct {
		name   string
		format string
		p1     []battle.PokemonSet
	}{
		{"unknown species", "gen7singles", team(set("Missingno", "tackle"))},
		{"no moves", "gen7singles", team(set("Pikachu"))},
		{"unknown move", "gen7singles", team(set("Pikachu", "hyperbeam"))},
		{"duplicate species", "gen7singles", team(set("Pikachu", "tackle"), set("Pikachu", "quickattack"))},
		{"too small for doubles", "gen7doubles", team(set("Pikachu", "tackle"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := mods.Format(tt.format, nil)
			require.NoError(t, err)
			_, err = battle.New(f,
				battle.PlayerSpec{Team: tt.p1},
				battle.PlayerSpec{Team: team(set("Snorlax", "tackle"), set("Mew", "tackle"))},
				battle.Options{Seed: 1},
			)
			require.Error(t, err)
			assert.ErrorIs(t, err, battle.ErrDataInconsistency)
			assert.Equal(t, battle.CodeDataInconsistency, battle.CodeOf(err))
		})
	}
}

func TestStartEmitsHeaderAndRequest(t *testing.T) {
	b := newBattle(t, "gen7singles",
		team(set("Pikachu", "thunderbolt")),
		team(set("Snorlax", "tackle")),
		battle.Options{},
	)
	assert.Equal(t, rules.StateCreated, b.State())

	res, err := b.Start()
	require.NoError(t, err)
	ls := lines(res.Events)
	assert.Equal(t, "|gametype|singles", ls[0])
	assert.Equal(t, "|player|p1|Alice", ls[1])
	assert.Equal(t, "|player|p2|Bob", ls[2])
	assert.Contains(t, ls, "|gen|7")
	assert.Contains(t, ls, "|rule|Sleep Clause Mod: Limit one foe put to sleep")
	assert.Contains(t, ls, "|switch|p1a: Pikachu|Pikachu|211/211")
	assert.Equal(t, "|turn|1", ls[len(ls)-1])

	assert.Equal(t, 1, res.Turn)
	assert.Equal(t, battle.OutcomeOngoing, res.Outcome)
	require.NotNil(t, res.Request)
	assert.Equal(t, battle.RequestMove, res.Request.Kind)
	assert.Equal(t, rules.StateAwaitingDecisions, b.State())

	_, err = b.Start()
	assert.ErrorIs(t, err, battle.ErrInvalidDecision)
}

func TestChooseValidation(t *testing.T) {
	b := started(t, "gen7singles",
		team(set("Pikachu", "thunderbolt", "quickattack"), set("Mew", "psychic")),
		team(set("Snorlax", "tackle")),
	)

	tests := []struct {
		name  string
		side  string
		input string
	}{
		{"unknown side", "p3", "move 1"},
		{"empty", "p1", ""},
		{"unknown verb", "p1", "run away"},
		{"slot out of range", "p1", "move 5"},
		{"unknown move name", "p1", "move surf"},
		{"target on single target singles", "p1", "move 1 -3"},
		{"switch to active", "p1", "switch 1"},
		{"switch out of range", "p1", "switch 7"},
		{"pass while able", "p1", "pass"},
		{"too many decisions", "p1", "move 1, move 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Choose(tt.side, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, battle.ErrInvalidDecision)
		})
	}

	require.NoError(t, b.Choose("p1", "move quickattack"))
	_, err := b.AdvanceTurn()
	assert.ErrorIs(t, err, battle.ErrInvalidDecision, "p2 has not chosen")
	assert.Empty(t, b.InputLog())
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  battle.Choice
	}{
		{"move 1", battle.Choice{Kind: battle.ChoiceMove, Move: "1"}},
		{"  MOVE Thunderbolt ", battle.Choice{Kind: battle.ChoiceMove, Move: "Thunderbolt"}},
		{"move quick attack 2", battle.Choice{Kind: battle.ChoiceMove, Move: "quick attack", TargetLoc: 2}},
		{"move 1 -2 link", battle.Choice{Kind: battle.ChoiceMove, Move: "1", TargetLoc: -2, Link: true}},
		{"switch 3", battle.Choice{Kind: battle.ChoiceSwitch, Switch: "3"}},
		{"switch Mr Mime", battle.Choice{Kind: battle.ChoiceSwitch, Switch: "Mr Mime"}},
		{"pass", battle.Choice{Kind: battle.ChoicePass}},
		{"default", battle.Choice{Kind: battle.ChoiceDefault}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := battle.ParseChoice(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "move", "switch", "pass 1", "shift"} {
		_, err := battle.ParseChoice(bad)
		assert.ErrorIs(t, err, battle.ErrInvalidDecision, bad)
	}
}

func TestPriorityBeatsSpeed(t *testing.T) {
	b := started(t, "gen7singles",
		team(set("Snorlax", "quickattack")),
		team(set("Dugtrio", "tackle")),
	)
	res := turn(t, b, "move 1", "move 1")
	ls := lines(res.Events)
	snorlax := find(ls, "|move|p1a: Snorlax|Quick Attack")
	dugtrio := find(ls, "|move|p2a: Dugtrio|Tackle")
	require.NotEqual(t, -1, snorlax)
	require.NotEqual(t, -1, dugtrio)
	assert.Less(t, snorlax, dugtrio)
	assert.Equal(t, []string{">p1 move 1", ">p2 move 1"}, b.InputLog())
}

func TestFixedDamage(t *testing.T) {
	tests := []struct {
		name   string
		move   string
		amount func(user *battle.Pokemon) int
	}{
		{"level damage", "seismictoss", func(u *battle.Pokemon) int { return u.Level }},
		{"flat damage", "dragonrage", func(*battle.Pokemon) int { return 40 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := started(t, "gen7singles",
				team(set("Machamp", tt.move)),
				team(set("Snorlax", "swordsdance")),
			)
			turn(t, b, "move 1", "move 1")
			user, target := b.Sides[0].Active[0], b.Sides[1].Active[0]
			assert.Equal(t, target.MaxHP-tt.amount(user), target.HP)
		})
	}
}

func TestTypeImmunity(t *testing.T) {
	b := started(t, "gen7singles",
		team(set("Gengar", "nightshade")),
		team(set("Snorlax", "swordsdance")),
	)
	res := turn(t, b, "move 1", "move 1")
	snorlax := b.Sides[1].Active[0]
	assert.Equal(t, snorlax.MaxHP, snorlax.HP)
	assert.Contains(t, lines(res.Events), "|-immune|p2a: Snorlax")
}

func TestIgnoreImmunityReachesHitLoop(t *testing.T) {
	var seen []battle.StageEvent
	b := newBattle(t, "gen7singles",
		team(set("Garchomp", "thousandarrows")),
		team(set("Gyarados", "swordsdance")),
		battle.Options{StageObserver: func(e battle.StageEvent) { seen = append(seen, e) }},
	)
	_, err := b.Start()
	require.NoError(t, err)

	res := turn(t, b, "move 1", "move 1")
	ls := lines(res.Events)
	assert.NotContains(t, ls, "|-immune|p2a: Gyarados")
	assert.NotEqual(t, -1, find(ls, "|-damage|p2a: Gyarados|"))

	var stages []battle.Stage
	for _, e := range seen {
		if e.Pokemon == "p1a: Garchomp" {
			stages = append(stages, e.To)
		}
	}
	assert.Contains(t, stages, battle.StageHitLoop)
	gyarados := b.Sides[1].Active[0]
	assert.Less(t, gyarados.HP, gyarados.MaxHP)
}

func TestMultiHitCount(t *testing.T) {
	b := started(t, "gen7singles",
		team(set("Machamp", "doublekick")),
		team(set("Snorlax", "swordsdance")),
	)
	res := turn(t, b, "move 1", "move 1")
	ls := lines(res.Events)
	assert.Contains(t, ls, "|-hitcount|p2a: Snorlax|2")

	hits := 0
	for _, l := range ls {
		if strings.HasPrefix(l, "|-damage|p2a: Snorlax|") {
			hits++
		}
	}
	assert.Equal(t, 2, hits)
}

func TestFaintRequestsSwitch(t *testing.T) {
	weak := set("Magikarp", "tackle")
	weak.Level = 5
	b := started(t, "gen7singles",
		team(set("Machamp", "seismictoss")),
		team(weak, set("Lapras", "surf")),
	)
	res := turn(t, b, "move 1", "move 1")
	assert.Contains(t, lines(res.Events), "|faint|p2a: Magikarp")
	require.NotNil(t, res.Request)
	assert.Equal(t, battle.RequestSwitch, res.Request.Kind)
	assert.True(t, res.Request.Sides[0].Wait)
	assert.Equal(t, []bool{true}, res.Request.Sides[1].ForceSwitch)
	assert.Equal(t, rules.StateAwaitingSwitch, b.State())

	assert.ErrorIs(t, b.Choose("p2", "move 1"), battle.ErrInvalidDecision)
	assert.ErrorIs(t, b.Choose("p2", "switch 1"), battle.ErrInvalidDecision, "fainted")
	require.NoError(t, b.Choose("p2", "switch Lapras"))
	res, err := b.AdvanceTurn()
	require.NoError(t, err)

	ls := lines(res.Events)
	assert.NotEqual(t, -1, find(ls, "|switch|p2a: Lapras|"))
	assert.Equal(t, "|turn|2", ls[len(ls)-1])
	assert.Equal(t, 1, b.Sides[1].PokemonLeft)
}

func TestWinEndsBattle(t *testing.T) {
	weak := set("Magikarp", "tackle")
	weak.Level = 5
	b := started(t, "gen7singles",
		team(set("Machamp", "seismictoss")),
		team(weak),
	)
	res := turn(t, b, "move 1", "move 1")
	ls := lines(res.Events)
	assert.Equal(t, "|win|Alice", ls[len(ls)-1])
	assert.Equal(t, battle.OutcomeP1Win, res.Outcome)
	assert.Nil(t, res.Request)
	assert.True(t, b.Ended())
	assert.Equal(t, "Alice", b.Winner())
	assert.Equal(t, rules.StateEnded, b.State())

	assert.ErrorIs(t, b.Choose("p1", "move 1"), battle.ErrBattleEnded)
	_, err := b.AdvanceTurn()
	assert.ErrorIs(t, err, battle.ErrBattleEnded)
}

func TestTurnLimitTies(t *testing.T) {
	b := newBattle(t, "gen7singles",
		team(set("Snorlax", "swordsdance")),
		team(set("Lapras", "swordsdance")),
		battle.Options{MaxTurns: 3},
	)
	_, err := b.Start()
	require.NoError(t, err)
	turn(t, b, "move 1", "move 1")
	res := turn(t, b, "move 1", "move 1")

	ls := lines(res.Events)
	assert.Contains(t, ls, "|message|It is turn 3. You have hit the turn limit!")
	assert.Equal(t, "|tie", ls[len(ls)-1])
	assert.Equal(t, battle.OutcomeTie, b.Outcome())
}

func TestSameSeedSameBattle(t *testing.T) {
	play := func() []string {
		b := newBattle(t, "gen7singles",
			team(set("Garchomp", "stoneedge", "dragonclaw"), set("Gengar", "shadowball")),
			team(set("Tyranitar", "crunch", "rockslide"), set("Lapras", "icebeam")),
			battle.Options{Seed: 99},
		)
		_, err := b.Start()
		require.NoError(t, err)
		for i := 0; i < 6 && !b.Ended(); i++ {
			require.NoError(t, b.AutoChoose("p1"))
			require.NoError(t, b.AutoChoose("p2"))
			_, err := b.AdvanceTurn()
			require.NoError(t, err)
		}
		return lines(b.Log())
	}
	assert.Equal(t, play(), play())
}

func TestStruggleWhenOutOfPP(t *testing.T) {
	b := started(t, "gen7singles",
		team(set("Pikachu", "thunderbolt", "quickattack")),
		team(set("Snorlax", "swordsdance")),
	)
	pika := b.Sides[0].Active[0]
	for _, slot := range pika.MoveSlots {
		slot.PP = 0
	}
	req := b.Request()
	require.Len(t, req.Sides[0].Active[0].Moves, 1)
	assert.Equal(t, "struggle", string(req.Sides[0].Active[0].Moves[0].ID))

	res := turn(t, b, "move 2", "move 1")
	ls := lines(res.Events)
	assert.NotEqual(t, -1, find(ls, "|move|p1a: Pikachu|Struggle"))
	assert.Contains(t, ls, "|-activate|p1a: Pikachu|move: Struggle")
	assert.Less(t, pika.HP, pika.MaxHP, "struggle recoil")
}

func TestLinkedMoves(t *testing.T) {
	b := started(t, "gen7linked",
		team(set("Pikachu", "quickattack", "tackle")),
		team(set("Dugtrio", "tackle")),
	)
	req := b.Request()
	assert.True(t, req.Sides[0].Active[0].CanLink)

	res := turn(t, b, "move quickattack link", "move 1")
	ls := lines(res.Events)
	quick := find(ls, "|move|p1a: Pikachu|Quick Attack")
	tackle := find(ls, "|move|p1a: Pikachu|Tackle")
	dugtrio := find(ls, "|move|p2a: Dugtrio|Tackle")
	require.NotEqual(t, -1, quick)
	require.NotEqual(t, -1, tackle)
	require.NotEqual(t, -1, dugtrio)

	// the pair runs at the lower priority, so the faster foe goes first
	assert.Less(t, dugtrio, quick)
	assert.Less(t, quick, tackle)
}

func TestLinkedPartnerDroppedWithoutPP(t *testing.T) {
	b := started(t, "gen7linked",
		team(set("Pikachu", "quickattack", "tackle")),
		team(set("Snorlax", "swordsdance")),
	)
	pika := b.Sides[0].Active[0]
	// the last PP of the partner goes on the first linked turn
	pika.MoveSlots[1].PP = 1
	turn(t, b, "move 1", "move 1")
	assert.Equal(t, 0, pika.MoveSlots[1].PP)

	res := turn(t, b, "move 1", "move 1")
	ls := lines(res.Events)
	assert.NotEqual(t, -1, find(ls, "|move|p1a: Pikachu|Quick Attack"))
	assert.Equal(t, -1, find(ls, "|move|p1a: Pikachu|Tackle"))
}

func TestDancerCopiesDance(t *testing.T) {
	b := started(t, "gen7singles",
		team(set("Machamp", "swordsdance")),
		team(set("Oricorio", "tackle")),
	)
	res := turn(t, b, "move 1", "move 1")
	ls := lines(res.Events)
	activate := find(ls, "|-activate|p2a: Oricorio|ability: Dancer")
	require.NotEqual(t, -1, activate)
	assert.Less(t, find(ls, "|move|p1a: Machamp|Swords Dance"), activate)
	assert.Equal(t, 2, b.Sides[1].Active[0].Boosts[dex.BoostAtk])
	assert.Equal(t, 2, b.Sides[0].Active[0].Boosts[dex.BoostAtk])
}

func TestStageObserver(t *testing.T) {
	var seen []battle.StageEvent
	b := newBattle(t, "gen7singles",
		team(set("Snorlax", "swordsdance")),
		team(set("Lapras", "swordsdance")),
		battle.Options{StageObserver: func(e battle.StageEvent) { seen = append(seen, e) }},
	)
	_, err := b.Start()
	require.NoError(t, err)

	lapras := b.Sides[1].Active[0]
	require.True(t, lapras.SetStatus("slp", nil, nil))
	turn(t, b, "move 1", "move 1")

	byMon := make(map[string][]battle.StageEvent)
	for _, e := range seen {
		byMon[e.Pokemon] = append(byMon[e.Pokemon], e)
	}

	t.Run("completed move", func(t *testing.T) {
		events := byMon["p1a: Snorlax"]
		require.NotEmpty(t, events)
		assert.Equal(t, battle.StageOverrideCheck, events[0].From)
		assert.Equal(t, battle.StagePreMoveGate, events[0].To)
		for i := 1; i < len(events); i++ {
			assert.Equal(t, events[i-1].To, events[i].From)
		}
		last := events[len(events)-1]
		assert.Equal(t, battle.StageDone, last.To)
		assert.False(t, last.Aborted)
	})

	t.Run("aborted at the gate", func(t *testing.T) {
		events := byMon["p2a: Lapras"]
		require.Len(t, events, 2)
		assert.Equal(t, battle.StagePreMoveGate, events[1].From)
		assert.Equal(t, battle.StageDone, events[1].To)
		assert.True(t, events[1].Aborted)
	})
}

func TestBuildTeam(t *testing.T) {
	f, err := mods.Format("gen7singles", nil)
	require.NoError(t, err)
	rng := prng.New(5)

	got, err := battle.BuildTeam(f.Dex, rng, battle.RosterOptions{FeaturedSpecies: "Magikarp"})
	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, "Magikarp", got[3].Species)

	seen := make(map[string]bool)
	for _, s := range got {
		assert.False(t, seen[s.Species], "duplicate %s", s.Species)
		seen[s.Species] = true
		assert.NotEmpty(t, s.Moves)
		assert.LessOrEqual(t, len(s.Moves), 4)
		assert.GreaterOrEqual(t, s.Level, 70)
		assert.LessOrEqual(t, s.Level, 99)
	}

	// a generated team always passes the species clause
	_, err = battle.New(f,
		battle.PlayerSpec{Team: got},
		battle.PlayerSpec{Team: team(set("Snorlax", "tackle"))},
		battle.Options{Seed: 3},
	)
	require.NoError(t, err)

	_, err = battle.BuildTeam(f.Dex, rng, battle.RosterOptions{FeaturedSpecies: "Missingno"})
	assert.Error(t, err)
	_, err = battle.BuildTeam(f.Dex, rng, battle.RosterOptions{Size: 100})
	assert.Error(t, err)
}

func TestErrorMetadata(t *testing.T) {
	b := started(t, "gen7singles",
		team(set("Pikachu", "thunderbolt")),
		team(set("Snorlax", "tackle")),
	)
	err := b.Choose("p1", "move 9")
	var be *battle.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, battle.CodeInvalidDecision, be.Code)
	assert.Equal(t, "p1", be.Metadata["side_id"])
	assert.Contains(t, be.Error(), "INVALID_DECISION")
}
