package replay

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/mods"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var players = [2]Player{
	{Name: "Alice", Team: []battle.PokemonSet{
		{Species: "Garchomp", Moves: []string{"stoneedge", "dragonclaw"}},
		{Species: "Gengar", Moves: []string{"shadowball"}},
	}},
	{Name: "Bob", Team: []battle.PokemonSet{
		{Species: "Tyranitar", Moves: []string{"crunch", "rockslide"}},
		{Species: "Lapras", Moves: []string{"icebeam"}},
	}},
}

// record plays up to turns turns with automatic decisions and returns
// the sealed replay.
func record(t *testing.T, rec *Recorder, seed uint64, turns int) (*battle.Battle, *Replay) {
	t.Helper()
	format, err := mods.Format("gen7singles", nil)
	require.NoError(t, err)
	b, err := battle.New(format, players[0].Spec(), players[1].Spec(), battle.Options{
		ID:     "battle-1",
		Seed:   seed,
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	rec.StartRecording(Header{BattleID: b.ID, Format: format.ID, Seed: seed, Players: players})
	_, err = b.Start()
	require.NoError(t, err)

	for i := 0; i < turns && !b.Ended(); i++ {
		before := len(b.InputLog())
		require.NoError(t, b.AutoChoose("p1"))
		require.NoError(t, b.AutoChoose("p2"))
		_, err := b.AdvanceTurn()
		require.NoError(t, err)
		rec.RecordStep(b.ID, b.InputLog()[before:])
	}

	rep, err := rec.Finish(b.ID, Lines(b), b.Outcome())
	require.NoError(t, err)
	return b, rep
}

func TestRecordAndVerify(t *testing.T) {
	rec := NewRecorder(zaptest.NewLogger(t), true, "")
	b, rep := record(t, rec, 7, 5)

	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, "battle-1", rep.BattleID)
	assert.Equal(t, uint64(7), rep.Seed)
	assert.NotEmpty(t, rep.Steps)
	assert.Equal(t, b.Turn, rep.Turns())
	assert.Equal(t, b.Outcome(), rep.Outcome)

	replayed, err := Verify(rep, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, Lines(b), Lines(replayed))
	assert.Equal(t, b.InputLog(), replayed.InputLog())
}

func TestVerifyDetectsTampering(t *testing.T) {
	rec := NewRecorder(zaptest.NewLogger(t), true, "")
	_, rep := record(t, rec, 7, 3)

	t.Run("edited checksum", func(t *testing.T) {
		bad := *rep
		bad.Checksum.Hash = "0000"
		_, err := Verify(&bad, nil, nil)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("different seed", func(t *testing.T) {
		bad := *rep
		bad.Seed = rep.Seed + 1
		_, err := Verify(&bad, nil, nil)
		assert.Error(t, err)
	})

	t.Run("malformed input", func(t *testing.T) {
		bad := *rep
		bad.Steps = [][]string{{"p1 move 1"}}
		_, err := Verify(&bad, nil, nil)
		assert.ErrorContains(t, err, "step 0")
	})

	t.Run("unknown format", func(t *testing.T) {
		bad := *rep
		bad.Format = "gen1nothing"
		_, err := Simulate(&bad, nil, nil)
		assert.Error(t, err)
	})
}

func TestWriteAndRead(t *testing.T) {
	rec := NewRecorder(zaptest.NewLogger(t), true, "")
	_, rep := record(t, rec, 21, 4)

	var buf bytes.Buffer
	require.NoError(t, rep.Write(&buf))
	loaded, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, rep.ID, loaded.ID)
	assert.Equal(t, rep.Format, loaded.Format)
	assert.Equal(t, rep.Seed, loaded.Seed)
	assert.Equal(t, rep.Players, loaded.Players)
	assert.Equal(t, rep.Steps, loaded.Steps)
	assert.Equal(t, rep.Log, loaded.Log)
	assert.True(t, rep.Checksum.Equal(loaded.Checksum))
	assert.True(t, rep.RecordedAt.Equal(loaded.RecordedAt))

	_, err = Verify(loaded, nil, nil)
	assert.NoError(t, err)
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a replay")))
	assert.Error(t, err)
}

func TestRecorderSavesToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	rec := NewRecorder(zaptest.NewLogger(t), true, dir)
	_, rep := record(t, rec, 3, 2)

	_, err := os.Stat(filepath.Join(dir, rep.ID+Extension))
	require.NoError(t, err)

	loaded, err := rec.LoadReplay(rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.Log, loaded.Log)

	_, err = LoadFromFile(dir, "missing")
	assert.Error(t, err)
}

func TestRecorderLifecycle(t *testing.T) {
	t.Run("disabled records nothing", func(t *testing.T) {
		rec := NewRecorder(nil, false, "")
		rec.StartRecording(Header{BattleID: "b"})
		assert.False(t, rec.IsRecording("b"))
		_, err := rec.Finish("b", nil, battle.OutcomeTie)
		assert.Error(t, err)
	})

	t.Run("clear forgets the replay", func(t *testing.T) {
		rec := NewRecorder(zaptest.NewLogger(t), true, "")
		rec.StartRecording(Header{BattleID: "b", Format: "gen7singles"})
		rec.RecordStep("b", []string{">p1 move 1"})
		rec.RecordStep("unknown", []string{">p1 move 1"})

		rep, ok := rec.GetReplay("b")
		require.True(t, ok)
		assert.Equal(t, [][]string{{">p1 move 1"}}, rep.Steps)

		rec.ClearReplay("b")
		assert.False(t, rec.IsRecording("b"))
		_, err := rec.LoadReplay("anything")
		assert.Error(t, err)
	})
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		line        string
		side, input string
		wantErr     bool
	}{
		{line: ">p1 move 1", side: "p1", input: "move 1"},
		{line: ">p2 move 1 -1, switch 3", side: "p2", input: "move 1 -1, switch 3"},
		{line: "p1 move 1", wantErr: true},
		{line: ">p1", wantErr: true},
		{line: "> move 1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			side, input, err := ParseInput(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.side, side)
			assert.Equal(t, tt.input, input)
		})
	}
}

func TestChecksum(t *testing.T) {
	log := []string{"|gametype|singles", "|turn|1"}
	a := Compute("gen7singles", 1, log)
	assert.Len(t, a.Hash, 64)
	assert.True(t, a.Equal(Compute("gen7singles", 1, append([]string(nil), log...))))
	assert.False(t, a.Equal(Compute("gen7singles", 2, log)))
	assert.False(t, a.Equal(Compute("gen7doubles", 1, log)))
	assert.False(t, a.Equal(Compute("gen7singles", 1, log[:1])))
	assert.Equal(t, "v1:"+a.Hash[:12], a.String())
}

func TestViewer(t *testing.T) {
	rep := &Replay{Log: []string{
		"|gametype|singles", "|turn|1",
		"|move|p1a: A|Tackle|p2a: B", "|turn|2",
		"|faint|p2a: B", "|win|Alice",
	}}
	v := NewViewer(rep)
	require.Equal(t, 3, v.Size())

	assert.Nil(t, v.Previous())
	assert.Equal(t, []string{"|gametype|singles", "|turn|1"}, v.Start())
	assert.Equal(t, []string{"|move|p1a: A|Tackle|p2a: B", "|turn|2"}, v.Next())
	assert.Equal(t, []string{"|faint|p2a: B", "|win|Alice"}, v.Next())
	assert.Nil(t, v.Next())
	assert.Equal(t, []string{"|gametype|singles", "|turn|1"}, v.Skip(-10))
	assert.Equal(t, []string{"|faint|p2a: B", "|win|Alice"}, v.Skip(10))
	assert.Equal(t, []string{"|move|p1a: A|Tackle|p2a: B", "|turn|2"}, v.Previous())
	assert.Nil(t, v.Frame(5))

	assert.Zero(t, NewViewer(&Replay{}).Size())
	assert.Nil(t, NewViewer(&Replay{}).Start())
}
