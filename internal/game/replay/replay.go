// Package replay records battles as their seed plus the decisions each
// side committed, stores them as gzip-compressed gob files and re-runs
// them to check that the engine still produces the same event stream.
package replay

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefree/battle-sim-go/internal/game/battle"
)

// Version is the on-disk format version written into every replay.
const Version = 1

// Extension is appended to a replay id to form its file name.
const Extension = ".replay"

// Player is one side's name and team as it was brought to the battle.
type Player struct {
	Name string
	Team []battle.PokemonSet
}

// Spec returns the player as a battle construction argument.
func (p Player) Spec() battle.PlayerSpec {
	return battle.PlayerSpec{Name: p.Name, Team: append([]battle.PokemonSet(nil), p.Team...)}
}

// Replay is everything needed to rebuild a battle: the format, the seed,
// both teams and every committed decision, grouped by the AdvanceTurn
// call that committed them. Log and Checksum describe the event stream
// the recording produced.
type Replay struct {
	ID       string
	BattleID string
	Format   string
	Seed     uint64
	MaxTurns int
	Players  [2]Player

	// Steps holds one entry per commit, each a list of input log lines
	// such as ">p1 move 1".
	Steps   [][]string
	Log     []string
	Outcome battle.BattleOutcome

	Checksum   Checksum
	RecordedAt time.Time
}

// replayMetadata precedes the replay body in a stream.
type replayMetadata struct {
	ID        string
	Timestamp time.Time
	Version   int
	Steps     int
}

// Turns reports how many turns the recorded battle reached.
func (r *Replay) Turns() int {
	n := 0
	for _, line := range r.Log {
		if strings.HasPrefix(line, "|turn|") {
			n++
		}
	}
	return n
}

// Seal stores the final event stream and outcome and computes the
// checksum over them.
func (r *Replay) Seal(log []string, outcome battle.BattleOutcome) {
	r.Log = append([]string(nil), log...)
	r.Outcome = outcome
	r.Checksum = Compute(r.Format, r.Seed, r.Log)
}

// Write encodes r to w as gzip-compressed gob.
func (r *Replay) Write(w io.Writer) error {
	gz := gzip.NewWriter(w)
	enc := gob.NewEncoder(gz)

	metadata := replayMetadata{
		ID:        r.ID,
		Timestamp: time.Now(),
		Version:   Version,
		Steps:     len(r.Steps),
	}
	if err := enc.Encode(metadata); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := enc.Encode(r); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// Read decodes a replay written by Write.
func Read(rd io.Reader) (*Replay, error) {
	gz, err := gzip.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	dec := gob.NewDecoder(gz)
	var metadata replayMetadata
	if err := dec.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != Version {
		return nil, fmt.Errorf("unsupported replay version %d", metadata.Version)
	}

	r := &Replay{}
	if err := dec.Decode(r); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if len(r.Steps) != metadata.Steps {
		return nil, fmt.Errorf("replay %s: expected %d steps, got %d", metadata.ID, metadata.Steps, len(r.Steps))
	}
	return r, nil
}

// SaveToFile writes r to dir/<id>.replay and returns the path.
func (r *Replay) SaveToFile(dir string) (string, error) {
	if r.ID == "" {
		return "", fmt.Errorf("replay has no id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, r.ID+Extension)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := r.Write(file); err != nil {
		return "", err
	}
	return path, nil
}

// LoadFromFile reads dir/<id>.replay.
func LoadFromFile(dir, id string) (*Replay, error) {
	return LoadPath(filepath.Join(dir, id+Extension))
}

// LoadPath reads a replay file by path.
func LoadPath(path string) (*Replay, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return Read(file)
}
