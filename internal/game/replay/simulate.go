package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/mods"
	"go.uber.org/zap"
)

// ErrChecksumMismatch is returned by Verify when a re-run diverges from
// the recording.
var ErrChecksumMismatch = errors.New("replay checksum mismatch")

// ParseInput splits an input log line such as ">p2 switch 3" into the
// side id and the decision text.
func ParseInput(line string) (side, input string, err error) {
	if !strings.HasPrefix(line, ">") {
		return "", "", fmt.Errorf("input line %q does not start with '>'", line)
	}
	side, input, ok := strings.Cut(line[1:], " ")
	if !ok || side == "" || input == "" {
		return "", "", fmt.Errorf("malformed input line %q", line)
	}
	return side, input, nil
}

// Simulate rebuilds the recorded battle from its seed and replays every
// step. A nil d uses the embedded data.
func Simulate(r *Replay, d *dex.Dex, logger *zap.Logger) (*battle.Battle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	format, err := mods.Format(r.Format, d)
	if err != nil {
		return nil, err
	}
	b, err := battle.New(format, r.Players[0].Spec(), r.Players[1].Spec(), battle.Options{
		ID:       r.BattleID,
		Seed:     r.Seed,
		Logger:   logger,
		MaxTurns: r.MaxTurns,
	})
	if err != nil {
		return nil, fmt.Errorf("rebuild battle: %w", err)
	}
	if _, err := b.Start(); err != nil {
		return nil, fmt.Errorf("start battle: %w", err)
	}

	for i, step := range r.Steps {
		for _, line := range step {
			side, input, err := ParseInput(line)
			if err != nil {
				return b, fmt.Errorf("step %d: %w", i, err)
			}
			if err := b.Choose(side, input); err != nil {
				return b, fmt.Errorf("step %d: %w", i, err)
			}
		}
		if _, err := b.AdvanceTurn(); err != nil {
			return b, fmt.Errorf("step %d: %w", i, err)
		}
	}

	logger.Debug("replay simulated",
		zap.String("replay_id", r.ID),
		zap.String("battle_id", r.BattleID),
		zap.Int("steps", len(r.Steps)),
		zap.Int("turn", b.Turn),
	)
	return b, nil
}

// Verify re-runs r and compares the resulting event stream with the
// recorded checksum.
func Verify(r *Replay, d *dex.Dex, logger *zap.Logger) (*battle.Battle, error) {
	b, err := Simulate(r, d, logger)
	if err != nil {
		return b, err
	}
	got := Compute(r.Format, r.Seed, Lines(b))
	if !got.Equal(r.Checksum) {
		return b, fmt.Errorf("%w: recorded %s, replayed %s", ErrChecksumMismatch, r.Checksum, got)
	}
	return b, nil
}

// Lines renders a battle's event log as protocol lines.
func Lines(b *battle.Battle) []string {
	events := b.Log()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}
