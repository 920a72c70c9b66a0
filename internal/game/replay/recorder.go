package replay

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"go.uber.org/zap"
)

// Header describes the battle a recording belongs to.
type Header struct {
	BattleID string
	Format   string
	Seed     uint64
	MaxTurns int
	Players  [2]Player
}

// Recorder collects replays for any number of running battles.
type Recorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled bool
	saveDir string
}

// NewRecorder creates a recorder. Finished replays are written to
// saveDir when it is not empty.
func NewRecorder(logger *zap.Logger, enabled bool, saveDir string) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: enabled,
		saveDir: saveDir,
	}
}

// Enabled reports whether new battles are recorded.
func (r *Recorder) Enabled() bool {
	return r.enabled
}

// StartRecording begins a replay for a battle.
func (r *Recorder) StartRecording(h Header) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replays[h.BattleID] = &Replay{
		ID:         uuid.NewString(),
		BattleID:   h.BattleID,
		Format:     h.Format,
		Seed:       h.Seed,
		MaxTurns:   h.MaxTurns,
		Players:    h.Players,
		RecordedAt: time.Now(),
	}
	r.logger.Info("started recording replay",
		zap.String("battle_id", h.BattleID),
		zap.String("format", h.Format),
	)
}

// IsRecording reports whether battleID has an open replay.
func (r *Recorder) IsRecording(battleID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.replays[battleID]
	return ok
}

// RecordStep appends the input lines committed by one AdvanceTurn call.
func (r *Recorder) RecordStep(battleID string, inputs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.replays[battleID]
	if !ok {
		return
	}
	rep.Steps = append(rep.Steps, append([]string(nil), inputs...))
}

// Finish seals the replay for battleID with the final log and, when a
// save directory is configured, writes it to disk.
func (r *Recorder) Finish(battleID string, log []string, outcome battle.BattleOutcome) (*Replay, error) {
	r.mu.Lock()
	rep, ok := r.replays[battleID]
	if ok {
		rep.Seal(log, outcome)
	}
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no replay recorded for battle %s", battleID)
	}
	r.logger.Info("sealed replay",
		zap.String("battle_id", battleID),
		zap.String("replay_id", rep.ID),
		zap.Int("steps", len(rep.Steps)),
		zap.String("checksum", rep.Checksum.String()),
	)

	if r.saveDir == "" {
		return rep, nil
	}
	path, err := rep.SaveToFile(r.saveDir)
	if err != nil {
		return rep, fmt.Errorf("save replay: %w", err)
	}
	r.logger.Info("saved replay",
		zap.String("battle_id", battleID),
		zap.String("path", path),
	)
	return rep, nil
}

// GetReplay returns the replay for battleID.
func (r *Recorder) GetReplay(battleID string) (*Replay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.replays[battleID]
	return rep, ok
}

// LoadReplay reads a saved replay by its replay id from the save
// directory.
func (r *Recorder) LoadReplay(replayID string) (*Replay, error) {
	if r.saveDir == "" {
		return nil, fmt.Errorf("no replay directory configured")
	}
	return LoadFromFile(r.saveDir, replayID)
}

// ClearReplay forgets the replay for battleID.
func (r *Recorder) ClearReplay(battleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.replays, battleID)
}
