// Package game hosts running battles behind a thread-safe facade: it
// assigns ids, serialises access to each battle, feeds the replay
// recorder and renders per-side views.
package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/mods"
	"github.com/magefree/battle-sim-go/internal/game/replay"
	"github.com/magefree/battle-sim-go/internal/game/watchers"
	"go.uber.org/zap"
)

// BattleConfig describes a battle to start.
type BattleConfig struct {
	Format   string
	Seed     uint64 // 0 draws a fresh seed
	MaxTurns int
	P1       battle.PlayerSpec
	P2       battle.PlayerSpec
}

// EngineOptions configures an Engine. Zero values are usable.
type EngineOptions struct {
	// Dex overrides the embedded data set.
	Dex *dex.Dex
	// Recorder receives every battle's decisions; nil disables replays.
	Recorder *replay.Recorder
	// StageObserver is attached to every battle.
	StageObserver battle.StageObserver
	// MaxTurns applies when a BattleConfig leaves it at zero.
	MaxTurns int
}

// Engine runs many battles at once. Each battle has its own lock; the
// engine lock only guards the battle table.
type Engine struct {
	logger *zap.Logger
	opts   EngineOptions

	mu      sync.RWMutex
	battles map[string]*battleState
}

type battleState struct {
	mu        sync.Mutex
	battle    *battle.Battle
	stats     *watchers.Stats
	config    BattleConfig
	startedAt time.Time
	endedAt   time.Time
}

// NewEngine creates an empty engine.
func NewEngine(logger *zap.Logger, opts EngineOptions) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:  logger,
		opts:    opts,
		battles: make(map[string]*battleState),
	}
}

// StartBattle creates a battle, runs it up to the first request and
// returns its id with the opening events.
func (e *Engine) StartBattle(ctx context.Context, cfg BattleConfig) (string, *battle.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if cfg.Format == "" {
		cfg.Format = mods.DefaultFormat
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = e.opts.MaxTurns
	}
	format, err := mods.Format(cfg.Format, e.opts.Dex)
	if err != nil {
		return "", nil, fmt.Errorf("start battle: %w", err)
	}

	id := uuid.NewString()
	b, err := battle.New(format, cfg.P1, cfg.P2, battle.Options{
		ID:            id,
		Seed:          cfg.Seed,
		Logger:        e.logger,
		StageObserver: e.opts.StageObserver,
		MaxTurns:      cfg.MaxTurns,
	})
	if err != nil {
		return "", nil, fmt.Errorf("start battle: %w", err)
	}
	cfg.Seed = b.Seed()
	stats := watchers.NewStats()
	stats.Attach(b.Events())

	if e.opts.Recorder != nil {
		e.opts.Recorder.StartRecording(replay.Header{
			BattleID: id,
			Format:   cfg.Format,
			Seed:     cfg.Seed,
			MaxTurns: cfg.MaxTurns,
			Players: [2]replay.Player{
				{Name: cfg.P1.Name, Team: cfg.P1.Team},
				{Name: cfg.P2.Name, Team: cfg.P2.Team},
			},
		})
	}

	res, err := b.Start()
	if err != nil {
		return "", nil, fmt.Errorf("start battle: %w", err)
	}

	state := &battleState{battle: b, stats: stats, config: cfg, startedAt: time.Now()}
	e.mu.Lock()
	e.battles[id] = state
	e.mu.Unlock()

	e.logger.Info("engine started battle",
		zap.String("battle_id", id),
		zap.String("format", cfg.Format),
		zap.String("p1", cfg.P1.Name),
		zap.String("p2", cfg.P2.Name),
	)
	return id, res, nil
}

func (e *Engine) lookup(battleID string) (*battleState, error) {
	e.mu.RLock()
	state, ok := e.battles[battleID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("battle %s not found", battleID)
	}
	return state, nil
}

// SubmitDecision records a side's decisions for the pending request.
// "default" picks the first legal option.
func (e *Engine) SubmitDecision(ctx context.Context, battleID, sideID, input string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state, err := e.lookup(battleID)
	if err != nil {
		return err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.battle.Choose(sideID, input); err != nil {
		e.logger.Debug("decision rejected",
			zap.String("battle_id", battleID),
			zap.String("side_id", sideID),
			zap.String("input", input),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// AdvanceTurn commits both sides' decisions and runs the battle to its
// next request or its end.
func (e *Engine) AdvanceTurn(ctx context.Context, battleID string) (*battle.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state, err := e.lookup(battleID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	b := state.battle
	before := len(b.InputLog())
	res, err := b.AdvanceTurn()
	if committed := b.InputLog()[before:]; len(committed) > 0 && e.opts.Recorder != nil {
		e.opts.Recorder.RecordStep(battleID, committed)
	}
	if err != nil {
		if b.Err() != nil {
			e.logger.Error("battle aborted",
				zap.String("battle_id", battleID),
				zap.Int("turn", b.Turn),
				zap.Error(err),
			)
		}
		return res, err
	}
	if res.Outcome != battle.OutcomeOngoing {
		state.endedAt = time.Now()
		e.logger.Info("battle finished",
			zap.String("battle_id", battleID),
			zap.String("outcome", string(res.Outcome)),
			zap.String("winner", b.Winner()),
			zap.Int("turn", b.Turn),
		)
	}
	return res, nil
}

// EndBattle removes a battle from the engine and seals its replay. It
// may be called on a battle that is still running, which abandons it.
func (e *Engine) EndBattle(battleID string) (*replay.Replay, error) {
	e.mu.Lock()
	state, ok := e.battles[battleID]
	delete(e.battles, battleID)
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("battle %s not found", battleID)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	b := state.battle
	state.stats.Detach()

	e.logger.Info("engine ended battle",
		zap.String("battle_id", battleID),
		zap.String("outcome", string(b.Outcome())),
		zap.Bool("finished", b.Ended()),
		zap.Duration("duration", time.Since(state.startedAt)),
	)

	if e.opts.Recorder == nil || !e.opts.Recorder.IsRecording(battleID) {
		return nil, nil
	}
	defer e.opts.Recorder.ClearReplay(battleID)
	return e.opts.Recorder.Finish(battleID, replay.Lines(b), b.Outcome())
}

// ReplayBattle re-runs a recorded battle and verifies its event stream.
func (e *Engine) ReplayBattle(ctx context.Context, rep *replay.Replay) (*battle.Battle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := replay.Verify(rep, e.opts.Dex, e.logger)
	if err != nil {
		e.logger.Warn("replay verification failed",
			zap.String("replay_id", rep.ID),
			zap.String("battle_id", rep.BattleID),
			zap.Error(err),
		)
		return b, err
	}
	e.logger.Info("replay verified",
		zap.String("replay_id", rep.ID),
		zap.String("battle_id", rep.BattleID),
		zap.String("checksum", rep.Checksum.String()),
	)
	return b, nil
}

// Battles lists the ids of running battles, sorted.
func (e *Engine) Battles() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.battles))
	for id := range e.battles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
