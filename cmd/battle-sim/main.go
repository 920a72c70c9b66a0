// Command battle-sim runs a scripted battle from a YAML scenario and
// prints the protocol log, or re-runs and verifies a saved replay.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/magefree/battle-sim-go/internal/config"
	"github.com/magefree/battle-sim-go/internal/game"
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/replay"
	"github.com/magefree/battle-sim-go/internal/logging"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "", "path to configuration file")
	scenarioPath = flag.String("scenario", "", "scenario file to play")
	replayPath   = flag.String("replay", "", "replay file to verify and print")
	version      = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting battle-sim",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("format", cfg.Battle.Format),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("battle-sim failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	var d *dex.Dex
	if cfg.Data.DexPath != "" {
		var err error
		if d, err = dex.LoadFile(cfg.Data.DexPath); err != nil {
			return err
		}
		logger.Info("loaded data set", zap.String("path", cfg.Data.DexPath))
	}

	opts := game.EngineOptions{
		Dex:      d,
		MaxTurns: cfg.Battle.MaxTurns,
		Recorder: replay.NewRecorder(logger, cfg.Replay.Enabled, cfg.Replay.Dir),
	}
	if cfg.Battle.StageTrace {
		opts.StageObserver = stageTracer(logger)
	}
	engine := game.NewEngine(logger, opts)

	switch {
	case *replayPath != "":
		return playReplay(ctx, engine, *replayPath, out)
	case *scenarioPath != "":
		s, err := LoadScenario(*scenarioPath)
		if err != nil {
			return err
		}
		runner := &Runner{Engine: engine, Dex: d, Out: out, Logger: logger, Defaults: cfg.Battle}
		res, err := runner.Run(ctx, s)
		if err != nil {
			return err
		}
		fields := []zap.Field{
			zap.String("battle_id", res.BattleID),
			zap.String("outcome", string(res.Outcome)),
			zap.Int("turn", res.Turn),
		}
		if res.Replay != nil {
			fields = append(fields, zap.String("replay_id", res.Replay.ID))
		}
		logger.Info("scenario finished", fields...)
		return nil
	}
	return fmt.Errorf("nothing to do: pass -scenario or -replay")
}

func playReplay(ctx context.Context, engine *game.Engine, path string, out io.Writer) error {
	rep, err := replay.LoadPath(path)
	if err != nil {
		return err
	}
	if _, err := engine.ReplayBattle(ctx, rep); err != nil {
		return err
	}
	v := replay.NewViewer(rep)
	for frame := v.Start(); frame != nil; frame = v.Next() {
		for _, line := range frame {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func stageTracer(logger *zap.Logger) battle.StageObserver {
	return func(ev battle.StageEvent) {
		logger.Debug("move stage",
			zap.String("battle_id", ev.BattleID),
			zap.Int("turn", ev.Turn),
			zap.String("pokemon", ev.Pokemon),
			zap.String("move_id", string(ev.Move)),
			zap.String("from", string(ev.From)),
			zap.String("to", string(ev.To)),
			zap.Bool("aborted", ev.Aborted),
		)
	}
}
