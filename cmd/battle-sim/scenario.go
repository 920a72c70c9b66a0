package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/magefree/battle-sim-go/internal/config"
	"github.com/magefree/battle-sim-go/internal/game"
	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/prng"
	"github.com/magefree/battle-sim-go/internal/game/replay"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// maxSteps bounds autoplay in case a format runs without a turn limit.
const maxSteps = 10000

// Scenario is a scripted battle read from YAML.
type Scenario struct {
	Format   string         `yaml:"format"`
	Seed     uint64         `yaml:"seed"`
	MaxTurns int            `yaml:"max_turns"`
	Autoplay bool           `yaml:"autoplay"`
	P1       ScenarioPlayer `yaml:"p1"`
	P2       ScenarioPlayer `yaml:"p2"`
	Turns    []ScenarioTurn `yaml:"turns"`
}

// ScenarioPlayer is a side. Without a team, Random describes how to
// draw one.
type ScenarioPlayer struct {
	Name   string              `yaml:"name"`
	Team   []battle.PokemonSet `yaml:"team"`
	Random *RandomTeam         `yaml:"random"`
}

// RandomTeam tunes a drawn team.
type RandomTeam struct {
	Size     int    `yaml:"size"`
	Level    int    `yaml:"level"`
	Featured string `yaml:"featured"`
}

// ScenarioTurn holds each side's decision for one request. An empty
// decision means "default" when the side has something to decide.
type ScenarioTurn struct {
	P1 string `yaml:"p1"`
	P2 string `yaml:"p2"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i, p := range []*ScenarioPlayer{&s.P1, &s.P2} {
		if p.Name == "" {
			p.Name = fmt.Sprintf("Player %d", i+1)
		}
		if len(p.Team) == 0 && p.Random == nil {
			return nil, fmt.Errorf("parse scenario: p%d has neither a team nor random settings", i+1)
		}
	}
	return &s, nil
}

// spec turns a scenario side into a battle player, drawing a team when
// none is given.
func (p ScenarioPlayer) spec(d *dex.Dex, rng *prng.PRNG) (battle.PlayerSpec, error) {
	if len(p.Team) > 0 {
		return battle.PlayerSpec{Name: p.Name, Team: p.Team}, nil
	}
	team, err := battle.BuildTeam(d, rng, battle.RosterOptions{
		FeaturedSpecies: p.Random.Featured,
		Size:            p.Random.Size,
		Level:           p.Random.Level,
	})
	if err != nil {
		return battle.PlayerSpec{}, fmt.Errorf("draw team for %s: %w", p.Name, err)
	}
	return battle.PlayerSpec{Name: p.Name, Team: team}, nil
}

// Runner plays scenarios on an engine and writes protocol lines to out.
type Runner struct {
	Engine *game.Engine
	Dex    *dex.Dex
	Out    io.Writer
	Logger *zap.Logger
	// Defaults fill scenario fields left unset.
	Defaults config.BattleConfig
}

// Result summarises a finished run.
type Result struct {
	BattleID string
	Outcome  battle.BattleOutcome
	Turn     int
	Replay   *replay.Replay
}

// Run plays s to the end of its script, or to the end of the battle when
// autoplay is on, then ends the battle.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	d := r.Dex
	if d == nil {
		var err error
		if d, err = dex.Default(); err != nil {
			return nil, err
		}
	}
	format := s.Format
	if format == "" {
		format = r.Defaults.Format
	}
	seed := s.Seed
	if seed == 0 {
		seed = r.Defaults.Seed
	}
	if seed == 0 {
		var err error
		if seed, err = prng.NewSeed(); err != nil {
			return nil, err
		}
	}
	rng := prng.New(seed)
	p1, err := s.P1.spec(d, rng)
	if err != nil {
		return nil, err
	}
	p2, err := s.P2.spec(d, rng)
	if err != nil {
		return nil, err
	}

	id, res, err := r.Engine.StartBattle(ctx, game.BattleConfig{
		Format:   format,
		Seed:     seed,
		MaxTurns: s.MaxTurns,
		P1:       p1,
		P2:       p2,
	})
	if err != nil {
		return nil, err
	}
	r.print(res.Events)

	for step := 0; res.Outcome == battle.OutcomeOngoing; step++ {
		var decisions ScenarioTurn
		switch {
		case step < len(s.Turns):
			decisions = s.Turns[step]
		case s.Autoplay && step < maxSteps:
		default:
			r.Logger.Info("scenario script exhausted",
				zap.String("battle_id", id),
				zap.Int("turn", res.Turn),
			)
			return r.finish(id, res)
		}
		if res, err = r.step(ctx, id, res.Request, decisions); err != nil {
			return nil, fmt.Errorf("step %d: %w", step+1, err)
		}
		r.print(res.Events)
	}
	return r.finish(id, res)
}

func (r *Runner) step(ctx context.Context, id string, req *battle.Request, decisions ScenarioTurn) (*battle.TurnResult, error) {
	sides := [2]string{"p1", "p2"}
	for i, input := range []string{decisions.P1, decisions.P2} {
		if req != nil && req.Sides[i].Wait {
			continue
		}
		if input == "" {
			input = string(battle.ChoiceDefault)
		}
		if err := r.Engine.SubmitDecision(ctx, id, sides[i], input); err != nil {
			return nil, err
		}
	}
	return r.Engine.AdvanceTurn(ctx, id)
}

func (r *Runner) finish(id string, res *battle.TurnResult) (*Result, error) {
	rep, err := r.Engine.EndBattle(id)
	if err != nil {
		return nil, err
	}
	return &Result{BattleID: id, Outcome: res.Outcome, Turn: res.Turn, Replay: rep}, nil
}

func (r *Runner) print(events []rules.Event) {
	for _, e := range events {
		fmt.Fprintln(r.Out, e.String())
	}
}
