// Package battle implements the turn-resolution engine: the action queue,
// the hook-based event dispatcher, the move execution pipeline, damage
// calculation and the turn controller that ties them together.
//
// A Battle is single-threaded. Callers that share one across goroutines
// must serialise access themselves.
package battle

import (
	"fmt"
	"strconv"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/prng"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"go.uber.org/zap"
)

// DefaultMaxTurns is the turn limit applied by the endless battle clause
// when neither the format nor the options set one.
const DefaultMaxTurns = 1000

// PlayerSpec describes one side at construction.
type PlayerSpec struct {
	Name string
	Team []PokemonSet
}

// Options tunes a battle beyond what its format fixes.
type Options struct {
	ID            string
	Seed          uint64 // 0 draws a fresh seed
	Logger        *zap.Logger
	StageObserver StageObserver
	MaxTurns      int
}

type faintRecord struct {
	target *Pokemon
	source *Pokemon
	effect *Effect
}

type effectKey struct {
	kind EffectKind
	id   dex.ID
}

// Battle is the state of one match.
type Battle struct {
	ID string

	format     *Format
	dex        *dex.Dex
	effects    EffectLibrary
	rules      *rules.RuleTable
	strategies Strategies
	logger     *zap.Logger
	prng       *prng.PRNG

	lifecycle *rules.Lifecycle
	bus       *rules.EventBus
	depth     *rules.DispatchDepth
	queue     *Queue
	observer  StageObserver
	maxTurns  int

	Sides [2]*Side
	Field *Field
	Turn  int

	log      []rules.Event
	reported int
	inputLog []string

	started    bool
	ended      bool
	winner     string
	winnerSide *Side
	midTurn    bool
	request    RequestKind
	fatal      error

	ruleStates    []*EffectState
	activeMove    *ActiveMove
	activePokemon *Pokemon
	activeTarget  *Pokemon

	effectOrder  int
	abilityOrder int
	faintQueue   []faintRecord
	lastFainted  *Pokemon

	blank map[effectKey]*Effect
}

// New validates both teams against the format and builds a battle ready
// to Start. Roster problems are reported as ErrDataInconsistency.
func New(format *Format, p1, p2 PlayerSpec, opts Options) (*Battle, error) {
	if format == nil {
		return nil, newError(CodeDataInconsistency, "no format given")
	}
	if format.Dex == nil || format.Effects == nil {
		return nil, newError(CodeDataInconsistency, "format %s has no data", format.ID)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := opts.Seed
	if seed == 0 {
		var err error
		seed, err = prng.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seed battle: %w", err)
		}
	}

	b := &Battle{
		ID:         opts.ID,
		format:     format,
		dex:        format.Dex,
		effects:    format.Effects,
		rules:      rules.NewRuleTable(format.Gen, format.GameType, format.TeamSize, format.Rules),
		strategies: format.Strategies.withDefaults(),
		logger:     logger,
		prng:       prng.New(seed),
		bus:        rules.NewEventBus(),
		depth:      rules.NewDispatchDepth(rules.DefaultMaxDepth),
		observer:   opts.StageObserver,
		blank:      make(map[effectKey]*Effect),
	}
	if b.ID == "" {
		b.ID = format.ID + "-" + strconv.FormatUint(seed, 16)
	}
	b.maxTurns = opts.MaxTurns
	if b.maxTurns == 0 {
		b.maxTurns = format.MaxTurns
	}
	if b.maxTurns == 0 && b.rules.Has(rules.ClauseEndlessBattle) {
		b.maxTurns = DefaultMaxTurns
	}
	b.queue = newQueue(b)
	b.Field = &Field{battle: b}
	b.lifecycle = rules.NewLifecycle(func(from, to rules.BattleState) {
		b.logger.Debug("battle state changed",
			zap.String("battle_id", b.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	})

	for i, spec := range []PlayerSpec{p1, p2} {
		side, err := b.newSide(i, spec)
		if err != nil {
			return nil, err
		}
		b.Sides[i] = side
	}
	b.Sides[0].Foe = b.Sides[1]
	b.Sides[1].Foe = b.Sides[0]

	for _, clause := range b.rules.Clauses() {
		effect := b.effects.Lookup(KindRule, dex.ID(clause))
		if effect == nil {
			continue
		}
		state := b.newEffectState(effect.ID, effect)
		b.ruleStates = append(b.ruleStates, state)
	}

	b.logger.Info("battle created",
		zap.String("battle_id", b.ID),
		zap.String("format", format.ID),
		zap.Uint64("seed", seed),
	)
	return b, nil
}

func (b *Battle) newSide(index int, spec PlayerSpec) (*Side, error) {
	id := "p" + strconv.Itoa(index+1)
	if len(spec.Team) < b.rules.TeamSize() {
		return nil, newError(CodeDataInconsistency, "%s brought %d combatants, format %s needs %d",
			id, len(spec.Team), b.format.ID, b.rules.TeamSize()).WithMetadata("side_id", id)
	}
	if b.rules.Has(rules.ClauseSpecies) {
		if err := checkSpeciesClause(b.dex, spec.Team); err != nil {
			return nil, wrapError(CodeDataInconsistency, err, "%s team", id).WithMetadata("side_id", id)
		}
	}
	name := spec.Name
	if name == "" {
		name = id
	}
	side := &Side{battle: b, ID: id, Index: index, Name: name}
	active := b.rules.GameType().ActivePerSide()
	side.Active = make([]*Pokemon, active)
	for pos, set := range spec.Team {
		p, err := newPokemon(b, side, set, pos)
		if err != nil {
			return nil, wrapError(CodeDataInconsistency, err, "%s slot %d", id, pos+1).WithMetadata("side_id", id)
		}
		side.Pokemon = append(side.Pokemon, p)
	}
	side.PokemonLeft = len(side.Pokemon)
	return side, nil
}

// Gen returns the rule generation in effect.
func (b *Battle) Gen() int {
	return b.rules.Generation()
}

// Rules returns the rule table in effect.
func (b *Battle) Rules() *rules.RuleTable {
	return b.rules
}

// Dex returns the data tables the battle reads.
func (b *Battle) Dex() *dex.Dex {
	return b.dex
}

// Format returns the format the battle was created with.
func (b *Battle) Format() *Format {
	return b.format
}

// Logger returns the battle's logger.
func (b *Battle) Logger() *zap.Logger {
	return b.logger
}

// Queue returns the battle's action queue.
func (b *Battle) Queue() *Queue {
	return b.queue
}

// Seed returns the PRNG seed the battle started from.
func (b *Battle) Seed() uint64 {
	return b.prng.Seed()
}

// PRNG exposes the battle's random source.
func (b *Battle) PRNG() *prng.PRNG {
	return b.prng
}

// Events returns the event bus every log line is published on.
func (b *Battle) Events() *rules.EventBus {
	return b.bus
}

// State returns the lifecycle phase.
func (b *Battle) State() rules.BattleState {
	return b.lifecycle.State()
}

// Ended reports whether the battle is over.
func (b *Battle) Ended() bool {
	return b.ended
}

// Winner returns the winning side's name, or "" for a tie or an
// unfinished battle.
func (b *Battle) Winner() string {
	return b.winner
}

// Log returns every event emitted so far.
func (b *Battle) Log() []rules.Event {
	return b.log
}

// InputLog returns every accepted decision in submission order.
func (b *Battle) InputLog() []string {
	return b.inputLog
}

// ActiveMove returns the move being executed, if any.
func (b *Battle) ActiveMove() *ActiveMove {
	return b.activeMove
}

// Side returns the side with id "p1" or "p2".
func (b *Battle) Side(id string) *Side {
	for _, s := range b.Sides {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Add appends an event to the log and publishes it.
func (b *Battle) Add(eventType rules.EventType, args ...string) {
	evt := rules.Event{Type: eventType, Args: args, Turn: b.Turn, Seq: len(b.log)}
	b.log = append(b.log, evt)
	b.bus.Publish(evt)
}

// Hint adds a "-hint" line.
func (b *Battle) Hint(msg string) {
	b.Add(rules.EventHint, msg)
}

// Random returns a uniform integer in [0, n).
func (b *Battle) Random(n int) int {
	return b.prng.Intn(n)
}

// RandomRange returns a uniform integer in [lo, hi).
func (b *Battle) RandomRange(lo, hi int) int {
	return b.prng.Range(lo, hi)
}

// RandomChance reports true with probability num/den.
func (b *Battle) RandomChance(num, den int) bool {
	return b.prng.Chance(num, den)
}

// Effect resolves an effect definition. Ids without behavior get an
// inert effect named from the data tables.
func (b *Battle) Effect(kind EffectKind, id dex.ID) *Effect {
	if id == "" {
		return nil
	}
	if e := b.effects.Lookup(kind, id); e != nil {
		return e
	}
	key := effectKey{kind: kind, id: id}
	if e, ok := b.blank[key]; ok {
		return e
	}
	name := string(id)
	switch kind {
	case KindAbility:
		if a, ok := b.dex.Ability(name); ok {
			name = a.Name
		}
	case KindItem:
		if it, ok := b.dex.Item(name); ok {
			name = it.Name
		}
	case KindMove:
		if m, ok := b.dex.Move(name); ok {
			name = m.Name
		}
	}
	e := &Effect{ID: id, Name: name, Kind: kind}
	b.blank[key] = e
	return e
}

func (b *Battle) newEffectState(id dex.ID, effect *Effect) *EffectState {
	b.effectOrder++
	return &EffectState{ID: id, Effect: effect, EffectOrder: b.effectOrder, StartTime: b.Turn}
}

// activeBySpeed returns every active combatant, fastest first.
func (b *Battle) activeBySpeed() []*Pokemon {
	var out []*Pokemon
	for _, side := range b.Sides {
		for _, p := range side.Active {
			if p != nil && p.IsActive {
				out = append(out, p)
			}
		}
	}
	speeds := make(map[*Pokemon]int, len(out))
	for _, p := range out {
		speeds[p] = p.ActionSpeed()
	}
	speedSort(b.prng, out, func(x, y *Pokemon) int {
		return speeds[y] - speeds[x]
	})
	return out
}

// EachEvent runs hook on every active combatant, fastest first.
func (b *Battle) EachEvent(hook Hook) {
	for _, p := range b.activeBySpeed() {
		if !p.IsActive {
			continue
		}
		b.RunNotify(hook, EventArgs{Target: p})
	}
}

func (b *Battle) setActiveMove(move *ActiveMove, user, target *Pokemon) {
	b.activeMove = move
	b.activePokemon = user
	b.activeTarget = target
}

func (b *Battle) clearActiveMove() {
	b.activeMove = nil
	b.activePokemon = nil
	b.activeTarget = nil
}

// Win ends the battle in favour of side, or in a tie when side is nil.
func (b *Battle) Win(side *Side) bool {
	if b.ended {
		return false
	}
	b.Add(rules.EventSpacer)
	if side == nil {
		b.Add(rules.EventTie)
	} else {
		b.winner = side.Name
		b.winnerSide = side
		b.Add(rules.EventWin, side.Name)
	}
	b.ended = true
	b.request = RequestNone
	b.queue.Clear()
	b.transition(rules.TransitionEnd)
	b.logger.Info("battle ended",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("winner", b.winner),
	)
	return true
}

// Tie ends the battle with no winner.
func (b *Battle) Tie() bool {
	return b.Win(nil)
}

// checkWin ends the battle once a side has nothing left to fight with.
func (b *Battle) checkWin() bool {
	allOut := true
	for _, side := range b.Sides {
		if side.PokemonLeft > 0 {
			allOut = false
		}
	}
	if allOut {
		if b.Gen() > 4 && b.lastFainted != nil {
			return b.Win(b.lastFainted.Side)
		}
		return b.Tie()
	}
	for _, side := range b.Sides {
		if side.Foe.PokemonLeft == 0 {
			return b.Win(side)
		}
	}
	return false
}

// fail records a fatal invariant violation and ends the battle without a
// winner being declared.
func (b *Battle) fail(err error) error {
	if b.fatal == nil {
		b.fatal = err
	}
	b.ended = true
	b.request = RequestNone
	b.queue.Clear()
	b.transition(rules.TransitionEnd)
	b.logger.Error("battle aborted",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.Error(err),
	)
	return err
}
