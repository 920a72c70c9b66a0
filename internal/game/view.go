package game

import (
	"fmt"
	"time"

	"github.com/magefree/battle-sim-go/internal/game/battle"
	"github.com/magefree/battle-sim-go/internal/game/rules"
	"github.com/magefree/battle-sim-go/internal/game/watchers"
)

// BattleView is a snapshot of a battle as one side sees it. Foe
// combatants are listed only while active or once fainted.
type BattleView struct {
	BattleID  string
	Format    string
	Turn      int
	State     rules.BattleState
	Outcome   battle.BattleOutcome
	Winner    string
	Weather   string
	Field     []string
	Sides     []SideView
	Request   *battle.SideRequest
	Log       []string
	StartedAt time.Time
	EndedAt   time.Time
}

// SideView is one side of a BattleView.
type SideView struct {
	ID          string
	Name        string
	PokemonLeft int
	Stats       watchers.SideStats
	Conditions  []string
	Pokemon     []PokemonView
}

// PokemonView is one combatant. Moves, Item and Ability are only filled
// in for the viewer's own side.
type PokemonView struct {
	Name      string
	Species   string
	Level     int
	Condition string
	Active    bool
	Fainted   bool
	Status    string
	Boosts    map[string]int
	Volatiles []string
	Item      string
	Ability   string
	Moves     []MoveView
}

// MoveView is a move slot on the viewer's own side.
type MoveView struct {
	ID       string
	Name     string
	PP       int
	MaxPP    int
	Disabled bool
}

// GetView renders the battle for sideID. An empty sideID gives the
// spectator view.
func (e *Engine) GetView(battleID, sideID string) (*BattleView, error) {
	state, err := e.lookup(battleID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	b := state.battle
	if sideID != "" && b.Side(sideID) == nil {
		return nil, fmt.Errorf("battle %s has no side %q", battleID, sideID)
	}

	view := &BattleView{
		BattleID:  battleID,
		Format:    state.config.Format,
		Turn:      b.Turn,
		State:     b.State(),
		Outcome:   b.Outcome(),
		Winner:    b.Winner(),
		Weather:   string(b.Field.Weather),
		StartedAt: state.startedAt,
		EndedAt:   state.endedAt,
	}
	for _, pw := range b.Field.PseudoWeather {
		view.Field = append(view.Field, string(pw.ID))
	}
	for _, side := range b.Sides {
		sv := buildSideView(side, side.ID == sideID)
		sv.Stats = state.stats.Side(side.ID)
		view.Sides = append(view.Sides, sv)
	}
	if req := b.Request(); req != nil && sideID != "" {
		sr := req.Sides[b.Side(sideID).Index]
		view.Request = &sr
	}
	for _, ev := range b.Log() {
		view.Log = append(view.Log, ev.String())
	}
	return view, nil
}

func buildSideView(side *battle.Side, own bool) SideView {
	sv := SideView{
		ID:          side.ID,
		Name:        side.Name,
		PokemonLeft: side.PokemonLeft,
	}
	for _, cond := range side.Conditions {
		sv.Conditions = append(sv.Conditions, string(cond.ID))
	}
	for _, p := range side.Pokemon {
		if !own && !p.IsActive && !p.Fainted {
			continue
		}
		sv.Pokemon = append(sv.Pokemon, buildPokemonView(p, own))
	}
	return sv
}

func buildPokemonView(p *battle.Pokemon, own bool) PokemonView {
	pv := PokemonView{
		Name:      p.Name,
		Species:   p.Species.Name,
		Level:     p.Level,
		Condition: p.Health(),
		Active:    p.IsActive,
		Fainted:   p.Fainted,
		Status:    string(p.Status),
	}
	for stat, stage := range p.Boosts {
		if stage == 0 {
			continue
		}
		if pv.Boosts == nil {
			pv.Boosts = make(map[string]int)
		}
		pv.Boosts[string(stat)] = stage
	}
	for _, v := range p.Volatiles {
		pv.Volatiles = append(pv.Volatiles, string(v.ID))
	}
	if !own {
		return pv
	}
	pv.Item = string(p.Item)
	pv.Ability = string(p.Ability)
	for _, slot := range p.MoveSlots {
		pv.Moves = append(pv.Moves, MoveView{
			ID:       string(slot.ID),
			Name:     slot.Name,
			PP:       slot.PP,
			MaxPP:    slot.MaxPP,
			Disabled: slot.Disabled,
		})
	}
	return pv
}
