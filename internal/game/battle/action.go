package battle

import (
	"fmt"

	"github.com/magefree/battle-sim-go/internal/game/dex"
)

// ActionKind is the kind of a queued action.
type ActionKind string

const (
	ActionTeam           ActionKind = "team"
	ActionStart          ActionKind = "start"
	ActionInstaSwitch    ActionKind = "instaswitch"
	ActionBeforeTurn     ActionKind = "beforeTurn"
	ActionBeforeTurnMove ActionKind = "beforeTurnMove"
	ActionRunUnnerve     ActionKind = "runUnnerve"
	ActionRunSwitch      ActionKind = "runSwitch"
	ActionRunPrimal      ActionKind = "runPrimal"
	ActionSwitch         ActionKind = "switch"
	ActionMegaEvo        ActionKind = "megaEvo"
	ActionMegaEvoDone    ActionKind = "megaEvoDone"
	ActionShift          ActionKind = "shift"
	ActionMove           ActionKind = "move"
	ActionEvent          ActionKind = "event"
	ActionResidual       ActionKind = "residual"
	ActionPass           ActionKind = "pass"
)

// actionOrder is the category rank of each kind. Lower runs first.
var actionOrder = map[ActionKind]int{
	ActionTeam:           1,
	ActionStart:          2,
	ActionInstaSwitch:    3,
	ActionBeforeTurn:     4,
	ActionBeforeTurnMove: 5,
	ActionRunUnnerve:     100,
	ActionRunSwitch:      101,
	ActionRunPrimal:      102,
	ActionSwitch:         103,
	ActionMegaEvo:        104,
	ActionMegaEvoDone:    105,
	ActionShift:          200,
	ActionMove:           200,
	ActionEvent:          200,
	ActionResidual:       300,
}

// Action is one queued step of a turn.
type Action struct {
	Kind ActionKind

	Order              int
	Priority           int
	FractionalPriority int
	Speed              int
	SubOrder           int
	EffectOrder        int

	Pokemon *Pokemon
	// Target is the combatant switched in by switch actions.
	Target         *Pokemon
	TargetLoc      int
	OriginalTarget *Pokemon
	MoveID         dex.ID
	Move           *ActiveMove
	SourceEffect   *Effect
	// Linked holds both moves of a linked pair; the action expands into
	// one move action per entry when it runs.
	Linked []*ActiveMove
	// Event is the hook run by event actions.
	Event Hook

	linkedPart    bool
	linkedPartner bool
	seq           int
}

func (a *Action) key() priorityKey {
	return priorityKey{
		Order:              a.Order,
		Priority:           a.Priority,
		FractionalPriority: a.FractionalPriority,
		Speed:              a.Speed,
		SubOrder:           a.SubOrder,
		EffectOrder:        a.EffectOrder,
	}
}

func (a *Action) String() string {
	who := "-"
	if a.Pokemon != nil {
		who = a.Pokemon.FullName()
	}
	switch a.Kind {
	case ActionMove, ActionBeforeTurnMove:
		return fmt.Sprintf("%s %s %s %d", a.Kind, who, a.MoveID, a.TargetLoc)
	case ActionSwitch, ActionInstaSwitch:
		if a.Target != nil {
			return fmt.Sprintf("%s %s %s", a.Kind, who, a.Target.Name)
		}
	}
	return fmt.Sprintf("%s %s", a.Kind, who)
}

// compareActions orders two resolved actions.
func compareActions(a, b *Action) int {
	return comparePriority(a.key(), b.key())
}
