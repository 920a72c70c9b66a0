package battle

import (
	"strconv"
	"strings"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"go.uber.org/zap"
)

// RequestKind is the kind of decision the battle is waiting for.
type RequestKind string

const (
	RequestNone   RequestKind = ""
	RequestMove   RequestKind = "move"
	RequestSwitch RequestKind = "switch"
)

// MoveOption is one move a combatant may choose.
type MoveOption struct {
	ID       dex.ID
	Name     string
	PP       int
	MaxPP    int
	Target   dex.MoveTarget
	Disabled bool
}

// ActiveRequest lists the options of one active combatant.
type ActiveRequest struct {
	Moves []MoveOption
	// Locked is set when every move choice resolves to Moves[0].
	Locked  bool
	CanLink bool
}

// SideRequest is what one side has to decide.
type SideRequest struct {
	Side        string
	Kind        RequestKind
	Wait        bool
	ForceSwitch []bool
	Active      []ActiveRequest
}

// Request is the pending decision for both sides.
type Request struct {
	Kind  RequestKind
	Sides [2]SideRequest
}

// ChoiceKind is the verb of a decision.
type ChoiceKind string

const (
	ChoiceMove    ChoiceKind = "move"
	ChoiceSwitch  ChoiceKind = "switch"
	ChoicePass    ChoiceKind = "pass"
	ChoiceDefault ChoiceKind = "default"
)

// Choice is one combatant's parsed decision.
type Choice struct {
	Kind ChoiceKind
	// Move is a 1-based move slot or a move name.
	Move      string
	TargetLoc int
	Link      bool
	// Switch is a 1-based roster position or a combatant's name.
	Switch string
}

func (c Choice) String() string {
	switch c.Kind {
	case ChoiceMove:
		out := "move " + c.Move
		if c.TargetLoc != 0 {
			out += " " + strconv.Itoa(c.TargetLoc)
		}
		if c.Link {
			out += " link"
		}
		return out
	case ChoiceSwitch:
		return "switch " + c.Switch
	}
	return string(c.Kind)
}

// ParseChoice reads a single decision such as "move 1", "move 1 -2",
// "move 1 link", "switch 3" or "pass".
func ParseChoice(input string) (Choice, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return Choice{}, newError(CodeInvalidDecision, "empty choice")
	}
	verb, args := ChoiceKind(strings.ToLower(fields[0])), fields[1:]
	switch verb {
	case ChoicePass, ChoiceDefault:
		if len(args) > 0 {
			return Choice{}, newError(CodeInvalidDecision, "%q takes no arguments", verb)
		}
		return Choice{Kind: verb}, nil

	case ChoiceSwitch:
		if len(args) == 0 {
			return Choice{}, newError(CodeInvalidDecision, "switch needs a target")
		}
		return Choice{Kind: ChoiceSwitch, Switch: strings.Join(args, " ")}, nil

	case ChoiceMove:
		c := Choice{Kind: ChoiceMove}
		if n := len(args); n > 0 && strings.EqualFold(args[n-1], "link") {
			c.Link = true
			args = args[:n-1]
		}
		if n := len(args); n > 1 {
			if loc, err := strconv.Atoi(args[n-1]); err == nil {
				c.TargetLoc = loc
				args = args[:n-1]
			}
		}
		if len(args) == 0 {
			return Choice{}, newError(CodeInvalidDecision, "move needs a move")
		}
		c.Move = strings.Join(args, " ")
		return c, nil
	}
	return Choice{}, newError(CodeInvalidDecision, "unrecognized choice %q", fields[0])
}

// sideChoice collects a side's accepted decisions for the pending
// request.
type sideChoice struct {
	actions   []*Action
	parts     []string
	switchIns map[*Pokemon]bool
}

func (c *sideChoice) String() string {
	if c == nil {
		return ""
	}
	return strings.Join(c.parts, ", ")
}

func (c *sideChoice) list() []*Action {
	if c == nil {
		return nil
	}
	return c.actions
}

// Request returns the pending decision, or nil when none is pending.
func (b *Battle) Request() *Request {
	if b.request == RequestNone || b.ended {
		return nil
	}
	req := &Request{Kind: b.request}
	for i, side := range b.Sides {
		req.Sides[i] = b.sideRequest(side)
	}
	return req
}

func (b *Battle) sideRequest(side *Side) SideRequest {
	sr := SideRequest{Side: side.ID, Kind: b.request}
	switch b.request {
	case RequestSwitch:
		sr.ForceSwitch = make([]bool, len(side.Active))
		sr.Wait = true
		for i, p := range side.Active {
			if p != nil && p.SwitchFlag {
				sr.ForceSwitch[i] = true
				sr.Wait = false
			}
		}
	case RequestMove:
		sr.Active = make([]ActiveRequest, len(side.Active))
		for i, p := range side.Active {
			if p == nil || !p.canAct() {
				continue
			}
			moves, locked := b.moveOptions(p)
			sr.Active[i] = ActiveRequest{
				Moves:   moves,
				Locked:  locked,
				CanLink: !locked && len(p.MoveSlots) > 0 && b.linkedPair(p, p.MoveSlots[0].ID, false) != nil,
			}
		}
	}
	return sr
}

// moveOptions lists p's moves. A locked-in combatant, or one with no
// usable move, gets a single option that every move choice resolves to.
func (b *Battle) moveOptions(p *Pokemon) ([]MoveOption, bool) {
	if id := b.RunOverride(HookLockMove, EventArgs{Target: p}, ""); id != "" {
		return []MoveOption{b.moveOption(id, p.MoveSlot(id))}, true
	}
	opts := make([]MoveOption, 0, len(p.MoveSlots))
	usable := false
	for _, slot := range p.MoveSlots {
		opt := b.moveOption(slot.ID, slot)
		opt.Disabled = slot.Disabled || slot.PP <= 0
		if !opt.Disabled {
			usable = true
		}
		opts = append(opts, opt)
	}
	if !usable {
		return []MoveOption{b.moveOption("struggle", nil)}, true
	}
	return opts, false
}

func (b *Battle) moveOption(id dex.ID, slot *MoveSlot) MoveOption {
	opt := MoveOption{ID: id, Name: string(id)}
	if data, ok := b.dex.Move(string(id)); ok {
		opt.Name = data.Name
		opt.Target = data.Target
	}
	if slot != nil {
		opt.PP = slot.PP
		opt.MaxPP = slot.MaxPP
	}
	return opt
}

// Choose records a side's decisions for the pending request. input holds
// one comma-separated decision per active slot that needs one; slots
// with nothing to decide are skipped. A later call replaces an earlier
// one.
func (b *Battle) Choose(sideID, input string) error {
	if b.ended {
		return newError(CodeBattleEnded, "battle %s is over", b.ID)
	}
	if b.request == RequestNone {
		return newError(CodeInvalidDecision, "no decisions are pending")
	}
	side := b.Side(sideID)
	if side == nil {
		return newError(CodeInvalidDecision, "unknown side %q", sideID)
	}
	var choices []Choice
	for _, part := range strings.Split(input, ",") {
		c, err := ParseChoice(part)
		if err != nil {
			return wrapError(CodeInvalidDecision, err, "%s", side.ID).WithMetadata("side_id", side.ID)
		}
		choices = append(choices, c)
	}
	if len(choices) == 1 && choices[0].Kind == ChoiceDefault {
		return b.AutoChoose(sideID)
	}
	return b.choose(side, choices)
}

// AutoChoose picks the first legal option for each of the side's slots.
func (b *Battle) AutoChoose(sideID string) error {
	if b.ended {
		return newError(CodeBattleEnded, "battle %s is over", b.ID)
	}
	if b.request == RequestNone {
		return newError(CodeInvalidDecision, "no decisions are pending")
	}
	side := b.Side(sideID)
	if side == nil {
		return newError(CodeInvalidDecision, "unknown side %q", sideID)
	}
	var choices []Choice
	taken := make(map[*Pokemon]bool)
	for _, p := range side.Active {
		if !b.needsDecision(p) {
			continue
		}
		if b.request == RequestSwitch {
			c := Choice{Kind: ChoicePass}
			for _, bench := range side.Switchable() {
				if !taken[bench] {
					taken[bench] = true
					c = Choice{Kind: ChoiceSwitch, Switch: strconv.Itoa(rosterIndex(bench))}
					break
				}
			}
			choices = append(choices, c)
			continue
		}
		if p.Fainted {
			choices = append(choices, Choice{Kind: ChoicePass})
			continue
		}
		choices = append(choices, b.defaultMove(p))
	}
	return b.choose(side, choices)
}

func (b *Battle) defaultMove(p *Pokemon) Choice {
	moves, locked := b.moveOptions(p)
	c := Choice{Kind: ChoiceMove, Move: "1"}
	move := moves[0]
	if !locked {
		for i, m := range moves {
			if !m.Disabled {
				c.Move = strconv.Itoa(i + 1)
				move = m
				break
			}
		}
	}
	if !locked && len(p.Side.Active) > 1 && move.Target.NeedsTarget() {
		for _, loc := range targetLocs(len(p.Side.Active)) {
			target := p.AtLoc(loc)
			if target != nil && !target.Fainted && b.strategies.Targeting.ValidTargetLoc(b, p, loc, move.Target) {
				c.TargetLoc = loc
				break
			}
		}
	}
	return c
}

// targetLocs lists foe locations before ally ones.
func targetLocs(slots int) []int {
	out := make([]int, 0, 2*slots)
	for i := 1; i <= slots; i++ {
		out = append(out, i)
	}
	for i := 1; i <= slots; i++ {
		out = append(out, -i)
	}
	return out
}

// rosterIndex is p's 1-based position in its side's roster.
func rosterIndex(p *Pokemon) int {
	for i, other := range p.Side.Pokemon {
		if other == p {
			return i + 1
		}
	}
	return 0
}

// needsDecision reports whether the active slot held by p takes part in
// the pending request.
func (b *Battle) needsDecision(p *Pokemon) bool {
	if p == nil {
		return false
	}
	if b.request == RequestSwitch {
		return p.SwitchFlag
	}
	return true
}

// choiceDone reports whether side has everything the request needs.
func (b *Battle) choiceDone(side *Side) bool {
	if side.choice != nil {
		return true
	}
	for _, p := range side.Active {
		if b.needsDecision(p) {
			return false
		}
	}
	return true
}

func (b *Battle) choose(side *Side, choices []Choice) error {
	sc := &sideChoice{switchIns: make(map[*Pokemon]bool)}
	next := 0
	for _, p := range side.Active {
		if !b.needsDecision(p) {
			continue
		}
		var c Choice
		if next < len(choices) {
			c = choices[next]
			next++
		} else {
			c = b.missingChoice(side, sc, p)
		}
		if err := b.addChoice(side, sc, p, c); err != nil {
			return err.WithMetadata("side_id", side.ID)
		}
	}
	if next < len(choices) {
		return newError(CodeInvalidDecision, "%s sent %d decisions, only %d needed", side.ID, len(choices), next).
			WithMetadata("side_id", side.ID)
	}
	side.choice = sc
	b.logger.Debug("decision accepted",
		zap.String("battle_id", b.ID),
		zap.Int("turn", b.Turn),
		zap.String("side_id", side.ID),
		zap.String("choice", sc.String()),
	)
	return nil
}

// missingChoice fills an omitted decision when passing is the only legal
// option, and leaves it for addChoice to reject otherwise.
func (b *Battle) missingChoice(side *Side, sc *sideChoice, p *Pokemon) Choice {
	if b.request == RequestSwitch {
		left := 0
		for _, bench := range side.Switchable() {
			if !sc.switchIns[bench] {
				left++
			}
		}
		if left == 0 {
			return Choice{Kind: ChoicePass}
		}
	}
	if b.request == RequestMove && p.Fainted {
		return Choice{Kind: ChoicePass}
	}
	return Choice{}
}

func (b *Battle) addChoice(side *Side, sc *sideChoice, p *Pokemon, c Choice) *Error {
	switch c.Kind {
	case "":
		return newError(CodeInvalidDecision, "%s needs a decision", p.FullName())

	case ChoicePass:
		if b.request == RequestMove && !p.Fainted {
			return newError(CodeInvalidDecision, "can't pass: %s must make a move or switch", p.Name)
		}
		if b.request == RequestSwitch {
			for _, bench := range side.Switchable() {
				if !sc.switchIns[bench] {
					return newError(CodeInvalidDecision, "can't pass: %s must be replaced", p.Name)
				}
			}
		}
		sc.parts = append(sc.parts, c.String())
		return nil

	case ChoiceSwitch:
		if b.request == RequestMove && p.Fainted {
			return newError(CodeInvalidDecision, "%s has fainted and can only pass", p.Name)
		}
		target := b.switchTarget(side, c.Switch)
		switch {
		case target == nil:
			return newError(CodeInvalidDecision, "no combatant %q to switch to", c.Switch)
		case target.IsActive:
			return newError(CodeInvalidDecision, "can't switch to %s, it is already active", target.Name)
		case target.Fainted || target.HP <= 0:
			return newError(CodeInvalidDecision, "can't switch to %s, it has fainted", target.Name)
		case sc.switchIns[target]:
			return newError(CodeInvalidDecision, "%s is already switching in", target.Name)
		}
		sc.switchIns[target] = true
		kind := ActionSwitch
		if b.request == RequestSwitch {
			kind = ActionInstaSwitch
		}
		sc.actions = append(sc.actions, &Action{Kind: kind, Pokemon: p, Target: target})
		sc.parts = append(sc.parts, "switch "+strconv.Itoa(rosterIndex(target)))
		return nil

	case ChoiceMove:
		if b.request != RequestMove {
			return newError(CodeInvalidDecision, "can't move: a switch is required")
		}
		if !p.canAct() {
			return newError(CodeInvalidDecision, "%s can't move", p.Name)
		}
		return b.addMoveChoice(sc, p, c)
	}
	return newError(CodeInvalidDecision, "unrecognized choice %q", c.Kind)
}

func (b *Battle) addMoveChoice(sc *sideChoice, p *Pokemon, c Choice) *Error {
	moves, locked := b.moveOptions(p)
	if locked {
		loc := p.LastMoveTargetLoc
		if moves[0].ID == "struggle" {
			loc = 0
		}
		sc.actions = append(sc.actions, moveAction(p, moves[0].ID, loc))
		sc.parts = append(sc.parts, "move 1")
		return nil
	}

	index := -1
	if n, err := strconv.Atoi(c.Move); err == nil {
		index = n - 1
	} else {
		id := dex.ToID(c.Move)
		for i, m := range moves {
			if m.ID == id {
				index = i
				break
			}
		}
	}
	if index < 0 || index >= len(moves) {
		return newError(CodeInvalidDecision, "%s has no move %q", p.Name, c.Move)
	}
	move := moves[index]
	if move.Disabled {
		return newError(CodeInvalidDecision, "%s's %s is disabled", p.Name, move.Name)
	}

	if move.Target.NeedsTarget() {
		if c.TargetLoc == 0 && len(p.Side.Active) > 1 {
			return newError(CodeInvalidDecision, "%s needs a target", move.Name)
		}
		if c.TargetLoc != 0 && !b.strategies.Targeting.ValidTargetLoc(b, p, c.TargetLoc, move.Target) {
			return newError(CodeInvalidDecision, "invalid target %d for %s", c.TargetLoc, move.Name)
		}
	} else if c.TargetLoc != 0 {
		return newError(CodeInvalidDecision, "%s does not take a target", move.Name)
	}
	if c.Link && b.linkedPair(p, move.ID, false) == nil {
		return newError(CodeInvalidDecision, "%s is not linked", move.Name)
	}

	sc.actions = append(sc.actions, moveAction(p, move.ID, c.TargetLoc))
	part := Choice{Kind: ChoiceMove, Move: strconv.Itoa(index + 1), TargetLoc: c.TargetLoc, Link: c.Link}
	sc.parts = append(sc.parts, part.String())
	return nil
}

// switchTarget resolves a roster position or name.
func (b *Battle) switchTarget(side *Side, ref string) *Pokemon {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(side.Pokemon) {
			return nil
		}
		return side.Pokemon[n-1]
	}
	return side.PokemonByName(ref)
}
