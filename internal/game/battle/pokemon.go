package battle

import (
	"fmt"
	"strconv"

	"github.com/magefree/battle-sim-go/internal/game/dex"
	"github.com/magefree/battle-sim-go/internal/game/rules"
)

// MoveResult records how a combatant's move went this turn.
type MoveResult int

const (
	MoveResultUnset MoveResult = iota
	MoveResultSucceeded
	// MoveResultFailed means the move was tried and failed, or the
	// combatant failed to try it (pre-move gate returned a failure).
	MoveResultFailed
	// MoveResultNoChoice means the combatant had no choice but to skip,
	// such as when it was asleep or flinched.
	MoveResultNoChoice
)

// MoveSlot is one of a combatant's known moves.
type MoveSlot struct {
	ID       dex.ID
	Name     string
	PP       int
	MaxPP    int
	Disabled bool
	Used     bool
}

// Pokemon is a combatant on a side, active or benched.
type Pokemon struct {
	battle *Battle

	Side     *Side
	Set      PokemonSet
	Name     string
	Species  *dex.Species
	Level    int
	Nature   *dex.Nature
	MaxHP    int
	HP       int
	Position int

	StoredStats dex.StatsTable
	Boosts      dex.BoostTable
	BaseTypes   []string

	Status       dex.ID
	StatusState  *EffectState
	Volatiles    []*EffectState
	Ability      dex.ID
	AbilityState *EffectState
	Item         dex.ID
	ItemState    *EffectState
	MoveSlots    []*MoveSlot

	IsActive        bool
	IsStarted       bool
	Fainted         bool
	SwitchFlag      bool
	ForceSwitchFlag bool
	faintQueued     bool

	ActiveTurns          int
	ActiveMoveActions    int
	AbilityOrder         int
	AteBerry             bool
	UsedItemThisTurn     bool
	StatsRaisedThisTurn  bool
	StatsLoweredThisTurn bool
	HurtThisTurn         int
	LastDamage           int

	LastMove           dex.ID
	LastMoveTargetLoc  int
	MoveThisTurn       dex.ID
	MoveThisTurnResult MoveResult
	MoveLastTurnResult MoveResult

	selfSwitchMove   dex.ID
	skipBeforeSwitch bool
}

// Battle returns the battle the combatant belongs to.
func (p *Pokemon) Battle() *Battle {
	return p.battle
}

// FullName is the protocol identifier, e.g. "p1a: Pikachu".
func (p *Pokemon) FullName() string {
	if p.IsActive || p.Fainted && p.Position < len(p.Side.Active) && p.Side.Active[p.Position] == p {
		return fmt.Sprintf("%s%c: %s", p.Side.ID, 'a'+rune(p.Position), p.Name)
	}
	return fmt.Sprintf("%s: %s", p.Side.ID, p.Name)
}

func (p *Pokemon) String() string {
	return p.FullName()
}

// Details is the public species and level line, e.g. "Garchomp, L80".
func (p *Pokemon) Details() string {
	if p.Level == 100 {
		return p.Species.Name
	}
	return p.Species.Name + ", L" + strconv.Itoa(p.Level)
}

// Health renders the combatant's condition for protocol lines.
func (p *Pokemon) Health() string {
	if p.HP <= 0 {
		return "0 fnt"
	}
	var out string
	if p.battle.rules.Has(rules.ClauseExactHP) {
		out = strconv.Itoa(p.HP) + "/" + strconv.Itoa(p.MaxHP)
	} else {
		pct := (p.HP*100 + p.MaxHP - 1) / p.MaxHP
		if pct == 100 && p.HP < p.MaxHP {
			pct = 99
		}
		out = strconv.Itoa(pct) + "/100"
	}
	if p.Status != "" {
		out += " " + string(p.Status)
	}
	return out
}

// Types returns the combatant's current types.
func (p *Pokemon) Types() []string {
	return p.BaseTypes
}

// HasType reports whether the combatant currently has typ.
func (p *Pokemon) HasType(typ string) bool {
	for _, t := range p.BaseTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// HasAbility reports whether the combatant's ability is one of ids.
func (p *Pokemon) HasAbility(ids ...dex.ID) bool {
	if !p.IsActive && p.battle.Gen() >= 5 {
		return false
	}
	for _, id := range ids {
		if p.Ability == id {
			return true
		}
	}
	return false
}

// IgnoringAbility reports whether the combatant's ability is switched
// off, which happens once it leaves the field.
func (p *Pokemon) IgnoringAbility() bool {
	return p.battle.Gen() >= 5 && !p.IsActive || p.Fainted
}

// IgnoringItem reports whether the combatant's held item is switched off.
func (p *Pokemon) IgnoringItem() bool {
	return p.battle.Gen() >= 5 && !p.IsActive
}

// HasItem reports whether the combatant holds one of ids.
func (p *Pokemon) HasItem(ids ...dex.ID) bool {
	if p.Item == "" {
		return false
	}
	for _, id := range ids {
		if p.Item == id {
			return true
		}
	}
	return false
}

// GetStat returns a battle stat with boosts and modifier events applied
// unless suppressed.
func (p *Pokemon) GetStat(stat dex.StatID, unboosted, unmodified bool) int {
	value := p.StoredStats.Get(stat)
	if !unboosted {
		boosts := p.boostsFor(nil)
		value = applyBoost(value, boosts[dex.BoostID(stat)])
	}
	if !unmodified {
		value = p.battle.RunModify(statHooks[string(stat)], EventArgs{Target: p}, value)
	}
	if stat == dex.StatSpe && value > 10000 {
		value = 10000
	}
	return value
}

// CalculateStat returns a stored stat with the given boost stage applied
// after ModifyBoost handlers, without stat modifier events. Used by
// damage calculation.
func (p *Pokemon) CalculateStat(stat dex.StatID, boost int, source *Pokemon) int {
	value := p.StoredStats.Get(stat)
	boosts := dex.BoostTable{dex.BoostID(stat): boost}
	p.battle.RunBoost(HookModifyBoost, EventArgs{Target: p, Source: source}, boosts)
	return applyBoost(value, boosts[dex.BoostID(stat)])
}

// ActionSpeed is the speed used to order actions.
func (p *Pokemon) ActionSpeed() int {
	speed := p.GetStat(dex.StatSpe, false, false)
	if p.battle.Field.HasPseudoWeather("trickroom") {
		speed = 10000 - speed
	}
	return speed & 0x1FFF
}

// boostsFor runs ModifyBoost over a copy of the combatant's boosts.
func (p *Pokemon) boostsFor(source *Pokemon) dex.BoostTable {
	boosts := p.Boosts.Clone()
	p.battle.RunBoost(HookModifyBoost, EventArgs{Target: p, Source: source}, boosts)
	return boosts
}

func applyBoost(value, boost int) int {
	if boost > 6 {
		boost = 6
	}
	if boost < -6 {
		boost = -6
	}
	if boost >= 0 {
		return value * (2 + boost) / 2
	}
	return value * 2 / (2 - boost)
}

// cappedBoost trims deltas so no stage leaves [-6, 6].
func (p *Pokemon) cappedBoost(boosts dex.BoostTable) dex.BoostTable {
	out := dex.BoostTable{}
	for _, id := range dex.BoostOrder {
		delta, ok := boosts[id]
		if !ok {
			continue
		}
		current := p.Boosts[id]
		next := clampInt(current+delta, -6, 6)
		out[id] = next - current
	}
	return out
}

// boostBy applies a single already-capped delta and returns the change.
func (p *Pokemon) boostBy(id dex.BoostID, delta int) int {
	current := p.Boosts[id]
	next := clampInt(current+delta, -6, 6)
	p.Boosts[id] = next
	return next - current
}

// ClearBoosts resets every stage to zero.
func (p *Pokemon) ClearBoosts() {
	p.Boosts = dex.BoostTable{}
}

// AlliesAndSelf returns active, non-fainted combatants on the same side.
func (p *Pokemon) AlliesAndSelf() []*Pokemon {
	return p.Side.Allies()
}

// Allies returns active allies excluding the combatant itself.
func (p *Pokemon) Allies() []*Pokemon {
	var out []*Pokemon
	for _, a := range p.Side.Allies() {
		if a != p {
			out = append(out, a)
		}
	}
	return out
}

// AdjacentAllies returns allies next to the combatant. Every ally is
// adjacent in singles and doubles.
func (p *Pokemon) AdjacentAllies() []*Pokemon {
	return p.Allies()
}

// Foes returns active, non-fainted opponents.
func (p *Pokemon) Foes() []*Pokemon {
	return p.Side.Foe.Allies()
}

// AdjacentFoes returns opponents adjacent to the combatant. Every foe is
// adjacent in singles and doubles.
func (p *Pokemon) AdjacentFoes() []*Pokemon {
	return p.Foes()
}

// IsAlly reports whether other is on the same side.
func (p *Pokemon) IsAlly(other *Pokemon) bool {
	return other != nil && other.Side == p.Side
}

// LocOf returns the target location of target relative to the
// combatant: positive for foes, negative for allies.
func (p *Pokemon) LocOf(target *Pokemon) int {
	if target.Side == p.Side {
		return -(target.Position + 1)
	}
	return target.Position + 1
}

// AtLoc resolves a target location relative to the combatant.
func (p *Pokemon) AtLoc(loc int) *Pokemon {
	side := p.Side.Foe
	if loc < 0 {
		side = p.Side
		loc = -loc
	}
	if loc == 0 || loc > len(side.Active) {
		return nil
	}
	return side.Active[loc-1]
}

// MoveSlot returns the slot for move id, or nil.
func (p *Pokemon) MoveSlot(id dex.ID) *MoveSlot {
	for _, slot := range p.MoveSlots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

// HasMove reports whether the combatant knows id.
func (p *Pokemon) HasMove(id dex.ID) bool {
	return p.MoveSlot(id) != nil
}

// DisableMove marks id unusable until the end of the turn.
func (p *Pokemon) DisableMove(id dex.ID) {
	if slot := p.MoveSlot(id); slot != nil {
		slot.Disabled = true
	}
}

// DeductPP removes amount PP from move id and returns how much was
// actually removed.
func (p *Pokemon) DeductPP(id dex.ID, amount int) int {
	slot := p.MoveSlot(id)
	if slot == nil {
		return 0
	}
	slot.Used = true
	if slot.PP <= 0 {
		return 0
	}
	if amount <= 0 {
		amount = 1
	}
	slot.PP -= amount
	if slot.PP < 0 {
		amount += slot.PP
		slot.PP = 0
	}
	return amount
}

// Volatile returns the state of volatile id, or nil.
func (p *Pokemon) Volatile(id dex.ID) *EffectState {
	for _, v := range p.Volatiles {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// HasVolatile reports whether volatile id is attached.
func (p *Pokemon) HasVolatile(id dex.ID) bool {
	return p.Volatile(id) != nil
}

// AddVolatile attaches volatile id. It returns false if the combatant is
// immune, a handler refused it, or it is already attached and does not
// restart.
func (p *Pokemon) AddVolatile(id dex.ID, source *Pokemon, sourceEffect *Effect) bool {
	b := p.battle
	if p.HP <= 0 {
		return false
	}
	if source == nil {
		source = p
	}
	effect := b.Effect(KindCondition, id)
	if state := p.Volatile(id); state != nil {
		if effect.Handler(HookRestart, ScopeSelf) == nil {
			return false
		}
		return b.SingleGate(effect, state, HookRestart, EventArgs{Target: p, Source: source, Effect: sourceEffect}) == Continue
	}
	if !p.RunStatusImmunity(string(id), false) {
		if sourceEffect != nil && sourceEffect.Kind == KindMove {
			b.Add(rules.EventImmune, p.FullName())
		}
		return false
	}
	if b.RunGate(HookTryAddVolatile, EventArgs{Target: p, Source: source, Effect: sourceEffect, Status: id}) != Continue {
		return false
	}
	state := b.newEffectState(id, effect)
	state.Pokemon = p
	state.Source = source
	state.SourceEffect = sourceEffect
	state.Duration = effect.Duration
	p.Volatiles = append(p.Volatiles, state)
	if effect.DurationCallback != nil {
		state.Duration = effect.DurationCallback(&Context{Battle: b, EventArgs: EventArgs{Target: p, Source: source, Effect: sourceEffect}, State: state})
	}
	if b.SingleGate(effect, state, HookStart, EventArgs{Target: p, Source: source, Effect: sourceEffect}) != Continue {
		p.dropVolatile(state)
		return false
	}
	return true
}

// RemoveVolatile ends volatile id, running its End hook.
func (p *Pokemon) RemoveVolatile(id dex.ID) bool {
	if p.HP <= 0 {
		return false
	}
	state := p.Volatile(id)
	if state == nil {
		return false
	}
	p.battle.SingleNotify(state.Effect, state, HookEnd, EventArgs{Target: p})
	p.dropVolatile(state)
	return true
}

// DeleteVolatile detaches volatile id without running its End hook.
func (p *Pokemon) DeleteVolatile(id dex.ID) bool {
	state := p.Volatile(id)
	if state == nil {
		return false
	}
	p.dropVolatile(state)
	return true
}

func (p *Pokemon) dropVolatile(state *EffectState) {
	state.removed = true
	for i, v := range p.Volatiles {
		if v == state {
			p.Volatiles = append(p.Volatiles[:i], p.Volatiles[i+1:]...)
			return
		}
	}
}

// ClearVolatiles drops every volatile and resets boosts, as happens when
// leaving the field.
func (p *Pokemon) ClearVolatiles() {
	for _, v := range p.Volatiles {
		v.removed = true
	}
	p.Volatiles = nil
	p.ClearBoosts()
	p.SwitchFlag = false
	p.ForceSwitchFlag = false
	p.LastMove = ""
	p.MoveThisTurn = ""
}

// SetStatus replaces the major status. It fails if the combatant already
// has that status, is immune, or a handler refuses.
func (p *Pokemon) SetStatus(id dex.ID, source *Pokemon, sourceEffect *Effect) bool {
	b := p.battle
	if p.HP <= 0 {
		return false
	}
	if source == nil {
		source = p
	}
	moveStatus := sourceEffect != nil && sourceEffect.Kind == KindMove && b.activeMove != nil && b.activeMove.Status != ""
	if p.Status == id {
		if moveStatus && b.activeMove.Status == p.Status {
			b.Add(rules.EventFail, p.FullName(), string(p.Status))
		} else if moveStatus {
			b.Add(rules.EventFail, source.FullName())
		}
		return false
	}
	immunity := id
	if immunity == "tox" {
		immunity = "psn"
	}
	if !p.RunStatusImmunity(string(immunity), false) {
		if moveStatus {
			b.Add(rules.EventImmune, p.FullName())
		}
		return false
	}
	if b.RunGate(HookSetStatus, EventArgs{Target: p, Source: source, Effect: sourceEffect, Status: id}) != Continue {
		return false
	}
	effect := b.Effect(KindStatus, id)
	prev, prevState := p.Status, p.StatusState
	p.Status = id
	p.StatusState = b.newEffectState(id, effect)
	p.StatusState.Pokemon = p
	p.StatusState.Source = source
	p.StatusState.Duration = effect.Duration
	args := EventArgs{Target: p, Source: source, Effect: sourceEffect}
	if effect.DurationCallback != nil {
		p.StatusState.Duration = effect.DurationCallback(&Context{Battle: b, EventArgs: args, State: p.StatusState})
	}
	if b.SingleGate(effect, p.StatusState, HookStart, args) != Continue {
		p.StatusState.removed = true
		p.Status, p.StatusState = prev, prevState
		return false
	}
	b.RunNotify(HookAfterSetStatus, EventArgs{Target: p, Source: source, Effect: sourceEffect, Status: id})
	return true
}

// TrySetStatus sets id only if the combatant has no major status.
func (p *Pokemon) TrySetStatus(id dex.ID, source *Pokemon, sourceEffect *Effect) bool {
	if p.Status != "" {
		return p.SetStatus(p.Status, source, sourceEffect)
	}
	return p.SetStatus(id, source, sourceEffect)
}

// CureStatus clears the major status and reports it.
func (p *Pokemon) CureStatus(silent bool) bool {
	if p.HP <= 0 || p.Status == "" {
		return false
	}
	if !silent {
		p.battle.Add(rules.EventCureStatus, p.FullName(), string(p.Status), "[msg]")
	}
	p.clearStatus()
	return true
}

func (p *Pokemon) clearStatus() {
	if p.StatusState != nil {
		p.StatusState.removed = true
	}
	p.Status = ""
	p.StatusState = nil
}

// SetItem gives the combatant item id.
func (p *Pokemon) SetItem(id dex.ID) {
	b := p.battle
	if p.ItemState != nil {
		p.ItemState.removed = true
	}
	p.Item = id
	if id == "" {
		p.ItemState = nil
		return
	}
	p.ItemState = b.newEffectState(id, b.Effect(KindItem, id))
	p.ItemState.Pokemon = p
}

// TakeItem removes the held item and returns it.
func (p *Pokemon) TakeItem(source *Pokemon) (dex.ID, bool) {
	if p.Item == "" || p.HP <= 0 && !p.faintQueued {
		return "", false
	}
	item := p.Item
	effect := p.battle.Effect(KindItem, item)
	if p.battle.SingleGate(effect, p.ItemState, HookTakeItem, EventArgs{Target: p, Source: source}) != Continue {
		return "", false
	}
	p.SetItem("")
	return item, true
}

// UseItem consumes the held item, announcing it. Berries are eaten.
func (p *Pokemon) UseItem() bool {
	if p.Item == "" || p.HP <= 0 {
		return false
	}
	b := p.battle
	item := p.Item
	effect := b.Effect(KindItem, item)
	if data, ok := b.dex.Item(string(item)); ok && data.IsBerry {
		b.Add(rules.EventEndItem, p.FullName(), effect.Name, "[eat]")
		p.AteBerry = true
	} else {
		b.Add(rules.EventEndItem, p.FullName(), effect.Name)
	}
	p.SetItem("")
	p.UsedItemThisTurn = true
	return true
}

// RunImmunity checks type immunity against an attacking type. When
// message is set, an immunity is announced.
func (p *Pokemon) RunImmunity(typ string, message bool) bool {
	if typ == "" || typ == dex.TypelessType {
		return true
	}
	if p.Fainted {
		return false
	}
	b := p.battle
	if b.dex.Types.Immune(typ, p.Types()) {
		if message {
			b.Add(rules.EventImmune, p.FullName())
		}
		return false
	}
	if typ == "Ground" {
		return p.groundImmunity(message)
	}
	return true
}

// IsGrounded reports whether Ground moves affect the combatant.
func (p *Pokemon) IsGrounded() bool {
	if p.HasType("Flying") {
		return false
	}
	return p.battle.RunGate(HookImmunity, EventArgs{Target: p, TypeName: "Ground"}) == Continue
}

// groundImmunity runs the Immunity event for Ground attacks, which
// abilities and items such as Levitate and Air Balloon answer.
func (p *Pokemon) groundImmunity(message bool) bool {
	out := p.battle.RunGate(HookImmunity, EventArgs{Target: p, TypeName: "Ground"})
	if out == Continue {
		return true
	}
	if message {
		if out == Null {
			p.battle.Add(rules.EventImmune, p.FullName(), "[from] ground immunity")
		} else if out == Fail {
			p.battle.Add(rules.EventImmune, p.FullName())
		}
	}
	return false
}

// RunStatusImmunity checks immunity to a status, volatile or weather id.
func (p *Pokemon) RunStatusImmunity(id string, message bool) bool {
	if p.Fainted {
		return false
	}
	if id == "" {
		return true
	}
	b := p.battle
	if b.dex.Types.Immune(id, p.Types()) {
		if message {
			b.Add(rules.EventImmune, p.FullName())
		}
		return false
	}
	out := b.RunGate(HookImmunity, EventArgs{Target: p, TypeName: id})
	if out != Continue {
		if message && out == Fail {
			b.Add(rules.EventImmune, p.FullName())
		}
		return false
	}
	return true
}

// damage lowers HP directly and queues a faint at zero. It returns the
// damage actually taken.
func (p *Pokemon) damage(amount int, source *Pokemon, effect *Effect) int {
	if p.HP <= 0 || amount <= 0 {
		return 0
	}
	p.HP -= amount
	if p.HP <= 0 {
		amount += p.HP
		p.faint(source, effect)
	}
	return amount
}

// heal raises HP up to the maximum and returns the amount healed.
func (p *Pokemon) heal(amount int) int {
	if p.HP <= 0 || amount <= 0 || p.HP >= p.MaxHP {
		return 0
	}
	p.HP += amount
	if p.HP > p.MaxHP {
		amount -= p.HP - p.MaxHP
		p.HP = p.MaxHP
	}
	return amount
}

// SetHP sets HP directly and returns the change.
func (p *Pokemon) SetHP(hp int) int {
	if p.HP <= 0 {
		return 0
	}
	hp = clampInt(hp, 1, p.MaxHP)
	delta := hp - p.HP
	p.HP = hp
	return delta
}

func (p *Pokemon) faint(source *Pokemon, effect *Effect) {
	if p.Fainted || p.faintQueued {
		return
	}
	p.HP = 0
	p.SwitchFlag = false
	p.faintQueued = true
	p.battle.faintQueue = append(p.battle.faintQueue, faintRecord{target: p, source: source, effect: effect})
}

// Faint queues the combatant to faint at the next faint check.
func (p *Pokemon) Faint(source *Pokemon, effect *Effect) {
	p.faint(source, effect)
}

// canAct reports whether the combatant may still take queued actions.
func (p *Pokemon) canAct() bool {
	return p.IsActive && !p.Fainted && p.HP > 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
