package dex

// Category is the damage class of a move.
type Category string

const (
	CategoryPhysical Category = "Physical"
	CategorySpecial  Category = "Special"
	CategoryStatus   Category = "Status"
)

// MoveTarget describes which combatants a move may affect.
type MoveTarget string

const (
	TargetNormal             MoveTarget = "normal"
	TargetSelf               MoveTarget = "self"
	TargetAny                MoveTarget = "any"
	TargetAdjacentAlly       MoveTarget = "adjacentAlly"
	TargetAdjacentAllyOrSelf MoveTarget = "adjacentAllyOrSelf"
	TargetAdjacentFoe        MoveTarget = "adjacentFoe"
	TargetAllAdjacent        MoveTarget = "allAdjacent"
	TargetAllAdjacentFoes    MoveTarget = "allAdjacentFoes"
	TargetAllySide           MoveTarget = "allySide"
	TargetFoeSide            MoveTarget = "foeSide"
	TargetAll                MoveTarget = "all"
	TargetRandomNormal       MoveTarget = "randomNormal"
	TargetScripted           MoveTarget = "scripted"
)

// IsSpread reports whether the target pattern can hit several combatants
// at once.
func (t MoveTarget) IsSpread() bool {
	return t == TargetAllAdjacent || t == TargetAllAdjacentFoes
}

// IsFieldTarget reports whether the move targets a side or the field
// rather than combatants.
func (t MoveTarget) IsFieldTarget() bool {
	return t == TargetAllySide || t == TargetFoeSide || t == TargetAll
}

// NeedsTarget reports whether a target location is chosen for the move.
func (t MoveTarget) NeedsTarget() bool {
	switch t {
	case TargetNormal, TargetAny, TargetAdjacentAlly, TargetAdjacentAllyOrSelf, TargetAdjacentFoe:
		return true
	}
	return false
}

// Move flags.
const (
	FlagContact  = "contact"
	FlagProtect  = "protect"
	FlagMirror   = "mirror"
	FlagDance    = "dance"
	FlagSound    = "sound"
	FlagPunch    = "punch"
	FlagPowder   = "powder"
	FlagBite     = "bite"
	FlagHeal     = "heal"
	FlagDefrost  = "defrost"
	FlagRecharge = "recharge"
)

// Fraction is a numerator/denominator pair used for recoil, drain and heal.
type Fraction [2]int

// IsZero reports whether the fraction is unset.
func (f Fraction) IsZero() bool {
	return f[0] == 0 || f[1] == 0
}

// Of applies the fraction to v with rounding to nearest.
func (f Fraction) Of(v int) int {
	if f.IsZero() {
		return 0
	}
	return (v*f[0] + f[1]/2) / f[1]
}

// SelfEffect is applied to the user of a move.
type SelfEffect struct {
	// Chance is the percent chance that Boosts apply; 0 means always.
	Chance         int        `yaml:"chance"`
	Boosts         BoostTable `yaml:"boosts"`
	VolatileStatus ID         `yaml:"volatileStatus"`
}

// Secondary is a chance-based effect applied after a move hits.
type Secondary struct {
	Chance         int         `yaml:"chance"`
	Boosts         BoostTable  `yaml:"boosts"`
	Status         ID          `yaml:"status"`
	VolatileStatus ID          `yaml:"volatileStatus"`
	Self           *SelfEffect `yaml:"self"`
}

// MoveData is the canonical, read-only definition of a move.
type MoveData struct {
	ID                ID          `yaml:"-"`
	Num               int         `yaml:"num"`
	Name              string      `yaml:"name"`
	Type              string      `yaml:"type"`
	Category          Category    `yaml:"category"`
	BasePower         int         `yaml:"basePower"`
	Accuracy          int         `yaml:"accuracy"`       // 0 means the move cannot miss
	Priority          int         `yaml:"priority"`
	PP                int         `yaml:"pp"`
	Target            MoveTarget  `yaml:"target"`
	Flags             []string    `yaml:"flags"`
	CritRatio         int         `yaml:"critRatio"`
	WillCrit          *bool       `yaml:"willCrit"`
	MultiHit          []int       `yaml:"multihit"`
	Recoil            Fraction    `yaml:"recoil"`
	Drain             Fraction    `yaml:"drain"`
	Heal              Fraction    `yaml:"heal"`
	Boosts            BoostTable  `yaml:"boosts"`
	Status            ID          `yaml:"status"`
	VolatileStatus    ID          `yaml:"volatileStatus"`
	SideCondition     ID          `yaml:"sideCondition"`
	Weather           ID          `yaml:"weather"`
	PseudoWeather     ID          `yaml:"pseudoWeather"`
	Self              *SelfEffect `yaml:"self"`
	SelfSwitch        bool        `yaml:"selfSwitch"`
	ForceSwitch       bool        `yaml:"forceSwitch"`
	Secondaries       []Secondary `yaml:"secondaries"`
	OHKO              bool        `yaml:"ohko"`
	Damage            int         `yaml:"damage"`
	LevelDamage       bool        `yaml:"levelDamage"`
	IgnoreImmunity    *bool       `yaml:"ignoreImmunity"` // unset: only status moves ignore immunity
	IgnoreEvasion     bool        `yaml:"ignoreEvasion"`
	IgnoreAccuracy    bool        `yaml:"ignoreAccuracy"`
	IgnoreDefensive   bool        `yaml:"ignoreDefensive"`
	IgnoreOffensive   bool        `yaml:"ignoreOffensive"`
	StallingMove      bool        `yaml:"stallingMove"`
	SleepUsable       bool        `yaml:"sleepUsable"`
	NoPPBoosts        bool        `yaml:"noPPBoosts"`
	ForceSTAB         bool        `yaml:"forceSTAB"`
	DefensiveCategory Category    `yaml:"defensiveCategory"`
}

// HasFlag reports whether the move carries flag.
func (m *MoveData) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// IgnoresImmunity reports whether type immunity is skipped for the move.
func (m *MoveData) IgnoresImmunity() bool {
	if m.IgnoreImmunity != nil {
		return *m.IgnoreImmunity
	}
	return m.Category == CategoryStatus
}

// MaxPP returns the PP of the move with full PP ups applied.
func (m *MoveData) MaxPP() int {
	if m.NoPPBoosts {
		return m.PP
	}
	return m.PP * 8 / 5
}
