package dex

// StatID names one of the six permanent stats.
type StatID string

const (
	StatHP  StatID = "hp"
	StatAtk StatID = "atk"
	StatDef StatID = "def"
	StatSpA StatID = "spa"
	StatSpD StatID = "spd"
	StatSpe StatID = "spe"
)

// BattleStats lists the stats that can be boosted and modified in battle,
// in the order they are reported.
var BattleStats = []StatID{StatAtk, StatDef, StatSpA, StatSpD, StatSpe}

// StatsTable holds a value for each permanent stat.
type StatsTable struct {
	HP  int `yaml:"hp"`
	Atk int `yaml:"atk"`
	Def int `yaml:"def"`
	SpA int `yaml:"spa"`
	SpD int `yaml:"spd"`
	Spe int `yaml:"spe"`
}

// Get returns the value for stat.
func (s StatsTable) Get(stat StatID) int {
	switch stat {
	case StatHP:
		return s.HP
	case StatAtk:
		return s.Atk
	case StatDef:
		return s.Def
	case StatSpA:
		return s.SpA
	case StatSpD:
		return s.SpD
	case StatSpe:
		return s.Spe
	}
	return 0
}

// Set assigns value to stat.
func (s *StatsTable) Set(stat StatID, value int) {
	switch stat {
	case StatHP:
		s.HP = value
	case StatAtk:
		s.Atk = value
	case StatDef:
		s.Def = value
	case StatSpA:
		s.SpA = value
	case StatSpD:
		s.SpD = value
	case StatSpe:
		s.Spe = value
	}
}

// BoostID names a stat that carries a boost stage.
type BoostID string

const (
	BoostAtk      BoostID = "atk"
	BoostDef      BoostID = "def"
	BoostSpA      BoostID = "spa"
	BoostSpD      BoostID = "spd"
	BoostSpe      BoostID = "spe"
	BoostAccuracy BoostID = "accuracy"
	BoostEvasion  BoostID = "evasion"
)

// BoostOrder is the order boosts are applied and reported in.
var BoostOrder = []BoostID{BoostAtk, BoostDef, BoostSpA, BoostSpD, BoostSpe, BoostAccuracy, BoostEvasion}

// BoostTable maps boost ids to stage deltas or stages.
type BoostTable map[BoostID]int

// Clone returns a copy of the table.
func (b BoostTable) Clone() BoostTable {
	if b == nil {
		return nil
	}
	out := make(BoostTable, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Nature raises one stat by 10% and lowers another by 10%.
type Nature struct {
	Name  string `yaml:"name"`
	Plus  StatID `yaml:"plus"`
	Minus StatID `yaml:"minus"`
}

// CalcStat computes a stored stat from its base value.
func CalcStat(stat StatID, base, iv, ev, level int, nature *Nature) int {
	core := (2*base + iv + ev/4) * level / 100
	if stat == StatHP {
		if base == 1 {
			return 1
		}
		return core + level + 10
	}
	value := core + 5
	if nature != nil {
		if nature.Plus == stat && nature.Minus != stat {
			value = value * 110 / 100
		} else if nature.Minus == stat && nature.Plus != stat {
			value = value * 90 / 100
		}
	}
	return value
}
