package dex

// Species is the static description of a creature.
type Species struct {
	ID        ID         `yaml:"-"`
	Num       int        `yaml:"num"`
	Name      string     `yaml:"name"`
	Types     []string   `yaml:"types"`
	BaseStats StatsTable `yaml:"baseStats"`
	Abilities []string   `yaml:"abilities"`
	WeightKg  float64    `yaml:"weightkg"`
}

// HasType reports whether the species has typ.
func (s *Species) HasType(typ string) bool {
	for _, t := range s.Types {
		if t == typ {
			return true
		}
	}
	return false
}

// Item is a held item entry.
type Item struct {
	ID       ID     `yaml:"-"`
	Name     string `yaml:"name"`
	IsChoice bool   `yaml:"isChoice"`
	IsBerry  bool   `yaml:"isBerry"`
}

// Ability is an ability entry.
type Ability struct {
	ID   ID     `yaml:"-"`
	Name string `yaml:"name"`
}
