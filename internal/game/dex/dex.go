// Package dex holds the static data tables a battle reads: species,
// moves, items, abilities, natures and the type chart.
package dex

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultData []byte

// Dex is an immutable set of data tables.
type Dex struct {
	Types     *TypeChart
	Species   map[ID]*Species
	Moves     map[ID]*MoveData
	Items     map[ID]*Item
	Abilities map[ID]*Ability
	Natures   map[ID]*Nature
}

type dexFile struct {
	Types     map[string]map[string]int `yaml:"types"`
	Natures   map[string]*Nature        `yaml:"natures"`
	Species   map[string]*Species       `yaml:"species"`
	Moves     map[string]*MoveData      `yaml:"moves"`
	Items     map[string]*Item          `yaml:"items"`
	Abilities map[string]*Ability       `yaml:"abilities"`
}

var loadDefault = sync.OnceValues(func() (*Dex, error) {
	return Parse(defaultData)
})

// Default returns the embedded data set. The result is shared and must
// not be modified.
func Default() (*Dex, error) {
	return loadDefault()
}

// LoadFile reads a data set from a YAML file.
func LoadFile(path string) (*Dex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dex %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a data set from r.
func Load(r io.Reader) (*Dex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dex: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML data set.
func Parse(data []byte) (*Dex, error) {
	var file dexFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode dex: %w", err)
	}
	if len(file.Types) == 0 {
		return nil, fmt.Errorf("decode dex: no types defined")
	}

	d := &Dex{
		Types:     NewTypeChart(file.Types),
		Species:   make(map[ID]*Species, len(file.Species)),
		Moves:     make(map[ID]*MoveData, len(file.Moves)),
		Items:     make(map[ID]*Item, len(file.Items)),
		Abilities: make(map[ID]*Ability, len(file.Abilities)),
		Natures:   make(map[ID]*Nature, len(file.Natures)),
	}
	for key, n := range file.Natures {
		d.Natures[ToID(key)] = n
	}
	for key, s := range file.Species {
		s.ID = ToID(key)
		for _, t := range s.Types {
			if !d.Types.Has(t) {
				return nil, fmt.Errorf("species %s: unknown type %q", s.ID, t)
			}
		}
		d.Species[s.ID] = s
	}
	for key, m := range file.Moves {
		m.ID = ToID(key)
		if m.Type != TypelessType && !d.Types.Has(m.Type) {
			return nil, fmt.Errorf("move %s: unknown type %q", m.ID, m.Type)
		}
		if m.Target == "" {
			m.Target = TargetNormal
		}
		switch m.Category {
		case CategoryPhysical, CategorySpecial, CategoryStatus:
		default:
			return nil, fmt.Errorf("move %s: unknown category %q", m.ID, m.Category)
		}
		d.Moves[m.ID] = m
	}
	for key, it := range file.Items {
		it.ID = ToID(key)
		d.Items[it.ID] = it
	}
	for key, a := range file.Abilities {
		a.ID = ToID(key)
		d.Abilities[a.ID] = a
	}
	return d, nil
}

// Move looks up a move by name or id.
func (d *Dex) Move(name string) (*MoveData, bool) {
	m, ok := d.Moves[ToID(name)]
	return m, ok
}

// SpeciesByName looks up a species by name or id.
func (d *Dex) SpeciesByName(name string) (*Species, bool) {
	s, ok := d.Species[ToID(name)]
	return s, ok
}

// Item looks up an item by name or id.
func (d *Dex) Item(name string) (*Item, bool) {
	it, ok := d.Items[ToID(name)]
	return it, ok
}

// Ability looks up an ability by name or id.
func (d *Dex) Ability(name string) (*Ability, bool) {
	a, ok := d.Abilities[ToID(name)]
	return a, ok
}

// Nature looks up a nature by name. Unknown natures are neutral.
func (d *Dex) Nature(name string) *Nature {
	return d.Natures[ToID(name)]
}

// SpeciesIDs returns every species id in sorted order.
func (d *Dex) SpeciesIDs() []ID {
	ids := make([]ID, 0, len(d.Species))
	for id := range d.Species {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
