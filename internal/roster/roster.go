// Package roster holds the fixed municipality reference tables that anchor
// the analysis: census population and a reference center coordinate per
// city. The roster is injected into the pipeline at construction so tests
// can substitute fictional regions.
package roster

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Center is a municipality reference coordinate.
type Center struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Roster is the fixed set of municipalities that must appear in every
// pipeline output, with their reference data.
type Roster struct {
	populations map[string]int
	centers     map[string]Center
}

// New builds a validated Roster. Every city must carry both a population and
// a center coordinate.
func New(populations map[string]int, centers map[string]Center) (*Roster, error) {
	if len(populations) == 0 {
		return nil, eris.New("roster: at least one city is required")
	}
	for city, pop := range populations {
		if pop < 0 {
			return nil, eris.Errorf("roster: %s population %d must be >= 0", city, pop)
		}
		c, ok := centers[city]
		if !ok {
			return nil, eris.Errorf("roster: %s has a population but no center coordinate", city)
		}
		if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
			return nil, eris.Errorf("roster: %s center (%.4f, %.4f) out of range", city, c.Lat, c.Lng)
		}
	}
	for city := range centers {
		if _, ok := populations[city]; !ok {
			return nil, eris.Errorf("roster: %s has a center but no population", city)
		}
	}

	pops := make(map[string]int, len(populations))
	ctrs := make(map[string]Center, len(centers))
	for k, v := range populations {
		pops[k] = v
	}
	for k, v := range centers {
		ctrs[k] = v
	}
	return &Roster{populations: pops, centers: ctrs}, nil
}

// Size returns the number of roster municipalities.
func (r *Roster) Size() int {
	return len(r.populations)
}

// Cities returns the roster city names in stable alphabetical order.
func (r *Roster) Cities() []string {
	out := make([]string, 0, len(r.populations))
	for city := range r.populations {
		out = append(out, city)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether the city belongs to the roster.
func (r *Roster) Contains(city string) bool {
	_, ok := r.populations[city]
	return ok
}

// Population looks up the census population for a city.
func (r *Roster) Population(city string) (int, bool) {
	p, ok := r.populations[city]
	return p, ok
}

// Center looks up the reference coordinate for a city.
func (r *Roster) Center(city string) (Center, bool) {
	c, ok := r.centers[city]
	return c, ok
}

// rosterFile is the YAML on-disk representation.
type rosterFile struct {
	Cities []struct {
		Name       string `yaml:"name"`
		Population int    `yaml:"population"`
		Center     Center `yaml:"center"`
	} `yaml:"cities"`
}

// LoadYAML reads a roster definition from a YAML file.
func LoadYAML(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "roster: read %s", path)
	}

	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrapf(err, "roster: parse %s", path)
	}

	populations := make(map[string]int, len(rf.Cities))
	centers := make(map[string]Center, len(rf.Cities))
	for _, c := range rf.Cities {
		if c.Name == "" {
			return nil, eris.Errorf("roster: %s contains a city with no name", path)
		}
		if _, dup := populations[c.Name]; dup {
			return nil, eris.Errorf("roster: duplicate city %q in %s", c.Name, path)
		}
		populations[c.Name] = c.Population
		centers[c.Name] = c.Center
	}

	return New(populations, centers)
}
