// Package benchmark compares bias scores against static per-sector
// statistics.
package benchmark

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/sectors.yaml
var defaultSectorsYAML []byte

// Sector holds the benchmark statistics for one industry sector. Score
// fields are bias magnitudes on the raw -100..100 scale.
type Sector struct {
	ID                string  `yaml:"id" json:"id"`
	Name              string  `yaml:"name" json:"name"`
	AverageBias       float64 `yaml:"average_bias" json:"average_bias"`
	NeutralThreshold  float64 `yaml:"neutral_threshold" json:"neutral_threshold"`
	BestPractice      float64 `yaml:"best_practice" json:"best_practice"`
	SampleSize        int     `yaml:"sample_size" json:"sample_size"`
	MasculineTendency float64 `yaml:"masculine_tendency" json:"masculine_tendency"`
	FeminineTendency  float64 `yaml:"feminine_tendency" json:"feminine_tendency"`
	Description       string  `yaml:"description" json:"description"`
	// StdDev of the sector score distribution. Derived from the spread
	// between average and best practice when the table omits it.
	StdDev float64 `yaml:"std_dev,omitempty" json:"std_dev"`
}

// Comparison relates one analysis to a sector distribution.
type Comparison struct {
	Sector string `json:"sector"`
	Name   string `json:"name"`
	// Percentile is the share of sector advertisements with bias
	// magnitude at or below this score, in [0, 100]. Lower is better.
	Percentile  float64 `json:"percentile"`
	AverageBias float64 `json:"average_bias"`
	// Delta is score magnitude minus the sector average. Negative means
	// less biased than typical for the sector.
	Delta float64 `json:"delta"`
	// Rating bands the score against sector thresholds.
	Rating Rating `json:"rating"`
}

// Rating bands a score magnitude against sector thresholds.
type Rating string

const (
	RatingExcellent    Rating = "excellent"
	RatingGood         Rating = "good"
	RatingAverage      Rating = "industry_average"
	RatingAboveAverage Rating = "above_average"
	RatingHigh         Rating = "high"
)

// Table is an immutable, ordered set of sector benchmarks.
type Table struct {
	sectors []Sector
	byID    map[string]int
}

type sectorsFile struct {
	Version int      `yaml:"version"`
	Sectors []Sector `yaml:"sectors"`
}

// Default returns the built-in benchmark table.
func Default() (*Table, error) {
	return parse(defaultSectorsYAML)
}

// LoadFile returns a benchmark table read from path.
func LoadFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read benchmarks: %w", err)
	}
	t, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("benchmarks %s: %w", path, err)
	}
	return t, nil
}

func parse(raw []byte) (*Table, error) {
	var f sectorsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse benchmarks: %w", err)
	}
	if len(f.Sectors) == 0 {
		return nil, fmt.Errorf("benchmark table is empty")
	}
	t := &Table{
		sectors: make([]Sector, 0, len(f.Sectors)),
		byID:    make(map[string]int, len(f.Sectors)),
	}
	for _, s := range f.Sectors {
		s.ID = strings.ToLower(strings.TrimSpace(s.ID))
		if s.ID == "" {
			return nil, fmt.Errorf("sector with empty id")
		}
		if _, dup := t.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate sector %q", s.ID)
		}
		if s.AverageBias <= 0 {
			return nil, fmt.Errorf("sector %q: average_bias must be positive", s.ID)
		}
		if s.StdDev <= 0 {
			s.StdDev = s.AverageBias - s.BestPractice
			if s.StdDev < 1 {
				s.StdDev = 1
			}
		}
		t.byID[s.ID] = len(t.sectors)
		t.sectors = append(t.sectors, s)
	}
	return t, nil
}

// Sectors returns all sectors in table order.
func (t *Table) Sectors() []Sector {
	out := make([]Sector, len(t.sectors))
	copy(out, t.sectors)
	return out
}

// Lookup finds a sector by id, case-insensitively. The second return is
// false when the sector is unknown.
func (t *Table) Lookup(id string) (Sector, bool) {
	i, ok := t.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Sector{}, false
	}
	return t.sectors[i], true
}

// Compare relates a raw score to the sector distribution. The score may
// be signed; comparison operates on its magnitude. The second return is
// false when the sector is unknown, which is not an error.
func (t *Table) Compare(rawScore float64, sectorID string) (Comparison, bool) {
	s, ok := t.Lookup(sectorID)
	if !ok {
		return Comparison{}, false
	}
	mag := math.Abs(rawScore)
	return Comparison{
		Sector:      s.ID,
		Name:        s.Name,
		Percentile:  normalCDF(mag, s.AverageBias, s.StdDev) * 100,
		AverageBias: s.AverageBias,
		Delta:       mag - s.AverageBias,
		Rating:      s.Rate(rawScore),
	}, true
}

// Rate bands a raw score against the sector's thresholds.
func (s Sector) Rate(rawScore float64) Rating {
	mag := math.Abs(rawScore)
	switch {
	case mag <= s.BestPractice:
		return RatingExcellent
	case mag <= s.NeutralThreshold:
		return RatingGood
	case mag <= s.AverageBias:
		return RatingAverage
	case mag <= s.AverageBias*1.5:
		return RatingAboveAverage
	default:
		return RatingHigh
	}
}

func normalCDF(x, mean, std float64) float64 {
	return 0.5 * (1 + math.Erf((x-mean)/(std*math.Sqrt2)))
}
