// Package sweep runs the fastpass simulation over a grid of arrival rates and
// allocation fractions, recommends an allocation per arrival rate, and
// persists result tables.
package sweep

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/fastpass-sim/sim"
)

// DefaultThresholdFactor scales the M/M/1 baseline 1/(μ−λ) into the service
// level the regular class must stay under.
const DefaultThresholdFactor = 2.5

// Spec is the top-level sweep configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	ArrivalRates    []float64 `yaml:"arrival_rates"`
	Fractions       []float64 `yaml:"fractions,omitempty"`
	FractionGrid    *GridSpec `yaml:"fraction_grid,omitempty"`
	ServiceRate     float64   `yaml:"service_rate"`
	Horizon         float64   `yaml:"horizon"`
	Warmup          float64   `yaml:"warmup"`
	Seed            int64     `yaml:"seed"`
	Replications    int       `yaml:"replications"`
	Policy          string    `yaml:"policy,omitempty"`
	ThresholdFactor float64   `yaml:"threshold_factor"`
}

// GridSpec describes count evenly spaced values from Start to Stop inclusive.
type GridSpec struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Count int     `yaml:"count"`
}

// Values expands the grid.
func (g GridSpec) Values() []float64 {
	if g.Count <= 0 {
		return nil
	}
	if g.Count == 1 {
		return []float64{g.Start}
	}
	vals := make([]float64, g.Count)
	step := (g.Stop - g.Start) / float64(g.Count-1)
	for i := range vals {
		vals[i] = g.Start + float64(i)*step
	}
	vals[g.Count-1] = g.Stop
	return vals
}

// defaultGrid is the fraction grid of the reference study: 20 points on [0, 0.95].
var defaultGrid = GridSpec{Start: 0, Stop: 0.95, Count: 20}

// DefaultSpec returns the reference study: λ ∈ {0.5, 0.95}, twenty fractions
// from 0 to 0.95, μ = 1, horizon 50000, warm-up 5000, seed 42.
func DefaultSpec() *Spec {
	return &Spec{
		ArrivalRates:    []float64{0.5, 0.95},
		ServiceRate:     sim.DefaultServiceRate,
		Horizon:         sim.DefaultHorizon,
		Warmup:          sim.DefaultWarmup,
		Seed:            sim.DefaultSeed,
		Replications:    1,
		ThresholdFactor: DefaultThresholdFactor,
	}
}

// LoadSpec reads a YAML sweep spec. Fields absent from the file keep the
// DefaultSpec values; unknown fields are errors.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep spec: %w", err)
	}
	spec := DefaultSpec()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(spec); err != nil {
		return nil, fmt.Errorf("parsing sweep spec: %w", err)
	}
	return spec, nil
}

// FractionValues returns the explicit fractions, else the expanded grid,
// else the default grid.
func (s *Spec) FractionValues() []float64 {
	if len(s.Fractions) > 0 {
		return s.Fractions
	}
	if s.FractionGrid != nil {
		return s.FractionGrid.Values()
	}
	return defaultGrid.Values()
}

// PointConfig builds the simulation config for one grid point and replication.
func (s *Spec) PointConfig(arrivalRate, fraction float64, replication int) sim.Config {
	return sim.Config{
		ArrivalRate:      arrivalRate,
		FastpassFraction: fraction,
		ServiceRate:      s.ServiceRate,
		Horizon:          s.Horizon,
		Warmup:           s.Warmup,
		Seed:             s.Seed + int64(replication),
		Policy:           s.Policy,
	}
}

// Validate checks the sweep and every simulation config it expands to.
func (s *Spec) Validate() error {
	if len(s.ArrivalRates) == 0 {
		return fmt.Errorf("at least one arrival rate required")
	}
	if len(s.Fractions) > 0 && s.FractionGrid != nil {
		return fmt.Errorf("fractions and fraction_grid are mutually exclusive")
	}
	if s.FractionGrid != nil {
		g := s.FractionGrid
		if g.Count < 1 {
			return fmt.Errorf("fraction_grid.count must be at least 1, got %d", g.Count)
		}
		if g.Start > g.Stop {
			return fmt.Errorf("fraction_grid.start %f exceeds stop %f", g.Start, g.Stop)
		}
	}
	if r, ok := firstDuplicate(s.ArrivalRates); ok {
		return fmt.Errorf("duplicate arrival rate %g", r)
	}
	if f, ok := firstDuplicate(s.FractionValues()); ok {
		return fmt.Errorf("duplicate fraction %g", f)
	}
	if s.Replications < 1 {
		return fmt.Errorf("replications must be at least 1, got %d", s.Replications)
	}
	if math.IsNaN(s.ThresholdFactor) || s.ThresholdFactor <= 0 {
		return fmt.Errorf("threshold_factor must be positive, got %f", s.ThresholdFactor)
	}
	for _, rate := range s.ArrivalRates {
		for _, f := range s.FractionValues() {
			if err := s.PointConfig(rate, f, 0).Validate(); err != nil {
				return fmt.Errorf("point (arrival_rate=%g, fraction=%g): %w", rate, f, err)
			}
		}
	}
	return nil
}

// Points returns the number of grid points.
func (s *Spec) Points() int {
	return len(s.ArrivalRates) * len(s.FractionValues())
}

// firstDuplicate returns the first value that appears more than once.
func firstDuplicate(values []float64) (float64, bool) {
	seen := make(map[float64]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v, true
		}
		seen[v] = true
	}
	return 0, false
}
