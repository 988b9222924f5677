package sweep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/defense-sim/defense-sim/sim"
)

// ConfigurationError reports a malformed or out-of-range sweep spec. It
// is the only error class that aborts a sweep, and it is raised before
// any trial executes.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Axis is one ordered parameter dimension of a grid.
type Axis struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values"`
}

// Grid sweeps one defense over the Cartesian product of its axes.
type Grid struct {
	Defense string `yaml:"defense"`
	Axes    []Axis `yaml:"axes"`
}

// SweepSpec is the sole configuration surface the engine consumes,
// loaded from YAML.
type SweepSpec struct {
	Grids         []Grid  `yaml:"grids"`
	Seeds         int     `yaml:"seeds"`
	Duration      float64 `yaml:"duration"`       // simulated seconds per trial
	AttackerModel string  `yaml:"attacker_model"` // default "baseline"
	Workers       int     `yaml:"workers,omitempty"`
}

// LoadSweepSpec reads and validates a sweep spec from a YAML file.
func LoadSweepSpec(path string) (*SweepSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sweep spec: %w", err)
	}
	var spec SweepSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse sweep spec %s: %w", path, err)
	}
	if spec.AttackerModel == "" {
		spec.AttackerModel = sim.AttackerBaseline
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the whole spec against the defense schemas. Every
// enumerated parameter point is validated, so a single out-of-range axis
// value fails the sweep before any trial runs.
func (s *SweepSpec) Validate() error {
	if len(s.Grids) == 0 {
		return &ConfigurationError{Field: "grids", Reason: "at least one grid is required"}
	}
	if s.Seeds < 1 {
		return &ConfigurationError{Field: "seeds", Reason: fmt.Sprintf("must be >= 1, got %d", s.Seeds)}
	}
	if s.Duration <= 0 {
		return &ConfigurationError{Field: "duration", Reason: fmt.Sprintf("must be positive, got %v", s.Duration)}
	}
	switch s.AttackerModel {
	case sim.AttackerBaseline, sim.AttackerCredStuffing:
	default:
		return &ConfigurationError{Field: "attacker_model", Reason: fmt.Sprintf("unknown model %q", s.AttackerModel)}
	}
	if s.Workers < 0 {
		return &ConfigurationError{Field: "workers", Reason: fmt.Sprintf("must be >= 0, got %d", s.Workers)}
	}

	for gi, grid := range s.Grids {
		field := fmt.Sprintf("grids[%d]", gi)
		if len(grid.Axes) == 0 {
			return &ConfigurationError{Field: field + ".axes", Reason: "at least one axis is required"}
		}
		seen := make(map[string]bool)
		for _, axis := range grid.Axes {
			if axis.Name == "" {
				return &ConfigurationError{Field: field + ".axes", Reason: "axis name must not be empty"}
			}
			if seen[axis.Name] {
				return &ConfigurationError{Field: field + ".axes", Reason: fmt.Sprintf("duplicate axis %q", axis.Name)}
			}
			seen[axis.Name] = true
			if len(axis.Values) == 0 {
				return &ConfigurationError{Field: field + ".axes", Reason: fmt.Sprintf("axis %q has no values", axis.Name)}
			}
		}
		for _, point := range grid.points() {
			if err := sim.ValidateDefenseParams(grid.Defense, point); err != nil {
				return &ConfigurationError{Field: field, Reason: err.Error()}
			}
		}
	}
	return nil
}

// points enumerates the grid's Cartesian product lexicographically over
// the declared axis order (last axis varies fastest). The order is
// deterministic so trial tables are stable and diffable across runs.
func (g *Grid) points() []map[string]float64 {
	total := 1
	for _, axis := range g.Axes {
		total *= len(axis.Values)
	}
	points := make([]map[string]float64, 0, total)

	indices := make([]int, len(g.Axes))
	for {
		point := make(map[string]float64, len(g.Axes))
		for i, axis := range g.Axes {
			point[axis.Name] = axis.Values[indices[i]]
		}
		points = append(points, point)

		// Odometer increment, rightmost axis fastest.
		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(g.Axes[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return points
		}
	}
}

// Enumerate expands the spec into the complete ordered trial list: for
// each grid in declared order, each parameter point in lexicographic
// order, each seed 0..Seeds-1.
func (s *SweepSpec) Enumerate() []sim.TrialConfig {
	var configs []sim.TrialConfig
	for _, grid := range s.Grids {
		for _, point := range grid.points() {
			for seed := 0; seed < s.Seeds; seed++ {
				configs = append(configs, sim.TrialConfig{
					Defense:       grid.Defense,
					Params:        point,
					Seed:          int64(seed),
					Duration:      s.Duration,
					AttackerModel: s.AttackerModel,
				})
			}
		}
	}
	return configs
}

// NumTrials returns the exact number of trials the spec will produce.
func (s *SweepSpec) NumTrials() int {
	total := 0
	for _, grid := range s.Grids {
		n := 1
		for _, axis := range grid.Axes {
			n *= len(axis.Values)
		}
		total += n * s.Seeds
	}
	return total
}
