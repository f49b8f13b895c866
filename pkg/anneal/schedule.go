package anneal

import "github.com/matzehuels/synvisio/pkg/errors"

// Default cooling parameters.
const (
	DefaultTemperature = 5000.0
	DefaultRatio       = 0.05

	// SlowTemperature and SlowRatio replace the defaults for inputs with at
	// most SlowThreshold collisions.
	SlowTemperature = 10000.0
	SlowRatio       = 0.003
	SlowThreshold   = 100
)

// Schedule is a geometric cooling schedule. The search runs while the
// temperature is above 1, multiplying it by 1-Ratio after each step.
type Schedule struct {
	Temperature float64 `json:"temperature" toml:"temperature"`
	Ratio       float64 `json:"ratio" toml:"ratio"`
}

// IsZero reports whether the schedule is unset.
func (s Schedule) IsZero() bool { return s.Temperature == 0 && s.Ratio == 0 }

// Validate checks that the schedule terminates.
func (s Schedule) Validate() error {
	if s.Temperature <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "temperature must be positive, got %g", s.Temperature)
	}
	if s.Ratio <= 0 || s.Ratio >= 1 {
		return errors.New(errors.ErrCodeInvalidOptions, "ratio must be in (0, 1), got %g", s.Ratio)
	}
	return nil
}

// Iterations returns the number of steps the schedule runs for when no
// arrangement without collisions is found along the way.
func (s Schedule) Iterations() int {
	if s.Validate() != nil {
		return 0
	}
	n := 0
	for t := s.Temperature; t > 1; t *= 1 - s.Ratio {
		n++
	}
	return n
}

// DefaultSchedule returns the schedule used when none is configured.
func DefaultSchedule(energy int) Schedule {
	if energy <= SlowThreshold {
		return Schedule{Temperature: SlowTemperature, Ratio: SlowRatio}
	}
	return Schedule{Temperature: DefaultTemperature, Ratio: DefaultRatio}
}

// AutoSchedule picks a schedule from a preset table keyed by the initial
// collision count: long, fine-grained searches for nearly untangled plots and
// fast cooling for very dense ones.
func AutoSchedule(energy int) Schedule {
	switch {
	case energy <= 10:
		return Schedule{Temperature: 200000, Ratio: 0.003}
	case energy <= 100:
		return Schedule{Temperature: 10000, Ratio: 0.003}
	case energy <= 500:
		return Schedule{Temperature: 6000, Ratio: 0.006}
	case energy <= 1500:
		return Schedule{Temperature: 40000, Ratio: 0.02}
	case energy >= 75000:
		return Schedule{Temperature: 10000, Ratio: 0.08}
	default:
		return Schedule{Temperature: DefaultTemperature, Ratio: DefaultRatio}
	}
}
