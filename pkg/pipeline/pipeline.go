// Package pipeline runs collision counts and layout optimization for a
// session, with caching.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// logging and the saving of solutions behave the same everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	sess := session.New(ds, session.DefaultTTL)
//
//	count, hit, err := runner.Collisions(ctx, sess)
//
//	res, hit, err := runner.Optimize(ctx, sess, pipeline.Options{Seed: 42})
//	fmt.Println(res.InitialCollisions, "->", res.Collisions, res.Swaps)
//
// An optimizer result is cached under the dataset hash, the session's order
// and flips, and every option that affects the search. Runs without a fixed
// seed are random and are never cached.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/synvisio/pkg/anneal"
	"github.com/matzehuels/synvisio/pkg/cache"
	"github.com/matzehuels/synvisio/pkg/collision"
	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/perm"
)

// =============================================================================
// Options - Optimizer Configuration
// =============================================================================

// Options configures an optimizer run. Zero values select the defaults.
// This struct supports JSON serialization for API requests.
type Options struct {
	Temperature   float64 `json:"temperature,omitempty" toml:"temperature"`
	Ratio         float64 `json:"ratio,omitempty" toml:"ratio"`
	Auto          bool    `json:"auto,omitempty" toml:"auto"`
	Seed          uint64  `json:"seed,omitempty" toml:"seed"`
	FlipFrequency float64 `json:"flip_frequency,omitempty" toml:"flip_frequency"`
	KeepTogether  bool    `json:"keep_together,omitempty" toml:"keep_together"`
	Refresh       bool    `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-" toml:"-"`
	Progress func(anneal.Step) `json:"-" toml:"-"`
}

// SetDefaults fills runtime defaults.
func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option ranges. A temperature without a ratio (or the
// reverse) is rejected, as is combining an explicit schedule with Auto.
func (o *Options) Validate() error {
	explicit := o.Temperature != 0 || o.Ratio != 0
	if explicit {
		if o.Auto {
			return errors.New(errors.ErrCodeInvalidOptions, "auto cannot be combined with temperature or ratio")
		}
		if err := o.schedule().Validate(); err != nil {
			return err
		}
	}
	if o.FlipFrequency < 0 || o.FlipFrequency > 1 {
		return errors.New(errors.ErrCodeInvalidOptions, "flip_frequency must be in [0, 1], got %g", o.FlipFrequency)
	}
	return nil
}

// ValidateAndSetDefaults validates and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.SetDefaults()
	return nil
}

func (o *Options) schedule() anneal.Schedule {
	return anneal.Schedule{Temperature: o.Temperature, Ratio: o.Ratio}
}

// Schedule returns the cooling schedule for an input with the given number
// of collisions.
func (o *Options) Schedule(collisions int) anneal.Schedule {
	switch {
	case o.Auto:
		return anneal.AutoSchedule(collisions)
	case o.Temperature != 0 || o.Ratio != 0:
		return o.schedule()
	default:
		return anneal.DefaultSchedule(collisions)
	}
}

// KeyOpts returns cache key options for a run from the given order and flips.
func (o *Options) KeyOpts(order, flipped []string, gap float64) cache.OptimizeKeyOpts {
	return cache.OptimizeKeyOpts{
		Order:         order,
		Flipped:       flipped,
		Temperature:   o.Temperature,
		Ratio:         o.Ratio,
		Auto:          o.Auto,
		Seed:          o.Seed,
		FlipFrequency: o.FlipFrequency,
		KeepTogether:  o.KeepTogether,
		Gap:           gap,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of an optimizer run.
type Result struct {
	Dataset           string          `json:"dataset"`
	Order             []string        `json:"order"`
	Flipped           []string        `json:"flipped,omitempty"`
	Collisions        int             `json:"collisions"`
	InitialCollisions int             `json:"initial_collisions"`
	Iterations        int             `json:"iterations"`
	Schedule          anneal.Schedule `json:"schedule"`
	Swaps             []perm.Swap     `json:"swaps"`
	FlipChanges       []string        `json:"flip_changes,omitempty"`
	Duration          time.Duration   `json:"duration"`

	// Cancelled is set when the run was stopped early; the result then
	// holds the best layout found before cancellation.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Improved reports whether the run reduced the number of collisions.
func (r *Result) Improved() bool { return r.Collisions < r.InitialCollisions }

// CollisionResult is a collision count for one session state.
type CollisionResult struct {
	collision.Result
	Order   []string `json:"order"`
	Flipped []string `json:"flipped,omitempty"`
}
