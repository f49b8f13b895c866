package anneal

import (
	"context"
	"maps"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/synvisio/pkg/collision"
	"github.com/matzehuels/synvisio/pkg/genome"
)

// Step describes one iteration of the search. It is passed to
// [Optimizer.Progress] after the step's acceptance decision.
type Step struct {
	Iteration   int
	Total       int
	Temperature float64
	Energy      int // energy of the current solution after the step
	Best        int
	Accepted    bool
	Flip        bool
}

// Result is the outcome of [Optimizer.Optimize].
type Result struct {
	Arrangement   genome.Arrangement `json:"arrangement"`
	Flipped       genome.Flipped     `json:"flipped,omitempty"`
	Energy        int                `json:"energy"`
	InitialEnergy int                `json:"initial_energy"`
	Iterations    int                `json:"iterations"`
	Schedule      Schedule           `json:"schedule"`
	Duration      time.Duration      `json:"duration"`
}

// Improved reports whether the search found a better layout than the input.
func (r *Result) Improved() bool { return r.Energy < r.InitialEnergy }

// Optimizer searches for a chromosome order with fewer chord collisions.
// The zero value is ready to use.
type Optimizer struct {
	// Schedule sets the cooling schedule. The zero value selects
	// [DefaultSchedule] for the input's initial energy.
	Schedule Schedule

	// ChooseSchedule, if set, picks the schedule from the input's initial
	// energy when Schedule is zero, replacing [DefaultSchedule].
	ChooseSchedule func(energy int) Schedule

	// Layout re-derives angles for every swapped neighbour. The input
	// arrangement keeps the angles it was given. Defaults to
	// [genome.GapLayout] with Gap.
	Layout genome.LayoutFunc

	// Gap is the angular gap used by the default layout. Zero means
	// [genome.DefaultGap].
	Gap float64

	// Seed fixes the random source. Zero seeds from the clock.
	Seed uint64

	// FlipFrequency is the probability in [0, 1] that a step flips a
	// chromosome instead of swapping two.
	FlipFrequency float64

	// Flipped is the orientation state the search starts from. Chords passed
	// to Optimize carry unflipped positions.
	Flipped genome.Flipped

	// KeepTogether restricts swaps to chromosomes sharing a letter prefix
	// (the same species) whenever the first pick has a sibling.
	KeepTogether bool

	// Progress, if set, is called after every step.
	Progress func(Step)

	Logger *log.Logger
}

// Optimize returns the best arrangement found for the chords. The input must
// already be laid out; its energy is counted on the angles it carries. The
// input is never modified. An empty chord list, or an input without
// collisions, is returned as is without searching.
//
// The context is checked between steps. On cancellation the best
// arrangement found so far is returned together with ctx.Err().
func (o *Optimizer) Optimize(ctx context.Context, arr genome.Arrangement, chords genome.Chords) (*Result, error) {
	start := time.Now()
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}
	layout := o.layout()
	lengths := arr.Lengths()
	ws := collision.NewWorkspace(len(chords))

	energy := func(a genome.Arrangement, f genome.Flipped) int {
		return ws.Count(a, chords.ApplyFlips(lengths, f), 0)
	}

	current := arr.Clone()
	flipped := maps.Clone(o.Flipped)
	currentEnergy := energy(current, flipped)

	res := &Result{
		Arrangement:   current,
		Flipped:       flipped,
		Energy:        currentEnergy,
		InitialEnergy: currentEnergy,
	}
	if len(chords) == 0 || currentEnergy == 0 || len(arr) == 0 {
		res.Duration = time.Since(start)
		return res, nil
	}

	sched := o.Schedule
	if sched.IsZero() {
		if o.ChooseSchedule != nil {
			sched = o.ChooseSchedule(currentEnergy)
		} else {
			sched = DefaultSchedule(currentEnergy)
		}
	}
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	res.Schedule = sched
	total := sched.Iterations()

	rng := o.rng()
	movable := withChords(current, chords)
	logger.Debug("annealing",
		"chromosomes", len(current),
		"chords", len(chords),
		"energy", currentEnergy,
		"temperature", sched.Temperature,
		"ratio", sched.Ratio,
		"iterations", total)

	best, bestFlipped, bestEnergy := current, flipped, currentEnergy
	temperature := sched.Temperature
	var err error
	for temperature > 1 {
		if err = ctx.Err(); err != nil {
			break
		}
		res.Iterations++

		next, nextFlipped := current, flipped
		flip := o.FlipFrequency > 0 && len(movable) > 0 && rng.Float64() < o.FlipFrequency
		if flip {
			nextFlipped = flipped.Toggle(movable[rng.IntN(len(movable))])
		} else {
			i, j := o.pick(rng, current)
			next = layout(current.Swap(i, j))
		}

		nextEnergy := energy(next, nextFlipped)
		accepted := nextEnergy < currentEnergy ||
			math.Exp(float64(currentEnergy-nextEnergy)/temperature) > rng.Float64()
		if accepted {
			current, flipped, currentEnergy = next, nextFlipped, nextEnergy
			if currentEnergy < bestEnergy {
				best, bestFlipped, bestEnergy = current, flipped, currentEnergy
			}
		}

		if o.Progress != nil {
			o.Progress(Step{
				Iteration:   res.Iterations,
				Total:       total,
				Temperature: temperature,
				Energy:      currentEnergy,
				Best:        bestEnergy,
				Accepted:    accepted,
				Flip:        flip,
			})
		}
		if bestEnergy == 0 {
			break
		}
		temperature *= 1 - sched.Ratio
	}

	if err == nil && len(bestFlipped) > 0 && o.FlipFrequency > 0 {
		bestFlipped, bestEnergy = pruneFlips(best, bestFlipped, bestEnergy, o.Flipped, energy)
	}

	res.Arrangement = best
	res.Flipped = bestFlipped
	res.Energy = bestEnergy
	res.Duration = time.Since(start)
	logger.Debug("annealing finished",
		"energy", res.Energy,
		"initial", res.InitialEnergy,
		"iterations", res.Iterations,
		"duration", res.Duration)
	return res, err
}

func (o *Optimizer) layout() genome.LayoutFunc {
	if o.Layout != nil {
		return o.Layout
	}
	gap := o.Gap
	if gap == 0 {
		gap = genome.DefaultGap
	}
	return genome.GapLayout(gap)
}

func (o *Optimizer) rng() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// pick returns the two positions to swap. Without KeepTogether both are
// drawn independently and may coincide. With KeepTogether the second
// position is drawn among the other chromosomes sharing the first one's
// prefix, if there are any.
func (o *Optimizer) pick(rng *rand.Rand, arr genome.Arrangement) (int, int) {
	i := rng.IntN(len(arr))
	if !o.KeepTogether {
		return i, rng.IntN(len(arr))
	}
	prefix := genome.Prefix(arr[i].ID)
	var siblings []int
	for j, c := range arr {
		if j != i && genome.Prefix(c.ID) == prefix {
			siblings = append(siblings, j)
		}
	}
	if len(siblings) == 0 {
		return i, rng.IntN(len(arr))
	}
	return i, siblings[rng.IntN(len(siblings))]
}

// withChords returns the ids of chromosomes that at least one chord touches.
// Flipping any other chromosome cannot change the energy.
func withChords(arr genome.Arrangement, chords genome.Chords) []string {
	used := make(map[string]bool)
	for _, id := range chords.ChromosomeIDs() {
		used[id] = true
	}
	var out []string
	for _, c := range arr {
		if used[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// pruneFlips drops flips introduced by the search one at a time, keeping the
// removal whenever the energy does not get worse. Chromosomes flipped before
// the search started are left alone.
func pruneFlips(arr genome.Arrangement, flipped genome.Flipped, best int, initial genome.Flipped, energy func(genome.Arrangement, genome.Flipped) int) (genome.Flipped, int) {
	for _, id := range flipped.IDs() {
		if initial[id] {
			continue
		}
		candidate := flipped.Toggle(id)
		if e := energy(arr, candidate); e <= best {
			flipped, best = candidate, e
		}
	}
	return flipped, best
}
