// Package anneal reorders the chromosomes of a circular genome plot to reduce
// the number of crossing chords, using simulated annealing.
//
// # Overview
//
// The energy of an arrangement is its collision count as computed by
// [collision.Count]. Starting from the caller's arrangement, the [Optimizer]
// repeatedly proposes a neighbour by swapping two random positions,
// re-derives the angular layout, and accepts the neighbour with the Metropolis
// rule:
//
//	p = 1                          if neighbour < current
//	p = exp((current-neighbour)/T) otherwise
//
// The temperature T starts at [Schedule.Temperature] and is multiplied by
// 1-[Schedule.Ratio] after every step; the search ends when T drops to 1 or
// an arrangement without collisions is found. The best arrangement seen is
// returned, so the result is never worse than the input.
//
// # Schedules
//
// A zero [Schedule] selects the default rule: T=5000 cooling by 5% per step,
// or T=10000 cooling by 0.3% when the input has at most 100 collisions.
// [AutoSchedule] picks from a wider preset table keyed by the initial
// collision count, and [Schedule.Iterations] reports how many steps a
// schedule will take, which is what the CLI uses for time estimates.
//
// # Flipping
//
// With FlipFrequency > 0 a share of the steps toggles the orientation of one
// chromosome instead of swapping two. Chord positions on flipped chromosomes
// are mirrored (see [genome.Chords.ApplyFlips]). After the search, flips that
// do not pay for themselves are dropped again.
//
// # Usage
//
//	opt := anneal.Optimizer{Seed: 42}
//	res, err := opt.Optimize(ctx, arr, chords)
//	if err != nil {
//	    // ctx was cancelled; res still holds the best arrangement so far
//	}
//	fmt.Println(res.InitialEnergy, "->", res.Energy)
package anneal
