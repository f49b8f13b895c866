// Package perm turns a change of chromosome order into an animatable plan.
//
// When the optimizer proposes a new arrangement, the genome view does not jump
// to it: it swaps chromosome pairs one at a time so the user can follow each
// move. [MinSwaps] computes the shortest such plan. Each step names the two
// chromosomes to exchange by id, and the ids refer to the slot contents at
// the moment the step runs, so the plan must be played in order:
//
//	plan := perm.MinSwaps([]string{"B", "A", "C"}, []string{"A", "B", "C"})
//	// plan == []perm.Swap{{"A", "B"}}
//	perm.Apply([]string{"A", "B", "C"}, plan) // [B A C]
//
// # Minimality
//
// Translating the target into positions of the current order gives a
// permutation p. Sorting p with swaps needs exactly n - c(p) swaps, where
// c(p) is the number of cycles of p (fixed points included), and the cycle
// decomposition in [CycleSwaps] achieves that bound. [Cycles] exposes c(p) so
// callers and tests can check it.
//
// Elements that do not move (fixed points of p) are never touched, which
// keeps untouched chromosomes still during playback.
//
// # Visualisation
//
// [ToDOT] and [RenderSVG] draw a plan as a Graphviz graph: one node per
// chromosome in current order, and one numbered edge per swap.
package perm
