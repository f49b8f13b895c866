// Package collision counts visually crossing chords in a circular genome
// layout.
//
// # The Counting Heuristic
//
// Each chord is reduced to three representative angles on each of its two
// chromosomes: where the block starts, where it ends, and the midpoint
// between them. For every unordered pair of chords (i, j) the counter tests
// nine straight segments of chord i against the matching segments of chord j:
//
//	start–start   middle–middle   end–end
//	start–middle  middle–start
//	middle–end    end–middle
//	start–end     end–start
//
// where "start–middle" means chord i's start segment (source start to target
// start) against chord j's middle segment. If any of the nine pairs intersect
// (see [geometry.Intersects]) the pair counts as one collision. This
// approximates the crossing of the rendered ribbon curves; it can under- or
// over-count relative to the drawn image and is kept exactly as is so that
// counts stay comparable with saved layouts.
//
// Counting is O(n²) in the number of chords. [Count] accepts a threshold so
// an optimizer can abandon candidates once they are clearly worse than the
// current solution:
//
//	n := collision.Count(arr, chords, best) // stops once n > best
//
// # Superimposed Chords
//
// [Analyze] additionally reports how many pairs have overlapping ends on a
// shared angular range. Those pairs are drawn on top of each other and no
// reordering can separate them, which lets a host tell users when every
// remaining collision is of that kind.
//
// # Reuse
//
// A [Workspace] keeps the per-chord angle buffer between calls. The optimizer
// evaluates hundreds of arrangements of one chord list, so it holds a single
// workspace for the whole run. Workspaces are not safe for concurrent use.
package collision
