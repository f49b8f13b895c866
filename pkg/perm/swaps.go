package perm

import (
	"cmp"
	"slices"

	"github.com/matzehuels/synvisio/pkg/errors"
)

// Swap exchanges the slots currently holding the two ids.
type Swap [2]string

// CycleSwaps returns index pairs that rearrange a slice so that slot i ends
// up holding the element that started in slot p[i]. p must be a permutation
// of [0, len(p)); the pairs are found by cycle decomposition, so there are
// exactly len(p) minus [Cycles](p) of them.
func CycleSwaps(p []int) [][2]int {
	type entry struct{ value, index int }
	byValue := make([]entry, len(p))
	for i, v := range p {
		byValue[i] = entry{v, i}
	}
	slices.SortFunc(byValue, func(a, b entry) int { return cmp.Compare(a.value, b.value) })

	visited := make([]bool, len(p))
	var swaps [][2]int
	for i := range byValue {
		if visited[i] || byValue[i].index == i {
			continue
		}
		for j := i; !visited[j]; {
			visited[j] = true
			j = byValue[j].index
			if byValue[i].index != byValue[j].index {
				swaps = append(swaps, [2]int{byValue[i].index, byValue[j].index})
			}
		}
	}
	return swaps
}

// MinSwaps returns the shortest sequence of pairwise swaps that turns current
// into target. Both must be permutations of the same ids; if their lengths
// differ the result is empty.
//
// Each swap names the ids occupying the two slots at the moment it is
// applied, lower slot first, so the plan must be applied in order (see
// [Apply]).
func MinSwaps(target, current []string) []Swap {
	if len(target) != len(current) {
		return nil
	}

	pos := Positions(current)
	p := make([]int, len(target))
	for i, id := range target {
		p[i] = pos[id]
	}

	work := slices.Clone(current)
	pairs := CycleSwaps(p)
	swaps := make([]Swap, 0, len(pairs))
	for _, pr := range pairs {
		a, b := min(pr[0], pr[1]), max(pr[0], pr[1])
		swaps = append(swaps, Swap{work[a], work[b]})
		work[a], work[b] = work[b], work[a]
	}
	return swaps
}

// Apply plays the swaps against a copy of current, looking up each id's slot
// at the time of the step. Ids missing from current are ignored.
func Apply(current []string, swaps []Swap) []string {
	out := slices.Clone(current)
	pos := Positions(out)
	for _, s := range swaps {
		i, okA := pos[s[0]]
		j, okB := pos[s[1]]
		if !okA || !okB {
			continue
		}
		out[i], out[j] = out[j], out[i]
		pos[out[i]], pos[out[j]] = i, j
	}
	return out
}

// Moved returns the ids touched by the plan in first-touch order.
func Moved(swaps []Swap) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, s := range swaps {
		for _, id := range s {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Check reports whether target and current hold the same distinct ids, as
// [MinSwaps] requires.
func Check(target, current []string) error {
	if len(target) != len(current) {
		return errors.New(errors.ErrCodeInvalidArrangement,
			"orders differ in length: %d and %d", len(target), len(current))
	}
	pos := make(map[string]bool, len(current))
	for _, id := range current {
		if pos[id] {
			return errors.New(errors.ErrCodeInvalidArrangement, "duplicate id %q", id)
		}
		pos[id] = true
	}
	for _, id := range target {
		if !pos[id] {
			return errors.New(errors.ErrCodeInvalidArrangement, "id %q is not in the current order or repeats", id)
		}
		delete(pos, id)
	}
	return nil
}
