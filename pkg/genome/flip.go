package genome

import (
	"maps"
	"slices"
)

// Flipped is the set of chromosomes drawn in reverse orientation.
type Flipped map[string]bool

// NewFlipped builds a set from a list of ids.
func NewFlipped(ids ...string) Flipped {
	f := make(Flipped, len(ids))
	for _, id := range ids {
		f[id] = true
	}
	return f
}

// Toggle returns a copy of the set with id's membership inverted.
func (f Flipped) Toggle(id string) Flipped {
	out := maps.Clone(f)
	if out == nil {
		out = Flipped{}
	}
	if out[id] {
		delete(out, id)
	} else {
		out[id] = true
	}
	return out
}

// IDs returns the flipped ids in natural order.
func (f Flipped) IDs() []string {
	ids := make([]string, 0, len(f))
	for id, ok := range f {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, CompareIDs)
	return ids
}

// FlipSpan mirrors the interval [start, end] on a chromosome of the given
// length: a block at 20..28 on a chromosome of length 28 becomes 0..8.
func FlipSpan(length, start, end float64) (float64, float64) {
	return length - end, length - start
}

// ApplyFlips returns a copy of the chords with positions on flipped
// chromosomes mirrored. The receiver holds unflipped positions; applying a
// different flip set to the same receiver never compounds earlier flips.
// Chromosomes missing from lengths are left as they are.
func (cs Chords) ApplyFlips(lengths map[string]float64, flipped Flipped) Chords {
	out := slices.Clone(cs)
	if len(flipped) == 0 {
		return out
	}
	for i, c := range out {
		if l, ok := lengths[c.SourceID]; ok && flipped[c.SourceID] {
			out[i].SourceStart, out[i].SourceEnd = FlipSpan(l, c.SourceStart, c.SourceEnd)
		}
		if l, ok := lengths[c.TargetID]; ok && flipped[c.TargetID] {
			out[i].TargetStart, out[i].TargetEnd = FlipSpan(l, c.TargetStart, c.TargetEnd)
		}
	}
	return out
}
