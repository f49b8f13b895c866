package genome

import "math"

// DefaultGap is the angular gap, in radians, left after every chromosome.
const DefaultGap = 0.04

// LayoutFunc assigns angular spans to an arrangement. Implementations must
// return a new arrangement and leave the input untouched.
type LayoutFunc func(Arrangement) Arrangement

// Layout distributes the circle among the chromosomes proportionally to their
// lengths, in arrangement order starting at angle 0, leaving gap radians after
// each chromosome. If the gaps alone would consume the circle, the gap is
// dropped.
func Layout(a Arrangement, gap float64) Arrangement {
	out := a.Clone()
	if len(out) == 0 {
		return out
	}

	total := 0.0
	for _, c := range out {
		total += c.Length
	}
	if total <= 0 {
		return out
	}

	available := 2*math.Pi - gap*float64(len(out))
	if available <= 0 {
		gap, available = 0, 2*math.Pi
	}
	scale := available / total

	offset := 0.0
	for i := range out {
		out[i].Start = offset
		out[i].End = offset + out[i].Length*scale
		offset = out[i].End + gap
	}
	return out
}

// GapLayout returns a LayoutFunc applying [Layout] with a fixed gap.
func GapLayout(gap float64) LayoutFunc {
	return func(a Arrangement) Arrangement { return Layout(a, gap) }
}
