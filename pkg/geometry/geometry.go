// Package geometry implements the circle geometry used to decide whether two
// chords of a circular genome plot cross.
//
// A chord between angles r1 and r2 is approximated by the straight segment
// joining the corresponding points on the unit circle. The rendered ribbons
// are curves, so this is a heuristic; the collision counter compensates by
// testing several representative segments per chord pair.
package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// Point returns the point on the unit circle at angle theta (radians).
func Point(theta float64) geom.Coord {
	return geom.Coord{X: math.Cos(theta), Y: math.Sin(theta)}
}

// Intersects reports whether the segment joining the unit-circle points at
// angles r1 and r2 crosses the segment joining the points at r3 and r4.
//
// The segments are solved for their intersection parameters with Cramer's
// rule. Parallel or collinear segments (zero determinant) never intersect,
// and the parameter test uses open intervals: segments that only touch at an
// endpoint do not count.
func Intersects(r1, r2, r3, r4 float64) bool {
	p1, p2 := Point(r1), Point(r2)
	p3, p4 := Point(r3), Point(r4)

	u := p2.Minus(p1)
	v := p4.Minus(p3)
	w := p4.Minus(p1)

	det := u.X*v.Y - v.X*u.Y
	if det == 0 {
		return false
	}
	lambda := (v.Y*w.X - v.X*w.Y) / det
	gamma := (u.X*w.Y - u.Y*w.X) / det
	return 0 < lambda && lambda < 1 && 0 < gamma && gamma < 1
}

// Span is a closed angular interval.
type Span struct {
	Start float64
	End   float64
}

// Superimposed reports whether two angular spans overlap, endpoints included.
// Chord ends that sit on top of each other are drawn superimposed and cannot
// be separated by reordering chromosomes.
func Superimposed(a, b Span) bool {
	return (a.Start >= b.Start && a.Start <= b.End) ||
		(a.End <= b.End && a.End >= b.Start) ||
		(b.Start >= a.Start && b.Start <= a.End) ||
		(b.End <= a.End && b.End >= a.Start)
}
