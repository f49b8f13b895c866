package collision

import (
	"context"
	"time"

	"github.com/matzehuels/synvisio/pkg/genome"
	"github.com/matzehuels/synvisio/pkg/geometry"
)

// Result summarises the collisions of one arrangement.
type Result struct {
	Collisions   int           `json:"collisions"`
	Superimposed int           `json:"superimposed"`
	Chords       int           `json:"chords"`
	Duration     time.Duration `json:"duration"`
}

// AllSuperimposed reports whether every collision comes from superimposed
// chords, in which case reordering cannot improve the layout.
func (r Result) AllSuperimposed() bool {
	return r.Collisions > 0 && r.Collisions == r.Superimposed
}

// ends holds the representative angles of a chord on both chromosomes.
type ends struct {
	source, target genome.Angles
}

// Workspace provides a reusable angle buffer for collision counting.
// Create with [NewWorkspace] and reuse across calls with the same or a
// smaller chord list.
//
// The workspace is not safe for concurrent use - each goroutine should have its own.
type Workspace struct {
	buf []ends
}

// NewWorkspace creates a workspace sized for n chords. It grows on demand.
func NewWorkspace(n int) *Workspace {
	return &Workspace{buf: make([]ends, 0, n)}
}

// resolve computes angles for every chord whose chromosomes are both present
// in the arrangement. Chords that reference a missing chromosome are not
// drawn and are skipped.
func (w *Workspace) resolve(arr genome.Arrangement, chords genome.Chords) []ends {
	byID := make(map[string]genome.Chromosome, len(arr))
	for _, c := range arr {
		byID[c.ID] = c
	}
	w.buf = w.buf[:0]
	for _, ch := range chords {
		src, ok := byID[ch.SourceID]
		if !ok {
			continue
		}
		tgt, ok := byID[ch.TargetID]
		if !ok {
			continue
		}
		w.buf = append(w.buf, ends{
			source: genome.ChordAngles(src, ch.SourceStart, ch.SourceEnd),
			target: genome.ChordAngles(tgt, ch.TargetStart, ch.TargetEnd),
		})
	}
	return w.buf
}

// Count returns the number of colliding chord pairs. If maxCount > 0 the scan
// stops as soon as the count exceeds maxCount and the partial count (which is
// then maxCount+1) is returned.
func (w *Workspace) Count(arr genome.Arrangement, chords genome.Chords, maxCount int) int {
	n, _ := w.count(context.Background(), arr, chords, maxCount)
	return n
}

func (w *Workspace) count(ctx context.Context, arr genome.Arrangement, chords genome.Chords, maxCount int) (int, error) {
	if len(chords) < 2 {
		return 0, nil
	}
	e := w.resolve(arr, chords)
	count := 0
	for i := 0; i < len(e); i++ {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		for j := i + 1; j < len(e); j++ {
			if !crosses(e[i], e[j]) {
				continue
			}
			count++
			if maxCount > 0 && count > maxCount {
				return count, nil
			}
		}
	}
	return count, nil
}

// Analyze counts both collisions and superimposed pairs without a threshold.
// Result.Chords is the number of chords drawn, leaving out chords on
// chromosomes missing from the arrangement.
func (w *Workspace) Analyze(arr genome.Arrangement, chords genome.Chords) Result {
	res, _ := w.analyze(context.Background(), arr, chords)
	return res
}

func (w *Workspace) analyze(ctx context.Context, arr genome.Arrangement, chords genome.Chords) (Result, error) {
	start := time.Now()
	e := w.resolve(arr, chords)
	res := Result{Chords: len(e)}
	for i := 0; i < len(e); i++ {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		for j := i + 1; j < len(e); j++ {
			if crosses(e[i], e[j]) {
				res.Collisions++
			}
			if superimposed(e[i], e[j]) {
				res.Superimposed++
			}
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Count returns the number of colliding chord pairs for the arrangement.
// See [Workspace.Count] for the meaning of maxCount.
func Count(arr genome.Arrangement, chords genome.Chords, maxCount int) int {
	return NewWorkspace(len(chords)).Count(arr, chords, maxCount)
}

// CountContext is the awaitable form of [Count]. The computation is
// synchronous; ctx is checked between rows of the pair scan so a host can
// abandon very large inputs.
func CountContext(ctx context.Context, arr genome.Arrangement, chords genome.Chords, maxCount int) (int, error) {
	return NewWorkspace(len(chords)).count(ctx, arr, chords, maxCount)
}

// Analyze returns collisions, superimposed pairs and the time it took.
func Analyze(arr genome.Arrangement, chords genome.Chords) Result {
	return NewWorkspace(len(chords)).Analyze(arr, chords)
}

// AnalyzeContext is the awaitable form of [Analyze]. Like [CountContext] it
// checks ctx between rows of the pair scan and returns the partial result
// with ctx.Err() when cancelled.
func AnalyzeContext(ctx context.Context, arr genome.Arrangement, chords genome.Chords) (Result, error) {
	return NewWorkspace(len(chords)).analyze(ctx, arr, chords)
}

func crosses(a, b ends) bool {
	s, t := a.source, a.target
	return geometry.Intersects(s.Start, t.Start, b.source.Start, b.target.Start) ||
		geometry.Intersects(s.Middle, t.Middle, b.source.Middle, b.target.Middle) ||
		geometry.Intersects(s.End, t.End, b.source.End, b.target.End) ||
		geometry.Intersects(s.Start, t.Start, b.source.Middle, b.target.Middle) ||
		geometry.Intersects(s.Middle, t.Middle, b.source.Start, b.target.Start) ||
		geometry.Intersects(s.Middle, t.Middle, b.source.End, b.target.End) ||
		geometry.Intersects(s.End, t.End, b.source.Middle, b.target.Middle) ||
		geometry.Intersects(s.Start, t.Start, b.source.End, b.target.End) ||
		geometry.Intersects(s.End, t.End, b.source.Start, b.target.Start)
}

func superimposed(a, b ends) bool {
	span := func(x genome.Angles) geometry.Span { return geometry.Span{Start: x.Start, End: x.End} }
	return geometry.Superimposed(span(a.source), span(b.target)) ||
		geometry.Superimposed(span(a.target), span(b.source)) ||
		geometry.Superimposed(span(a.target), span(b.target)) ||
		geometry.Superimposed(span(a.source), span(b.source))
}
