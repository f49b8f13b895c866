package genome

import (
	"slices"
	"strings"

	"github.com/matzehuels/synvisio/pkg/errors"
)

// IDSeparator joins chromosome ids in solution keys and order lists, so it
// may not appear inside an id.
const IDSeparator = ","

// Chromosome is a single element of an arrangement. Start and End are angles
// in radians assigned by a [LayoutFunc]; they are meaningless until the
// arrangement has been laid out.
type Chromosome struct {
	ID     string  `json:"id" bson:"id" toml:"id"`
	Length float64 `json:"length" bson:"length" toml:"length"`
	Start  float64 `json:"start,omitempty" bson:"start,omitempty" toml:"-"`
	End    float64 `json:"end,omitempty" bson:"end,omitempty" toml:"-"`
}

// Span returns the angular extent of the chromosome in radians.
func (c Chromosome) Span() float64 { return c.End - c.Start }

// Arrangement is an ordered sequence of chromosomes around the circle.
type Arrangement []Chromosome

// IDs returns the chromosome identifiers in arrangement order.
func (a Arrangement) IDs() []string {
	ids := make([]string, len(a))
	for i, c := range a {
		ids[i] = c.ID
	}
	return ids
}

// Index returns the position of id in the arrangement, or -1.
func (a Arrangement) Index(id string) int {
	return slices.IndexFunc(a, func(c Chromosome) bool { return c.ID == id })
}

// Find returns the chromosome with the given id.
func (a Arrangement) Find(id string) (Chromosome, bool) {
	if i := a.Index(id); i >= 0 {
		return a[i], true
	}
	return Chromosome{}, false
}

// Lookup returns the chromosomes keyed by id.
func (a Arrangement) Lookup() map[string]Chromosome {
	m := make(map[string]Chromosome, len(a))
	for _, c := range a {
		m[c.ID] = c
	}
	return m
}

// Lengths returns chromosome lengths keyed by id.
func (a Arrangement) Lengths() map[string]float64 {
	m := make(map[string]float64, len(a))
	for _, c := range a {
		m[c.ID] = c.Length
	}
	return m
}

// Clone returns an independent copy of the arrangement.
func (a Arrangement) Clone() Arrangement {
	return slices.Clone(a)
}

// Swap returns a copy of the arrangement with positions i and j exchanged.
// Angles are carried along unchanged; callers re-derive them with a
// [LayoutFunc]. Swapping a position with itself yields an identical copy.
func (a Arrangement) Swap(i, j int) Arrangement {
	out := slices.Clone(a)
	out[i], out[j] = out[j], out[i]
	return out
}

// Reorder returns a copy of the arrangement in the order given by ids.
// The ids must be a permutation of the arrangement's identifiers.
func (a Arrangement) Reorder(ids []string) (Arrangement, error) {
	if len(ids) != len(a) {
		return nil, errors.New(errors.ErrCodeInvalidArrangement,
			"order has %d chromosomes, arrangement has %d", len(ids), len(a))
	}
	byID := a.Lookup()
	out := make(Arrangement, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidArrangement, "unknown chromosome %q", id)
		}
		if seen[id] {
			return nil, errors.New(errors.ErrCodeInvalidArrangement, "duplicate chromosome %q", id)
		}
		seen[id] = true
		out = append(out, c)
	}
	return out, nil
}

// Validate checks that identifiers are unique, non-empty and free of
// [IDSeparator] and that every chromosome has a positive length.
func (a Arrangement) Validate() error {
	seen := make(map[string]bool, len(a))
	for i, c := range a {
		if c.ID == "" {
			return errors.New(errors.ErrCodeInvalidArrangement, "chromosome at position %d has no id", i)
		}
		if strings.Contains(c.ID, IDSeparator) {
			return errors.New(errors.ErrCodeInvalidArrangement, "chromosome id %q contains %q", c.ID, IDSeparator)
		}
		if seen[c.ID] {
			return errors.New(errors.ErrCodeInvalidArrangement, "duplicate chromosome %q", c.ID)
		}
		if c.Length <= 0 {
			return errors.New(errors.ErrCodeInvalidArrangement, "chromosome %q has non-positive length %g", c.ID, c.Length)
		}
		seen[c.ID] = true
	}
	return nil
}
