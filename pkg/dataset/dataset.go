package dataset

import (
	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/genome"
)

// Dataset is a set of chromosomes and the chords between them.
type Dataset struct {
	Name        string             `json:"name" bson:"name" toml:"name"`
	Gap         float64            `json:"gap,omitempty" bson:"gap,omitempty" toml:"gap,omitempty"`
	Chromosomes genome.Arrangement `json:"chromosomes" bson:"chromosomes" toml:"chromosomes"`
	Chords      genome.Chords      `json:"chords" bson:"chords" toml:"chords"`
	Flipped     []string           `json:"flipped,omitempty" bson:"flipped,omitempty" toml:"flipped,omitempty"`
}

// LayoutGap returns the angular gap to lay the dataset out with.
func (d *Dataset) LayoutGap() float64 {
	if d.Gap > 0 {
		return d.Gap
	}
	return genome.DefaultGap
}

// Arrangement returns the chromosomes in dataset order with angles assigned.
func (d *Dataset) Arrangement() genome.Arrangement {
	return genome.Layout(d.Chromosomes, d.LayoutGap())
}

// FlippedSet returns the initially flipped chromosomes as a set.
func (d *Dataset) FlippedSet() genome.Flipped {
	return genome.NewFlipped(d.Flipped...)
}

// Validate checks that the chromosomes form a valid arrangement and that
// every chord and flip refers to a known chromosome with positions inside
// its length.
func (d *Dataset) Validate() error {
	if len(d.Chromosomes) == 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset has no chromosomes")
	}
	if err := d.Chromosomes.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDataset, err, "chromosomes")
	}
	lengths := d.Chromosomes.Lengths()

	inside := func(id string, start, end float64) error {
		l, ok := lengths[id]
		if !ok {
			return errors.New(errors.ErrCodeInvalidDataset, "unknown chromosome %q", id)
		}
		if start < 0 || end < 0 || start > l || end > l {
			return errors.New(errors.ErrCodeInvalidDataset, "position [%g, %g] outside %s (length %g)", start, end, id, l)
		}
		return nil
	}
	for _, c := range d.Chords {
		if err := inside(c.SourceID, c.SourceStart, c.SourceEnd); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "chord %s source", c.BlockID)
		}
		if err := inside(c.TargetID, c.TargetStart, c.TargetEnd); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "chord %s target", c.BlockID)
		}
	}
	for _, id := range d.Flipped {
		if _, ok := lengths[id]; !ok {
			return errors.New(errors.ErrCodeInvalidDataset, "flipped chromosome %q not in dataset", id)
		}
	}
	if d.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "gap must not be negative")
	}
	return nil
}
