package genome

import (
	"fmt"
	"slices"
	"strings"
)

// Chord is the aggregate extent of one syntenic block mapped onto its source
// and target chromosomes. Positions are in chromosome coordinates (base
// pairs), not angles.
type Chord struct {
	BlockID     string  `json:"block_id" bson:"block_id" toml:"block_id"`
	SourceID    string  `json:"source_id" bson:"source_id" toml:"source_id"`
	SourceStart float64 `json:"source_start" bson:"source_start" toml:"source_start"`
	SourceEnd   float64 `json:"source_end" bson:"source_end" toml:"source_end"`
	TargetID    string  `json:"target_id" bson:"target_id" toml:"target_id"`
	TargetStart float64 `json:"target_start" bson:"target_start" toml:"target_start"`
	TargetEnd   float64 `json:"target_end" bson:"target_end" toml:"target_end"`
}

// SelfConnected reports whether both ends of the chord lie on one chromosome.
func (c Chord) SelfConnected() bool { return c.SourceID == c.TargetID }

// Chords is an ordered list of chords. Order is significant for equality and
// signatures: the same chromosome set filtered two ways yields two lists.
type Chords []Chord

// Equal reports order-sensitive structural equality.
func (cs Chords) Equal(other Chords) bool {
	return slices.Equal(cs, other)
}

// Signature returns a stable, order-sensitive textual fingerprint of the
// chord list. Equal lists have equal signatures.
func (cs Chords) Signature() string {
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s:%s[%g,%g]>%s[%g,%g]",
			c.BlockID, c.SourceID, c.SourceStart, c.SourceEnd,
			c.TargetID, c.TargetStart, c.TargetEnd)
	}
	return b.String()
}

// ChromosomeIDs returns the distinct chromosome ids referenced by the chords,
// in first-seen order.
func (cs Chords) ChromosomeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range cs {
		for _, id := range [2]string{c.SourceID, c.TargetID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Angles holds the three representative angles of one end of a chord.
type Angles struct {
	Start  float64
	Middle float64
	End    float64
}

// ChordAngles maps the interval [start, end] of chromosome c onto c's angular
// span by linear interpolation.
func ChordAngles(c Chromosome, start, end float64) Angles {
	span := c.End - c.Start
	a := Angles{
		Start: c.Start + (start/c.Length)*span,
		End:   c.Start + (end/c.Length)*span,
	}
	a.Middle = (a.Start + a.End) / 2
	return a
}
