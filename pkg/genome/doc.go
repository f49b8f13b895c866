// Package genome defines the data model shared by every stage of the
// synteny layout optimizer: chromosomes, their circular arrangement, and the
// chords that connect syntenic blocks between them.
//
// # Arrangements
//
// An [Arrangement] is an ordered sequence of [Chromosome] values. The order
// determines each chromosome's angular span on the circle, which is assigned
// by a [LayoutFunc] (see [Layout] for the proportional layout used by default):
//
//	arr := genome.Arrangement{
//	    {ID: "at1", Length: 30_427_671},
//	    {ID: "at2", Length: 19_698_289},
//	}
//	arr = genome.Layout(arr, genome.DefaultGap)
//
// Arrangement methods never modify the receiver. Reordering operations such
// as [Arrangement.Swap] and [Arrangement.Reorder] return fresh copies, so an
// arrangement owned by a caller can be handed to the optimizer safely.
//
// # Chords
//
// A [Chord] is the aggregate extent of one syntenic block, expressed in the
// coordinate systems of its source and target chromosomes. [ChordAngles]
// maps those coordinates onto a chromosome's angular span.
//
// Chromosomes can be flipped (drawn in reverse orientation). Flipping does not
// change the arrangement; it mirrors the chord positions on the flipped
// chromosome, see [Chords.ApplyFlips].
//
// # Identifier Ordering
//
// [SortIDs] orders chromosome identifiers the way a genome browser lists
// them: grouped by species prefix, numbers compared numerically ("N2" before
// "N10"), letters compared case-insensitively.
package genome
