// Package dataset reads and writes the input documents of the optimizer.
//
// A dataset is the digested form of a genome comparison: the chromosomes to
// draw, in their initial order, and one chord per syntenic block. Producing it
// from GFF and collinearity files is left to other tools.
//
// # Formats
//
// Datasets are stored as JSON or TOML; [FormatFromPath] picks the format by
// file extension. A TOML dataset looks like:
//
//	name = "arabidopsis"
//	gap = 0.04
//	flipped = ["at2"]
//
//	[[chromosomes]]
//	id = "at1"
//	length = 30427671
//
//	[[chromosomes]]
//	id = "at2"
//	length = 19698289
//
//	[[chords]]
//	block_id = "b1"
//	source_id = "at1"
//	source_start = 1200
//	source_end = 98000
//	target_id = "at2"
//	target_start = 500
//	target_end = 91000
//
// The JSON form uses the same field names.
package dataset
