// Package solutions remembers the best layouts found for each set of visible
// chromosomes.
//
// # Keys
//
// Entries are grouped under a key derived from the chromosome id set alone:
// the ids are put in natural order ([genome.SortIDs]) and comma-joined, so
// every order of the same chromosomes shares one key. Within a key, entries
// are told apart by their chord list, compared in order, because filtering
// the same chromosomes in different ways yields different chords.
//
// # Saving
//
// [Store.Save] is monotone. An existing entry for the same key and chord list
// is replaced only by a layout with strictly fewer collisions; a new
// combination is appended. Cached quality never regresses, and nothing is
// ever evicted.
//
// # Archives
//
// A [Store] lives in memory for one session. [Archive] implementations copy
// its contents to durable storage between runs: [FileArchive] writes JSON
// files, [MongoArchive] writes one document per dataset.
package solutions
