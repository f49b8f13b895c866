package solutions

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/synvisio/pkg/genome"
)

// Key returns the cache key for a chromosome id set. The order of ids does
// not matter. Ids of a valid arrangement never contain the separator, so
// distinct sets get distinct keys.
func Key(ids []string) string {
	return strings.Join(genome.SortIDs(ids), genome.IDSeparator)
}

// Entry is one saved layout.
type Entry struct {
	Arrangement    []string      `json:"arrangement" bson:"arrangement"`
	Flipped        []string      `json:"flipped,omitempty" bson:"flipped,omitempty"`
	Collisions     int           `json:"collisions" bson:"collisions"`
	Chords         genome.Chords `json:"chords" bson:"chords"`
	ChordSignature string        `json:"chord_signature" bson:"chord_signature"`
	SavedAt        time.Time     `json:"saved_at" bson:"saved_at"`
}

// Matches reports whether the entry was saved for exactly this chord list.
func (e Entry) Matches(chords genome.Chords, signature string) bool {
	return e.ChordSignature == signature && e.Chords.Equal(chords)
}

// Bucket holds the entries stored under one key.
type Bucket struct {
	Key     string  `json:"key" bson:"key"`
	Entries []Entry `json:"entries" bson:"entries"`
}

// Snapshot is a serialisable copy of a store.
type Snapshot struct {
	Dataset string    `json:"dataset" bson:"dataset"`
	Buckets []Bucket  `json:"buckets" bson:"buckets"`
	SavedAt time.Time `json:"saved_at" bson:"saved_at"`
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	n := 0
	for _, b := range s.Buckets {
		n += len(b.Entries)
	}
	return n
}

// Store is an in-memory solution cache. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]Entry), now: time.Now}
}

// Lookup returns the entry saved for the chromosome ids and chord list.
func (s *Store) Lookup(ids []string, chords genome.Chords) (Entry, bool) {
	key := Key(ids)
	sig := chords.Signature()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := find(s.entries[key], chords, sig); i >= 0 {
		return clone(s.entries[key][i]), true
	}
	return Entry{}, false
}

// Save records a layout and reports whether the store changed. If an entry
// for the same chromosomes and chords exists it is replaced only when
// collisions is strictly lower.
func (s *Store) Save(arr genome.Arrangement, flipped genome.Flipped, collisions int, chords genome.Chords) bool {
	ids := arr.IDs()
	key := Key(ids)
	sig := chords.Signature()
	entry := Entry{
		Arrangement:    ids,
		Flipped:        flipped.IDs(),
		Collisions:     collisions,
		Chords:         slices.Clone(chords),
		ChordSignature: sig,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry.SavedAt = s.now()

	bucket := s.entries[key]
	i := find(bucket, chords, sig)
	switch {
	case i < 0:
		s.entries[key] = append(bucket, entry)
	case collisions < bucket[i].Collisions:
		bucket[i] = entry
	default:
		return false
	}
	return true
}

// Entries returns copies of the entries stored under key.
func (s *Store) Entries(key string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries[key]))
	for i, e := range s.entries[key] {
		out[i] = clone(e)
	}
	return out
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the total number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.entries {
		n += len(b)
	}
	return n
}

// Reset removes every entry.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]Entry)
}

// Snapshot returns a copy of the store's contents, buckets in key order.
func (s *Store) Snapshot(dataset string) *Snapshot {
	snap := &Snapshot{Dataset: dataset}
	for _, k := range s.Keys() {
		snap.Buckets = append(snap.Buckets, Bucket{Key: k, Entries: s.Entries(k)})
	}
	s.mu.RLock()
	snap.SavedAt = s.now()
	s.mu.RUnlock()
	return snap
}

// Restore merges a snapshot into the store with the same rule as
// [Store.Save]: restored entries never replace better ones already present.
// It returns the number of entries that changed the store.
func (s *Store) Restore(snap *Snapshot) int {
	if snap == nil {
		return 0
	}
	n := 0
	for _, b := range snap.Buckets {
		for _, e := range b.Entries {
			e = clone(e)
			e.ChordSignature = e.Chords.Signature()
			s.mu.Lock()
			bucket := s.entries[b.Key]
			i := find(bucket, e.Chords, e.ChordSignature)
			switch {
			case i < 0:
				s.entries[b.Key] = append(bucket, e)
				n++
			case e.Collisions < bucket[i].Collisions:
				bucket[i] = e
				n++
			}
			s.mu.Unlock()
		}
	}
	return n
}

func find(bucket []Entry, chords genome.Chords, sig string) int {
	return slices.IndexFunc(bucket, func(e Entry) bool { return e.Matches(chords, sig) })
}

func clone(e Entry) Entry {
	e.Arrangement = slices.Clone(e.Arrangement)
	e.Flipped = slices.Clone(e.Flipped)
	e.Chords = slices.Clone(e.Chords)
	return e
}
