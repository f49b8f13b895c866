// Package session holds the mutable state of one interactive layout session.
//
// A [Session] owns a dataset, the current chromosome order, the current flip
// state, and the solution cache for that dataset. Nothing here is global: the
// CLI creates one session per run, the HTTP server keeps one per client, and
// reloading data calls [Session.Load], which starts the session over.
//
// Sessions are persisted through a [Store]:
//   - [MemoryStore]: in-process map, used by tests and a single server
//   - [RedisStore]: shared storage for multi-instance servers
//   - [FileStore]: JSON files, used by the CLI
//
// # Usage
//
//	sess := session.New(ds, session.DefaultTTL)
//	arr, err := sess.Arrangement()
//	chords := sess.Chords()
//	...
//	sess.Order = res.Arrangement.IDs()
//	store.Set(ctx, sess)
package session

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/synvisio/pkg/dataset"
	"github.com/matzehuels/synvisio/pkg/genome"
	"github.com/matzehuels/synvisio/pkg/solutions"
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session is the state of one layout session.
type Session struct {
	ID        string
	Dataset   *dataset.Dataset
	Order     []string
	Flipped   genome.Flipped
	Solutions *solutions.Store
	CreatedAt time.Time
	ExpiresAt time.Time
}

// New creates a session for ds with a fresh random id.
func New(ds *dataset.Dataset, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Solutions: solutions.NewStore(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.Load(ds)
	return s
}

// Load replaces the dataset and resets the session.
func (s *Session) Load(ds *dataset.Dataset) {
	s.Dataset = ds
	s.Reset()
}

// Reset restores the dataset's initial order and flips and empties the
// solution cache.
func (s *Session) Reset() {
	s.Order = nil
	s.Flipped = nil
	if s.Dataset != nil {
		s.Order = s.Dataset.Chromosomes.IDs()
		s.Flipped = s.Dataset.FlippedSet()
	}
	if s.Solutions == nil {
		s.Solutions = solutions.NewStore()
	}
	s.Solutions.Reset()
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Arrangement returns the chromosomes in the session's current order, laid
// out with the dataset's gap.
func (s *Session) Arrangement() (genome.Arrangement, error) {
	arr, err := s.Dataset.Chromosomes.Reorder(s.Order)
	if err != nil {
		return nil, err
	}
	return genome.Layout(arr, s.Dataset.LayoutGap()), nil
}

// Chords returns the dataset's chords with the session's flips applied.
func (s *Session) Chords() genome.Chords {
	return s.Dataset.Chords.ApplyFlips(s.Dataset.Chromosomes.Lengths(), s.Flipped)
}

// Apply adopts an arrangement and flip state, typically an optimizer result.
func (s *Session) Apply(order []string, flipped genome.Flipped) error {
	if _, err := s.Dataset.Chromosomes.Reorder(order); err != nil {
		return err
	}
	s.Order = slices.Clone(order)
	s.Flipped = genome.NewFlipped(flipped.IDs()...)
	return nil
}

// wire is the serialised form of a session.
type wire struct {
	ID        string              `json:"id"`
	Dataset   *dataset.Dataset    `json:"dataset"`
	Order     []string            `json:"order"`
	Flipped   []string            `json:"flipped,omitempty"`
	Solutions *solutions.Snapshot `json:"solutions,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	w := wire{
		ID:        s.ID,
		Dataset:   s.Dataset,
		Order:     s.Order,
		Flipped:   s.Flipped.IDs(),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if s.Solutions != nil && s.Solutions.Len() > 0 {
		name := ""
		if s.Dataset != nil {
			name = s.Dataset.Name
		}
		w.Solutions = s.Solutions.Snapshot(name)
	}
	return json.Marshal(w)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Session{
		ID:        w.ID,
		Dataset:   w.Dataset,
		Order:     w.Order,
		Flipped:   genome.NewFlipped(w.Flipped...),
		Solutions: solutions.NewStore(),
		CreatedAt: w.CreatedAt,
		ExpiresAt: w.ExpiresAt,
	}
	s.Solutions.Restore(w.Solutions)
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
