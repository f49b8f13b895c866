package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/synvisio/pkg/anneal"
	"github.com/matzehuels/synvisio/pkg/dataset"
	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/genome"
	"github.com/matzehuels/synvisio/pkg/perm"
	"github.com/matzehuels/synvisio/pkg/session"
)

// mapCache is an in-memory cache that counts hits.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

// square has two chords A-C and B-D that cross in the order A B C D.
func square() *dataset.Dataset {
	return &dataset.Dataset{
		Name: "square",
		Chromosomes: genome.Arrangement{
			{ID: "A", Length: 100},
			{ID: "B", Length: 100},
			{ID: "C", Length: 100},
			{ID: "D", Length: 100},
		},
		Chords: genome.Chords{
			{BlockID: "b1", SourceID: "A", SourceStart: 10, SourceEnd: 20, TargetID: "C", TargetStart: 10, TargetEnd: 20},
			{BlockID: "b2", SourceID: "B", SourceStart: 10, SourceEnd: 20, TargetID: "D", TargetStart: 10, TargetEnd: 20},
		},
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"zero", Options{}, true},
		{"explicit", Options{Temperature: 100, Ratio: 0.1}, true},
		{"auto", Options{Auto: true}, true},
		{"auto with schedule", Options{Auto: true, Temperature: 100, Ratio: 0.1}, false},
		{"ratio too large", Options{Temperature: 100, Ratio: 1}, false},
		{"missing ratio", Options{Temperature: 100}, false},
		{"negative flip frequency", Options{FlipFrequency: -0.1}, false},
		{"flip frequency above one", Options{FlipFrequency: 1.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidOptions, errors.GetCode(err))
		})
	}
}

func TestOptionsSetDefaults(t *testing.T) {
	var opts Options
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.NotNil(t, opts.Logger)
}

func TestOptionsSchedule(t *testing.T) {
	explicit := Options{Temperature: 200, Ratio: 0.2}
	assert.Equal(t, anneal.Schedule{Temperature: 200, Ratio: 0.2}, explicit.Schedule(500))

	var zero Options
	assert.Equal(t, anneal.DefaultSchedule(500), zero.Schedule(500))

	auto := Options{Auto: true}
	assert.Equal(t, anneal.AutoSchedule(500), auto.Schedule(500))
}

func TestOptionsKeyOpts(t *testing.T) {
	opts := Options{Seed: 3, KeepTogether: true, FlipFrequency: 0.2}
	k := opts.KeyOpts([]string{"A", "B"}, []string{"B"}, 0.05)
	assert.Equal(t, uint64(3), k.Seed)
	assert.True(t, k.KeepTogether)
	assert.Equal(t, 0.2, k.FlipFrequency)
	assert.Equal(t, 0.05, k.Gap)
	assert.Equal(t, []string{"B"}, k.Flipped)
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	assert.NotNil(t, r.Cache)
	assert.NotNil(t, r.Keyer)
	assert.NotNil(t, r.Logger)
	assert.NoError(t, r.Close())
}

func TestCollisionsCached(t *testing.T) {
	c := newMapCache()
	r := NewRunner(c, nil, nil)
	sess := session.New(square(), time.Hour)

	res, hit, err := r.Collisions(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, res.Collisions)
	assert.Equal(t, 2, res.Chords)
	assert.Equal(t, []string{"A", "B", "C", "D"}, res.Order)

	again, hit, err := r.Collisions(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, again.Collisions)

	// A different order is a different key.
	require.NoError(t, sess.Apply([]string{"A", "C", "B", "D"}, nil))
	moved, hit, err := r.Collisions(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 0, moved.Collisions)
}

func TestOptimizeSquare(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	sess := session.New(square(), time.Hour)

	res, hit, err := r.Optimize(context.Background(), sess, Options{Seed: 7})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, res.InitialCollisions)
	assert.Equal(t, 0, res.Collisions)
	assert.True(t, res.Improved())
	assert.False(t, res.Cancelled)

	// Swaps turn the session's order into the result's.
	assert.Equal(t, res.Order, perm.Apply(sess.Order, res.Swaps))

	// The session order is untouched; the solution is saved.
	assert.Equal(t, []string{"A", "B", "C", "D"}, sess.Order)
	entry, ok := sess.Solutions.Lookup(res.Order, sess.Dataset.Chords)
	require.True(t, ok)
	assert.Equal(t, 0, entry.Collisions)
}

func TestOptimizeSchedulesFromInitialCollisions(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	auto, _, err := r.Optimize(context.Background(), session.New(square(), time.Hour), Options{Seed: 7, Auto: true})
	require.NoError(t, err)
	assert.Equal(t, anneal.AutoSchedule(auto.InitialCollisions), auto.Schedule)

	def, _, err := r.Optimize(context.Background(), session.New(square(), time.Hour), Options{Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, anneal.DefaultSchedule(def.InitialCollisions), def.Schedule)

	explicit := Options{Seed: 7, Temperature: 300, Ratio: 0.1}
	got, _, err := r.Optimize(context.Background(), session.New(square(), time.Hour), explicit)
	require.NoError(t, err)
	assert.Equal(t, anneal.Schedule{Temperature: 300, Ratio: 0.1}, got.Schedule)
}

func TestOptimizeCachedBySeed(t *testing.T) {
	c := newMapCache()
	r := NewRunner(c, nil, nil)
	sess := session.New(square(), time.Hour)
	opts := Options{Seed: 11}

	first, hit, err := r.Optimize(context.Background(), sess, opts)
	require.NoError(t, err)
	assert.False(t, hit)

	sess.Solutions.Reset()
	second, hit, err := r.Optimize(context.Background(), sess, opts)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Order, second.Order)
	assert.Equal(t, first.Collisions, second.Collisions)
	assert.Equal(t, 1, sess.Solutions.Len(), "cache hits are saved as solutions too")

	opts.Refresh = true
	_, hit, err = r.Optimize(context.Background(), sess, opts)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestOptimizeUnseededNotCached(t *testing.T) {
	c := newMapCache()
	r := NewRunner(c, nil, nil)
	sess := session.New(square(), time.Hour)

	_, _, err := r.Optimize(context.Background(), sess, Options{})
	require.NoError(t, err)
	assert.Empty(t, c.data)
}

func TestOptimizeInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	sess := session.New(square(), time.Hour)

	_, _, err := r.Optimize(context.Background(), sess, Options{FlipFrequency: 2})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidOptions, errors.GetCode(err))
}

func TestOptimizeCancelled(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	sess := session.New(square(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, _, err := r.Optimize(ctx, sess, Options{Seed: 1})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.Collisions)
}

func TestOptimizeProgress(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	sess := session.New(square(), time.Hour)
	var steps int
	_, _, err := r.Optimize(context.Background(), sess, Options{
		Seed:     5,
		Progress: func(anneal.Step) { steps++ },
	})
	require.NoError(t, err)
	assert.Positive(t, steps)
}

func TestSaveCurrent(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	sess := session.New(square(), time.Hour)

	saved, err := r.SaveCurrent(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = r.SaveCurrent(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, saved, "an equal count does not replace the entry")
}

func TestFlipChanges(t *testing.T) {
	before := genome.NewFlipped("a2", "a1")
	after := genome.NewFlipped("a1", "a10", "b1")
	assert.Equal(t, []string{"a2", "a10", "b1"}, flipChanges(before, after))
	assert.Empty(t, flipChanges(nil, nil))
}
