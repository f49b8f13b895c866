package pipeline

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/synvisio/pkg/anneal"
	"github.com/matzehuels/synvisio/pkg/cache"
	"github.com/matzehuels/synvisio/pkg/collision"
	"github.com/matzehuels/synvisio/pkg/dataset"
	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/genome"
	"github.com/matzehuels/synvisio/pkg/observability"
	"github.com/matzehuels/synvisio/pkg/perm"
	"github.com/matzehuels/synvisio/pkg/session"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different sessions.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// DatasetHash returns the content hash used in cache keys.
func DatasetHash(ds *dataset.Dataset) (string, error) {
	data, err := dataset.Marshal(ds)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash dataset")
	}
	return cache.Hash(data), nil
}

// Collisions counts the collisions of the session's current layout and
// reports whether the count came from the cache.
func (r *Runner) Collisions(ctx context.Context, sess *session.Session) (*CollisionResult, bool, error) {
	arr, err := sess.Arrangement()
	if err != nil {
		return nil, false, err
	}
	chords := sess.Chords()
	hooks := observability.Pipeline()
	hooks.OnCollisionsStart(ctx, sess.Dataset.Name, len(chords))

	out := &CollisionResult{Order: slices.Clone(sess.Order), Flipped: sess.Flipped.IDs()}

	hash, err := DatasetHash(sess.Dataset)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.CollisionKey(hash, out.Order, out.Flipped)
	if r.load(ctx, "collisions", key, &out.Result) {
		hooks.OnCollisionsComplete(ctx, sess.Dataset.Name, out.Collisions, 0, nil)
		return out, true, nil
	}

	res, err := collision.AnalyzeContext(ctx, arr, chords)
	if err != nil {
		hooks.OnCollisionsComplete(ctx, sess.Dataset.Name, res.Collisions, res.Duration, err)
		return nil, false, err
	}
	out.Result = res
	hooks.OnCollisionsComplete(ctx, sess.Dataset.Name, res.Collisions, res.Duration, nil)

	r.store(ctx, "collisions", key, out.Result, cache.CollisionTTL)
	r.Logger.Debug("counted collisions",
		"dataset", sess.Dataset.Name,
		"collisions", res.Collisions,
		"superimposed", res.Superimposed,
		"duration", res.Duration)
	return out, false, nil
}

// Optimize searches for a better layout of the session, starting from its
// current order and flips. The best layout is saved to the session's
// solution store; the session's order itself is left for the caller to
// update (see [session.Session.Apply]).
//
// On cancellation the best layout found so far is returned with
// Result.Cancelled set, together with the context error.
func (r *Runner) Optimize(ctx context.Context, sess *session.Session, opts Options) (*Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	arr, err := sess.Arrangement()
	if err != nil {
		return nil, false, err
	}
	ds := sess.Dataset
	hash, err := DatasetHash(ds)
	if err != nil {
		return nil, false, err
	}

	// Unseeded runs are random; only reproducible runs are cached.
	cacheable := opts.Seed != 0 && !opts.Refresh
	key := r.Keyer.OptimizeKey(hash, opts.KeyOpts(sess.Order, sess.Flipped.IDs(), ds.LayoutGap()))
	if cacheable {
		var cached Result
		if r.load(ctx, "optimize", key, &cached) {
			r.save(sess, &cached)
			return &cached, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnOptimizeStart(ctx, ds.Name, len(arr), len(ds.Chords))

	optimizer := anneal.Optimizer{
		ChooseSchedule: opts.Schedule,
		Gap:            ds.LayoutGap(),
		Seed:           opts.Seed,
		FlipFrequency:  opts.FlipFrequency,
		Flipped:        sess.Flipped,
		KeepTogether:   opts.KeepTogether,
		Progress:       opts.Progress,
		Logger:         opts.Logger,
	}
	ar, runErr := optimizer.Optimize(ctx, arr, ds.Chords)
	if ar == nil {
		hooks.OnOptimizeComplete(ctx, ds.Name, 0, 0, 0, runErr)
		return nil, false, runErr
	}

	best := ar.Arrangement.IDs()
	res := &Result{
		Dataset:           ds.Name,
		Order:             best,
		Flipped:           ar.Flipped.IDs(),
		Collisions:        ar.Energy,
		InitialCollisions: ar.InitialEnergy,
		Iterations:        ar.Iterations,
		Schedule:          ar.Schedule,
		Swaps:             perm.MinSwaps(best, sess.Order),
		FlipChanges:       flipChanges(sess.Flipped, ar.Flipped),
		Duration:          ar.Duration,
		Cancelled:         runErr != nil,
	}
	hooks.OnOptimizeComplete(ctx, ds.Name, res.InitialCollisions, res.Collisions, res.Duration, runErr)
	r.save(sess, res)

	r.Logger.Info("optimized layout",
		"dataset", ds.Name,
		"collisions", res.Collisions,
		"initial", res.InitialCollisions,
		"swaps", len(res.Swaps),
		"iterations", res.Iterations,
		"duration", res.Duration)

	if runErr != nil {
		return res, false, runErr
	}
	if cacheable {
		r.store(ctx, "optimize", key, res, cache.OptimizeTTL)
	}
	return res, false, nil
}

// SaveCurrent records the session's current layout in its solution store
// (the manual "save layout" action). It reports whether the store changed.
func (r *Runner) SaveCurrent(ctx context.Context, sess *session.Session) (bool, error) {
	cr, _, err := r.Collisions(ctx, sess)
	if err != nil {
		return false, err
	}
	arr, err := sess.Arrangement()
	if err != nil {
		return false, err
	}
	return sess.Solutions.Save(arr, sess.Flipped, cr.Collisions, sess.Chords()), nil
}

// save records an optimizer result in the session's solution store. Entries
// are keyed by the chords as drawn, so the result's flips are applied.
func (r *Runner) save(sess *session.Session, res *Result) {
	arr, err := sess.Dataset.Chromosomes.Reorder(res.Order)
	if err != nil {
		r.Logger.Warn("cannot save solution", "err", err)
		return
	}
	flipped := genome.NewFlipped(res.Flipped...)
	chords := sess.Dataset.Chords.ApplyFlips(sess.Dataset.Chromosomes.Lengths(), flipped)
	if sess.Solutions.Save(arr, flipped, res.Collisions, chords) {
		r.Logger.Debug("saved solution", "dataset", res.Dataset, "collisions", res.Collisions)
	}
}

// load reads a JSON value from the cache. Unreadable entries count as misses.
func (r *Runner) load(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (e.g., cache connections).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// flipChanges returns the ids whose orientation differs between two flip
// states, in natural order.
func flipChanges(before, after genome.Flipped) []string {
	var changed []string
	for _, id := range before.IDs() {
		if !after[id] {
			changed = append(changed, id)
		}
	}
	for _, id := range after.IDs() {
		if !before[id] {
			changed = append(changed, id)
		}
	}
	slices.SortFunc(changed, genome.CompareIDs)
	return changed
}
