package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failures are
// logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks writing to logger, or to log.Default() if nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnCollisionsStart(_ context.Context, dataset string, chords int) {
	h.logger.Debug("counting collisions", "dataset", dataset, "chords", chords)
}

func (h *LogHooks) OnCollisionsComplete(_ context.Context, dataset string, collisions int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("collision count failed", "dataset", dataset, "err", err)
		return
	}
	h.logger.Debug("counted collisions", "dataset", dataset, "collisions", collisions, "duration", d)
}

func (h *LogHooks) OnOptimizeStart(_ context.Context, dataset string, chromosomes, chords int) {
	h.logger.Debug("optimizing", "dataset", dataset, "chromosomes", chromosomes, "chords", chords)
}

func (h *LogHooks) OnOptimizeComplete(_ context.Context, dataset string, initial, best int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("optimization stopped", "dataset", dataset, "best", best, "err", err)
		return
	}
	h.logger.Debug("optimized", "dataset", dataset, "initial", initial, "best", best, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
