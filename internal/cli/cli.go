// Package cli implements the synvisio command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/synvisio/pkg/buildinfo"
	"github.com/matzehuels/synvisio/pkg/cache"
	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/observability"
	"github.com/matzehuels/synvisio/pkg/pipeline"
	"github.com/matzehuels/synvisio/pkg/session"
	"github.com/matzehuels/synvisio/pkg/solutions"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "synvisio"

	// connectTimeout bounds connecting to Redis or MongoDB.
	connectTimeout = 10 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Synvisio untangles circular synteny plots",
		Long: `Synvisio reorders and flips chromosomes in a circular synteny plot so
that fewer chords cross each other.

It counts chord collisions for a layout, searches for better layouts with
simulated annealing, and computes the shortest swap sequence between two
orders.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.SetPipelineHooks(observability.NewLogHooks(c.Logger))
				observability.SetCacheHooks(observability.NewLogHooks(c.Logger))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/synvisio/config.toml)")

	root.AddCommand(c.countCommand())
	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.swapsCommand())
	root.AddCommand(c.etaCommand())
	root.AddCommand(c.solutionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config.Cache
	if noCache || cfg.Backend == backendNone {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case backendRedis:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case backendFile, "":
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unknown cache backend %q", cfg.Backend)
	}
}

// newSessionStore creates the server's session store.
func (c *CLI) newSessionStore(ctx context.Context) (session.Store, error) {
	cfg := c.config.Sessions
	switch cfg.Backend {
	case backendMemory, "":
		return session.NewMemoryStore(), nil
	case backendFile:
		return session.NewFileStore(cfg.Dir)
	case backendRedis:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unknown session backend %q", cfg.Backend)
	}
}

// newArchive creates the solution archive. The returned close function
// releases its connection; it is never nil.
func (c *CLI) newArchive(ctx context.Context) (solutions.Archive, func(), error) {
	cfg := c.config.Archive
	noop := func() {}
	switch cfg.Backend {
	case backendNone:
		return nil, noop, nil
	case backendFile, "":
		dir := cfg.Dir
		if dir == "" {
			base, err := dataDir()
			if err != nil {
				return nil, noop, nil
			}
			dir = filepath.Join(base, "solutions")
		}
		a, err := solutions.NewFileArchive(dir)
		return a, noop, err
	case backendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, noop, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, noop, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return solutions.NewMongoArchive(client.Database(cfg.MongoDatabase)), closeFn, nil
	default:
		return nil, noop, errors.New(errors.ErrCodeInvalidOptions, "unknown archive backend %q", cfg.Backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/synvisio/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// splitIDs parses a comma-separated id list. Blank entries are dropped.
func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseDuration parses a config duration, falling back to def when empty.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidOptions, err, "invalid duration %q", s)
	}
	return d, nil
}
