package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/pipeline"
)

// Backend names accepted in the config file.
const (
	backendNone   = "none"
	backendFile   = "file"
	backendMemory = "memory"
	backendRedis  = "redis"
	backendMongo  = "mongo"
)

// Config is the optional config file. Flags override its values.
//
//	[anneal]
//	auto = true
//	keep_together = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[archive]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
type Config struct {
	Anneal   pipeline.Options `toml:"anneal"`
	Cache    CacheConfig      `toml:"cache"`
	Sessions SessionConfig    `toml:"sessions"`
	Archive  ArchiveConfig    `toml:"archive"`
	Server   ServerConfig     `toml:"server"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file (default), redis, none
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// SessionConfig selects the server's session store.
type SessionConfig struct {
	Backend       string `toml:"backend"` // memory (default), file, redis
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTL           string `toml:"ttl"`
}

// ArchiveConfig selects where solution stores are persisted between runs.
type ArchiveConfig struct {
	Backend       string `toml:"backend"` // file (default), mongo, none
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	OptimizeTimeout string `toml:"optimize_timeout"`
}

func defaultConfig() Config {
	return Config{
		Cache:    CacheConfig{Backend: backendFile, RedisAddr: "localhost:6379"},
		Sessions: SessionConfig{Backend: backendMemory, RedisAddr: "localhost:6379", TTL: "24h"},
		Archive:  ArchiveConfig{Backend: backendFile, MongoDatabase: appName},
		Server:   ServerConfig{Addr: ":8080", OptimizeTimeout: "5m"},
	}
}

// loadConfig reads the config file at path over the defaults. An empty path
// means the default location, which may be absent.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return defaultConfig(), nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Anneal.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidOptions, err, "config %s [anneal]", path)
	}
	return cfg, nil
}

// configDir returns the config directory using XDG standard (~/.config/synvisio/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/synvisio/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
