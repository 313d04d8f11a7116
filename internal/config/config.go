// Package config loads shaded's configuration the way goXRPLd's
// internal/config loads xrpld's: viper layers defaults, a TOML file, and
// SHADED_-prefixed environment variables, then unmarshals into a typed
// struct that the rest of the program consumes directly.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// StorageConfig selects and configures the persistent key/value backend.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // "pebble", "goleveldb", or "memory"
	Path      string `mapstructure:"path"`
	CacheSize int    `mapstructure:"cache_size"`
}

// IndexerConfig controls the off-chain SQLite read-model and its optional
// Postgres archive sink.
type IndexerConfig struct {
	SQLitePath   string `mapstructure:"sqlite_path"`
	PostgresDSN  string `mapstructure:"postgres_dsn"`
	ArchiveEvery int    `mapstructure:"archive_every_n_blocks"`
}

// GRPCConfig controls the admin/query gRPC surface.
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// SweepConfig controls the concurrent subscription-charge sweeper.
type SweepConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	Concurrency     int `mapstructure:"concurrency"`
}

// Config is shaded's full process configuration.
type Config struct {
	Admin   string        `mapstructure:"admin"`
	Storage StorageConfig `mapstructure:"storage"`
	Indexer IndexerConfig `mapstructure:"indexer"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Sweep   SweepConfig   `mapstructure:"sweep"`

	configPath string
}

// ConfigPath returns the file this Config was loaded from, if any.
func (c *Config) ConfigPath() string { return c.configPath }

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "./data/shade")
	v.SetDefault("storage.cache_size", 1024)

	v.SetDefault("indexer.sqlite_path", "./data/shade-index.db")
	v.SetDefault("indexer.postgres_dsn", "")
	v.SetDefault("indexer.archive_every_n_blocks", 0)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.listen", "127.0.0.1:9090")

	v.SetDefault("sweep.interval_seconds", 300)
	v.SetDefault("sweep.concurrency", 8)
}

// Load reads configuration from configPath (a TOML file), applying
// defaults first and SHADED_-prefixed environment overrides last. An empty
// configPath loads defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("SHADED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.configPath = configPath

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func validate(c *Config) error {
	switch c.Storage.Backend {
	case "pebble", "goleveldb", "memory":
	default:
		return fmt.Errorf("unsupported storage.backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set for backend %q", c.Storage.Backend)
	}
	if c.Sweep.Concurrency <= 0 {
		return fmt.Errorf("sweep.concurrency must be positive")
	}
	return nil
}
