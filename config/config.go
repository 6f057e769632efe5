// Package config loads schedsync configuration via Viper: TOML file plus
// SCHEDSYNC_-prefixed environment overrides, with defaults for everything.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"schedsync/errors"
)

// Config is the schedsync configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// DatabaseConfig configures the SQLite job store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ReconcileConfig carries the global directive defaults and the handler
// names the store treats as resolvable.
type ReconcileConfig struct {
	OverwriteExistingData bool `mapstructure:"overwrite_existing_data"`
	IgnoreDuplicates      bool `mapstructure:"ignore_duplicates"`
	PruneOrphans          bool `mapstructure:"prune_orphans"`

	// Handlers lists the job handler names known to this deployment. Jobs
	// referencing other handlers are treated as orphans. Empty disables
	// handler resolution checks.
	Handlers []string `mapstructure:"handlers"`
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "schedsync.db")

	v.SetDefault("reconcile.overwrite_existing_data", true)
	v.SetDefault("reconcile.ignore_duplicates", false)
	v.SetDefault("reconcile.prune_orphans", false)
	v.SetDefault("reconcile.handlers", []string{})
}

var globalConfig *Config

// Load reads configuration from schedsync.toml in the working directory (if
// present), environment, and defaults. The result is cached.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := viper.New()
	v.SetEnvPrefix("SCHEDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigName("schedsync")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
		// No config file is fine; defaults and environment apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path, bypassing the
// cache and environment lookup.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config from %s", configPath)
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
}
