// Package config loads the CLI and API server configuration from a
// default set of values, an optional YAML file, environment variables
// prefixed WOWSUNPACK_, and CLI flags, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wowsunpack/wowsunpack/internal/pathutil"
)

// APIConfig controls the optional HTTP API server.
type APIConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

// LogConfig controls where and how verbosely the process logs.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Config is the fully resolved configuration for a wowsunpack run.
type Config struct {
	GameRoot string    `mapstructure:"game_root"`
	DestRoot string    `mapstructure:"dest_root"`
	CacheDB  string    `mapstructure:"cache_db"`
	Workers  int       `mapstructure:"workers"`
	API      APIConfig `mapstructure:"api"`
	Log      LogConfig `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 4)
	v.SetDefault("api.addr", ":8080")
	v.SetDefault("api.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// Load reads configuration from configFile (if non-empty), environment
// variables, and whatever flags were already bound to v, and decodes the
// result into a Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("WOWSUNPACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

// Validate checks mutually-dependent fields and accumulates every
// violation into a single error rather than failing on the first.
func (c *Config) Validate() error {
	var problems []string

	if c.GameRoot == "" {
		problems = append(problems, "game_root is required")
	}
	if c.DestRoot == "" {
		problems = append(problems, "dest_root is required")
	}
	if c.Workers < 1 {
		problems = append(problems, "workers must be >= 1")
	}
	if c.API.Enabled && c.API.Addr == "" {
		problems = append(problems, "api.addr is required when api.enabled is true")
	}
	if c.CacheDB != "" {
		if err := pathutil.CheckFileDirectoryWritable(c.CacheDB, "cache_db"); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if c.Log.File != "" {
		if err := pathutil.CheckFileDirectoryWritable(c.Log.File, "log.file"); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
