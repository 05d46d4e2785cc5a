// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-twon.
//
// go-twon is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads twon CLI settings from defaults, an optional YAML
// config file, TWON_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-twon/pkg/shareio"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. TWON_OUTPUT.
	EnvPrefix = "TWON"

	// DefaultConfigName is looked up in the home directory when no
	// config file is given.
	DefaultConfigName = ".twon"
)

// Keys understood by Load. Nested keys map to env vars with "_", e.g.
// redis.timeout -> TWON_REDIS_TIMEOUT.
const (
	KeyOutput       = "output"
	KeyInput        = "input"
	KeyStore        = "store"
	KeyStoreTTL     = "store_ttl"
	KeyVerbose      = "verbose"
	KeyLogFormat    = "log.format"
	KeyMetricsFile  = "metrics_file"
	KeyRedisTimeout = "redis.timeout"
	KeyRedisPrefix  = "redis.prefix"
)

// Config holds the resolved CLI configuration
type Config struct {
	// Output is the share format written by split (text, json, yaml)
	Output string `mapstructure:"output"`

	// Input is the share format read by recover and verify (auto, text, json, yaml)
	Input string `mapstructure:"input"`

	// Store is a storage URL (file:///dir, a directory path, mem://, redis://host:port/db).
	// Empty means shares go to stdout.
	Store string `mapstructure:"store"`

	// StoreTTL expires stored shares on backends that support it
	StoreTTL time.Duration `mapstructure:"store_ttl"`

	// Verbose enables debug logging
	Verbose bool `mapstructure:"verbose"`

	// Log controls the log handler
	Log LogConfig `mapstructure:"log"`

	// MetricsFile, when set, receives a Prometheus textfile after each command
	MetricsFile string `mapstructure:"metrics_file"`

	// Redis tunes the redis storage backend
	Redis RedisConfig `mapstructure:"redis"`

	// ConfigFile is the file settings were read from, if any
	ConfigFile string `mapstructure:"-"`
}

// LogConfig controls logging behavior
type LogConfig struct {
	Format string `mapstructure:"format"`
}

// RedisConfig controls the redis backend
type RedisConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Prefix  string        `mapstructure:"prefix"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOutput, string(shareio.FormatText))
	v.SetDefault(KeyInput, "auto")
	v.SetDefault(KeyStore, "")
	v.SetDefault(KeyStoreTTL, time.Duration(0))
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyRedisTimeout, 5*time.Second)
	v.SetDefault(KeyRedisPrefix, "twon:")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (path, or ~/.twon.yaml when path is empty and
// the file exists) into v and returns the validated configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	out, err := shareio.ParseFormat(c.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if out == shareio.FormatAuto {
		return fmt.Errorf("output: a concrete format is required (text, json, yaml)")
	}
	if _, err := shareio.ParseFormat(c.Input); err != nil {
		return fmt.Errorf("input: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format)
	}

	if c.StoreTTL < 0 {
		return fmt.Errorf("store_ttl: must not be negative")
	}
	if c.Redis.Timeout <= 0 {
		return fmt.Errorf("redis.timeout: must be positive")
	}
	return nil
}

// OutputFormat returns the parsed split output format.
func (c *Config) OutputFormat() shareio.Format {
	f, _ := shareio.ParseFormat(c.Output)
	return f
}

// InputFormat returns the parsed recover input format.
func (c *Config) InputFormat() shareio.Format {
	f, _ := shareio.ParseFormat(c.Input)
	return f
}
