// Package config loads run settings from defaults, an optional YAML file,
// HIGHLIGHTS_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ankit-chaubey/media-metadata-highlights/core/logger"
)

// EnvPrefix namespaces environment overrides, e.g. HIGHLIGHTS_CSV_PATH.
const EnvPrefix = "HIGHLIGHTS"

// Configuration keys.
const (
	KeySidecarEnabled    = "sidecar.enabled"
	KeySidecarFormat     = "sidecar.format"
	KeySidecarSuffix     = "sidecar.suffix"
	KeySidecarIncludeRaw = "sidecar.include_raw"
	KeyCSVPath           = "csv.path"
	KeyLogLevel          = "log.level"
	KeyLogDevelopment    = "log.development"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete run configuration.
type Config struct {
	Sidecar SidecarConfig `mapstructure:"sidecar"`
	CSV     CSVConfig     `mapstructure:"csv"`
	Log     LogConfig     `mapstructure:"log"`
}

// SidecarConfig controls the per-file sidecar.
type SidecarConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Format  string `mapstructure:"format"`
	// Suffix is appended to the input path. Empty selects ".json" or ".yaml".
	Suffix     string `mapstructure:"suffix"`
	IncludeRaw bool   `mapstructure:"include_raw"`
}

// CSVConfig enables the shared CSV summary when Path is set.
type CSVConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySidecarEnabled, false)
	v.SetDefault(KeySidecarFormat, "json")
	v.SetDefault(KeySidecarSuffix, "")
	v.SetDefault(KeySidecarIncludeRaw, true)
	v.SetDefault(KeyCSVPath, "")
	v.SetDefault(KeyLogLevel, logger.DefaultLevel)
	v.SetDefault(KeyLogDevelopment, false)
}

// ReadFile merges a YAML config file into v. With an empty path it looks
// for highlights.yaml in the working directory and carries on without one.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("highlights")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Sidecar.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("%w: sidecar format %q is not json or yaml", ErrInvalidConfig, c.Sidecar.Format)
	}
	if strings.ContainsAny(c.Sidecar.Suffix, `/\`) {
		return fmt.Errorf("%w: sidecar suffix %q must not contain a path separator", ErrInvalidConfig, c.Sidecar.Suffix)
	}
	if err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// IncludeRaw reports whether records keep their raw tags. Only sidecars
// persist them.
func (c *Config) IncludeRaw() bool {
	return c.Sidecar.Enabled && c.Sidecar.IncludeRaw
}
