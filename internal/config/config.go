// Package config holds the immutable per-run configuration: enabled
// pattern families, include/exclude selector lists, the cache ceiling,
// and custom pattern extensions. A Config is produced once at startup
// from the merge of defaults, an optional config file, and flag
// overrides, and is read-only thereafter.
package config

import (
	"fmt"
	"regexp"

	"github.com/andybalholm/cascadia"
	"github.com/spf13/viper"

	"typograf/internal/pattern"
	"typograf/internal/process"
)

// Families toggles the built-in pattern families.
type Families struct {
	Trademark  bool `mapstructure:"trademark"`
	Registered bool `mapstructure:"registered"`
	Copyright  bool `mapstructure:"copyright"`
	Ordinal    bool `mapstructure:"ordinal"`
	Chemical   bool `mapstructure:"chemical"`
	MathSuper  bool `mapstructure:"math_super"`
	MathSub    bool `mapstructure:"math_sub"`
}

// Selectors are the ordered include/exclude selector lists consumed by
// the applier. The processor never sees them.
type Selectors struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// Config is the full run configuration.
type Config struct {
	Families  Families  `mapstructure:"families"`
	Selectors Selectors `mapstructure:"selectors"`
	// CacheSize is the segment cache entry ceiling; must be positive.
	CacheSize int `mapstructure:"cache_size"`
	// CustomPatterns maps extension family names to expressions.
	CustomPatterns map[string]string `mapstructure:"custom_patterns"`
}

// Default returns the configuration used when nothing is overridden:
// all families on, whole-body traversal, markup-bearing regions
// excluded via skip tags in the applier.
func Default() Config {
	return Config{
		Families: Families{
			Trademark:  true,
			Registered: true,
			Copyright:  true,
			Ordinal:    true,
			Chemical:   true,
			MathSuper:  true,
			MathSub:    true,
		},
		Selectors: Selectors{
			Include: []string{"body"},
			Exclude: []string{"[data-typograf-skip]"},
		},
		CacheSize: process.DefaultCacheSize,
	}
}

// Load merges an optional config file (JSON, YAML, or TOML, by
// extension) over the defaults. Unrecognized keys in the file are
// ignored, not rejected. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	setDefaults(v, cfg)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config file %q: %w", path, err)
	}
	return cfg, nil
}

// setDefaults seeds viper so file values merge over, rather than
// replace, the default configuration.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("families.trademark", cfg.Families.Trademark)
	v.SetDefault("families.registered", cfg.Families.Registered)
	v.SetDefault("families.copyright", cfg.Families.Copyright)
	v.SetDefault("families.ordinal", cfg.Families.Ordinal)
	v.SetDefault("families.chemical", cfg.Families.Chemical)
	v.SetDefault("families.math_super", cfg.Families.MathSuper)
	v.SetDefault("families.math_sub", cfg.Families.MathSub)
	v.SetDefault("selectors.include", cfg.Selectors.Include)
	v.SetDefault("selectors.exclude", cfg.Selectors.Exclude)
	v.SetDefault("cache_size", cfg.CacheSize)
}

// Validate fails fast on malformed selectors, malformed custom
// patterns, or a non-positive cache ceiling, identifying the offending
// field. The core never falls back to a partial pattern set.
func (c Config) Validate() error {
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size: must be a positive integer, got %d", c.CacheSize)
	}
	if len(c.Selectors.Include) == 0 {
		return fmt.Errorf("selectors.include: at least one selector is required")
	}
	for _, s := range c.Selectors.Include {
		if _, err := cascadia.ParseGroup(s); err != nil {
			return fmt.Errorf("selectors.include: invalid selector %q: %w", s, err)
		}
	}
	for _, s := range c.Selectors.Exclude {
		if _, err := cascadia.ParseGroup(s); err != nil {
			return fmt.Errorf("selectors.exclude: invalid selector %q: %w", s, err)
		}
	}
	for name, expr := range c.CustomPatterns {
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("custom_patterns.%s: %w", name, err)
		}
	}
	return nil
}

// PatternOptions maps the configuration onto registry build options.
func (c Config) PatternOptions() pattern.Options {
	return pattern.Options{
		Trademark:  c.Families.Trademark,
		Registered: c.Families.Registered,
		Copyright:  c.Families.Copyright,
		Ordinal:    c.Families.Ordinal,
		Chemical:   c.Families.Chemical,
		MathSuper:  c.Families.MathSuper,
		MathSub:    c.Families.MathSub,
		Custom:     c.CustomPatterns,
	}
}
