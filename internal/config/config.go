// Package config loads namebayes settings from defaults, an optional TOML or
// YAML file and NAMEBAYES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/namebayes/internal/bayes"
	"github.com/abhisek/namebayes/internal/dataset"
)

// ErrInvalid is returned for config files or values that fail validation.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NAMEBAYES_"

// Config holds every tunable of an evaluation run.
type Config struct {
	// Data is the path of the labeled name file.
	Data string `yaml:"data" toml:"data"`
	// DB is the run history database path. Empty uses the XDG default.
	DB string `yaml:"db" toml:"db"`

	// Seed drives the shuffle. 0 picks a seed from the clock.
	Seed       uint64  `yaml:"seed" toml:"seed"`
	TrainRatio float64 `yaml:"train_ratio" toml:"train_ratio"`
	// Workers bounds parallel training and classification. 0 uses every CPU.
	Workers int    `yaml:"workers" toml:"workers"`
	Scoring string `yaml:"scoring" toml:"scoring"`

	Format   string `yaml:"format" toml:"format"`
	LogLevel string `yaml:"log_level" toml:"log_level"`
	Color    string `yaml:"color" toml:"color"`

	// KeepRuns prunes history to the newest N runs after each save. 0 keeps all.
	KeepRuns      int    `yaml:"keep_runs" toml:"keep_runs"`
	MetricsFile   string `yaml:"metrics_file" toml:"metrics_file"`
	CacheFeatures bool   `yaml:"cache_features" toml:"cache_features"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TrainRatio: dataset.DefaultTrainRatio,
		Workers:    1,
		Scoring:    string(bayes.ScoreProduct),
		Format:     "text",
		LogLevel:   "info",
		Color:      "auto",
	}
}

// Load builds a Config from defaults, the file at path (skipped when path is
// empty) and environment overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
		if err := validateDocument(raw); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrInvalid, path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
		if err := validateDocument(raw); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrInvalid, path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config extension %q (want .toml, .yaml or .yml)", ErrInvalid, ext)
	}
	return nil
}

// applyEnv overrides fields from NAMEBAYES_* variables. getenv is injected
// for tests.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(dst *string, key string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	str(&c.Data, "DATA")
	str(&c.DB, "DB")
	str(&c.Scoring, "SCORING")
	str(&c.Format, "FORMAT")
	str(&c.LogLevel, "LOG_LEVEL")
	str(&c.Color, "COLOR")
	str(&c.MetricsFile, "METRICS_FILE")

	if v := getenv(EnvPrefix + "SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sSEED: %v", ErrInvalid, EnvPrefix, err)
		}
		c.Seed = n
	}
	if v := getenv(EnvPrefix + "TRAIN_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sTRAIN_RATIO: %v", ErrInvalid, EnvPrefix, err)
		}
		c.TrainRatio = f
	}
	for key, dst := range map[string]*int{"WORKERS": &c.Workers, "KEEP_RUNS": &c.KeepRuns} {
		if v := getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrInvalid, EnvPrefix, key, err)
			}
			*dst = n
		}
	}
	if v := getenv(EnvPrefix + "CACHE_FEATURES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_FEATURES: %v", ErrInvalid, EnvPrefix, err)
		}
		c.CacheFeatures = b
	}
	return nil
}

// Validate checks value ranges. Load calls it; callers that change fields
// afterwards (CLI flags) should call it again.
func (c Config) Validate() error {
	var errs []error
	if c.TrainRatio < 0 || c.TrainRatio > 1 || math.IsNaN(c.TrainRatio) {
		errs = append(errs, fmt.Errorf("train_ratio %v out of range [0, 1]", c.TrainRatio))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.KeepRuns < 0 {
		errs = append(errs, fmt.Errorf("keep_runs must be >= 0, got %d", c.KeepRuns))
	}
	if _, err := bayes.ParseScoreMode(c.Scoring); err != nil {
		errs = append(errs, err)
	}
	if !oneOf(c.Format, "text", "json") {
		errs = append(errs, fmt.Errorf("unknown format %q (want text or json)", c.Format))
	}
	if !oneOf(c.LogLevel, "debug", "info", "warn", "error") {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if !oneOf(c.Color, "auto", "on", "off") {
		errs = append(errs, fmt.Errorf("unknown color %q (want auto, on or off)", c.Color))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// ScoreMode returns the parsed scoring mode. Valid after Validate.
func (c Config) ScoreMode() bayes.ScoreMode {
	mode, _ := bayes.ParseScoreMode(c.Scoring)
	return mode
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
