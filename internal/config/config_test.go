package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/namebayes/internal/bayes"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA", "DB", "SEED", "TRAIN_RATIO", "WORKERS", "SCORING", "FORMAT",
		"LOG_LEVEL", "COLOR", "KEEP_RUNS", "METRICS_FILE", "CACHE_FEATURES",
	} {
		t.Setenv(EnvPrefix+k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.8, cfg.TrainRatio)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, bayes.ScoreProduct, cfg.ScoreMode())
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "auto", cfg.Color)
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "namebayes.toml", `
data = "names.csv"
seed = 7
train_ratio = 0.5
scoring = "log"
cache_features = true
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "names.csv", cfg.Data)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 0.5, cfg.TrainRatio)
	assert.Equal(t, bayes.ScoreLog, cfg.ScoreMode())
	assert.True(t, cfg.CacheFeatures)
	// Unset keys keep defaults.
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "namebayes.yml", `
data: names.csv
workers: 4
format: json
keep_runs: 10
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "names.csv", cfg.Data)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 10, cfg.KeepRuns)
	assert.Equal(t, 0.8, cfg.TrainRatio)
}

func TestLoad_EmptyYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_SchemaRejects(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name, file, content string
	}{
		{"unknown key", "c.yaml", "datafile: x.csv\n"},
		{"wrong type", "c.yaml", "workers: many\n"},
		{"ratio above one", "c.toml", "train_ratio = 1.5\n"},
		{"negative seed", "c.yaml", "seed: -1\n"},
		{"bad enum", "c.toml", `scoring = "sum"` + "\n"},
		{"bad syntax", "c.toml", "data = \n"},
		{"bad extension", "c.json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "c.yaml", "data: file.csv\nseed: 1\n")
	t.Setenv("NAMEBAYES_DATA", "env.csv")
	t.Setenv("NAMEBAYES_SEED", "99")
	t.Setenv("NAMEBAYES_TRAIN_RATIO", "0.25")
	t.Setenv("NAMEBAYES_WORKERS", "3")
	t.Setenv("NAMEBAYES_KEEP_RUNS", "5")
	t.Setenv("NAMEBAYES_CACHE_FEATURES", "true")
	t.Setenv("NAMEBAYES_LOG_LEVEL", "debug")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "env.csv", cfg.Data)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, 0.25, cfg.TrainRatio)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 5, cfg.KeepRuns)
	assert.True(t, cfg.CacheFeatures)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnv_Invalid(t *testing.T) {
	for _, kv := range [][2]string{
		{"NAMEBAYES_SEED", "-4"},
		{"NAMEBAYES_TRAIN_RATIO", "half"},
		{"NAMEBAYES_WORKERS", "x"},
		{"NAMEBAYES_CACHE_FEATURES", "maybe"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.applyEnv(func(k string) string {
				if k == kv[0] {
					return kv[1]
				}
				return ""
			})
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ratio", func(c *Config) { c.TrainRatio = -0.1 }},
		{"workers", func(c *Config) { c.Workers = -1 }},
		{"keep", func(c *Config) { c.KeepRuns = -2 }},
		{"scoring", func(c *Config) { c.Scoring = "max" }},
		{"format", func(c *Config) { c.Format = "xml" }},
		{"log level", func(c *Config) { c.LogLevel = "trace" }},
		{"color", func(c *Config) { c.Color = "always" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
