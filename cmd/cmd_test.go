package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/namebayes/internal/config"
)

const names = `name,class
anna,female
mia,female
eve,female
ella,female
zoe,female
bob,male
jon,male
tim,male
sam,male
ned,male
`

type env struct {
	dir  string
	data string
	db   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	for _, k := range []string{
		"CONFIG", "DATA", "DB", "SEED", "TRAIN_RATIO", "WORKERS", "SCORING", "FORMAT",
		"LOG_LEVEL", "COLOR", "KEEP_RUNS", "METRICS_FILE", "CACHE_FEATURES",
	} {
		t.Setenv(config.EnvPrefix+k, "")
	}
	dir := t.TempDir()
	e := env{dir: dir, data: filepath.Join(dir, "names.csv"), db: filepath.Join(dir, "runs.db")}
	require.NoError(t, os.WriteFile(e.data, []byte(names), 0o644))
	return e
}

// run executes the CLI with args and returns stdout.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--db", e.db, "--color", "off", "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestEvaluate_TextReport(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "evaluate", "--data", e.data, "--seed", "42", "--no-save")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Precision(female) => "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Recall(female) => "), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "F(female) => "), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Precision(male) => "), lines[3])

	again, err := e.run(t, "evaluate", "--data", e.data, "--seed", "42", "--no-save")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestEvaluate_JSONAndHistory(t *testing.T) {
	e := newEnv(t)
	metrics := filepath.Join(e.dir, "namebayes.prom")
	out, err := e.run(t, "evaluate", "--data", e.data, "--seed", "9",
		"--format", "json", "--workers", "2", "--metrics-file", metrics)
	require.NoError(t, err)

	var doc struct {
		Run struct {
			ID        string `json:"id"`
			Seed      uint64 `json:"seed"`
			TrainSize int    `json:"train_size"`
			TestSize  int    `json:"test_size"`
		} `json:"run"`
		Classes []string `json:"classes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc.Run.ID)
	assert.Equal(t, uint64(9), doc.Run.Seed)
	assert.Equal(t, 8, doc.Run.TrainSize)
	assert.Equal(t, 2, doc.Run.TestSize)
	assert.Equal(t, []string{"female", "male"}, doc.Classes)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "namebayes_records_total")

	list, err := e.run(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, list, doc.Run.ID[:8])
	assert.Contains(t, list, "8/2")

	view, err := e.run(t, "runs", "view", doc.Run.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, view, "Run: "+doc.Run.ID)
	assert.Contains(t, view, "Precision(female) => ")
	assert.Contains(t, view, "Summary:")

	_, err = e.run(t, "runs", "view", "does-not-exist")
	assert.ErrorContains(t, err, "not found")
}

func TestRunsPrune(t *testing.T) {
	e := newEnv(t)
	for _, seed := range []string{"1", "2", "3"} {
		_, err := e.run(t, "evaluate", "--data", e.data, "--seed", seed)
		require.NoError(t, err)
	}

	out, err := e.run(t, "runs", "prune", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 run(s)")

	list, err := e.run(t, "runs", "list")
	require.NoError(t, err)
	// Header, rule and one run.
	assert.Len(t, strings.Split(strings.TrimSpace(list), "\n"), 3)

	_, err = e.run(t, "runs", "prune")
	assert.Error(t, err)
}

func TestRunsList_Empty(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "runs", "list")
	require.NoError(t, err)
	assert.Equal(t, "No runs found.\n", out)
}

func TestClassify(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "classify", "--data", e.data, "Emma", "Ben")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Emma => "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Ben => "), lines[1])

	out, err = e.run(t, "classify", "--data", e.data, "--scores", "--scoring", "log", "amy")
	require.NoError(t, err)
	assert.Contains(t, out, "  female ")
	assert.Contains(t, out, "  male ")
}

func TestConfigFile(t *testing.T) {
	e := newEnv(t)
	cfgPath := filepath.Join(e.dir, "namebayes.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"data = \""+filepath.ToSlash(e.data)+"\"\nseed = 5\nformat = \"json\"\n"), 0o644))

	out, err := e.run(t, "--config", cfgPath, "evaluate", "--no-save")
	require.NoError(t, err)
	assert.Contains(t, out, `"seed": 5`)

	// Flags beat the file.
	out, err = e.run(t, "--config", cfgPath, "evaluate", "--no-save", "--format", "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Precision("), out)
}

func TestErrors(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no data", []string{"evaluate"}, "no dataset"},
		{"bad scoring", []string{"evaluate", "--data", e.data, "--scoring", "sum"}, "invalid config"},
		{"bad ratio", []string{"evaluate", "--data", e.data, "--train-ratio", "2"}, "invalid config"},
		{"missing file", []string{"evaluate", "--data", filepath.Join(e.dir, "nope.csv")}, "open dataset"},
		{"classify without names", []string{"classify", "--data", e.data}, "requires at least 1 arg"},
		{"bad config file", []string{"--config", filepath.Join(e.dir, "c.ini"), "evaluate"}, "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "namebayes (devel)\n", out)
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, useColor("on", &buf))
	assert.False(t, useColor("off", &buf))
	assert.False(t, useColor("auto", &buf))
}
