package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/namebayes/internal/evaluate"
	"github.com/abhisek/namebayes/internal/store"
)

// amyMax is the evaluation of {amy: female, max: male} where both were
// predicted female.
func amyMax(t *testing.T) Report {
	t.Helper()
	cm, err := evaluate.FromRows([]string{"female", "male"}, [][]int{{1, 0, 0}, {1, 0, 0}})
	require.NoError(t, err)
	return Report{
		Source:     "names.csv",
		Seed:       42,
		TrainRatio: 0.8,
		Scoring:    "product",
		Records:    6,
		TrainSize:  4,
		TestSize:   2,
		Matrix:     cm,
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1", FormatValue(1))
	assert.Equal(t, "0.5", FormatValue(0.5))
	assert.Equal(t, "0", FormatValue(0))
	assert.Equal(t, "0.6666666666666666", FormatValue(2.0/3.0))
	assert.Equal(t, Undefined, FormatValue(math.NaN()))
}

func TestWriteText_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, amyMax(t), TextOptions{}))

	want := strings.Join([]string{
		"Precision(female) => 0.5",
		"Recall(female) => 1",
		"F(female) => 0.6666666666666666",
		"Precision(male) => undefined",
		"Recall(male) => 0",
		"F(male) => undefined",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteText_NoClasses(t *testing.T) {
	var buf bytes.Buffer
	r := Report{Matrix: evaluate.NewConfusionMatrix(nil)}
	require.NoError(t, WriteText(&buf, r, TextOptions{Summary: true}))
	assert.Contains(t, buf.String(), "0/0 correct")
	assert.Contains(t, buf.String(), "accuracy undefined")
}

func TestWriteText_Summary(t *testing.T) {
	r := amyMax(t)
	r.RunID = "abc"
	r.Timings = []Timing{{Phase: "train", Duration: 1500 * time.Microsecond}}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r, TextOptions{Summary: true}))
	out := buf.String()

	assert.Contains(t, out, "Run: abc")
	assert.Contains(t, out, "seed 42, train ratio 0.8, scoring product")
	assert.Contains(t, out, "6 records (0 skipped, 0 duplicates), 4 train, 2 test")
	assert.Contains(t, out, "Classes: female, male")
	assert.Contains(t, out, "unassigned")
	assert.Contains(t, out, "Precision(female) => 0.5\n")
	assert.Contains(t, out, "Summary: 1/2 correct, 0 unassigned, accuracy 0.5")
	assert.Contains(t, out, "Macro => precision 0.5, recall 0.5, F 0.6666666666666666")
	assert.Contains(t, out, "train")
	assert.Contains(t, out, "1.5ms")
}

func TestWriteText_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, amyMax(t), TextOptions{Color: true}))
	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "Precision(female) => ")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteText_Error(t *testing.T) {
	err := WriteText(failWriter{}, amyMax(t), TextOptions{Summary: true})
	assert.EqualError(t, err, "disk full")
}

func TestWriteJSON(t *testing.T) {
	r := amyMax(t)
	r.Timings = []Timing{{Phase: "evaluate", Duration: 2 * time.Millisecond}}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, []any{"female", "male"}, got["classes"])
	assert.Equal(t, []any{[]any{1.0, 0.0, 0.0}, []any{1.0, 0.0, 0.0}}, got["matrix"])

	metrics := got["metrics"].([]any)
	require.Len(t, metrics, 2)
	male := metrics[1].(map[string]any)
	assert.Equal(t, "male", male["class"])
	assert.Nil(t, male["precision"])
	assert.Equal(t, 0.0, male["recall"])
	assert.Nil(t, male["f1"])

	summary := got["summary"].(map[string]any)
	assert.Equal(t, 0.5, summary["accuracy"])
	assert.Equal(t, 2.0, got["timings_ms"].(map[string]any)["evaluate"])

	run := got["run"].(map[string]any)
	assert.Equal(t, 42.0, run["seed"])
	assert.NotContains(t, run, "id")
	assert.NotContains(t, run, "created_at")
}

func TestFromRun(t *testing.T) {
	run := store.Run{
		ID:        "r1",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Source:    "names.csv",
		Seed:      9,
		TestSize:  2,
		Data: store.RunData{
			Classes: []string{"female", "male"},
			Matrix:  [][]int{{1, 0, 0}, {0, 1, 0}},
		},
	}
	r, err := FromRun(run)
	require.NoError(t, err)
	assert.Equal(t, "r1", r.RunID)
	assert.Equal(t, 2, r.Matrix.Correct())

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r, TextOptions{}))
	assert.Contains(t, buf.String(), "F(male) => 1\n")

	run.Data.Matrix = [][]int{{1, 0}}
	_, err = FromRun(run)
	assert.Error(t, err)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, Nullable(math.NaN()))
	v := Nullable(0.25)
	require.NotNil(t, v)
	assert.Equal(t, 0.25, *v)
}
