package instrument

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()
	r.Records("parsed", 10)
	r.Records("parsed", 2)
	r.Records("skipped", 0)
	r.Predictions("female", "correct", 2)
	r.Predictions("male", "unassigned", 1)
	r.Predictions("male", "wrong", 0)

	assert.Equal(t, 12.0, testutil.ToFloat64(r.records.WithLabelValues("parsed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.predictions.WithLabelValues("female", "correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.predictions.WithLabelValues("male", "unassigned")))
	// Zero adds never create a series.
	assert.Equal(t, 3, testutil.CollectAndCount(r.records)+testutil.CollectAndCount(r.predictions))
}

func TestRecorder_GaugesSkipNaN(t *testing.T) {
	r := NewRecorder()
	r.Phase("train", 1500*time.Millisecond)
	r.ClassMetric("female", "precision", 0.5)
	r.ClassMetric("male", "precision", math.NaN())

	assert.Equal(t, 1.5, testutil.ToFloat64(r.phase.WithLabelValues("train")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.metric))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Records("parsed", 1)
		r.Predictions("a", "correct", 1)
		r.Phase("load", time.Second)
		r.ClassMetric("a", "recall", 1)
	})
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Records("train", 4)
	r.ClassMetric("female", "f1", 1)

	path := filepath.Join(t.TempDir(), "namebayes.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `namebayes_records_total{outcome="train"} 4`)
	assert.Contains(t, out, `namebayes_class_metric{class="female",metric="f1"} 1`)
}

func TestRecorder_WriteTextfileBadDir(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
