// Package report renders evaluation results as text or JSON.
package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/abhisek/namebayes/internal/evaluate"
	"github.com/abhisek/namebayes/internal/store"
)

// Undefined is printed for metrics whose denominator is zero.
const Undefined = "undefined"

// Timing is the wall time of one pipeline phase.
type Timing struct {
	Phase    string
	Duration time.Duration
}

// Report is everything needed to render one evaluation run.
type Report struct {
	RunID      string
	CreatedAt  time.Time
	Source     string
	Seed       uint64
	TrainRatio float64
	Scoring    string

	Records    int
	Skipped    int
	Duplicates int
	TrainSize  int
	TestSize   int

	Matrix  *evaluate.ConfusionMatrix
	Timings []Timing
}

// FromRun rebuilds a Report from a stored run. Metrics are recomputed from
// the stored matrix.
func FromRun(run store.Run) (Report, error) {
	cm, err := evaluate.FromRows(run.Data.Classes, run.Data.Matrix)
	if err != nil {
		return Report{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return Report{
		RunID:      run.ID,
		CreatedAt:  run.CreatedAt,
		Source:     run.Source,
		Seed:       run.Seed,
		TrainRatio: run.TrainRatio,
		Scoring:    run.Scoring,
		Records:    run.Records,
		Skipped:    run.Skipped,
		Duplicates: run.Duplicates,
		TrainSize:  run.TrainSize,
		TestSize:   run.TestSize,
		Matrix:     cm,
	}, nil
}

// FormatValue renders a metric with the shortest representation that round
// trips, or Undefined for NaN.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return Undefined
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Nullable maps NaN to nil for JSON and storage.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
