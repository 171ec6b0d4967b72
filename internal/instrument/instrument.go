// Package instrument collects per-run prometheus metrics and writes them in
// the textfile exposition format.
package instrument

import (
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "namebayes"

// Recorder holds the metrics of one evaluation run on its own registry, so
// repeated runs in one process never collide on registration.
type Recorder struct {
	reg *prometheus.Registry

	records     *prometheus.CounterVec
	predictions *prometheus.CounterVec
	phase       *prometheus.GaugeVec
	metric      *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records seen by the run, by outcome.",
			},
			[]string{"outcome"},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Test set predictions, by true class and result.",
			},
			[]string{"class", "result"},
		),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Wall time of each pipeline phase.",
			},
			[]string{"phase"},
		),
		metric: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "class_metric",
				Help:      "Per-class precision, recall and F1. Undefined values are omitted.",
			},
			[]string{"class", "metric"},
		),
	}
	r.reg.MustRegister(r.records, r.predictions, r.phase, r.metric)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Records adds n records with the given outcome (parsed, skipped, duplicate,
// train, test).
func (r *Recorder) Records(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.records.WithLabelValues(outcome).Add(float64(n))
}

// Predictions adds n predictions for trueClass. result is correct, wrong or
// unassigned.
func (r *Recorder) Predictions(trueClass, result string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.predictions.WithLabelValues(trueClass, result).Add(float64(n))
}

// Phase records how long a pipeline phase took.
func (r *Recorder) Phase(name string, d time.Duration) {
	if r == nil {
		return
	}
	r.phase.WithLabelValues(name).Set(d.Seconds())
}

// ClassMetric records a per-class metric value. NaN is skipped.
func (r *Recorder) ClassMetric(class, metric string, v float64) {
	if r == nil || math.IsNaN(v) {
		return
	}
	r.metric.WithLabelValues(class, metric).Set(v)
}

// WriteTextfile writes every metric to path for the node_exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
