// Package pipeline wires loading, preparation, training and evaluation into
// one evaluation run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/namebayes/internal/bayes"
	"github.com/abhisek/namebayes/internal/dataset"
	"github.com/abhisek/namebayes/internal/evaluate"
	"github.com/abhisek/namebayes/internal/features"
	"github.com/abhisek/namebayes/internal/instrument"
	"github.com/abhisek/namebayes/internal/logging"
	"github.com/abhisek/namebayes/internal/report"
	"github.com/abhisek/namebayes/internal/store"
)

// Options configures a run.
type Options struct {
	// Source labels the input in logs and run history.
	Source string
	// Seed drives the shuffle. 0 picks one from the clock.
	Seed       uint64
	TrainRatio float64
	// Workers bounds parallel training and classification. 0 uses every CPU;
	// 1 runs sequentially.
	Workers int
	Scoring bayes.ScoreMode
	// Extractor turns names into feature vectors. Nil means features.Default.
	Extractor features.Extractor
	Logger    *zap.Logger
	Recorder  *instrument.Recorder
}

// Result is the outcome of an evaluation run.
type Result struct {
	Source     string
	Seed       uint64
	TrainRatio float64
	Scoring    bayes.ScoreMode

	Parse      dataset.ParseStats
	Duplicates int
	Classes    []string
	TrainSize  int
	TestSize   int

	Model   *bayes.Model
	Matrix  *evaluate.ConfusionMatrix
	Timings []report.Timing
}

// Metrics returns per-class metrics in class order.
func (r *Result) Metrics() []evaluate.ClassMetrics { return r.Matrix.Metrics() }

// Summary aggregates the confusion matrix.
func (r *Result) Summary() evaluate.Summary { return r.Matrix.Summarize() }

// Report converts r for rendering.
func (r *Result) Report() report.Report {
	return report.Report{
		Source:     r.Source,
		Seed:       r.Seed,
		TrainRatio: r.TrainRatio,
		Scoring:    string(r.Scoring),
		Records:    r.Parse.Records,
		Skipped:    r.Parse.Skipped,
		Duplicates: r.Duplicates,
		TrainSize:  r.TrainSize,
		TestSize:   r.TestSize,
		Matrix:     r.Matrix,
		Timings:    r.Timings,
	}
}

// Run converts r into a run history entry.
func (r *Result) Run() *store.Run {
	metrics := r.Matrix.Metrics()
	results := make([]store.ClassResult, len(metrics))
	for i, m := range metrics {
		results[i] = store.ClassResult{
			Class:     m.Class,
			Precision: report.Nullable(m.Precision),
			Recall:    report.Nullable(m.Recall),
			F1:        report.Nullable(m.F1),
		}
	}
	s := r.Matrix.Summarize()
	return &store.Run{
		Source:     r.Source,
		Seed:       r.Seed,
		TrainRatio: r.TrainRatio,
		Scoring:    string(r.Scoring),
		Records:    r.Parse.Records,
		Duplicates: r.Duplicates,
		Skipped:    r.Parse.Skipped,
		TrainSize:  r.TrainSize,
		TestSize:   r.TestSize,
		Correct:    s.Correct,
		Unassigned: s.Unassigned,
		Data: store.RunData{
			Classes: r.Matrix.Classes(),
			Matrix:  r.Matrix.Rows(),
			Results: results,
		},
	}
}

func (o *Options) normalize() {
	if o.Seed == 0 {
		o.Seed = clockSeed()
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Scoring == "" {
		o.Scoring = bayes.ScoreProduct
	}
	if o.Extractor == nil {
		o.Extractor = features.Default
	}
	o.Logger = logging.OrNop(o.Logger)
}

func clockSeed() uint64 {
	if s := uint64(time.Now().UnixNano()); s != 0 {
		return s
	}
	return 1
}

// RunFile opens path and runs the pipeline over it.
func RunFile(ctx context.Context, path string, opts Options) (*Result, error) {
	if opts.Source == "" {
		opts.Source = path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Run(ctx, f, opts)
}

// Run parses src and evaluates a model trained on a seeded split of it. A
// read error aborts the run before anything is trained.
func Run(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	t := newTimer()
	idx := t.begin("load")
	records, stats, err := dataset.Parse(src)
	d := t.end(idx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	opts.Recorder.Phase("load", d)
	return run(ctx, records, stats, opts, t)
}

func run(ctx context.Context, records []dataset.Record, stats dataset.ParseStats, opts Options, t *timer) (*Result, error) {
	opts.normalize()
	log := opts.Logger.With(zap.String("source", opts.Source))

	rec := opts.Recorder
	rec.Records("parsed", stats.Records)
	rec.Records("skipped", stats.Skipped)
	log.Debug("dataset parsed",
		zap.Int("lines", stats.Lines),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped))

	res := &Result{
		Source:     opts.Source,
		Seed:       opts.Seed,
		TrainRatio: opts.TrainRatio,
		Scoring:    opts.Scoring,
		Parse:      stats,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := t.begin("prepare")
	prep := dataset.Prepare(records, dataset.NewRand(opts.Seed), opts.TrainRatio)
	d := t.end(idx)
	res.Duplicates = prep.Duplicates
	res.Classes = prep.Classes
	res.TrainSize = len(prep.Train)
	res.TestSize = len(prep.Test)
	rec.Records("duplicate", prep.Duplicates)
	rec.Records("train", res.TrainSize)
	rec.Records("test", res.TestSize)
	rec.Phase("prepare", d)
	log.Info("dataset prepared",
		zap.Uint64("seed", opts.Seed),
		zap.Int("duplicates", prep.Duplicates),
		zap.Strings("classes", prep.Classes),
		zap.Int("train", res.TrainSize),
		zap.Int("test", res.TestSize),
		zap.Duration("took", d))
	log.Debug("class distribution",
		zap.Any("train", dataset.CountByClass(prep.Train)),
		zap.Any("test", dataset.CountByClass(prep.Test)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx = t.begin("extract")
	train := dataset.ExtractAll(prep.Train, opts.Extractor)
	test := dataset.ExtractAll(prep.Test, opts.Extractor)
	d = t.end(idx)
	rec.Phase("extract", d)
	log.Debug("features extracted", zap.Int("vectors", len(train)+len(test)), zap.Duration("took", d))

	idx = t.begin("train")
	model, err := trainModel(ctx, train, prep.Classes, opts.Workers)
	d = t.end(idx)
	if err != nil {
		return nil, err
	}
	res.Model = model
	rec.Phase("train", d)
	log.Info("model trained", zap.Int("examples", model.Total()), zap.Duration("took", d))

	idx = t.begin("evaluate")
	cm, err := evaluate.Evaluate(ctx, model, test, evaluate.Options{
		Workers:  opts.Workers,
		Classify: opts.Scoring.Func(),
	})
	d = t.end(idx)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	res.Matrix = cm
	rec.Phase("evaluate", d)
	recordOutcomes(rec, cm)

	s := cm.Summarize()
	log.Info("model evaluated",
		zap.String("scoring", string(opts.Scoring)),
		zap.Int("correct", s.Correct),
		zap.Int("unassigned", s.Unassigned),
		zap.Float64("accuracy", s.Accuracy),
		zap.Duration("took", d))

	res.Timings = t.report()
	return res, nil
}

func trainModel(ctx context.Context, examples []dataset.Example, classes []string, workers int) (*bayes.Model, error) {
	if workers > 1 {
		return bayes.TrainParallel(ctx, examples, classes, workers)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := bayes.Train(examples, classes)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	return m, nil
}

func recordOutcomes(rec *instrument.Recorder, cm *evaluate.ConfusionMatrix) {
	if rec == nil {
		return
	}
	for _, c := range cm.Classes() {
		correct := cm.Count(c, c)
		unassigned := cm.Unassigned(c)
		rec.Predictions(c, "correct", correct)
		rec.Predictions(c, "unassigned", unassigned)
		rec.Predictions(c, "wrong", cm.RowTotal(c)-correct-unassigned)
	}
	for _, m := range cm.Metrics() {
		rec.ClassMetric(m.Class, "precision", m.Precision)
		rec.ClassMetric(m.Class, "recall", m.Recall)
		rec.ClassMetric(m.Class, "f1", m.F1)
	}
}

// TrainAll trains on every distinct record, with no held-out test set. It
// backs one-off classification of new names.
func TrainAll(ctx context.Context, records []dataset.Record, opts Options) (*bayes.Model, error) {
	opts.normalize()
	distinct, dups := dataset.Dedupe(records)
	classes := dataset.Classes(distinct)
	examples := dataset.ExtractAll(distinct, opts.Extractor)

	m, err := trainModel(ctx, examples, classes, opts.Workers)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("model trained on full dataset",
		zap.String("source", opts.Source),
		zap.Int("examples", m.Total()),
		zap.Int("duplicates", dups),
		zap.Strings("classes", classes))
	return m, nil
}
