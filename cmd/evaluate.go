package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/namebayes/internal/config"
	"github.com/abhisek/namebayes/internal/features"
	"github.com/abhisek/namebayes/internal/instrument"
	"github.com/abhisek/namebayes/internal/pipeline"
	"github.com/abhisek/namebayes/internal/report"
	"github.com/abhisek/namebayes/internal/store"
)

var errNoData = errors.New("no dataset: pass --data or set data in the config file")

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Train on a seeded split of a dataset and report per-class metrics",
		Args:  cobra.NoArgs,
		RunE:  runEvaluate,
	}
	f := cmd.Flags()
	f.String("data", "", "Labeled name file, one name,class per line")
	f.Uint64("seed", 0, "Shuffle seed (0 picks one from the clock)")
	f.Float64("train-ratio", 0.8, "Share of records used for training")
	f.Int("workers", 1, "Parallel workers for training and classification (0 = all CPUs)")
	f.String("scoring", "product", "Class scoring: product or log")
	f.String("format", "text", "Output format: text or json")
	f.Bool("summary", false, "Print run header, confusion matrix, summary and timings")
	f.Bool("no-save", false, "Do not record the run in the history database")
	f.String("metrics-file", "", "Write prometheus metrics to this textfile")
	f.Int("keep-runs", 0, "Prune history to the newest N runs after saving (0 keeps all)")
	return cmd
}

// applyEvaluateFlags overrides cfg with every flag the user set explicitly.
func applyEvaluateFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("data") {
		cfg.Data, _ = f.GetString("data")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetUint64("seed")
	}
	if f.Changed("train-ratio") {
		cfg.TrainRatio, _ = f.GetFloat64("train-ratio")
	}
	if f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("scoring") {
		cfg.Scoring, _ = f.GetString("scoring")
	}
	if f.Changed("format") {
		cfg.Format, _ = f.GetString("format")
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile, _ = f.GetString("metrics-file")
	}
	if f.Changed("keep-runs") {
		cfg.KeepRuns, _ = f.GetInt("keep-runs")
	}
	return cfg.Validate()
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyEvaluateFlags(cmd, &cfg); err != nil {
		return err
	}
	if cfg.Data == "" {
		return errNoData
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	opts := pipeline.Options{
		Seed:       cfg.Seed,
		TrainRatio: cfg.TrainRatio,
		Workers:    cfg.Workers,
		Scoring:    cfg.ScoreMode(),
		Logger:     log,
	}
	if cfg.CacheFeatures {
		opts.Extractor = features.NewCache(0)
	}
	var rec *instrument.Recorder
	if cfg.MetricsFile != "" {
		rec = instrument.NewRecorder()
		opts.Recorder = rec
	}

	res, err := pipeline.RunFile(cmd.Context(), cfg.Data, opts)
	if err != nil {
		return err
	}
	rep := res.Report()

	noSave, _ := cmd.Flags().GetBool("no-save")
	if !noSave {
		run, err := saveRun(cmd, cfg, res, log)
		if err != nil {
			// A failed save does not fail the evaluation.
			log.Warn("run not saved", zap.Error(err))
		} else {
			rep.RunID = run.ID
			rep.CreatedAt = run.CreatedAt
		}
	}

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case "json":
		err = report.WriteJSON(out, rep)
	default:
		summary, _ := cmd.Flags().GetBool("summary")
		err = report.WriteText(out, rep, report.TextOptions{
			Color:   useColor(cfg.Color, out),
			Summary: summary,
		})
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if rec != nil {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		log.Debug("metrics written", zap.String("path", cfg.MetricsFile))
	}
	return nil
}

func saveRun(cmd *cobra.Command, cfg config.Config, res *pipeline.Result, log *zap.Logger) (*store.Run, error) {
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	repo := s.RunRepo()
	run := res.Run()
	if err := repo.Save(cmd.Context(), run); err != nil {
		return nil, err
	}
	log.Info("run saved", zap.String("id", run.ID), zap.Int64("sequence", run.Sequence))

	if cfg.KeepRuns > 0 {
		n, err := repo.Prune(cmd.Context(), cfg.KeepRuns)
		if err != nil {
			log.Warn("prune runs", zap.Error(err))
		} else if n > 0 {
			log.Info("old runs pruned", zap.Int("removed", n), zap.Int("kept", cfg.KeepRuns))
		}
	}
	return run, nil
}
