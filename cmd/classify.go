package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/namebayes/internal/bayes"
	"github.com/abhisek/namebayes/internal/dataset"
	"github.com/abhisek/namebayes/internal/features"
	"github.com/abhisek/namebayes/internal/pipeline"
	"github.com/abhisek/namebayes/internal/report"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify NAME...",
		Short: "Train on a whole dataset and classify the given names",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runClassify,
	}
	f := cmd.Flags()
	f.String("data", "", "Labeled name file, one name,class per line")
	f.String("scoring", "product", "Class scoring: product or log")
	f.Int("workers", 1, "Parallel training workers (0 = all CPUs)")
	f.Bool("scores", false, "Print every class score")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("data") {
		cfg.Data, _ = f.GetString("data")
	}
	if f.Changed("scoring") {
		cfg.Scoring, _ = f.GetString("scoring")
	}
	if f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
	if err := cfg.Validate(); err != nil {
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

	records, _, err := dataset.LoadFile(cfg.Data)
	if err != nil {
		return err
	}
	m, err := pipeline.TrainAll(cmd.Context(), records, pipeline.Options{
		Source:  cfg.Data,
		Workers: cfg.Workers,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	mode := cfg.ScoreMode()
	classify := mode.Func()
	showScores, _ := f.GetBool("scores")
	out := cmd.OutOrStdout()

	for _, name := range args {
		v := features.Extract(dataset.Normalize(name))
		log.Debug("classify", zap.String("name", name), zap.String("features", features.Describe(v)))
		class, ok := classify(m, v)
		if !ok {
			class = "unassigned"
		}
		fmt.Fprintf(out, "%s => %s\n", name, class)

		if showScores {
			scores := bayes.Scores(m, v)
			if mode == bayes.ScoreLog {
				scores = bayes.LogScores(m, v)
			}
			for _, s := range scores {
				fmt.Fprintf(out, "  %s %s\n", s.Class, report.FormatValue(s.Value))
			}
		}
	}
	return nil
}
