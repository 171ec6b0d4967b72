package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/namebayes/internal/report"
	"github.com/abhisek/namebayes/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and prune stored evaluation runs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent evaluation runs",
		Args:  cobra.NoArgs,
		RunE:  runRunsList,
	}
	list.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")

	view := &cobra.Command{
		Use:   "view <id>",
		Short: "Show the full report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsView,
	}
	view.Flags().String("format", "", "Output format: text or json")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE:  runRunsPrune,
	}
	prune.Flags().Int("keep", 0, "Number of newest runs to keep")
	_ = prune.MarkFlagRequired("keep")

	cmd.AddCommand(list, view, prune)
	return cmd
}

func runRunsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.RunRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	fmt.Fprintf(out, "%-8s  %-19s  %-20s  %-20s  %-7s  %-11s  %s\n",
		"ID", "Timestamp", "Source", "Seed", "Scoring", "Train/Test", "Accuracy")
	fmt.Fprintln(out, strings.Repeat("─", 104))

	for _, r := range runs {
		accuracy := report.Undefined
		if r.TestSize > 0 {
			accuracy = report.FormatValue(float64(r.Correct) / float64(r.TestSize))
		}
		fmt.Fprintf(out, "%-8s  %-19s  %-20s  %-20d  %-7s  %-11s  %s\n",
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Source, 20),
			r.Seed,
			r.Scoring,
			fmt.Sprintf("%d/%d", r.TrainSize, r.TestSize),
			accuracy,
		)
	}
	return nil
}

func runRunsView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if f := cmd.Flags(); f.Changed("format") {
		cfg.Format, _ = f.GetString("format")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.RunRepo().Get(cmd.Context(), args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("run %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	rep, err := report.FromRun(*run)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.Format == "json" {
		return report.WriteJSON(out, rep)
	}
	return report.WriteText(out, rep, report.TextOptions{
		Color:   useColor(cfg.Color, out),
		Summary: true,
	})
}

func runRunsPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	keep, _ := cmd.Flags().GetInt("keep")

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.RunRepo().Prune(cmd.Context(), keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s), kept at most %d.\n", n, keep)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
