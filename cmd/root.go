package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/abhisek/namebayes/internal/config"
	"github.com/abhisek/namebayes/internal/logging"
	"github.com/abhisek/namebayes/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "namebayes",
		Short: "Naive Bayes name classifier",
		Long: "namebayes trains a letter-feature Naive Bayes model on labeled names, " +
			"evaluates it on a held-out split and keeps a history of evaluation runs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a .toml or .yaml config file (overrides NAMEBAYES_CONFIG env var)")
	pf.String("db", "", "Path to SQLite database file (overrides NAMEBAYES_DB env var)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("color", "", "Colorize output (auto|on|off)")

	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newRunsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI. Ctrl-C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// loadConfig builds the effective config: defaults, the config file, env
// overrides, then persistent flags. Command flags are applied by each
// command before it calls Validate again.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("color") {
		cfg.Color, _ = flags.GetString("color")
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the database path using --db or the config file
// (highest priority), then NAMEBAYES_DB env var, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel, cmd.ErrOrStderr())
}

// useColor resolves the color mode for w. auto enables color only on a
// terminal and honors NO_COLOR.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
