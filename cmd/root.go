package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/config"
	"github.com/sadopc/smartbill/internal/logging"
	"github.com/sadopc/smartbill/internal/store"
	"github.com/sadopc/smartbill/internal/tui"
)

// Execute is the entry point called from main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "smartbill",
		Short: "SmartBill – time tracking and client billing",
		Long: `smartbill turns tracked time into billable hours per client.
Run without a command to open the terminal dashboard.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/smartbill/config.yaml)")

	open := func(cmd *cobra.Command) (*env, error) {
		return openEnv(cfgPath, cmd.ErrOrStderr())
	}

	root.AddCommand(
		newStatsCmd(open),
		newChartCmd(open),
		newBillCmd(open),
		newExportCmd(open),
		newClientCmd(open),
		newEntryCmd(open),
		newApplicationsCmd(open),
		newAdminCmd(open),
		newPlansCmd(),
	)
	return root
}

// opener opens the environment shared by commands that touch the database.
type opener func(cmd *cobra.Command) (*env, error)

type env struct {
	cfg   config.Config
	log   logging.Logger
	store *store.Store
	loc   *time.Location

	closers []io.Closer
}

// openEnv loads configuration and opens the logger and store. Without a log
// path, logs go to stderr.
func openEnv(cfgPath string, stderr io.Writer) (*env, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, loc: loc}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	out := stderr
	if cfg.Log.Path != "" {
		f, err := openLogFile(cfg.Log.Path)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, f)
		out = f
	}
	e.log = logging.New(out, level)

	s, err := store.New(cfg.DB.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	s.SetLocation(loc)
	e.store = s
	e.closers = append(e.closers, s)

	e.log.Debug(context.Background(), "opened store", "path", cfg.DB.Path, "timezone", loc.String())
	return e, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Close releases resources in reverse order of opening.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// runTUI opens the dashboard. The terminal belongs to the TUI, so logs are
// written only when a log file is configured.
func runTUI(cmd *cobra.Command, cfgPath string) error {
	e, err := openEnv(cfgPath, io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	p := tea.NewProgram(tui.NewApp(e.store, e.log, e.loc), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
