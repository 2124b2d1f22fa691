package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"festive-study/internal/config"
	"festive-study/internal/logging"
)

// app holds the state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool
	logFile    string

	sink   *logging.Sink
	logger *zap.Logger
	cfg    *config.Config
}

func newApp() *app {
	return &app{logger: zap.NewNop(), cfg: config.Default()}
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

// closeSink flushes and releases the log sink. Safe to call more than once.
func (a *app) closeSink() {
	if a.sink == nil {
		return
	}
	_ = a.sink.Close()
	a.sink = nil
	a.logger = zap.NewNop()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "festive-study",
		Short: "Market study and financial analysis for a festive equipment rental business",
		Long: `festive-study collects market and competitor data, projects revenue,
ROI and cash flow for the rental business, and renders the financial report,
the slide deck and the Excel workbook from templates.

Run "festive-study run" for the complete flow.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			sink, err := logging.New(logging.Options{Verbose: a.verbose, File: a.logFile})
			if err != nil {
				return err
			}
			a.sink, a.logger = sink, sink.Logger

			cfg, err := config.Load(a.configPath)
			if err != nil {
				// PersistentPostRun is skipped when this hook fails.
				a.logger.Error("config load failed", zap.String("path", a.configPath), zap.Error(err))
				a.closeSink()
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.logger.Debug("config loaded",
				zap.String("path", a.configPath),
				zap.String("scenario", cfg.Scenario),
				zap.String("data_dir", cfg.DataDir))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.closeSink()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML config (default: built-in assumptions)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write JSON logs to this rotated file")

	root.AddCommand(
		a.initDataCmd(),
		a.competitorsCmd(),
		a.analyzeCmd(),
		a.reportCmd(),
		a.lintCmd(),
		a.runCmd(),
		a.serveCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
