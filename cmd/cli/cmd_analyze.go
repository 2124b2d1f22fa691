package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"festive-study/internal/data"
	"festive-study/internal/finance"
	"festive-study/internal/report"
	"festive-study/internal/scenario"
)

// analyze runs the model on the configured assumptions.
func (a *app) analyze(ctx context.Context, scenarioName string) (*finance.Analysis, error) {
	if scenarioName == "" {
		scenarioName = a.cfg.Scenario
	}
	s, err := scenario.Lookup(scenarioName)
	if err != nil {
		return nil, err
	}
	an, err := finance.New(a.cfg.ResolvedAssumptions(),
		finance.WithScenario(s),
		finance.WithDiscountRate(a.cfg.DiscountRate),
		finance.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return an.Run(ctx)
}

func (a *app) analyzeCmd() *cobra.Command {
	var scenarioName, jsonOut, ledgerOut string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the financial analysis and print the executive summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.analyze(cmd.Context(), scenarioName)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printAnalysis(w, res)

			if jsonOut != "" {
				if err := data.SaveJSON(jsonOut, res, "  "); err != nil {
					return fmt.Errorf("write %s: %w", jsonOut, err)
				}
				fmt.Fprintf(w, "\n%s Analysis: %s\n", okMark, jsonOut)
			}
			if ledgerOut != "" {
				if err := os.MkdirAll(filepath.Dir(ledgerOut), 0o755); err != nil {
					return err
				}
				if err := finance.WriteLedgerCSV(ledgerOut, res.Ledger); err != nil {
					return fmt.Errorf("write %s: %w", ledgerOut, err)
				}
				fmt.Fprintf(w, "%s Cash flow ledger: %s (%d rows)\n", okMark, ledgerOut, len(res.Ledger))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "Scenario: conservative, base or optimistic (default: config)")
	cmd.Flags().StringVar(&jsonOut, "json", "", "Write the full analysis as JSON")
	cmd.Flags().StringVar(&ledgerOut, "ledger", "", "Write the year-1 monthly ledger as CSV")
	return cmd
}

func printAnalysis(w io.Writer, res *finance.Analysis) {
	fmt.Fprint(w, finance.ExecutiveSummary(res))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tCustomers\tRevenue\tNet\tCumulative\t")
	for _, r := range res.Ledger {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			r.Month, report.Round(r.Customers, 1),
			finance.Euro(r.Revenue), finance.Euro(r.NetCashFlow), finance.Euro(r.CumulativeCashFlow))
	}
	tw.Flush()
}

func (a *app) reportCmd() *cobra.Command {
	var scenarioName, outDir, templateFile string
	var preview bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the Markdown and HTML report, the slide deck and the workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.analyze(cmd.Context(), scenarioName)
			if err != nil {
				return err
			}
			return a.generate(cmd.Context(), cmd.OutOrStdout(), res, outDir, templateFile, preview)
		},
	}
	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "Scenario: conservative, base or optimistic (default: config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: reports_dir from config)")
	cmd.Flags().StringVarP(&templateFile, "template", "t", "", "Financial report template (default: config, then built-in)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Print the rendered report to the terminal")
	return cmd
}

func (a *app) generate(ctx context.Context, w io.Writer, res *finance.Analysis, outDir, templateFile string, preview bool) error {
	if outDir == "" {
		outDir = a.cfg.ReportsDir
	}
	if templateFile == "" {
		templateFile = a.cfg.ReportTemplate
	}
	out, err := report.GenerateAll(ctx, report.GenerateOptions{
		Dir:          outDir,
		Analysis:     res,
		Meta:         report.LoadMeta(a.cfg.DataDir, a.cfg.Business, a.logger),
		TemplateFile: templateFile,
		Logger:       a.logger,
	})
	if err != nil {
		return fmt.Errorf("generate reports: %w", err)
	}

	labels := []string{"Financial report", "HTML report", "Presentation", "Workbook"}
	for i, p := range out.Paths() {
		fmt.Fprintf(w, "%s %s: %s\n", okMark, labels[i], p)
	}

	if preview {
		md, err := os.ReadFile(out.Markdown)
		if err != nil {
			return err
		}
		rendered, err := report.Preview(string(md), 100, "")
		if err != nil {
			a.logger.Warn("preview failed, printing raw markdown", zap.Error(err))
			rendered = string(md)
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, rendered)
	}
	return nil
}

func (a *app) lintCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "lint <template.md>",
		Short: "Check a report template for placeholder and table errors",
		Long: `Checks placeholder syntax, filter names and Markdown table shapes.
With --strict every placeholder path is also resolved against a default analysis.
Exits non-zero when any issue is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			issues := report.Lint(string(raw))
			if strict && len(issues) == 0 {
				res, err := a.analyze(cmd.Context(), "")
				if err != nil {
					return err
				}
				tctx, err := report.BuildContext(res, report.Meta{Business: a.cfg.Business})
				if err != nil {
					return err
				}
				issues = report.Resolve(string(raw), tctx)
			}

			w := cmd.OutOrStdout()
			for _, is := range issues {
				fmt.Fprintf(w, "%s %s:%s\n", failMark, path, is)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%s: %d issue(s) found", path, len(issues))
			}
			fmt.Fprintf(w, "%s %s: no issues\n", okMark, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Also resolve placeholder paths")
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	var scenarioName string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole study: data files, analysis and reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "1. Collecting market data")
			if err := a.initData(w, a.cfg.DataDir); err != nil {
				return err
			}

			fmt.Fprintln(w, "\n2. Financial analysis")
			res, err := a.analyze(cmd.Context(), scenarioName)
			if err != nil {
				return err
			}
			printAnalysis(w, res)

			fmt.Fprintln(w, "\n3. Reports")
			return a.generate(cmd.Context(), w, res, "", "", false)
		},
	}
	cmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "Scenario: conservative, base or optimistic (default: config)")
	return cmd
}
