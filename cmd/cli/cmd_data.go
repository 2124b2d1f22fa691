package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"festive-study/internal/analysis"
	"festive-study/internal/data"
	"festive-study/internal/model"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

func (a *app) initDataCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init-data",
		Short: "Create the competitor research template and the market overview files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.DataDir
			}
			return a.initData(cmd.OutOrStdout(), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Data directory (default: data_dir from config)")
	return cmd
}

// initData writes every artifact it can and reports all failures together.
func (a *app) initData(w io.Writer, dir string) error {
	var result *multierror.Error
	step := func(label string, fn func() (string, error)) {
		path, err := fn()
		if err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", failMark, label, err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", label, err))
			return
		}
		fmt.Fprintf(w, "%s %s: %s\n", okMark, label, path)
	}

	collector := data.NewCollector(dir, a.logger)
	step("Competitor research template", func() (string, error) {
		path, created, err := collector.CreateTemplate()
		if err == nil && !created {
			path += " (kept existing file)"
		}
		return path, err
	})

	market := data.NewMarketHandler(dir)
	step("Market overview", market.WriteOverview)
	step("Market data", market.SaveJSON)

	return result.ErrorOrNil()
}

func (a *app) competitorsCmd() *cobra.Command {
	var file string
	var save bool
	cmd := &cobra.Command{
		Use:   "competitors",
		Short: "Summarize and rank the competitor research",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collector := data.NewCollector(a.cfg.DataDir, a.logger)
			var competitors []model.Competitor
			source := file
			if file != "" {
				var err error
				if competitors, err = data.LoadCompetitorsXLSX(file); err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
			} else {
				competitors, source = collector.Load()
			}

			w := cmd.OutOrStdout()
			printCompetitors(w, source, competitors)
			if save {
				path, err := collector.SaveJSON(competitors)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "\n%s Competitor data: %s\n", okMark, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Competitor research workbook (default: data dir, JSON first)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the competitor records as competitor_data.json")
	return cmd
}

func printCompetitors(w io.Writer, source string, competitors []model.Competitor) {
	fmt.Fprintf(w, "Competitors (%s)\n\n", source)
	summary, ok := analysis.AnalyzeCompetitors(competitors)
	if !ok {
		fmt.Fprintln(w, "No competitor data.")
		return
	}
	fmt.Fprintf(w, "Total competitors:  %d\n", summary.TotalCompetitors)
	fmt.Fprintf(w, "Researched:         %d\n", summary.Researched)
	fmt.Fprintf(w, "Avg strengths:      %.1f\n", summary.AvgStrengths)
	fmt.Fprintf(w, "Avg weaknesses:     %.1f\n", summary.AvgWeaknesses)
	if summary.TopCompetitor != "" {
		fmt.Fprintf(w, "Top competitor:     %s\n", summary.TopCompetitor)
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOMPETITOR\tSTRENGTHS\tWEAKNESSES\tSCORE")
	for i, r := range analysis.RankCompetitors(competitors) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", i+1, r.Name, r.StrengthCount, r.WeaknessCount, r.Score)
	}
	tw.Flush()
}
