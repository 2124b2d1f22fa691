package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"festive-study/internal/finance"
)

const (
	ReportMarkdownFile = "financial_report.md"
	ReportHTMLFile     = "financial_report.html"
	DeckFile           = "presentation.md"
	WorkbookFile       = "market_study.xlsx"
)

type GenerateOptions struct {
	Dir      string
	Analysis *finance.Analysis
	Meta     Meta
	// TemplateFile replaces the embedded financial report template when set.
	TemplateFile string
	Engine       *Engine
	Logger       *zap.Logger
}

// Generated lists the written files.
type Generated struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Deck     string `json:"deck"`
	Workbook string `json:"workbook"`
}

func (g Generated) Paths() []string {
	return []string{g.Markdown, g.HTML, g.Deck, g.Workbook}
}

// GenerateAll writes the Markdown and HTML report, the slide deck and the
// workbook concurrently. The first failure cancels the remaining work.
func GenerateAll(ctx context.Context, opts GenerateOptions) (Generated, error) {
	if opts.Analysis == nil {
		return Generated{}, fmt.Errorf("report: analysis is nil")
	}
	if opts.Engine == nil {
		opts.Engine = NewEngine(WithLogger(opts.Logger))
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return Generated{}, fmt.Errorf("report: create %s: %w", opts.Dir, err)
	}

	meta := DefaultMeta(opts.Meta)
	tctx, err := BuildContext(opts.Analysis, meta)
	if err != nil {
		return Generated{}, err
	}

	out := Generated{
		Markdown: filepath.Join(opts.Dir, ReportMarkdownFile),
		HTML:     filepath.Join(opts.Dir, ReportHTMLFile),
		Deck:     filepath.Join(opts.Dir, DeckFile),
		Workbook: filepath.Join(opts.Dir, WorkbookFile),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var md string
		var err error
		if opts.TemplateFile != "" {
			md, err = opts.Engine.RenderFile(opts.TemplateFile, tctx)
		} else {
			md, err = opts.Engine.Render(FinancialReportTemplate, tctx)
		}
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.Markdown, []byte(md), 0o644); err != nil {
			return err
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		page, err := ToHTML(md, "Financial Analysis Report: "+meta.Business.Name)
		if err != nil {
			return err
		}
		return os.WriteFile(out.HTML, []byte(page), 0o644)
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		deck, err := opts.Engine.Render(PresentationTemplate, tctx)
		if err != nil {
			return err
		}
		return os.WriteFile(out.Deck, []byte(deck), 0o644)
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return WriteWorkbook(out.Workbook, opts.Analysis, meta)
	})
	if err := g.Wait(); err != nil {
		return Generated{}, err
	}

	for _, p := range out.Paths() {
		logger.Info("report written", zap.String("path", p))
	}
	return out, nil
}
