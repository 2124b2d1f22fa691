package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"festive-study/internal/data"
	"festive-study/internal/finance"
	"festive-study/internal/model"
)

const (
	SummarySheet     = "Executive Summary"
	CompetitorSheet  = "Competitor Analysis"
	ProjectionSheet  = "Financial Projections"
	maxColumnWidth   = 50
	headerFillColour = "CCCCCC"
)

var keyInsights = []string{
	"Distinct sourcing advantage through direct equipment purchase",
	"Existing relationships with school parent associations",
	"Local market under-served according to first research",
	"Growth potential in private events",
}

type workbookStyles struct {
	title, subtitle, bold, header int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return s, err
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFillColour}, Pattern: 1},
	})
	return s, err
}

// WriteWorkbook writes the Excel market study report.
func WriteWorkbook(path string, a *finance.Analysis, meta Meta) error {
	if a == nil {
		return fmt.Errorf("report: analysis is nil")
	}
	meta = DefaultMeta(meta)

	f := excelize.NewFile()
	defer f.Close()

	st, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return err
	}
	if err := writeSummarySheet(f, st, a, meta); err != nil {
		return fmt.Errorf("%s: %w", SummarySheet, err)
	}
	if err := writeCompetitorSheet(f, st, meta.Competitors); err != nil {
		return fmt.Errorf("%s: %w", CompetitorSheet, err)
	}
	if err := writeProjectionSheet(f, st, a); err != nil {
		return fmt.Errorf("%s: %w", ProjectionSheet, err)
	}
	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, st workbookStyles, a *finance.Analysis, meta Meta) error {
	sh := SummarySheet
	title := "MARKET STUDY - " + strings.ToUpper(meta.Business.Name)
	if err := f.SetCellValue(sh, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, "A1", "A1", st.title); err != nil {
		return err
	}

	breakEven := "Not reached in year 1"
	if m := a.ROI.BreakEvenMonth; m != nil {
		breakEven = fmt.Sprintf("Month %d", *m)
	}
	rows := [][]any{
		{"Indicator", "Value"},
		{"Estimated market size", "To be determined"},
		{"Competitors identified", len(meta.Competitors)},
		{"Competitive positioning", "Sourcing advantage"},
		{"Total year-1 investment", finance.Euro(a.Investment.TotalYear1Investment)},
		{"Year-1 ROI", Round(a.ROI.ROI1Year, 1) + "%"},
		{"3-year ROI", Round(a.ROI.ROI3Years, 1) + "%"},
		{"Net present value", finance.Euro(a.ROI.NPV)},
		{"Break-even", breakEven},
		{"LTV:CAC", Round(a.UnitEconomics.LTVCACRatio, 1) + ":1"},
	}
	if err := data.WriteRows(f, sh, 2, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, "A2", "B2", st.bold); err != nil {
		return err
	}

	insightsRow := 2 + len(rows) + 1
	cell, _ := excelize.CoordinatesToCellName(1, insightsRow)
	if err := f.SetCellValue(sh, cell, "Key Points"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, cell, cell, st.bold); err != nil {
		return err
	}
	insights := make([][]any, len(keyInsights))
	for i, s := range keyInsights {
		insights[i] = []any{s}
	}
	if err := data.WriteRows(f, sh, insightsRow+1, insights); err != nil {
		return err
	}
	return f.SetColWidth(sh, "A", "B", 40)
}

func writeCompetitorSheet(f *excelize.File, st workbookStyles, competitors []model.Competitor) error {
	sh := CompetitorSheet
	if _, err := f.NewSheet(sh); err != nil {
		return err
	}
	rows := [][]any{{"Competitor", "Specialization", "Strengths", "Weaknesses", "Market Position"}}
	for _, c := range competitors {
		rows = append(rows, []any{c.Name, c.Specialization, c.Strengths, c.Weaknesses, c.MarketPosition})
	}
	if err := data.WriteRows(f, sh, 1, rows); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err := f.SetCellStyle(sh, "A1", last, st.header); err != nil {
		return err
	}
	for col, w := range ColumnWidths(rows) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh, name, name, w); err != nil {
			return err
		}
	}
	return nil
}

// ColumnWidths sizes each column to its longest cell plus 2, capped at 50.
func ColumnWidths(rows [][]any) []float64 {
	var widths []float64
	for _, row := range rows {
		for i, v := range row {
			for len(widths) <= i {
				widths = append(widths, 0)
			}
			n := float64(utf8.RuneCountInString(fmt.Sprint(v)))
			if n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i]+2, maxColumnWidth)
	}
	return widths
}

func writeProjectionSheet(f *excelize.File, st workbookStyles, a *finance.Analysis) error {
	sh := ProjectionSheet
	if _, err := f.NewSheet(sh); err != nil {
		return err
	}
	if err := f.SetCellValue(sh, "A1", "FINANCIAL PROJECTIONS - YEAR 1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, "A1", "A1", st.subtitle); err != nil {
		return err
	}

	rows := [][]any{{
		"Month", "Customers", "Revenue (€)", "Gross Margin (€)",
		"Operating Costs (€)", "Development Cost (€)", "Net Cash Flow (€)", "Cumulative (€)",
	}}
	for _, r := range a.Ledger {
		rows = append(rows, []any{
			r.Month,
			roundTo(r.Customers, 1),
			roundTo(r.Revenue, 2),
			roundTo(r.GrossMargin, 2),
			roundTo(r.OperatingCosts, 2),
			roundTo(r.DevelopmentCost, 2),
			roundTo(r.NetCashFlow, 2),
			roundTo(r.CumulativeCashFlow, 2),
		})
	}
	if err := data.WriteRows(f, sh, 2, rows); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(rows[0]), 2)
	if err := f.SetCellStyle(sh, "A2", last, st.header); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "A", "H", 20); err != nil {
		return err
	}
	if len(a.Ledger) == 0 {
		return nil
	}

	lastRow := 2 + len(a.Ledger)
	ref := func(col string, from, to int) string {
		return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sh, col, from, col, to)
	}
	return f.AddChart(sh, "J2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$C$2", sh),
			Categories: ref("A", 3, lastRow),
			Values:     ref("C", 3, lastRow),
		}},
		Title: []excelize.RichTextRun{{Text: "Monthly Revenue Projection"}},
		XAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Month"}}},
		YAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Revenue (€)"}}},
	})
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
