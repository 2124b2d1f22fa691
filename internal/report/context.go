package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"festive-study/internal/analysis"
	"festive-study/internal/config"
	"festive-study/internal/data"
	"festive-study/internal/finance"
	"festive-study/internal/model"
	"festive-study/internal/scenario"
)

// Meta carries the non-financial inputs of a report.
type Meta struct {
	Date        time.Time
	Business    config.Business
	Market      model.MarketInfo
	Competitors []model.Competitor
}

// DefaultMeta fills the pieces a caller did not provide.
func DefaultMeta(m Meta) Meta {
	def := config.Default().Business
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	if m.Business.Name == "" {
		m.Business.Name = def.Name
	}
	if m.Business.Location == "" {
		m.Business.Location = def.Location
	}
	if m.Market.Industry == "" {
		m.Market = model.DefaultMarketInfo()
	}
	if m.Competitors == nil {
		m.Competitors = model.DefaultCompetitors()
	}
	return m
}

// LoadMeta reads the market and competitor files from dataDir, falling back
// to the defaults for anything missing.
func LoadMeta(dataDir string, business config.Business, logger *zap.Logger) Meta {
	if logger == nil {
		logger = zap.NewNop()
	}
	market, _, err := data.LoadMarketInfo(dataDir)
	if err != nil {
		logger.Warn("market data unreadable, using defaults", zap.Error(err))
	}
	competitors, source := data.NewCollector(dataDir, logger).Load()
	logger.Debug("report competitors loaded", zap.String("source", source), zap.Int("count", len(competitors)))
	return Meta{
		Business:    business,
		Market:      market,
		Competitors: competitors,
	}
}

// listedCompetitors is how many names the deck spells out.
const listedCompetitors = 4

// BuildContext produces the nested substitution context. Keys follow the
// JSON field names of the analysis types; numbers are float64 and absent
// results (break-even, payback) are nil.
func BuildContext(a *finance.Analysis, meta Meta) (map[string]any, error) {
	if a == nil {
		return nil, errors.New("report: analysis is nil")
	}
	meta = DefaultMeta(meta)

	ctx := map[string]any{}
	parts := map[string]any{
		"investment":      a.Investment,
		"operating_costs": a.Assumptions.OperatingCosts,
		"pricing":         a.Assumptions.Pricing,
		"growth":          a.Assumptions.Growth,
		"revenue":         a.Revenue,
		"roi":             a.ROI,
		"unit_economics":  a.UnitEconomics,
		"cash_flow":       a.CashFlow,
		"sensitivity":     a.Sensitivity,
		"market":          meta.Market,
		"business":        meta.Business,
	}
	for key, v := range parts {
		m, err := toMap(v)
		if err != nil {
			return nil, fmt.Errorf("report: context %s: %w", key, err)
		}
		ctx[key] = m
	}

	ops := ctx["operating_costs"].(map[string]any)
	ops["total"] = a.Assumptions.OperatingCosts.Total()

	ue := ctx["unit_economics"].(map[string]any)
	ue["avg_transaction_value"] = a.Assumptions.UnitEconomics.AvgTransactionValue
	ue["target_ltv_cac_ratio"] = finance.TargetLTVCAC

	market := ctx["market"].(map[string]any)
	market["segments_bullets"] = bullets(meta.Market.TargetMarket)
	market["trends_bullets"] = bullets(meta.Market.MarketTrends)
	market["seasonality_bullets"] = bullets(meta.Market.SeasonalityFactors)

	name := a.Scenario
	desc := ""
	if s, err := scenario.Lookup(a.Scenario); err == nil {
		name, desc = s.Name(), s.Description()
	}
	ctx["scenario"] = map[string]any{"name": name, "description": desc}

	ctx["competitors"] = competitorContext(meta.Competitors)
	ctx["year_1_monthly_revenue_table"] = MonthlyRevenueTable(a)
	ctx["year_1_cash_flow_table"] = CashFlowTable(a)
	ctx["date"] = meta.Date.Format("2006-01-02")
	return ctx, nil
}

func competitorContext(cs []model.Competitor) map[string]any {
	names := make([]string, 0, listedCompetitors)
	for i := 0; i < len(cs) && i < listedCompetitors; i++ {
		names = append(names, cs[i].Name)
	}
	summary, _ := analysis.AnalyzeCompetitors(cs)
	return map[string]any{
		"count":      float64(len(cs)),
		"researched": float64(summary.Researched),
		"listed":     bullets(names),
		"others":     float64(max(len(cs)-listedCompetitors, 0)),
		"top":        summary.TopCompetitor,
	}
}

// MonthlyRevenueTable renders `| Month n | customers | revenue |` rows.
func MonthlyRevenueTable(a *finance.Analysis) string {
	rows := make([]string, 0, len(a.Ledger))
	for _, r := range a.Ledger {
		rows = append(rows, fmt.Sprintf("| %s | %s | %s |", r.Month, Round(r.Customers, 1), finance.Euro(r.Revenue)))
	}
	return strings.Join(rows, "\n")
}

// CashFlowTable renders `| Month n | revenue | costs | net | cumulative |` rows.
// Month 1 costs include the development outlay.
func CashFlowTable(a *finance.Analysis) string {
	rows := make([]string, 0, len(a.Ledger))
	for _, r := range a.Ledger {
		rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s | %s |",
			r.Month,
			finance.Euro(r.Revenue),
			finance.Euro(r.OperatingCosts+r.DevelopmentCost),
			finance.Euro(r.NetCashFlow),
			finance.Euro(r.CumulativeCashFlow)))
	}
	return strings.Join(rows, "\n")
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, s := range items {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n")
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
