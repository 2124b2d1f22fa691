package models

import (
	"time"

	"festive-study/internal/analysis"
	"festive-study/internal/finance"
	"festive-study/internal/model"
	"festive-study/internal/report"
)

// AnalysisResponse represents the response from an analysis run
type AnalysisResponse struct {
	ID        string              `json:"id"`
	Scenario  string              `json:"scenario"`
	Summary   AnalysisSummary     `json:"summary"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
	Ledger    []finance.LedgerRow `json:"ledger,omitempty"`
}

// AnalysisSummary contains the headline figures of a run
type AnalysisSummary struct {
	TotalYear1Investment     float64  `json:"total_year_1_investment"`
	ROI1Year                 float64  `json:"roi_1_year"`
	ROI3Years                float64  `json:"roi_3_years"`
	NPV                      float64  `json:"npv"`
	BreakEvenMonth           *int     `json:"break_even_month"`
	PaybackPeriodYears       *float64 `json:"payback_period_years"`
	LTV                      float64  `json:"ltv"`
	LTVCACRatio              float64  `json:"ltv_cac_ratio"`
	AvgBurnRate              float64  `json:"avg_burn_rate"`
	MonthsToPositiveCashFlow *int     `json:"months_to_positive_cash_flow"`
}

func NewSummary(a *finance.Analysis) AnalysisSummary {
	return AnalysisSummary{
		TotalYear1Investment:     a.Investment.TotalYear1Investment,
		ROI1Year:                 a.ROI.ROI1Year,
		ROI3Years:                a.ROI.ROI3Years,
		NPV:                      a.ROI.NPV,
		BreakEvenMonth:           a.ROI.BreakEvenMonth,
		PaybackPeriodYears:       a.ROI.PaybackPeriodYears,
		LTV:                      a.UnitEconomics.LTV,
		LTVCACRatio:              a.UnitEconomics.LTVCACRatio,
		AvgBurnRate:              a.CashFlow.AvgBurnRate,
		MonthsToPositiveCashFlow: a.CashFlow.MonthsToPositiveCashFlow,
	}
}

// RunResponse is a stored run with the full analysis
type RunResponse struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Analysis  *finance.Analysis `json:"analysis"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
	Skipped    []SkippedVariation `json:"skipped"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name     string          `json:"name"`
	Scenario string          `json:"scenario"`
	Summary  AnalysisSummary `json:"summary"`
}

type SkippedVariation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ScenarioInfo describes a built-in scenario
type ScenarioInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Factors     []float64 `json:"factors,omitempty"` // revenue multipliers for years 1-3
}

type MarketResponse struct {
	Source string           `json:"source"`
	Market model.MarketInfo `json:"market"`
}

type CompetitorsResponse struct {
	Source      string                      `json:"source"`
	Competitors []model.Competitor          `json:"competitors"`
	Summary     *analysis.CompetitorSummary `json:"summary,omitempty"`
	Ranking     []analysis.RankedCompetitor `json:"ranking"`
}

type LintResponse struct {
	Valid  bool           `json:"valid"`
	Issues []report.Issue `json:"issues"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
