package finance

import (
	"time"

	"festive-study/internal/model"
	"festive-study/internal/scenario"
)

// LedgerRow is one month of the year-1 cash flow projection.
// This is the primary artifact for "what happens" in year 1.
type LedgerRow struct {
	Index int    `json:"index"` // 1-based month number
	Month string `json:"month"`

	Customers float64 `json:"customers"`

	Revenue         float64 `json:"revenue"`
	GrossMargin     float64 `json:"gross_margin"`
	OperatingCosts  float64 `json:"operating_costs"`
	DevelopmentCost float64 `json:"development_cost"` // non-zero only in month 1

	NetCashFlow        float64 `json:"net_cash_flow"`
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
}

type Investment struct {
	DevelopmentCosts          model.DevelopmentCosts `json:"development_costs"`
	TotalDevelopmentCost      float64                `json:"total_development_cost"`
	MonthlyOperatingCosts     model.OperatingCosts   `json:"monthly_operating_costs"`
	TotalMonthlyOperatingCost float64                `json:"total_monthly_operating_cost"`
	FirstYearOperatingCost    float64                `json:"first_year_operating_cost"`
	TotalYear1Investment      float64                `json:"total_year_1_investment"`
}

type ScenarioProjection struct {
	Name                  string    `json:"name"`
	Year1MonthlyCustomers []float64 `json:"year_1_monthly_customers,omitempty"`
	Year1MonthlyRevenue   []float64 `json:"year_1_monthly_revenue,omitempty"`
	AnnualRevenues        []float64 `json:"annual_revenues"`
}

type RevenueProjection struct {
	// Raw projection before any scenario adjustment.
	Year1MonthlyCustomers []float64 `json:"year_1_monthly_customers"`
	Year1MonthlyRevenue   []float64 `json:"year_1_monthly_revenue"`
	Year2Customers        float64   `json:"year_2_customers"`
	Year3Customers        float64   `json:"year_3_customers"`
	ProjectedAnnual       []float64 `json:"projected_annual_revenues"`

	BaseCase         ScenarioProjection `json:"base_case"`
	ConservativeCase ScenarioProjection `json:"conservative_case"`
	OptimisticCase   ScenarioProjection `json:"optimistic_case"`
}

// Case returns the projection for a scenario name, falling back to base.
func (r RevenueProjection) Case(name string) ScenarioProjection {
	switch name {
	case scenario.Conservative().Name():
		return r.ConservativeCase
	case scenario.Optimistic().Name():
		return r.OptimisticCase
	default:
		return r.BaseCase
	}
}

type UnitEconomics struct {
	CAC                   float64 `json:"cac"`
	LTV                   float64 `json:"ltv"`
	LTVCACRatio           float64 `json:"ltv_cac_ratio"`
	GrossMarginPercentage float64 `json:"gross_margin_percentage"`
	MonthlyChurnRate      float64 `json:"monthly_churn_rate"`
	AnnualChurnRate       float64 `json:"annual_churn_rate"`
	PaybackPeriodMonths   float64 `json:"payback_period_months"`
}

// ROIMetrics covers the 3-year return view. Pointer fields are nil when the
// event (break-even, payback) does not happen inside the horizon.
type ROIMetrics struct {
	BreakEvenMonth             *int      `json:"break_even_month"`
	PaybackPeriodYears         *float64  `json:"payback_period_years"`
	ROI1Year                   float64   `json:"roi_1_year"`
	ROI3Years                  float64   `json:"roi_3_years"`
	NPV                        float64   `json:"npv"`
	DiscountRate               float64   `json:"discount_rate"`
	AnnualNetCashFlows         []float64 `json:"annual_net_cash_flows"`
	CumulativeCashFlows        []float64 `json:"cumulative_cash_flows"`
	MonthlyCashFlows           []float64 `json:"monthly_cash_flows"`
	CumulativeMonthlyCashFlows []float64 `json:"cumulative_monthly_cash_flows"`
}

type CashFlow struct {
	MonthlyRevenues          []float64 `json:"monthly_revenues"`
	MonthlyCosts             []float64 `json:"monthly_costs"`
	MonthlyGrossMargin       []float64 `json:"monthly_gross_margin"`
	MonthlyNetCashFlows      []float64 `json:"monthly_net_cash_flows"`
	CumulativeCashFlow       []float64 `json:"cumulative_cash_flow"`
	AvgBurnRate              float64   `json:"avg_burn_rate"`
	MonthsToPositiveCashFlow *int      `json:"months_to_positive_cash_flow"`
}

// SensitivityPoint is the outcome of changing one input.
type SensitivityPoint struct {
	Variable            string  `json:"variable"`
	Label               string  `json:"label"`
	Value               float64 `json:"value"`
	ROI1Year            float64 `json:"roi_1_year"`
	LTV                 float64 `json:"ltv"`
	LTVCACRatio         float64 `json:"ltv_cac_ratio"`
	PaybackPeriodMonths float64 `json:"payback_period_months"`
}

type Sensitivity struct {
	BaseROI float64            `json:"base_roi"`
	CAC     []SensitivityPoint `json:"cac"`
	Churn   []SensitivityPoint `json:"churn"`
}

// Analysis is the full result of one run.
type Analysis struct {
	Scenario      string            `json:"scenario"`
	Assumptions   model.Assumptions `json:"assumptions"`
	Investment    Investment        `json:"investment"`
	Revenue       RevenueProjection `json:"revenue"`
	UnitEconomics UnitEconomics     `json:"unit_economics"`
	ROI           ROIMetrics        `json:"roi"`
	CashFlow      CashFlow          `json:"cash_flow"`
	Sensitivity   Sensitivity       `json:"sensitivity"`
	Ledger        []LedgerRow       `json:"ledger"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
