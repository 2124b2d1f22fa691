package finance

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"festive-study/internal/model"
	"festive-study/internal/scenario"
)

const (
	DefaultDiscountRate = 0.10
	monthsPerYear       = 12
	horizonYears        = 3
)

// Analyzer computes the financial model for one set of assumptions.
// It never mutates its assumptions; variations work on copies.
type Analyzer struct {
	assumptions  model.Assumptions
	discountRate float64
	scenario     scenario.Scenario
	now          func() time.Time
	logger       *zap.Logger
}

type Option func(*Analyzer)

func WithDiscountRate(r float64) Option {
	return func(a *Analyzer) {
		if r > 0 {
			a.discountRate = r
		}
	}
}

// WithScenario selects the scenario that feeds ROI and cash flow.
func WithScenario(s scenario.Scenario) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.scenario = s
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

func New(assumptions model.Assumptions, opts ...Option) (*Analyzer, error) {
	if err := assumptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assumptions: %w", err)
	}
	a := &Analyzer{
		assumptions:  assumptions,
		discountRate: DefaultDiscountRate,
		scenario:     scenario.Base(),
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Analyzer) Assumptions() model.Assumptions { return a.assumptions }
func (a *Analyzer) Scenario() scenario.Scenario     { return a.scenario }
func (a *Analyzer) DiscountRate() float64           { return a.discountRate }

// with returns a sibling analyzer over modified assumptions, sharing settings.
func (a *Analyzer) with(assumptions model.Assumptions) *Analyzer {
	cp := *a
	cp.assumptions = assumptions
	return &cp
}

func (a *Analyzer) margin() float64 {
	return a.assumptions.UnitEconomics.GrossMarginPercentage / 100
}

func (a *Analyzer) TotalInvestment() Investment {
	dev := a.assumptions.DevelopmentCosts
	ops := a.assumptions.OperatingCosts
	totalDev := dev.Total()
	monthly := ops.Total()
	firstYear := monthly * monthsPerYear
	return Investment{
		DevelopmentCosts:          dev,
		TotalDevelopmentCost:      totalDev,
		MonthlyOperatingCosts:     ops,
		TotalMonthlyOperatingCost: monthly,
		FirstYearOperatingCost:    firstYear,
		TotalYear1Investment:      totalDev + firstYear,
	}
}

// ProjectRevenue projects three years of revenue and applies every scenario.
func (a *Analyzer) ProjectRevenue() RevenueProjection {
	g := a.assumptions.Growth
	value := a.assumptions.UnitEconomics.AvgTransactionValue

	customers := make([]float64, 0, monthsPerYear)
	revenue := make([]float64, 0, monthsPerYear)
	current := g.Year1MonthlyCustomersBase
	year1 := 0.0
	for m := 0; m < monthsPerYear; m++ {
		customers = append(customers, current)
		r := current * value
		revenue = append(revenue, r)
		year1 += r
		current *= 1 + g.Year1GrowthRateMonthly/100
	}

	y2 := customers[len(customers)-1] * (1 + g.Year2GrowthRateAnnual/100)
	y3 := y2 * (1 + g.Year3GrowthRateAnnual/100)
	projected := []float64{
		year1,
		y2 * value * monthsPerYear,
		y3 * value * monthsPerYear,
	}

	apply := func(s scenario.Scenario) ScenarioProjection {
		out := ScenarioProjection{Name: s.Name(), AnnualRevenues: make([]float64, len(projected))}
		for i, p := range projected {
			out.AnnualRevenues[i] = s.Adjust(i+1, p)
		}
		return out
	}

	base := apply(scenario.Base())
	base.Year1MonthlyCustomers = customers
	base.Year1MonthlyRevenue = revenue

	return RevenueProjection{
		Year1MonthlyCustomers: customers,
		Year1MonthlyRevenue:   revenue,
		Year2Customers:        y2,
		Year3Customers:        y3,
		ProjectedAnnual:       projected,
		BaseCase:              base,
		ConservativeCase:      apply(scenario.Conservative()),
		OptimisticCase:        apply(scenario.Optimistic()),
	}
}

// monthlyRevenue is the year-1 monthly revenue under the selected scenario.
func (a *Analyzer) monthlyRevenue(rev RevenueProjection) []float64 {
	out := make([]float64, len(rev.Year1MonthlyRevenue))
	for i, r := range rev.Year1MonthlyRevenue {
		out[i] = a.scenario.Adjust(1, r)
	}
	return out
}

func (a *Analyzer) UnitEconomics() UnitEconomics {
	u := a.assumptions.UnitEconomics
	cac := u.CustomerAcquisitionCost
	annualRevenue := u.AvgTransactionValue * monthsPerYear
	margin := a.margin()
	churn := u.MonthlyChurnRate / 100

	annualChurn := 1 - math.Pow(1-churn, monthsPerYear)
	ltv := 0.0
	if annualChurn > 0 {
		ltv = annualRevenue * margin / annualChurn
	}
	ratio := 0.0
	if cac > 0 {
		ratio = ltv / cac
	}
	payback := 0.0
	if monthlyContribution := annualRevenue * margin / monthsPerYear; monthlyContribution > 0 {
		payback = cac / monthlyContribution
	}

	return UnitEconomics{
		CAC:                   cac,
		LTV:                   ltv,
		LTVCACRatio:           ratio,
		GrossMarginPercentage: u.GrossMarginPercentage,
		MonthlyChurnRate:      u.MonthlyChurnRate,
		AnnualChurnRate:       annualChurn * 100,
		PaybackPeriodMonths:   payback,
	}
}

// ROIMetrics computes break-even, ROI, NPV and payback for the selected scenario.
// investment is the year-0 outflow.
func (a *Analyzer) ROIMetrics(investment float64, rev RevenueProjection) ROIMetrics {
	inv := a.TotalInvestment()
	margin := a.margin()
	annual := rev.Case(a.scenario.Name()).AnnualRevenues

	flows := make([]float64, 0, len(annual)+1)
	flows = append(flows, -investment)
	for _, r := range annual {
		flows = append(flows, r*margin-inv.FirstYearOperatingCost)
	}
	cumulative := runningTotal(flows)

	monthly := a.monthlyRevenue(rev)
	monthlyFlows := make([]float64, len(monthly))
	cumMonthly := make([]float64, len(monthly))
	var breakEven *int
	balance := -inv.TotalDevelopmentCost
	for i, r := range monthly {
		monthlyFlows[i] = r*margin - inv.TotalMonthlyOperatingCost
		balance += monthlyFlows[i]
		cumMonthly[i] = balance
		if breakEven == nil && balance >= 0 {
			m := i + 1
			breakEven = &m
		}
	}

	out := ROIMetrics{
		BreakEvenMonth:             breakEven,
		PaybackPeriodYears:         paybackYears(flows),
		NPV:                        npv(flows, a.discountRate),
		DiscountRate:               a.discountRate,
		AnnualNetCashFlows:         flows,
		CumulativeCashFlows:        cumulative,
		MonthlyCashFlows:           monthlyFlows,
		CumulativeMonthlyCashFlows: cumMonthly,
	}
	if investment != 0 {
		out.ROI1Year = flows[1] / investment * 100
		out.ROI3Years = sum(flows[1:]) / investment * 100
	}
	return out
}

// CashFlowProjection builds the year-1 monthly cash flow, with the development
// cost paid in month 1.
func (a *Analyzer) CashFlowProjection(rev RevenueProjection) (CashFlow, []LedgerRow) {
	inv := a.TotalInvestment()
	margin := a.margin()
	monthly := a.monthlyRevenue(rev)

	cf := CashFlow{
		MonthlyRevenues:     monthly,
		MonthlyCosts:        make([]float64, len(monthly)),
		MonthlyGrossMargin:  make([]float64, len(monthly)),
		MonthlyNetCashFlows: make([]float64, len(monthly)),
	}
	ledger := make([]LedgerRow, 0, len(monthly))

	negSum, negCount := 0.0, 0
	balance := 0.0
	for i, r := range monthly {
		gm := r * margin
		net := gm - inv.TotalMonthlyOperatingCost
		dev := 0.0
		if i == 0 {
			dev = inv.TotalDevelopmentCost
			net -= dev
		}
		balance += net

		cf.MonthlyCosts[i] = inv.TotalMonthlyOperatingCost
		cf.MonthlyGrossMargin[i] = gm
		cf.MonthlyNetCashFlows[i] = net
		if net < 0 {
			negSum += net
			negCount++
		}
		if cf.MonthsToPositiveCashFlow == nil && balance >= 0 {
			idx := i
			cf.MonthsToPositiveCashFlow = &idx
		}

		ledger = append(ledger, LedgerRow{
			Index:              i + 1,
			Month:              fmt.Sprintf("Month %d", i+1),
			Customers:          rev.Year1MonthlyCustomers[i],
			Revenue:            r,
			GrossMargin:        gm,
			OperatingCosts:     inv.TotalMonthlyOperatingCost,
			DevelopmentCost:    dev,
			NetCashFlow:        net,
			CumulativeCashFlow: balance,
		})
	}
	cf.CumulativeCashFlow = runningTotal(cf.MonthlyNetCashFlows)
	if negCount > 0 {
		cf.AvgBurnRate = math.Abs(negSum / float64(negCount))
	}
	return cf, ledger
}

// Run computes the full analysis.
func (a *Analyzer) Run(ctx context.Context) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := a.TotalInvestment()
	rev := a.ProjectRevenue()
	roi := a.ROIMetrics(inv.TotalYear1Investment, rev)
	cf, ledger := a.CashFlowProjection(rev)

	sens, err := a.Sensitivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("sensitivity: %w", err)
	}

	a.logger.Debug("analysis complete",
		zap.String("scenario", a.scenario.Name()),
		zap.Float64("investment", inv.TotalYear1Investment),
		zap.Float64("roi_1_year", roi.ROI1Year),
		zap.Float64("npv", roi.NPV))

	out := &Analysis{
		Scenario:      a.scenario.Name(),
		Assumptions:   a.assumptions,
		Investment:    inv,
		Revenue:       rev,
		UnitEconomics: a.UnitEconomics(),
		ROI:           roi,
		CashFlow:      cf,
		Sensitivity:   sens,
		Ledger:        ledger,
		GeneratedAt:   a.now(),
	}
	if err := checkFinite(out); err != nil {
		return nil, err
	}
	return out, nil
}

func runningTotal(xs []float64) []float64 {
	out := make([]float64, len(xs))
	acc := 0.0
	for i, x := range xs {
		acc += x
		out[i] = acc
	}
	return out
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

func npv(flows []float64, rate float64) float64 {
	v := 0.0
	for t, cf := range flows {
		v += cf / math.Pow(1+rate, float64(t))
	}
	return v
}

// paybackYears interpolates within the first year whose cumulative flow turns
// non-negative. Returns nil when the outflow is never recovered.
func paybackYears(flows []float64) *float64 {
	cum := 0.0
	for t, cf := range flows {
		prev := cum
		cum += cf
		if cum < 0 {
			continue
		}
		years := 0.0
		if t > 0 && cf != 0 {
			years = float64(t-1) + math.Abs(prev)/cf
		}
		return &years
	}
	return nil
}
