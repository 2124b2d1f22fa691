package finance

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festive-study/internal/model"
	"festive-study/internal/scenario"
)

const delta = 1e-6

func newDefault(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(model.DefaultAssumptions(), opts...)
	require.NoError(t, err)
	return a
}

func TestNewRejectsInvalidAssumptions(t *testing.T) {
	bad := model.DefaultAssumptions()
	bad.UnitEconomics.AvgTransactionValue = 0
	_, err := New(bad)
	require.Error(t, err)
	fields := model.FieldErrors(errors.Unwrap(err))
	require.Len(t, fields, 1)
	assert.Equal(t, "unit_economics.avg_transaction_value", fields[0].Field)
}

func TestTotalInvestment(t *testing.T) {
	inv := newDefault(t).TotalInvestment()
	assert.Equal(t, 32000.0, inv.TotalDevelopmentCost)
	assert.Equal(t, 1500.0, inv.TotalMonthlyOperatingCost)
	assert.Equal(t, 18000.0, inv.FirstYearOperatingCost)
	assert.Equal(t, 50000.0, inv.TotalYear1Investment)
}

func TestProjectRevenue(t *testing.T) {
	rev := newDefault(t).ProjectRevenue()
	require.Len(t, rev.Year1MonthlyRevenue, 12)
	assert.InDelta(t, 750, rev.Year1MonthlyRevenue[0], delta)
	assert.InDelta(t, 2139.8375295825017, rev.Year1MonthlyRevenue[11], delta)
	assert.InDelta(t, 42.79675059165003, rev.Year1MonthlyCustomers[11], delta)

	want := map[string][]float64{
		"raw":          {16038.212825407507, 32097.562943737525, 38517.075532485025},
		"base":         {16038.212825407507, 22468.294060616267, 26961.952872739515},
		"conservative": {11226.748977785253, 20221.464654554642, 21569.562298191613},
		"optimistic":   {20849.67667302976, 41726.83182685878, 50072.198192230535},
	}
	got := map[string][]float64{
		"raw":          rev.ProjectedAnnual,
		"base":         rev.BaseCase.AnnualRevenues,
		"conservative": rev.ConservativeCase.AnnualRevenues,
		"optimistic":   rev.OptimisticCase.AnnualRevenues,
	}
	for name, w := range want {
		require.Len(t, got[name], 3, name)
		for i := range w {
			assert.InDelta(t, w[i], got[name][i], delta, "%s year %d", name, i+1)
		}
	}
	assert.Equal(t, "conservative", rev.Case("conservative").Name)
	assert.Equal(t, "base", rev.Case("nope").Name)
}

func TestUnitEconomics(t *testing.T) {
	ue := newDefault(t).UnitEconomics()
	assert.InDelta(t, 45.963991233736334, ue.AnnualChurnRate, delta)
	assert.InDelta(t, 913.7587679542748, ue.LTV, delta)
	assert.InDelta(t, 36.550350718170996, ue.LTVCACRatio, delta)
	assert.InDelta(t, 0.7142857142857143, ue.PaybackPeriodMonths, delta)
}

func TestUnitEconomicsZeroChurnAndCAC(t *testing.T) {
	in := model.DefaultAssumptions()
	in.UnitEconomics.MonthlyChurnRate = 0
	in.UnitEconomics.CustomerAcquisitionCost = 0
	a, err := New(in)
	require.NoError(t, err)

	ue := a.UnitEconomics()
	assert.Zero(t, ue.LTV)
	assert.Zero(t, ue.LTVCACRatio)
	assert.Zero(t, ue.PaybackPeriodMonths)
}

func TestROIMetricsDefaults(t *testing.T) {
	a := newDefault(t)
	roi := a.ROIMetrics(a.TotalInvestment().TotalYear1Investment, a.ProjectRevenue())

	wantFlows := []float64{-50000, -6773.251022214747, -2272.194157568614, 873.3670109176601}
	wantCum := []float64{-50000, -56773.25102221475, -59045.44517978336, -58172.0781688657}
	for i := range wantFlows {
		assert.InDelta(t, wantFlows[i], roi.AnnualNetCashFlows[i], delta)
		assert.InDelta(t, wantCum[i], roi.CumulativeCashFlows[i], delta)
	}
	assert.InDelta(t, -13.546502044429493, roi.ROI1Year, delta)
	assert.InDelta(t, -16.344156337731402, roi.ROI3Years, delta)
	assert.InDelta(t, -57379.17377857826, roi.NPV, delta)
	assert.Equal(t, DefaultDiscountRate, roi.DiscountRate)
	assert.Nil(t, roi.BreakEvenMonth)
	assert.Nil(t, roi.PaybackPeriodYears)
	assert.Len(t, roi.MonthlyCashFlows, 12)
}

func TestROIMetricsZeroInvestment(t *testing.T) {
	a := newDefault(t)
	roi := a.ROIMetrics(0, a.ProjectRevenue())
	assert.Zero(t, roi.ROI1Year)
	assert.Zero(t, roi.ROI3Years)
	require.NotNil(t, roi.PaybackPeriodYears)
	assert.Zero(t, *roi.PaybackPeriodYears)
}

func TestROIMetricsScenarioChangesFlows(t *testing.T) {
	base := newDefault(t)
	cons := newDefault(t, WithScenario(scenario.Conservative()))
	inv := base.TotalInvestment().TotalYear1Investment

	b := base.ROIMetrics(inv, base.ProjectRevenue())
	c := cons.ROIMetrics(inv, cons.ProjectRevenue())
	assert.Less(t, c.ROI1Year, b.ROI1Year)
	assert.InDelta(t, 11226.748977785253*0.7-18000, c.AnnualNetCashFlows[1], delta)
}

func TestBreakEvenWithStrongDemand(t *testing.T) {
	in := model.DefaultAssumptions()
	in.Growth.Year1MonthlyCustomersBase = 200
	a, err := New(in)
	require.NoError(t, err)

	rev := a.ProjectRevenue()
	roi := a.ROIMetrics(a.TotalInvestment().TotalYear1Investment, rev)
	require.NotNil(t, roi.BreakEvenMonth)
	assert.Equal(t, 5, *roi.BreakEvenMonth)

	cf, _ := a.CashFlowProjection(rev)
	require.NotNil(t, cf.MonthsToPositiveCashFlow)
	assert.Equal(t, 4, *cf.MonthsToPositiveCashFlow)
}

func TestPaybackYears(t *testing.T) {
	got := paybackYears([]float64{-100, 50, 60})
	require.NotNil(t, got)
	assert.InDelta(t, 1+50.0/60.0, *got, delta)

	got = paybackYears([]float64{-100, 100})
	require.NotNil(t, got)
	assert.InDelta(t, 1.0, *got, delta)

	assert.Nil(t, paybackYears([]float64{-100, 10, 10}))
}

func TestPaybackWithinFirstYear(t *testing.T) {
	in := model.DefaultAssumptions()
	in.Growth.Year1MonthlyCustomersBase = 100
	a, err := New(in)
	require.NoError(t, err)

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	// Year 1 recovers the whole outflow, so payback is a fraction of year 1.
	year1 := 0.0
	for m := 0; m < 12; m++ {
		year1 += 100 * 50 * math.Pow(1.1, float64(m))
	}
	want := 50000 / (year1*0.7 - 18000)
	require.NotNil(t, res.ROI.PaybackPeriodYears)
	assert.InDelta(t, want, *res.ROI.PaybackPeriodYears, delta)
	assert.InDelta(t, 0.880, *res.ROI.PaybackPeriodYears, 0.001)
}

func TestCashFlowProjection(t *testing.T) {
	a := newDefault(t)
	cf, ledger := a.CashFlowProjection(a.ProjectRevenue())

	require.Len(t, cf.MonthlyNetCashFlows, 12)
	assert.InDelta(t, -32975, cf.MonthlyNetCashFlows[0], delta)
	assert.InDelta(t, -2.1137292922489905, cf.MonthlyNetCashFlows[11], delta)
	assert.InDelta(t, -38773.251022214754, cf.CumulativeCashFlow[11], delta)
	assert.InDelta(t, 3231.1042518512295, cf.AvgBurnRate, delta)
	assert.Nil(t, cf.MonthsToPositiveCashFlow)

	require.Len(t, ledger, 12)
	assert.Equal(t, 1, ledger[0].Index)
	assert.Equal(t, "Month 1", ledger[0].Month)
	assert.Equal(t, 32000.0, ledger[0].DevelopmentCost)
	assert.Zero(t, ledger[1].DevelopmentCost)
	assert.InDelta(t, cf.CumulativeCashFlow[11], ledger[11].CumulativeCashFlow, delta)
}

func TestSensitivity(t *testing.T) {
	a := newDefault(t)
	before := a.Assumptions()

	s, err := a.Sensitivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, a.Assumptions())

	assert.InDelta(t, -13.546502044429493, s.BaseROI, delta)
	require.Len(t, s.CAC, 3)
	require.Len(t, s.Churn, 3)

	for _, p := range append(append([]SensitivityPoint{}, s.CAC...), s.Churn...) {
		assert.InDelta(t, s.BaseROI, p.ROI1Year, delta, p.Label)
	}
	assert.Equal(t, "CAC €20", s.CAC[0].Label)
	assert.InDelta(t, 913.7587679542748/20, s.CAC[0].LTVCACRatio, delta)

	wantLTV := []float64{1371.8423011282148, 913.7587679542748, 722.3896204635837}
	for i, w := range wantLTV {
		assert.Equal(t, ChurnVariations[i], s.Churn[i].Value)
		assert.InDelta(t, w, s.Churn[i].LTV, delta)
	}
}

func TestSensitivityCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newDefault(t).Sensitivity(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := newDefault(t, WithClock(func() time.Time { return at }), WithDiscountRate(0.08))

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "base", res.Scenario)
	assert.Equal(t, at, res.GeneratedAt)
	assert.Equal(t, 0.08, res.ROI.DiscountRate)
	assert.Len(t, res.Ledger, 12)

	summary := ExecutiveSummary(res)
	assert.Contains(t, summary, "Project Investment:  €50,000")
	assert.Contains(t, summary, "not reached within year 1")
	assert.Contains(t, summary, "Year 1 ROI:          -13.5%")
}

func TestRunRejectsNonFiniteResults(t *testing.T) {
	cases := map[string]func(*model.Assumptions){
		"growth":            func(a *model.Assumptions) { a.Growth.Year1GrowthRateMonthly = 1e300 },
		"transaction value": func(a *model.Assumptions) { a.UnitEconomics.AvgTransactionValue = 1e308 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := model.DefaultAssumptions()
			mutate(&in)
			a, err := New(in)
			require.NoError(t, err)

			res, err := a.Run(context.Background())
			assert.Nil(t, res)
			require.ErrorIs(t, err, ErrNonFinite)
			var nf *NonFiniteError
			require.ErrorAs(t, err, &nf)
			assert.NotEmpty(t, nf.Field)
		})
	}
}

func TestEuro(t *testing.T) {
	assert.Equal(t, "€1,235", Euro(1234.6))
	assert.Equal(t, "-€38,773", Euro(-38773.25))
	assert.Equal(t, "€0", Euro(0))
	assert.Equal(t, "€0", Euro(-0.4))
	assert.Equal(t, "-€1", Euro(-0.5))
}

func TestEncodeLedgerCSV(t *testing.T) {
	a := newDefault(t)
	_, ledger := a.CashFlowProjection(a.ProjectRevenue())

	var buf bytes.Buffer
	require.NoError(t, EncodeLedgerCSV(&buf, ledger))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Equal(t, ledgerHeader, records[0])
	assert.Equal(t, []string{"1", "Month 1", "15.00", "750.00", "525.00", "1500.00", "32000.00", "-32975.00", "-32975.00"}, records[1])
}

func TestLTVVerdict(t *testing.T) {
	assert.Equal(t, "above the 3:1 target", ltvVerdict(36.5))
	assert.Equal(t, "below the 3:1 target", ltvVerdict(2.9))
}
