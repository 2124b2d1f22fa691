package finance

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is matched by errors from Run when the assumptions drive a
// result to ±Inf or NaN.
var ErrNonFinite = errors.New("result is not finite")

type NonFiniteError struct {
	Field string
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%s is not finite (%v): assumptions are out of range", e.Field, e.Value)
}

func (e *NonFiniteError) Is(target error) bool { return target == ErrNonFinite }

type finiteCheck struct {
	err error
}

func (c *finiteCheck) values(field string, vs ...float64) {
	if c.err != nil {
		return
	}
	for i, v := range vs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			name := field
			if len(vs) > 1 {
				name = fmt.Sprintf("%s[%d]", field, i)
			}
			c.err = &NonFiniteError{Field: name, Value: v}
			return
		}
	}
}

func (c *finiteCheck) optional(field string, v *float64) {
	if v != nil {
		c.values(field, *v)
	}
}

// checkFinite reports the first non-finite number of an analysis.
func checkFinite(a *Analysis) error {
	var c finiteCheck

	c.values("investment.total_year_1_investment", a.Investment.TotalYear1Investment)

	r := a.Revenue
	c.values("revenue.year_1_monthly_customers", r.Year1MonthlyCustomers...)
	c.values("revenue.year_1_monthly_revenue", r.Year1MonthlyRevenue...)
	c.values("revenue.year_2_customers", r.Year2Customers)
	c.values("revenue.year_3_customers", r.Year3Customers)
	c.values("revenue.projected_annual_revenues", r.ProjectedAnnual...)
	c.values("revenue.conservative_case.annual_revenues", r.ConservativeCase.AnnualRevenues...)
	c.values("revenue.base_case.annual_revenues", r.BaseCase.AnnualRevenues...)
	c.values("revenue.optimistic_case.annual_revenues", r.OptimisticCase.AnnualRevenues...)

	u := a.UnitEconomics
	c.values("unit_economics.ltv", u.LTV)
	c.values("unit_economics.ltv_cac_ratio", u.LTVCACRatio)
	c.values("unit_economics.payback_period_months", u.PaybackPeriodMonths)

	roi := a.ROI
	c.values("roi.roi_1_year", roi.ROI1Year)
	c.values("roi.roi_3_years", roi.ROI3Years)
	c.values("roi.npv", roi.NPV)
	c.optional("roi.payback_period_years", roi.PaybackPeriodYears)
	c.values("roi.annual_net_cash_flows", roi.AnnualNetCashFlows...)
	c.values("roi.cumulative_cash_flows", roi.CumulativeCashFlows...)
	c.values("roi.monthly_cash_flows", roi.MonthlyCashFlows...)
	c.values("roi.cumulative_monthly_cash_flows", roi.CumulativeMonthlyCashFlows...)

	cf := a.CashFlow
	c.values("cash_flow.monthly_revenues", cf.MonthlyRevenues...)
	c.values("cash_flow.monthly_gross_margin", cf.MonthlyGrossMargin...)
	c.values("cash_flow.monthly_net_cash_flows", cf.MonthlyNetCashFlows...)
	c.values("cash_flow.cumulative_cash_flow", cf.CumulativeCashFlow...)
	c.values("cash_flow.avg_burn_rate", cf.AvgBurnRate)

	points := func(sweep string, ps []SensitivityPoint) {
		for i, p := range ps {
			prefix := fmt.Sprintf("sensitivity.%s[%d].", sweep, i)
			c.values(prefix+"ltv", p.LTV)
			c.values(prefix+"ltv_cac_ratio", p.LTVCACRatio)
			c.values(prefix+"payback_period_months", p.PaybackPeriodMonths)
		}
	}
	points("cac", a.Sensitivity.CAC)
	points("churn", a.Sensitivity.Churn)
	return c.err
}
