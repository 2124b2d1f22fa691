package finance

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"festive-study/internal/model"
)

var (
	CACVariations   = []float64{20, 25, 30}
	ChurnVariations = []float64{3, 5, 7}
)

type variation struct {
	variable string
	label    string
	value    float64
	apply    func(*model.Assumptions, float64)
}

// Sensitivity recomputes the model with CAC and churn swept over fixed values.
// Each point runs on its own copy of the assumptions.
func (a *Analyzer) Sensitivity(ctx context.Context) (Sensitivity, error) {
	inv := a.TotalInvestment()
	out := Sensitivity{
		BaseROI: a.ROIMetrics(inv.TotalYear1Investment, a.ProjectRevenue()).ROI1Year,
	}

	var vs []variation
	for _, v := range CACVariations {
		vs = append(vs, variation{
			variable: "customer_acquisition_cost",
			label:    fmt.Sprintf("CAC €%g", v),
			value:    v,
			apply:    func(m *model.Assumptions, x float64) { m.UnitEconomics.CustomerAcquisitionCost = x },
		})
	}
	for _, v := range ChurnVariations {
		vs = append(vs, variation{
			variable: "monthly_churn_rate",
			label:    fmt.Sprintf("Churn %g%%", v),
			value:    v,
			apply:    func(m *model.Assumptions, x float64) { m.UnitEconomics.MonthlyChurnRate = x },
		})
	}

	points := make([]SensitivityPoint, len(vs))
	g, ctx := errgroup.WithContext(ctx)
	for i, v := range vs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			modified := a.assumptions
			v.apply(&modified, v.value)
			sib := a.with(modified)
			ue := sib.UnitEconomics()
			points[i] = SensitivityPoint{
				Variable:            v.variable,
				Label:               v.label,
				Value:               v.value,
				ROI1Year:            sib.ROIMetrics(inv.TotalYear1Investment, sib.ProjectRevenue()).ROI1Year,
				LTV:                 ue.LTV,
				LTVCACRatio:         ue.LTVCACRatio,
				PaybackPeriodMonths: ue.PaybackPeriodMonths,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Sensitivity{}, err
	}

	out.CAC = points[:len(CACVariations)]
	out.Churn = points[len(CACVariations):]
	return out, nil
}
