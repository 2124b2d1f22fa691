package finance

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// TargetLTVCAC is the minimum healthy LTV:CAC ratio.
const TargetLTVCAC = 3.0

func ltvVerdict(ratio float64) string {
	if ratio >= TargetLTVCAC {
		return "above the 3:1 target"
	}
	return "below the 3:1 target"
}

// Euro formats an amount as whole euros with thousands separators.
func Euro(v float64) string {
	v = math.Round(v)
	if v < 0 {
		return "-€" + humanize.FormatFloat("#,###.", -v)
	}
	return "€" + humanize.FormatFloat("#,###.", math.Abs(v))
}

// ExecutiveSummary is the short plain-text digest printed by the CLI.
func ExecutiveSummary(a *Analysis) string {
	breakEven := "not reached within year 1"
	if m := a.ROI.BreakEvenMonth; m != nil {
		breakEven = fmt.Sprintf("Month %d", *m)
	}
	payback := "not recovered within 3 years"
	if y := a.ROI.PaybackPeriodYears; y != nil {
		payback = fmt.Sprintf("%.1f years", *y)
	}

	var b strings.Builder
	b.WriteString("EXECUTIVE SUMMARY\n")
	b.WriteString("=================\n\n")
	fmt.Fprintf(&b, "Scenario:            %s\n", a.Scenario)
	fmt.Fprintf(&b, "Project Investment:  %s\n", Euro(a.Investment.TotalYear1Investment))
	fmt.Fprintf(&b, "Break-even Point:    %s\n", breakEven)
	fmt.Fprintf(&b, "Payback Period:      %s\n", payback)
	fmt.Fprintf(&b, "Year 1 ROI:          %.1f%%\n", a.ROI.ROI1Year)
	fmt.Fprintf(&b, "Year 3 ROI:          %.1f%%\n", a.ROI.ROI3Years)
	fmt.Fprintf(&b, "NPV (%.0f%%):          %s\n", a.ROI.DiscountRate*100, Euro(a.ROI.NPV))
	fmt.Fprintf(&b, "LTV:CAC:             %.1f:1 (%s)\n", a.UnitEconomics.LTVCACRatio, ltvVerdict(a.UnitEconomics.LTVCACRatio))
	fmt.Fprintf(&b, "Avg Burn Rate:       %s/month\n", Euro(a.CashFlow.AvgBurnRate))
	return b.String()
}
