package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DevelopmentCosts are one-time costs paid before the first rental.
// Units: EUR.
type DevelopmentCosts struct {
	EquipmentInitialPurchase float64 `yaml:"equipment_initial_purchase" json:"equipment_initial_purchase"`
	SoftwareDevelopment      float64 `yaml:"software_development" json:"software_development"`
	InitialMarketingSetup    float64 `yaml:"initial_marketing_setup" json:"initial_marketing_setup"`
	LegalLicensing           float64 `yaml:"legal_licensing" json:"legal_licensing"`
	WorkingCapital           float64 `yaml:"working_capital" json:"working_capital"`
	MiscSetupCosts           float64 `yaml:"misc_setup_costs" json:"misc_setup_costs"`
}

func (d DevelopmentCosts) Total() float64 {
	return d.EquipmentInitialPurchase + d.SoftwareDevelopment + d.InitialMarketingSetup +
		d.LegalLicensing + d.WorkingCapital + d.MiscSetupCosts
}

// OperatingCosts are recurring monthly costs in EUR.
type OperatingCosts struct {
	EquipmentMaintenance float64 `yaml:"equipment_maintenance" json:"equipment_maintenance"`
	Insurance            float64 `yaml:"insurance" json:"insurance"`
	SoftwareSubscription float64 `yaml:"software_subscription" json:"software_subscription"`
	MarketingAds         float64 `yaml:"marketing_ads" json:"marketing_ads"`
	StaffSalaries        float64 `yaml:"staff_salaries" json:"staff_salaries"` // 0 while self-operated
	Utilities            float64 `yaml:"utilities" json:"utilities"`
	Transportation       float64 `yaml:"transportation" json:"transportation"`
	MiscOperational      float64 `yaml:"misc_operational" json:"misc_operational"`
}

func (o OperatingCosts) Total() float64 {
	return o.EquipmentMaintenance + o.Insurance + o.SoftwareSubscription + o.MarketingAds +
		o.StaffSalaries + o.Utilities + o.Transportation + o.MiscOperational
}

// Pricing holds daily rental rates in EUR.
type Pricing struct {
	PopcornMachineDay      float64 `yaml:"popcorn_machine_day" json:"popcorn_machine_day"`
	CottonCandyMachineDay  float64 `yaml:"cotton_candy_machine_day" json:"cotton_candy_machine_day"`
	HotChestnutsMachineDay float64 `yaml:"hot_chestnuts_machine_day" json:"hot_chestnuts_machine_day"`
	PackageDeal3Days       float64 `yaml:"package_deal_3_days" json:"package_deal_3_days"` // discounted bundle
}

// UnitEconomicsInputs are per-customer assumptions.
// Percentages are expressed as 0..100, not fractions.
type UnitEconomicsInputs struct {
	AvgTransactionValue     float64 `yaml:"avg_transaction_value" json:"avg_transaction_value"`
	GrossMarginPercentage   float64 `yaml:"gross_margin_percentage" json:"gross_margin_percentage"`
	CustomerAcquisitionCost float64 `yaml:"customer_acquisition_cost" json:"customer_acquisition_cost"`
	MonthlyChurnRate        float64 `yaml:"monthly_churn_rate" json:"monthly_churn_rate"`
}

// GrowthAssumptions drive the customer curve. Rates are percentages.
type GrowthAssumptions struct {
	Year1MonthlyCustomersBase float64 `yaml:"year_1_monthly_customers_base" json:"year_1_monthly_customers_base"`
	Year1GrowthRateMonthly    float64 `yaml:"year_1_growth_rate_monthly" json:"year_1_growth_rate_monthly"`
	Year2GrowthRateAnnual     float64 `yaml:"year_2_growth_rate_annual" json:"year_2_growth_rate_annual"`
	Year3GrowthRateAnnual     float64 `yaml:"year_3_growth_rate_annual" json:"year_3_growth_rate_annual"`
}

// Assumptions is the full input set for a financial analysis.
// It is a plain value: copying it yields an independent set.
type Assumptions struct {
	DevelopmentCosts DevelopmentCosts    `yaml:"development_costs" json:"development_costs"`
	OperatingCosts   OperatingCosts      `yaml:"operating_costs" json:"operating_costs"`
	Pricing          Pricing             `yaml:"pricing" json:"pricing"`
	UnitEconomics    UnitEconomicsInputs `yaml:"unit_economics" json:"unit_economics"`
	Growth           GrowthAssumptions   `yaml:"growth" json:"growth"`
}

func DefaultAssumptions() Assumptions {
	return Assumptions{
		DevelopmentCosts: DevelopmentCosts{
			EquipmentInitialPurchase: 15000,
			SoftwareDevelopment:      5000,
			InitialMarketingSetup:    3000,
			LegalLicensing:           2000,
			WorkingCapital:           5000,
			MiscSetupCosts:           2000,
		},
		OperatingCosts: OperatingCosts{
			EquipmentMaintenance: 200,
			Insurance:            150,
			SoftwareSubscription: 100,
			MarketingAds:         500,
			StaffSalaries:        0,
			Utilities:            100,
			Transportation:       300,
			MiscOperational:      150,
		},
		Pricing: Pricing{
			PopcornMachineDay:      50,
			CottonCandyMachineDay:  45,
			HotChestnutsMachineDay: 60,
			PackageDeal3Days:       130,
		},
		UnitEconomics: UnitEconomicsInputs{
			AvgTransactionValue:     50,
			GrossMarginPercentage:   70,
			CustomerAcquisitionCost: 25,
			MonthlyChurnRate:        5,
		},
		Growth: GrowthAssumptions{
			Year1MonthlyCustomersBase: 15,
			Year1GrowthRateMonthly:    10,
			Year2GrowthRateAnnual:     25,
			Year3GrowthRateAnnual:     20,
		},
	}
}

// FieldError names the offending assumption by its dotted YAML path.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Validate reports every invalid field at once. The returned error is a
// *multierror.Error whose entries are *FieldError.
func (a Assumptions) Validate() error {
	var result *multierror.Error
	fail := func(field, msg string) {
		result = multierror.Append(result, &FieldError{Field: field, Message: msg})
	}
	nonNegative := func(field string, v float64) {
		if v < 0 {
			fail(field, "must be >= 0")
		}
	}

	d := a.DevelopmentCosts
	nonNegative("development_costs.equipment_initial_purchase", d.EquipmentInitialPurchase)
	nonNegative("development_costs.software_development", d.SoftwareDevelopment)
	nonNegative("development_costs.initial_marketing_setup", d.InitialMarketingSetup)
	nonNegative("development_costs.legal_licensing", d.LegalLicensing)
	nonNegative("development_costs.working_capital", d.WorkingCapital)
	nonNegative("development_costs.misc_setup_costs", d.MiscSetupCosts)

	o := a.OperatingCosts
	nonNegative("operating_costs.equipment_maintenance", o.EquipmentMaintenance)
	nonNegative("operating_costs.insurance", o.Insurance)
	nonNegative("operating_costs.software_subscription", o.SoftwareSubscription)
	nonNegative("operating_costs.marketing_ads", o.MarketingAds)
	nonNegative("operating_costs.staff_salaries", o.StaffSalaries)
	nonNegative("operating_costs.utilities", o.Utilities)
	nonNegative("operating_costs.transportation", o.Transportation)
	nonNegative("operating_costs.misc_operational", o.MiscOperational)

	p := a.Pricing
	nonNegative("pricing.popcorn_machine_day", p.PopcornMachineDay)
	nonNegative("pricing.cotton_candy_machine_day", p.CottonCandyMachineDay)
	nonNegative("pricing.hot_chestnuts_machine_day", p.HotChestnutsMachineDay)
	nonNegative("pricing.package_deal_3_days", p.PackageDeal3Days)

	u := a.UnitEconomics
	if u.AvgTransactionValue <= 0 {
		fail("unit_economics.avg_transaction_value", "must be > 0")
	}
	if u.GrossMarginPercentage < 0 || u.GrossMarginPercentage > 100 {
		fail("unit_economics.gross_margin_percentage", "must be in [0, 100]")
	}
	nonNegative("unit_economics.customer_acquisition_cost", u.CustomerAcquisitionCost)
	if u.MonthlyChurnRate < 0 || u.MonthlyChurnRate >= 100 {
		fail("unit_economics.monthly_churn_rate", "must be in [0, 100)")
	}

	g := a.Growth
	nonNegative("growth.year_1_monthly_customers_base", g.Year1MonthlyCustomersBase)
	if g.Year1GrowthRateMonthly < -100 {
		fail("growth.year_1_growth_rate_monthly", "must be >= -100")
	}
	if g.Year2GrowthRateAnnual < -100 {
		fail("growth.year_2_growth_rate_annual", "must be >= -100")
	}
	if g.Year3GrowthRateAnnual < -100 {
		fail("growth.year_3_growth_rate_annual", "must be >= -100")
	}

	return result.ErrorOrNil()
}

// FieldErrors flattens a Validate error into its field entries.
func FieldErrors(err error) []*FieldError {
	merr, ok := err.(*multierror.Error)
	if !ok || merr == nil {
		if fe, ok := err.(*FieldError); ok {
			return []*FieldError{fe}
		}
		return nil
	}
	out := make([]*FieldError, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		if fe, ok := e.(*FieldError); ok {
			out = append(out, fe)
		}
	}
	return out
}
