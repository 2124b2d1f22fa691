package model

import "strings"

// MarketInfo is the qualitative market picture collected during the study.
type MarketInfo struct {
	Industry           string   `json:"industry" yaml:"industry"`
	Location           string   `json:"location" yaml:"location"`
	TargetMarket       []string `json:"target_market" yaml:"target_market"`
	SeasonalityFactors []string `json:"seasonality_factors" yaml:"seasonality_factors"`
	MarketTrends       []string `json:"market_trends" yaml:"market_trends"`
}

func DefaultMarketInfo() MarketInfo {
	return MarketInfo{
		Industry: "Festive Equipment Rental",
		Location: "Niort, France",
		TargetMarket: []string{
			"Wedding organizers",
			"Corporate event planners",
			"Schools and educational institutions",
			"Municipalities for public events",
			"Private party organizers",
		},
		SeasonalityFactors: []string{
			"Spring/Summer: Weddings, outdoor events",
			"Fall/Winter: Corporate events, holiday parties",
			"Back-to-school season: School events",
		},
		MarketTrends: []string{
			"Increasing demand for unique event experiences",
			"Growing preference for locally-owned vs. chain providers",
			"Importance of social media presence for marketing",
		},
	}
}

// Competitor is one row of the competitor research sheet.
// Strengths and Weaknesses are free text, comma-separated.
type Competitor struct {
	Name           string `json:"Competitor"`
	Website        string `json:"Website"`
	Services       string `json:"Services"`
	PricingRange   string `json:"Pricing Range"`
	Specialization string `json:"Specialization"`
	Strengths      string `json:"Strengths"`
	Weaknesses     string `json:"Weaknesses"`
	MarketPosition string `json:"Market Position"`
}

// Researched reports whether anything beyond the name has been filled in.
func (c Competitor) Researched() bool {
	for _, v := range []string{c.Website, c.Services, c.PricingRange, c.Specialization, c.Strengths, c.Weaknesses, c.MarketPosition} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// DefaultCompetitorNames lists the local players identified at the start of the study.
func DefaultCompetitorNames() []string {
	return []string{
		"LS Réception",
		"Autrement Location",
		"Organi-Sons",
		"SR Événements",
		"Au Comptoir Des Vaisselles",
		"SIEG Event",
		"Geste Scénique",
		"AMB EVENT 79",
		"Ouest Sono Live",
		"Sonovolante",
		"MAX MUSIQUE SA",
		"Carrément Prod",
	}
}

func DefaultCompetitors() []Competitor {
	names := DefaultCompetitorNames()
	out := make([]Competitor, len(names))
	for i, n := range names {
		out[i] = Competitor{Name: n}
	}
	return out
}
