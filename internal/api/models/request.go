package models

import "encoding/json"

// AnalysisRequest represents the request body for running an analysis.
// Every field is optional; an empty body runs the configured defaults.
type AnalysisRequest struct {
	// Assumptions is a partial assumptions document merged over the defaults.
	Assumptions   json.RawMessage `json:"assumptions,omitempty"`
	Scenario      string          `json:"scenario,omitempty"`      // conservative, base or optimistic
	DiscountRate  float64         `json:"discount_rate,omitempty"` // default: configured rate
	IncludeLedger bool            `json:"include_ledger,omitempty"`
}

// CompareRequest represents a request to compare variations of one analysis
type CompareRequest struct {
	Base       AnalysisRequest `json:"base"`
	Variations []Variation     `json:"variations" binding:"required,min=1,dive"`
}

// Variation overrides the base request. Assumptions are merged over the base
// assumptions and an empty scenario keeps the base scenario.
type Variation struct {
	Name        string          `json:"name" binding:"required"`
	Assumptions json.RawMessage `json:"assumptions,omitempty"`
	Scenario    string          `json:"scenario,omitempty"`
}

// LintRequest carries a template to check
type LintRequest struct {
	Template string `json:"template" binding:"required"`
}
