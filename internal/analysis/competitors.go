package analysis

import (
	"strings"

	"festive-study/internal/model"
)

// CompetitorSummary aggregates the research sheet.
// Averages count only competitors whose field was filled in.
type CompetitorSummary struct {
	TotalCompetitors int     `json:"total_competitors"`
	Researched       int     `json:"researched"`
	AvgStrengths     float64 `json:"avg_strengths_per_competitor"`
	AvgWeaknesses    float64 `json:"avg_weaknesses_per_competitor"`
	WithStrengths    int     `json:"with_strengths"`
	WithWeaknesses   int     `json:"with_weaknesses"`
	TopCompetitor    string  `json:"top_competitor,omitempty"`
}

// AnalyzeCompetitors returns ok=false when there is nothing to analyze.
func AnalyzeCompetitors(competitors []model.Competitor) (CompetitorSummary, bool) {
	if len(competitors) == 0 {
		return CompetitorSummary{}, false
	}
	s := CompetitorSummary{TotalCompetitors: len(competitors)}

	strengths, weaknesses := 0, 0
	for _, c := range competitors {
		if c.Researched() {
			s.Researched++
		}
		if n := CountItems(c.Strengths); n > 0 {
			strengths += n
			s.WithStrengths++
		}
		if n := CountItems(c.Weaknesses); n > 0 {
			weaknesses += n
			s.WithWeaknesses++
		}
	}
	if s.WithStrengths > 0 {
		s.AvgStrengths = float64(strengths) / float64(s.WithStrengths)
	}
	if s.WithWeaknesses > 0 {
		s.AvgWeaknesses = float64(weaknesses) / float64(s.WithWeaknesses)
	}
	if s.Researched > 0 {
		s.TopCompetitor = RankCompetitors(competitors)[0].Name
	}
	return s, true
}

// CountItems counts the non-blank entries of a comma-separated list.
func CountItems(list string) int {
	n := 0
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}
