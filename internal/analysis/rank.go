package analysis

import (
	"sort"

	"festive-study/internal/model"
)

type RankedCompetitor struct {
	model.Competitor
	StrengthCount int `json:"strength_count"`
	WeaknessCount int `json:"weakness_count"`
	Score         int `json:"score"`
}

// RankCompetitors sorts by strengths minus weaknesses, descending, then by name.
func RankCompetitors(competitors []model.Competitor) []RankedCompetitor {
	out := make([]RankedCompetitor, 0, len(competitors))
	for _, c := range competitors {
		s, w := CountItems(c.Strengths), CountItems(c.Weaknesses)
		out = append(out, RankedCompetitor{Competitor: c, StrengthCount: s, WeaknessCount: w, Score: s - w})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}
