package scenario

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario turns a raw annual revenue projection into a scenario-specific one.
// year is 1-based.
type Scenario interface {
	Name() string
	Description() string
	Adjust(year int, projected float64) float64
}

// FactorScenario scales each projection year by a fixed factor.
// Years past the last factor reuse the last one.
type FactorScenario struct {
	ID      string
	Summary string
	Factors []float64
}

func (s *FactorScenario) Name() string        { return s.ID }
func (s *FactorScenario) Description() string { return s.Summary }

func (s *FactorScenario) Adjust(year int, projected float64) float64 {
	return projected * s.Factor(year)
}

func (s *FactorScenario) Factor(year int) float64 {
	if len(s.Factors) == 0 {
		return 1
	}
	i := year - 1
	if i < 0 {
		i = 0
	}
	if i >= len(s.Factors) {
		i = len(s.Factors) - 1
	}
	return s.Factors[i]
}

const (
	conservativeFactor = 0.7
	optimisticFactor   = 1.3
)

// Base keeps year 1 as projected and discounts later years, since the
// annual run-rate extrapolation overstates years 2 and 3.
func Base() *FactorScenario {
	return &FactorScenario{
		ID:      "base",
		Summary: "Year 1 as projected; years 2-3 discounted to 70% of the run-rate extrapolation.",
		Factors: []float64{1, conservativeFactor, conservativeFactor},
	}
}

func Conservative() *FactorScenario {
	return &FactorScenario{
		ID:      "conservative",
		Summary: "70% of projection in year 1, tapering to 63% and 56% in years 2-3.",
		Factors: []float64{conservativeFactor, conservativeFactor * 0.9, conservativeFactor * 0.8},
	}
}

func Optimistic() *FactorScenario {
	return &FactorScenario{
		ID:      "optimistic",
		Summary: "130% of projection in every year.",
		Factors: []float64{optimisticFactor, optimisticFactor, optimisticFactor},
	}
}

// All returns the built-in scenarios in report order.
func All() []Scenario {
	return []Scenario{Conservative(), Base(), Optimistic()}
}

func Names() []string {
	all := All()
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.Name())
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a scenario by name. An empty name means base.
func Lookup(name string) (Scenario, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Base(), nil
	}
	for _, s := range All() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownScenario, name, strings.Join(Names(), ", "))
}
