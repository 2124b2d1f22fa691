package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactors(t *testing.T) {
	cases := []struct {
		s    *FactorScenario
		want []float64
	}{
		{Base(), []float64{1, 0.7, 0.7}},
		{Conservative(), []float64{0.7, 0.63, 0.56}},
		{Optimistic(), []float64{1.3, 1.3, 1.3}},
	}
	for _, tc := range cases {
		t.Run(tc.s.Name(), func(t *testing.T) {
			for i, w := range tc.want {
				assert.InDelta(t, w*1000, tc.s.Adjust(i+1, 1000), 1e-9)
			}
		})
	}
}

func TestFactorClampsYear(t *testing.T) {
	s := Conservative()
	assert.InDelta(t, 0.7, s.Factor(0), 1e-12)
	assert.InDelta(t, 0.56, s.Factor(9), 1e-12)

	empty := &FactorScenario{ID: "flat"}
	assert.Equal(t, 1.0, empty.Factor(2))
}

func TestLookup(t *testing.T) {
	s, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "base", s.Name())

	s, err = Lookup(" Optimistic ")
	require.NoError(t, err)
	assert.Equal(t, "optimistic", s.Name())

	_, err = Lookup("moonshot")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownScenario))
	assert.Contains(t, err.Error(), "conservative")
}
