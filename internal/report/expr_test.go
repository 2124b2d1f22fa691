package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression(t *testing.T) {
	cases := []struct {
		in    string
		path  string
		pongo string
	}{
		{"investment.total_development_cost", "investment.total_development_cost", "investment.total_development_cost"},
		{" roi.roi_1_year | round(1) ", "roi.roi_1_year", "roi.roi_1_year|round:1"},
		{"revenue.base_case.annual_revenues[2]|round", "revenue.base_case.annual_revenues[2]", "revenue.base_case.annual_revenues.2|round"},
		{"sensitivity.cac[0].ltv | money", "sensitivity.cac[0].ltv", "sensitivity.cac.0.ltv|money"},
		{"a[ 1 ][0]", "a[1][0]", "a.1.0"},
		{"x | default('none')", "x", `x|default:"none"`},
		{`x | default("a b") | upper`, "x", `x|default:"a b"|upper`},
		{"x | round(-1.5)", "x", "x|round:-1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := ParseExpression(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.path, e.PathString())
			assert.Equal(t, tc.pongo, e.Pongo())
		})
	}
}

func TestParseExpressionFilters(t *testing.T) {
	e, err := ParseExpression("roi.npv | round(2) | money")
	require.NoError(t, err)
	require.Len(t, e.Filters, 2)
	assert.Equal(t, Filter{Name: "round", Arg: "2"}, e.Filters[0])
	assert.Equal(t, Filter{Name: "money"}, e.Filters[1])
	assert.Equal(t, "roi.npv | round(2) | money", e.String())
}

func TestReservedWordsOnlyBlockWholeKeys(t *testing.T) {
	for _, in := range []string{"truth", "a.index", "nothing[0]", "x | default('none')"} {
		_, err := ParseExpression(in)
		assert.NoError(t, err, in)
	}
	assert.True(t, IsReserved("false"))
	assert.False(t, IsReserved("falsey"))
}

func TestParseExpressionErrors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"a..b",
		"1abc",
		"a.",
		"a[x]",
		"a[1",
		"a b",
		"a |",
		"a | round(",
		"a | round(1",
		"a | round(abc)",
		"a | round('x)",
		"a | round(-)",
		"a.b-c",
		"true",
		"in",
		"not.x",
		"roi.and",
		"None",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := ParseExpression(in)
			require.Error(t, err)
			var se *SyntaxError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestLookup(t *testing.T) {
	ctx := map[string]any{
		"roi": map[string]any{
			"flows":      []any{-50000.0, 10.0},
			"break_even": nil,
		},
	}

	v, err := Lookup(ctx, mustPath(t, "roi.flows[1]"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	v, err = Lookup(ctx, mustPath(t, "roi.break_even"))
	require.NoError(t, err)
	assert.Nil(t, v)

	for _, p := range []string{"roi.flows[2]", "roi.missing", "roi.flows.x", "roi[0]", "nope"} {
		_, err := Lookup(ctx, mustPath(t, p))
		assert.Error(t, err, p)
	}
}

func mustPath(t *testing.T, s string) []Segment {
	t.Helper()
	e, err := ParseExpression(s)
	require.NoError(t, err)
	return e.Path
}
