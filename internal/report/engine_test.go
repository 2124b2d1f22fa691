package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festive-study/internal/config"
	"festive-study/internal/finance"
	"festive-study/internal/model"
)

var fixedDate = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func defaultAnalysis(t *testing.T) *finance.Analysis {
	t.Helper()
	an, err := finance.New(model.DefaultAssumptions(), finance.WithClock(func() time.Time { return fixedDate }))
	require.NoError(t, err)
	a, err := an.Run(context.Background())
	require.NoError(t, err)
	return a
}

func defaultContext(t *testing.T) map[string]any {
	t.Helper()
	ctx, err := BuildContext(defaultAnalysis(t), Meta{Date: fixedDate})
	require.NoError(t, err)
	return ctx
}

func TestRound(t *testing.T) {
	cases := []struct {
		v        float64
		decimals int
		want     string
	}{
		{2.5, 0, "3"},
		{-2.5, 0, "-3"},
		{1.25, 1, "1.3"},
		{-13.546502044429493, 1, "-13.5"},
		{0.1, 2, "0.10"},
		{-0.04, 1, "0.0"},
		{42.792, 1, "42.8"},
		{1.25, 400, "1.2500000000"},
		{-1, -3, "-1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Round(tc.v, tc.decimals), "%v/%d", tc.v, tc.decimals)
	}

	huge := Round(1e300, MaxRoundDecimals)
	assert.NotContains(t, huge, "NaN")
	assert.NotContains(t, huge, "Inf")
}

func TestRenderStringFilters(t *testing.T) {
	e := NewEngine()
	ctx := map[string]any{
		"roi":   map[string]any{"roi_1_year": -13.546502044429493, "break_even_month": nil},
		"cost":  32000.0,
		"loss":  -57379.17,
		"items": []any{1.0, 2.44},
		"name":  "Niort",
	}
	out, err := e.RenderString("t", strings.Join([]string{
		"{{ roi.roi_1_year | round(1) }}",
		"{{ roi.break_even_month | round }}",
		"{{ roi.break_even_month | money }}",
		"{{ cost | money }}",
		"{{ loss | money }}",
		"{{ items[1] | round(1) }}",
		"{{ name }}",
		"{{name|upper}}",
	}, "\n"), ctx)
	require.NoError(t, err)
	assert.Equal(t, "-13.5\nn/a\nn/a\n€32,000\n-€57,379\n2.4\nNiort\nNIORT", out)
}

func TestRenderBareNilAsNotAvailable(t *testing.T) {
	ctx := map[string]any{
		"roi":   map[string]any{"break_even_month": nil},
		"count": 0,
		"empty": "",
	}
	out, err := NewEngine().RenderString("t", "[{{ roi.break_even_month }}] [{{ count }}] [{{ empty }}]", ctx)
	require.NoError(t, err)
	assert.Equal(t, "[n/a] [0] []", out)
}

func TestRenderRejectsReservedWords(t *testing.T) {
	for _, tmpl := range []string{"a {{ true }} b", "{{ in }}", "{{ not.x }}", "{{ roi.and }}"} {
		_, err := NewEngine().RenderString("t", tmpl, map[string]any{
			"true": "T", "in": "I", "not": map[string]any{"x": 1.0}, "roi": map[string]any{"and": 1.0},
		})
		var te *TemplateError
		require.ErrorAs(t, err, &te, tmpl)
		assert.Equal(t, "lint", te.Stage, tmpl)
		require.Len(t, te.Issues, 1, tmpl)
		assert.Equal(t, IssueSyntax, te.Issues[0].Kind, tmpl)
		assert.Contains(t, te.Issues[0].Message, "reserved word", tmpl)
	}

	// Keys that merely start with a reserved word are ordinary lookups.
	out, err := NewEngine().RenderString("t", "{{ truth }} {{ a.index }}", map[string]any{
		"truth": "T", "a": map[string]any{"index": "I"},
	})
	require.NoError(t, err)
	assert.Equal(t, "T I", out)
}

func TestRenderFilterArguments(t *testing.T) {
	ctx := map[string]any{"v": 1.25, "flag": true, "s": "12.5"}

	for _, tmpl := range []string{"{{ v | round(1.5) }}", "{{ v | round(400) }}", "{{ v | round(-1) }}"} {
		_, err := NewEngine().RenderString("t", tmpl, ctx)
		var te *TemplateError
		require.ErrorAs(t, err, &te, tmpl)
		assert.Equal(t, "lint", te.Stage, tmpl)
		assert.Equal(t, IssueFilter, te.Issues[0].Kind, tmpl)
	}

	for _, tmpl := range []string{"{{ flag | round }}", "{{ flag | money }}"} {
		_, err := NewEngine().RenderString("t", tmpl, ctx)
		var te *TemplateError
		require.ErrorAs(t, err, &te, tmpl)
		assert.Equal(t, "execute", te.Stage, tmpl)
	}

	out, err := NewEngine().RenderString("t", "{{ v | round(10) }} {{ s | round }}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2500000000 13", out)
}

func TestFiltersRegistered(t *testing.T) {
	assert.NotPanics(t, registerFilters)
	for name := range filters {
		assert.True(t, KnownFilter(name), name)
	}
	assert.True(t, KnownFilter("default_if_none"))
	assert.False(t, KnownFilter("nosuchfilter"))
}

func TestRenderDoesNotEscapeHTML(t *testing.T) {
	out, err := NewEngine().RenderString("t", "{{ v }}", map[string]any{"v": "<b>R&D</b>"})
	require.NoError(t, err)
	assert.Equal(t, "<b>R&D</b>", out)
}

func TestRenderStrictUnresolved(t *testing.T) {
	_, err := NewEngine().RenderString("t", "ok {{ a.b }} then {{ a.missing | round }}", map[string]any{
		"a": map[string]any{"b": 1.0},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplate))

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "resolve", te.Stage)
	require.Len(t, te.Issues, 1)
	assert.Equal(t, "a.missing", te.Issues[0].Expr)
	assert.Contains(t, err.Error(), "1:19: unresolved")
}

func TestRenderLenientUnresolved(t *testing.T) {
	out, err := NewEngine(WithStrict(false)).RenderString("t", "[{{ a.missing }}] [{{ a.missing | round }}]", map[string]any{
		"a": map[string]any{},
	})
	require.NoError(t, err)
	assert.Equal(t, "[n/a] [n/a]", out)
}

func TestRenderLintFailure(t *testing.T) {
	_, err := NewEngine().RenderString("t", "{{ a | bogus }}", map[string]any{"a": 1.0})
	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "lint", te.Stage)
	assert.Equal(t, IssueFilter, te.Issues[0].Kind)
}

func TestRenderFilterError(t *testing.T) {
	_, err := NewEngine().RenderString("t", "{{ name | round }}", map[string]any{"name": "abc"})
	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "execute", te.Stage)
	assert.ErrorIs(t, err, ErrTemplate)
}

func TestRenderOutputTableCheck(t *testing.T) {
	tmpl := "| A | B |\n|---|---|\n{{ rows }}\n"
	e := NewEngine()

	out, err := e.RenderString("t", tmpl, map[string]any{"rows": "| 1 | 2 |\n| 3 | 4 |"})
	require.NoError(t, err)
	assert.Contains(t, out, "| 3 | 4 |")

	_, err = e.RenderString("t", tmpl, map[string]any{"rows": "| 1 | 2 |\n| 3 |"})
	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "output", te.Stage)
	require.Len(t, te.Issues, 1)
	assert.Equal(t, 4, te.Issues[0].Line)
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.md")
	require.NoError(t, os.WriteFile(path, []byte("Invest {{ investment.total_year_1_investment | money }}"), 0o644))

	out, err := NewEngine().RenderFile(path, defaultContext(t))
	require.NoError(t, err)
	assert.Equal(t, "Invest €50,000", out)

	_, err = NewEngine().RenderFile(filepath.Join(t.TempDir(), "missing.md"), nil)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	in := "a {{ x[0] | round(1) }} b {{ bad.. }} c {{ y | default('z') }} d {{ z.w }}"
	assert.Equal(t, `a {{ x.0|round:1 }} b {{ bad.. }} c {{ y|default:"z" }} d {{ z.w|default_if_none:"n/a" }}`, Normalize(in))
	assert.Equal(t, "plain", Normalize("plain"))
}

func TestEmbeddedTemplatesLintClean(t *testing.T) {
	names := TemplateNames()
	assert.ElementsMatch(t, []string{FinancialReportTemplate, PresentationTemplate}, names)
	for _, name := range names {
		tmpl, err := Template(name)
		require.NoError(t, err)
		assert.Empty(t, Lint(tmpl), name)
	}
	_, err := Template("nope.md")
	assert.Error(t, err)
}

func TestRenderFinancialReport(t *testing.T) {
	out, err := NewEngine().Render(FinancialReportTemplate, defaultContext(t))
	require.NoError(t, err)

	assert.NotContains(t, out, "{{")
	assert.Empty(t, CheckTables(out))
	for _, want := range []string{
		"# Financial Analysis Report: Location Festive Niort",
		"*Prepared 2024-03-01 for a festive equipment rental business in Niort, France. Scenario: base.*",
		"| Equipment initial purchase | €15,000 |",
		"| **Total development cost** | **€32,000** |",
		"| **Total monthly operating cost** | **€1,500** |",
		"| **Total year-1 investment** | **€50,000** |",
		"| Month 1 | 15.0 | €750 |",
		"| Month 12 | 42.8 | €2,140 |",
		"| Break-even month | n/a |",
		"| ROI, year 1 | -13.5% |",
		"| ROI, 3 years | -16.3% |",
		"| Net present value | -€57,379 |",
		"| Discount rate | 0.10 |",
		"| LTV:CAC | 36.6:1 |",
		"| Month 1 | €750 | €33,500 | -€32,975 | -€32,975 |",
		"| Month 12 | €2,140 | €1,500 | -€2 | -€38,773 |",
		"| €20 | -13.5% | €914 | 45.7:1 | 0.6 |",
		"| 3% | -13.5% | €1,372 | 54.9:1 |",
		"Monthly break-even is reached in month n/a.",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderPresentation(t *testing.T) {
	out, err := NewEngine().Render(PresentationTemplate, defaultContext(t))
	require.NoError(t, err)

	assert.Equal(t, 5, strings.Count(out, "\n---\n"))
	assert.Contains(t, out, "# Market Study: Location Festive Niort")
	assert.Contains(t, out, "- Sector: Festive Equipment Rental")
	assert.Contains(t, out, "- Main trend: Increasing demand for unique event experiences")
	assert.Contains(t, out, "- Wedding organizers\n- Corporate event planners")
	assert.Contains(t, out, "12 local competitors identified.")
	assert.Contains(t, out, "- LS Réception\n- Autrement Location\n- Organi-Sons\n- SR Événements")
	assert.Contains(t, out, "And 8 other local players.")
	assert.Contains(t, out, "| Year-1 investment | €50,000 |")
}

func TestBuildContext(t *testing.T) {
	ctx := defaultContext(t)

	for _, key := range []string{
		"investment", "operating_costs", "pricing", "growth", "revenue", "roi",
		"unit_economics", "cash_flow", "sensitivity", "market", "business", "scenario",
		"competitors", "year_1_monthly_revenue_table", "year_1_cash_flow_table", "date",
	} {
		assert.Contains(t, ctx, key)
	}
	assert.Equal(t, "2024-03-01", ctx["date"])
	assert.Equal(t, 1500.0, ctx["operating_costs"].(map[string]any)["total"])
	assert.Nil(t, ctx["roi"].(map[string]any)["break_even_month"])
	assert.Equal(t, "base", ctx["scenario"].(map[string]any)["name"])

	comp := ctx["competitors"].(map[string]any)
	assert.Equal(t, 12.0, comp["count"])
	assert.Equal(t, 8.0, comp["others"])
	assert.Equal(t, 0.0, comp["researched"])

	rows := strings.Split(ctx["year_1_monthly_revenue_table"].(string), "\n")
	assert.Len(t, rows, 12)
	assert.Equal(t, "| Month 1 | 15.0 | €750 |", rows[0])

	returned, err := Lookup(ctx, mustPath(t, "revenue.base_case.annual_revenues[0]"))
	require.NoError(t, err)
	assert.IsType(t, 0.0, returned)
}

func TestBuildContextCustomBusiness(t *testing.T) {
	ctx, err := BuildContext(defaultAnalysis(t), Meta{
		Date:     fixedDate,
		Business: config.Business{Name: "Pop Niort"},
	})
	require.NoError(t, err)
	b := ctx["business"].(map[string]any)
	assert.Equal(t, "Pop Niort", b["name"])
	assert.Equal(t, "Niort, France", b["location"])

	_, err = BuildContext(nil, Meta{})
	assert.Error(t, err)
}
