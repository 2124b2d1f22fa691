package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"festive-study/internal/model"
)

func TestCreateTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	c := NewCollector(dir, nil)

	path, created, err := c.CreateTemplate()
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(dir, CompetitorTemplateFile), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Len(t, rows, 13)
	assert.Equal(t, CompetitorColumns, rows[0])
	assert.Equal(t, "LS Réception", rows[1][0])
	assert.Equal(t, "Carrément Prod", rows[12][0])

	competitors, err := LoadCompetitorsXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCompetitors(), competitors)
}

func TestCreateTemplateKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	c := NewCollector(dir, nil)
	c.Competitors = []string{"Only One"}

	_, created, err := c.CreateTemplate()
	require.NoError(t, err)
	require.True(t, created)

	c.Competitors = model.DefaultCompetitorNames()
	path, created, err := c.CreateTemplate()
	require.NoError(t, err)
	assert.False(t, created)

	competitors, err := LoadCompetitorsXLSX(path)
	require.NoError(t, err)
	require.Len(t, competitors, 1)
	assert.Equal(t, "Only One", competitors[0].Name)
}

func TestCompetitorJSON(t *testing.T) {
	c := NewCollector(filepath.Join(t.TempDir(), "nested"), nil)

	_, err := c.LoadJSON()
	assert.ErrorIs(t, err, os.ErrNotExist)

	in := []model.Competitor{{Name: "SR Événements", Strengths: "stock, price", Website: "https://example.fr"}}
	path, err := c.SaveJSON(in)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Competitor": "SR Événements"`)
	assert.Contains(t, string(raw), `"Pricing Range": ""`)

	out, err := c.LoadJSON()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCompetitorJSONCorrupt(t *testing.T) {
	c := NewCollector(t.TempDir(), nil)
	require.NoError(t, os.WriteFile(c.JSONPath(), []byte("{not json"), 0o644))

	_, err := c.LoadJSON()
	require.Error(t, err)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}

func TestCollectorLoadFallbacks(t *testing.T) {
	c := NewCollector(t.TempDir(), nil)

	cs, src := c.Load()
	assert.Equal(t, "defaults", src)
	assert.Len(t, cs, 12)

	_, _, err := c.CreateTemplate()
	require.NoError(t, err)
	_, src = c.Load()
	assert.Equal(t, c.TemplatePath(), src)

	_, err = c.SaveJSON([]model.Competitor{{Name: "A"}})
	require.NoError(t, err)
	cs, src = c.Load()
	assert.Equal(t, c.JSONPath(), src)
	assert.Len(t, cs, 1)
}

func TestMarketHandler(t *testing.T) {
	dir := t.TempDir()
	h := NewMarketHandler(dir)

	path, err := h.WriteOverview()
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Market Overview", "Target Segments"}, f.GetSheetList())

	overview, err := f.GetRows("Market Overview")
	require.NoError(t, err)
	require.Len(t, overview, 6)
	assert.Equal(t, []string{"Industry", "Festive Equipment Rental"}, overview[1])
	assert.Contains(t, overview[3][1], "Wedding organizers, Corporate event planners")

	segments, err := f.GetRows("Target Segments")
	require.NoError(t, err)
	assert.Len(t, segments, 6)
	assert.Equal(t, "Segment", segments[0][0])

	jsonPath, err := h.SaveJSON()
	require.NoError(t, err)
	var info model.MarketInfo
	require.NoError(t, LoadJSON(jsonPath, &info))
	assert.Equal(t, model.DefaultMarketInfo(), info)
}

func TestLoadMarketInfo(t *testing.T) {
	dir := t.TempDir()
	info, src, err := LoadMarketInfo(dir)
	require.NoError(t, err)
	assert.Equal(t, "defaults", src)
	assert.Equal(t, model.DefaultMarketInfo(), info)

	h := NewMarketHandler(dir)
	h.Info.Industry = "Event Rental"
	path, err := h.SaveJSON()
	require.NoError(t, err)

	info, src, err = LoadMarketInfo(dir)
	require.NoError(t, err)
	assert.Equal(t, path, src)
	assert.Equal(t, "Event Rental", info.Industry)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	info, _, err = LoadMarketInfo(dir)
	assert.Error(t, err)
	assert.Equal(t, model.DefaultMarketInfo(), info)
}
