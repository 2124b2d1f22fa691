package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"festive-study/internal/model"
)

const (
	CompetitorTemplateFile = "competitor_research.xlsx"
	CompetitorJSONFile     = "competitor_data.json"
)

// CompetitorColumns is the header of the research sheet.
var CompetitorColumns = []string{
	"Competitor",
	"Website",
	"Services",
	"Pricing Range",
	"Specialization",
	"Strengths",
	"Weaknesses",
	"Market Position",
}

// Collector manages the competitor research files under one data directory.
type Collector struct {
	Dir         string
	Competitors []string
	Logger      *zap.Logger
}

func NewCollector(dir string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Dir: dir, Competitors: model.DefaultCompetitorNames(), Logger: logger}
}

func (c *Collector) TemplatePath() string { return filepath.Join(c.Dir, CompetitorTemplateFile) }
func (c *Collector) JSONPath() string     { return filepath.Join(c.Dir, CompetitorJSONFile) }

// CreateTemplate writes the blank research sheet. An existing file is left
// untouched and reported with created=false.
func (c *Collector) CreateTemplate() (path string, created bool, err error) {
	path = c.TemplatePath()
	if err := ensureDir(c.Dir); err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		c.Logger.Info("competitor template exists, skipping", zap.String("path", path))
		return path, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}

	rows := make([][]any, 0, len(c.Competitors)+1)
	rows = append(rows, toRow(CompetitorColumns))
	for _, name := range c.Competitors {
		row := make([]any, len(CompetitorColumns))
		row[0] = name
		for i := 1; i < len(row); i++ {
			row[i] = ""
		}
		rows = append(rows, row)
	}
	if err := WriteWorkbook(path, Sheet{Name: "Sheet1", Rows: rows}); err != nil {
		return "", false, fmt.Errorf("write competitor template: %w", err)
	}
	c.Logger.Info("competitor template created", zap.String("path", path))
	return path, true, nil
}

// LoadCompetitorsXLSX reads a research sheet back, matching columns by header.
func LoadCompetitorsXLSX(path string) ([]model.Competitor, error) {
	recs, err := ReadRecords(path, "")
	if err != nil {
		return nil, err
	}
	out := make([]model.Competitor, 0, len(recs))
	for _, r := range recs {
		if r["Competitor"] == "" {
			continue
		}
		out = append(out, model.Competitor{
			Name:           r["Competitor"],
			Website:        r["Website"],
			Services:       r["Services"],
			PricingRange:   r["Pricing Range"],
			Specialization: r["Specialization"],
			Strengths:      r["Strengths"],
			Weaknesses:     r["Weaknesses"],
			MarketPosition: r["Market Position"],
		})
	}
	return out, nil
}

// LoadJSON reads competitor_data.json. A missing file matches os.ErrNotExist.
func (c *Collector) LoadJSON() ([]model.Competitor, error) {
	var out []model.Competitor
	if err := LoadJSON(c.JSONPath(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collector) SaveJSON(competitors []model.Competitor) (string, error) {
	path := c.JSONPath()
	if err := SaveJSON(path, competitors, "    "); err != nil {
		return "", fmt.Errorf("save competitor data: %w", err)
	}
	return path, nil
}

// Load returns the best available competitor list: the JSON records, then
// the research sheet, then the default names.
func (c *Collector) Load() ([]model.Competitor, string) {
	if cs, err := c.LoadJSON(); err == nil && len(cs) > 0 {
		return cs, c.JSONPath()
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		c.Logger.Warn("competitor json unreadable", zap.Error(err))
	}
	if cs, err := LoadCompetitorsXLSX(c.TemplatePath()); err == nil && len(cs) > 0 {
		return cs, c.TemplatePath()
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		c.Logger.Warn("competitor sheet unreadable", zap.Error(err))
	}
	return model.DefaultCompetitors(), "defaults"
}

func toRow(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
