package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"festive-study/internal/model"
)

const (
	MarketOverviewFile = "market_overview.xlsx"
	MarketJSONFile     = "market_data.json"
)

type MarketHandler struct {
	Dir  string
	Info model.MarketInfo
}

func NewMarketHandler(dir string) *MarketHandler {
	return &MarketHandler{Dir: dir, Info: model.DefaultMarketInfo()}
}

func (h *MarketHandler) OverviewRows() [][]any {
	info := h.Info
	return [][]any{
		{"Category", "Details"},
		{"Industry", info.Industry},
		{"Primary Location", info.Location},
		{"Target Segments", strings.Join(info.TargetMarket, ", ")},
		{"Seasonal Peaks", strings.Join(info.SeasonalityFactors, ", ")},
		{"Key Trends", strings.Join(info.MarketTrends, ", ")},
	}
}

func (h *MarketHandler) SegmentRows() [][]any {
	rows := [][]any{{"Segment", "Estimated Market Share", "Growth Potential", "Marketing Approach"}}
	for _, s := range h.Info.TargetMarket {
		rows = append(rows, []any{s, "", "", ""})
	}
	return rows
}

// WriteOverview writes market_overview.xlsx and returns its path.
func (h *MarketHandler) WriteOverview() (string, error) {
	path := filepath.Join(h.Dir, MarketOverviewFile)
	if err := ensureDir(h.Dir); err != nil {
		return "", err
	}
	err := WriteWorkbook(path,
		Sheet{Name: "Market Overview", Rows: h.OverviewRows()},
		Sheet{Name: "Target Segments", Rows: h.SegmentRows()},
	)
	if err != nil {
		return "", fmt.Errorf("write market overview: %w", err)
	}
	return path, nil
}

func (h *MarketHandler) SaveJSON() (string, error) {
	path := filepath.Join(h.Dir, MarketJSONFile)
	if err := SaveJSON(path, h.Info, "  "); err != nil {
		return "", fmt.Errorf("save market data: %w", err)
	}
	return path, nil
}

// LoadMarketInfo reads market_data.json from dir. A missing file yields the
// defaults with source "defaults".
func LoadMarketInfo(dir string) (model.MarketInfo, string, error) {
	path := filepath.Join(dir, MarketJSONFile)
	var info model.MarketInfo
	if err := LoadJSON(path, &info); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultMarketInfo(), "defaults", nil
		}
		return model.DefaultMarketInfo(), "defaults", fmt.Errorf("load market data: %w", err)
	}
	return info, path, nil
}
