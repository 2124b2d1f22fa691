package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"festive-study/internal/analysis"
	"festive-study/internal/api/models"
	"festive-study/internal/data"
	"festive-study/internal/scenario"
)

// StudyHandler serves the market and competitor research files
type StudyHandler struct {
	dataDir string
	logger  *zap.Logger
}

func NewStudyHandler(dataDir string, logger *zap.Logger) *StudyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudyHandler{dataDir: dataDir, logger: logger}
}

// GetMarket handles GET /api/v1/market
func (h *StudyHandler) GetMarket(c *gin.Context) {
	info, source, err := data.LoadMarketInfo(h.dataDir)
	if err != nil {
		h.logger.Warn("market data unreadable, serving defaults", zap.Error(err))
	}
	c.JSON(http.StatusOK, models.MarketResponse{Source: source, Market: info})
}

// ListCompetitors handles GET /api/v1/competitors
func (h *StudyHandler) ListCompetitors(c *gin.Context) {
	competitors, source := data.NewCollector(h.dataDir, h.logger).Load()
	resp := models.CompetitorsResponse{
		Source:      source,
		Competitors: competitors,
		Ranking:     analysis.RankCompetitors(competitors),
	}
	if summary, ok := analysis.AnalyzeCompetitors(competitors); ok {
		resp.Summary = &summary
	}
	c.JSON(http.StatusOK, resp)
}

// ListScenarios handles GET /api/v1/scenarios
func ListScenarios(c *gin.Context) {
	all := scenario.All()
	out := make([]models.ScenarioInfo, 0, len(all))
	for _, s := range all {
		info := models.ScenarioInfo{Name: s.Name(), Description: s.Description()}
		if fs, ok := s.(*scenario.FactorScenario); ok {
			info.Factors = fs.Factors
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": out})
}
