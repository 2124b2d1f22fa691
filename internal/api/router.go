package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"festive-study/internal/api/handlers"
	"festive-study/internal/api/middleware"
	"festive-study/internal/config"
	"festive-study/internal/data"
	"festive-study/internal/report"
)

type Options struct {
	Config *config.Config
	Store  *data.RunStore // required
	Logger *zap.Logger
	// StaticDir, when it exists, is served as a single-page app.
	StaticDir   string
	CORSOrigins []string
}

// NewRouter wires the middleware and the /api/v1 routes.
func NewRouter(opts Options) *gin.Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(opts.CORSOrigins...))
	router.Use(middleware.ErrorHandler(logger))

	analysisHandler := handlers.NewAnalysisHandler(opts.Store, cfg, report.LoadMeta(cfg.DataDir, cfg.Business, logger), logger)
	studyHandler := handlers.NewStudyHandler(cfg.DataDir, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "runs": opts.Store.Len()})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/analysis", analysisHandler.RunAnalysis)
		api.POST("/analysis/compare", analysisHandler.CompareAnalyses)
		api.GET("/analysis/:id", analysisHandler.GetAnalysis)
		api.GET("/analysis/:id/report", analysisHandler.GetReport)
		api.GET("/analysis/:id/cashflow.csv", analysisHandler.GetCashFlowCSV)

		api.GET("/scenarios", handlers.ListScenarios)
		api.GET("/market", studyHandler.GetMarket)
		api.GET("/competitors", studyHandler.ListCompetitors)

		api.POST("/template/lint", handlers.LintTemplate)
	}

	serveStatic(router, opts.StaticDir, logger)
	return router
}

func serveStatic(router *gin.Engine, staticDir string, logger *zap.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	}
	if staticDir == "" {
		router.NoRoute(notFound)
		return
	}
	if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
		logger.Info("static directory not found, skipping static file serving", zap.String("dir", staticDir))
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(staticDir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))
	// index.html for every non-API route (SPA routing)
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
	logger.Info("serving static files", zap.String("dir", staticDir))
}
