package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"festive-study/internal/api/models"
	"festive-study/internal/config"
	"festive-study/internal/data"
	"festive-study/internal/finance"
	"festive-study/internal/model"
	"festive-study/internal/report"
	"festive-study/internal/scenario"
)

// AnalysisHandler handles analysis runs and the artifacts derived from them
type AnalysisHandler struct {
	store  *data.RunStore
	base   runInput
	meta   report.Meta
	engine *report.Engine
	logger *zap.Logger
}

// runInput is a fully resolved analysis input.
type runInput struct {
	assumptions model.Assumptions
	scenario    string
	rate        float64
}

// NewAnalysisHandler creates a handler whose runs start from the resolved
// assumptions of cfg.
func NewAnalysisHandler(store *data.RunStore, cfg *config.Config, meta report.Meta, logger *zap.Logger) *AnalysisHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{
		store: store,
		base: runInput{
			assumptions: cfg.ResolvedAssumptions(),
			scenario:    cfg.Scenario,
			rate:        cfg.DiscountRate,
		},
		meta:   meta,
		engine: report.NewEngine(report.WithLogger(logger)),
		logger: logger,
	}
}

// RunAnalysis handles POST /api/v1/analysis
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	in, err := h.resolve(h.base, req.Assumptions, req.Scenario, req.DiscountRate)
	if err != nil {
		writeError(c, err)
		return
	}
	a, err := h.run(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	run := h.store.Put(a)
	h.logger.Info("analysis stored",
		zap.String("id", run.ID),
		zap.String("scenario", a.Scenario),
		zap.Float64("roi_1_year", a.ROI.ROI1Year))

	resp := models.AnalysisResponse{
		ID:        run.ID,
		Scenario:  a.Scenario,
		Summary:   models.NewSummary(a),
		CreatedAt: run.CreatedAt,
		ExpiresAt: run.ExpiresAt,
	}
	if req.IncludeLedger {
		resp.Ledger = a.Ledger
	}
	c.Header("Location", "/api/v1/analysis/"+run.ID)
	c.JSON(http.StatusCreated, resp)
}

// GetAnalysis handles GET /api/v1/analysis/:id
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.RunResponse{
		ID:        run.ID,
		CreatedAt: run.CreatedAt,
		ExpiresAt: run.ExpiresAt,
		Analysis:  run.Analysis,
	})
}

// GetReport handles GET /api/v1/analysis/:id/report?format=markdown|html
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	format := c.DefaultQuery("format", "markdown")
	if format != "markdown" && format != "md" && format != "html" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("unsupported format %q (want markdown or html)", format), nil)
		return
	}
	run, ok := h.lookup(c)
	if !ok {
		return
	}

	meta := h.meta
	meta.Date = run.Analysis.GeneratedAt
	tctx, err := report.BuildContext(run.Analysis, meta)
	if err != nil {
		writeError(c, err)
		return
	}
	md, err := h.engine.Render(report.FinancialReportTemplate, tctx)
	if err != nil {
		var te *report.TemplateError
		if errors.As(err, &te) {
			respondError(c, http.StatusInternalServerError, "TEMPLATE_ERROR", err.Error(), map[string]any{
				"stage":  te.Stage,
				"issues": te.Issues,
			})
			return
		}
		writeError(c, err)
		return
	}

	if format != "html" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	page, err := report.ToHTML(md, "Financial Analysis Report: "+report.DefaultMeta(meta).Business.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// GetCashFlowCSV handles GET /api/v1/analysis/:id/cashflow.csv
func (h *AnalysisHandler) GetCashFlowCSV(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := finance.EncodeLedgerCSV(&buf, run.Analysis.Ledger); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="cashflow-%s.csv"`, run.ID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// CompareAnalyses handles POST /api/v1/analysis/compare
func (h *AnalysisHandler) CompareAnalyses(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	base, err := h.resolve(h.base, req.Base.Assumptions, req.Base.Scenario, req.Base.DiscountRate)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := models.CompareResponse{
		Comparison: make([]models.ComparisonResult, 0, len(req.Variations)),
		Skipped:    []models.SkippedVariation{},
	}
	for _, v := range req.Variations {
		in, err := h.resolve(base, v.Assumptions, v.Scenario, 0)
		if err != nil {
			resp.Skipped = append(resp.Skipped, models.SkippedVariation{Name: v.Name, Reason: err.Error()})
			continue
		}
		a, err := h.run(c.Request.Context(), in)
		if err != nil {
			if ctxErr := c.Request.Context().Err(); ctxErr != nil {
				writeError(c, ctxErr)
				return
			}
			resp.Skipped = append(resp.Skipped, models.SkippedVariation{Name: v.Name, Reason: err.Error()})
			continue
		}
		resp.Comparison = append(resp.Comparison, models.ComparisonResult{
			Name:     v.Name,
			Scenario: a.Scenario,
			Summary:  models.NewSummary(a),
		})
	}

	h.logger.Debug("comparison complete",
		zap.Int("compared", len(resp.Comparison)),
		zap.Int("skipped", len(resp.Skipped)))
	c.JSON(http.StatusOK, resp)
}

// Helper methods

func (h *AnalysisHandler) lookup(c *gin.Context) (*data.Run, bool) {
	id := c.Param("id")
	run, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, data.ErrRunNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("analysis %q not found or expired", id), nil)
			return nil, false
		}
		writeError(c, err)
		return nil, false
	}
	return run, true
}

// resolve applies request overrides onto base. Empty overrides keep the base
// values.
func (h *AnalysisHandler) resolve(base runInput, overrides json.RawMessage, scenarioName string, rate float64) (runInput, error) {
	in := base

	a, err := config.OverlayJSON(base.assumptions, overrides)
	if err != nil {
		return in, badRequest("INVALID_ASSUMPTIONS", err)
	}
	if err := a.Validate(); err != nil {
		details := map[string]any{}
		for _, fe := range model.FieldErrors(err) {
			details[fe.Field] = fe.Message
		}
		return in, &requestError{
			status:  http.StatusBadRequest,
			code:    "INVALID_ASSUMPTIONS",
			message: "assumptions failed validation",
			details: details,
		}
	}
	in.assumptions = a

	if scenarioName != "" {
		s, err := scenario.Lookup(scenarioName)
		if err != nil {
			return in, badRequest("INVALID_SCENARIO", err)
		}
		in.scenario = s.Name()
	}

	if rate != 0 {
		if rate <= 0 || rate >= 1 {
			return in, badRequest("INVALID_REQUEST", fmt.Errorf("discount_rate must be in (0, 1), got %g", rate))
		}
		in.rate = rate
	}
	return in, nil
}

func (h *AnalysisHandler) run(ctx context.Context, in runInput) (*finance.Analysis, error) {
	s, err := scenario.Lookup(in.scenario)
	if err != nil {
		return nil, badRequest("INVALID_SCENARIO", err)
	}
	an, err := finance.New(in.assumptions,
		finance.WithScenario(s),
		finance.WithDiscountRate(in.rate),
		finance.WithLogger(h.logger))
	if err != nil {
		return nil, badRequest("INVALID_ASSUMPTIONS", err)
	}
	a, err := an.Run(ctx)
	if errors.Is(err, finance.ErrNonFinite) {
		return nil, badRequest("INVALID_ASSUMPTIONS", err)
	}
	if err != nil {
		return nil, fmt.Errorf("run analysis: %w", err)
	}
	return a, nil
}
