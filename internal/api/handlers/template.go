package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"festive-study/internal/api/models"
	"festive-study/internal/report"
)

// LintTemplate handles POST /api/v1/template/lint
func LintTemplate(c *gin.Context) {
	var req models.LintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	issues := report.Lint(req.Template)
	if issues == nil {
		issues = []report.Issue{}
	}
	c.JSON(http.StatusOK, models.LintResponse{Valid: len(issues) == 0, Issues: issues})
}
