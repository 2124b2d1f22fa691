package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"festive-study/internal/api/models"
)

// requestError is an error with the HTTP status and code it maps to.
type requestError struct {
	status  int
	code    string
	message string
	details map[string]any
}

func (e *requestError) Error() string { return e.message }

func badRequest(code string, err error) *requestError {
	return &requestError{status: http.StatusBadRequest, code: code, message: err.Error()}
}

func respondError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeError responds with the status carried by err, or 500.
func writeError(c *gin.Context, err error) {
	var re *requestError
	if errors.As(err, &re) {
		respondError(c, re.status, re.code, re.message, re.details)
		return
	}
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
}
