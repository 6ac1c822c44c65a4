package delivery

import (
	"errors"
	"net/http"

	contactusecase "netcrm-backend/internal/contact/usecase"
	"netcrm-backend/internal/insight/usecase"

	"github.com/gin-gonic/gin"
)

type InsightHandler struct {
	insightService *usecase.InsightService
}

func NewInsightHandler(insightService *usecase.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, contactusecase.ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, contactusecase.ErrNotOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Generate serves POST /contacts/:id/insights/:kind. Returns 202 with a
// pending row when generation was queued; the SSE stream announces the
// result.
func (h *InsightHandler) Generate(c *gin.Context) {
	userID := c.GetString("userID")
	force := c.Query("force") == "true"

	insight, err := h.insightService.Request(userID, c.Param("id"), c.Param("kind"), force)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if insight.Status == "pending" {
		c.JSON(http.StatusAccepted, insight)
		return
	}
	c.JSON(http.StatusOK, insight)
}

func (h *InsightHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	insights, err := h.insightService.ListByContact(userID, c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
