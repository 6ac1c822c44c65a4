package delivery

import (
	"errors"
	"net/http"

	contactusecase "netcrm-backend/internal/contact/usecase"
	"netcrm-backend/internal/enrich/usecase"

	"github.com/gin-gonic/gin"
)

type EnrichHandler struct {
	enrichUsecase usecase.EnrichUsecase
}

func NewEnrichHandler(enrichUsecase usecase.EnrichUsecase) *EnrichHandler {
	return &EnrichHandler{enrichUsecase: enrichUsecase}
}

// Enrich serves POST /contacts/:id/enrich.
func (h *EnrichHandler) Enrich(c *gin.Context) {
	userID := c.GetString("userID")

	result, err := h.enrichUsecase.EnrichContact(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrNoLinkedInURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, contactusecase.ErrContactNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, contactusecase.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
