package delivery

import (
	"errors"
	"net/http"

	"netcrm-backend/internal/integration/domain"
	"netcrm-backend/internal/integration/dto"
	"netcrm-backend/internal/integration/usecase"

	"github.com/gin-gonic/gin"
)

type IntegrationHandler struct {
	integrationUsecase usecase.IntegrationUsecase
}

func NewIntegrationHandler(integrationUsecase usecase.IntegrationUsecase) *IntegrationHandler {
	return &IntegrationHandler{integrationUsecase: integrationUsecase}
}

// Connect starts the consent flow for /integrations/:provider/connect.
func (h *IntegrationHandler) Connect(c *gin.Context) {
	userID := c.GetString("userID")
	provider := domain.Provider(c.Param("provider"))

	authURL, err := h.integrationUsecase.StartConnect(userID, provider)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownProvider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ConnectResponse{AuthURL: authURL})
}

// Callback receives the OAuth redirect. It is unauthenticated; the signed
// state parameter carries the user identity.
func (h *IntegrationHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state and code are required"})
		return
	}

	integration, err := h.integrationUsecase.HandleCallback(c.Request.Context(), state, code)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidState) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, integration)
}

func (h *IntegrationHandler) Status(c *gin.Context) {
	userID := c.GetString("userID")

	integrations, err := h.integrationUsecase.Status(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Integrations: integrations})
}

func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("userID")
	provider := domain.Provider(c.Param("provider"))

	if err := h.integrationUsecase.Disconnect(userID, provider); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrNotConnected):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "integration disconnected"})
}
