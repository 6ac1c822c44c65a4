package api

import (
	"log"

	authUsecase "netcrm-backend/internal/auth/usecase"
	contactUsecase "netcrm-backend/internal/contact/usecase"
	enrichUsecase "netcrm-backend/internal/enrich/usecase"
	insightUsecase "netcrm-backend/internal/insight/usecase"
	integrationUsecase "netcrm-backend/internal/integration/usecase"
	reminderUsecase "netcrm-backend/internal/reminder/usecase"
	syncUsecase "netcrm-backend/internal/sync/usecase"
	"netcrm-backend/pkg/ai"
	"netcrm-backend/pkg/config"
	"netcrm-backend/pkg/ratelimit"
	"netcrm-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

// apiRequestsPerMinute is the per-user budget for authenticated endpoints.
const apiRequestsPerMinute = 120

type Handler struct {
	authUsecase        authUsecase.AuthUsecase
	contactUsecase     contactUsecase.ContactUsecase
	integrationUsecase integrationUsecase.IntegrationUsecase
	syncUsecase        syncUsecase.SyncUsecase
	reminderUsecase    reminderUsecase.ReminderUsecase
	enrichUsecase      enrichUsecase.EnrichUsecase
	insightService     *insightUsecase.InsightService
	sseManager         *sse.Manager
	limiter            *ratelimit.PerUserLimiter
	config             *config.Config
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	contactUc contactUsecase.ContactUsecase,
	integrationUc integrationUsecase.IntegrationUsecase,
	syncUc syncUsecase.SyncUsecase,
	reminderUc reminderUsecase.ReminderUsecase,
	enrichUc enrichUsecase.EnrichUsecase,
	insightService *insightUsecase.InsightService,
	sseManager *sse.Manager,
	cfg *config.Config,
) *Handler {
	// Wire the AI provider into the insight workers.
	aiService, err := ai.NewInsightService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v", err)
	} else {
		log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
		insightService.SetAIService(aiService)
	}
	insightService.Start()

	return &Handler{
		authUsecase:        authUc,
		contactUsecase:     contactUc,
		integrationUsecase: integrationUc,
		syncUsecase:        syncUc,
		reminderUsecase:    reminderUc,
		enrichUsecase:      enrichUc,
		insightService:     insightService,
		sseManager:         sseManager,
		limiter:            ratelimit.NewPerUserLimiter(apiRequestsPerMinute, 30),
		config:             cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)

	return r.Run(addr)
}
