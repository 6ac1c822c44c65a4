package api

import (
	authDelivery "netcrm-backend/internal/auth/delivery"
	contactDelivery "netcrm-backend/internal/contact/delivery"
	enrichDelivery "netcrm-backend/internal/enrich/delivery"
	insightDelivery "netcrm-backend/internal/insight/delivery"
	integrationDelivery "netcrm-backend/internal/integration/delivery"
	reminderDelivery "netcrm-backend/internal/reminder/delivery"
	syncDelivery "netcrm-backend/internal/sync/delivery"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := authDelivery.NewAuthHandler(h.authUsecase)
	contactHandler := contactDelivery.NewContactHandler(h.contactUsecase)
	integrationHandler := integrationDelivery.NewIntegrationHandler(h.integrationUsecase)
	syncHandler := syncDelivery.NewSyncHandler(h.syncUsecase)
	reminderHandler := reminderDelivery.NewReminderHandler(h.reminderUsecase)
	enrichHandler := enrichDelivery.NewEnrichHandler(h.enrichUsecase)
	insightHandler := insightDelivery.NewInsightHandler(h.insightService)

	authRequired := authDelivery.AuthMiddleware(h.authUsecase)
	rateLimited := h.limiter.Middleware()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		// Server-sent events stream for reminder and insight pushes.
		api.GET("/events", authRequired, func(c *gin.Context) {
			h.sseManager.ServeHTTP(c, c.GetString("userID"))
		})

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		contacts := api.Group("/contacts")
		contacts.Use(authRequired, rateLimited)
		{
			contacts.POST("", contactHandler.Create)
			contacts.GET("", contactHandler.List)
			contacts.GET("/search", contactHandler.Search)
			contacts.GET("/duplicates", contactHandler.FindDuplicates)
			contacts.POST("/merge", contactHandler.Merge)
			contacts.GET("/:id", contactHandler.Get)
			contacts.PUT("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
			contacts.POST("/:id/interactions", contactHandler.RecordInteraction)
			contacts.GET("/:id/interactions", contactHandler.ListInteractions)
			contacts.GET("/:id/threads", syncHandler.ListThreads)
			contacts.POST("/:id/enrich", enrichHandler.Enrich)
			contacts.GET("/:id/insights", insightHandler.List)
			contacts.POST("/:id/insights/:kind", insightHandler.Generate)
		}

		integrations := api.Group("/integrations")
		{
			// The OAuth state token carries the user identity, so the
			// callback stays unauthenticated.
			integrations.GET("/callback", integrationHandler.Callback)
			integrations.GET("", authRequired, integrationHandler.Status)
			integrations.POST("/:provider/connect", authRequired, rateLimited, integrationHandler.Connect)
			integrations.DELETE("/:provider", authRequired, integrationHandler.Disconnect)
		}

		sync := api.Group("/sync")
		sync.Use(authRequired, rateLimited)
		{
			sync.POST("/gmail", syncHandler.SyncGmail)
			sync.POST("/calendar", syncHandler.ScanCalendar)
			sync.GET("/config", syncHandler.GetSyncConfig)
			sync.PUT("/config", syncHandler.UpdateSyncConfig)
		}

		imports := api.Group("/imports")
		imports.Use(authRequired, rateLimited)
		{
			imports.POST("/google-contacts", syncHandler.ImportGoogleContacts)
			imports.POST("/csv", syncHandler.ImportCSV)
			imports.GET("", syncHandler.ListImportJobs)
			imports.GET("/:id", syncHandler.GetImportJob)
		}

		reminders := api.Group("/reminders")
		reminders.Use(authRequired, rateLimited)
		{
			reminders.POST("", reminderHandler.Create)
			reminders.GET("", reminderHandler.List)
			reminders.PUT("/:id", reminderHandler.Update)
			reminders.DELETE("/:id", reminderHandler.Delete)
			reminders.POST("/:id/complete", reminderHandler.Complete)
			reminders.POST("/:id/snooze", reminderHandler.Snooze)
		}
	}
}
