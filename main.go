package main

import (
	"log"

	api "netcrm-backend/cmd/api"
	authdomain "netcrm-backend/internal/auth/domain"
	authRepo "netcrm-backend/internal/auth/repository"
	authUsecase "netcrm-backend/internal/auth/usecase"
	contactdomain "netcrm-backend/internal/contact/domain"
	contactRepo "netcrm-backend/internal/contact/repository"
	contactUsecase "netcrm-backend/internal/contact/usecase"
	enrichUsecase "netcrm-backend/internal/enrich/usecase"
	insightdomain "netcrm-backend/internal/insight/domain"
	insightRepo "netcrm-backend/internal/insight/repository"
	insightUsecase "netcrm-backend/internal/insight/usecase"
	integrationdomain "netcrm-backend/internal/integration/domain"
	integrationRepo "netcrm-backend/internal/integration/repository"
	integrationUsecase "netcrm-backend/internal/integration/usecase"
	reminderdomain "netcrm-backend/internal/reminder/domain"
	reminderRepo "netcrm-backend/internal/reminder/repository"
	reminderUsecase "netcrm-backend/internal/reminder/usecase"
	syncdomain "netcrm-backend/internal/sync/domain"
	syncRepo "netcrm-backend/internal/sync/repository"
	syncUsecase "netcrm-backend/internal/sync/usecase"
	"netcrm-backend/pkg/config"
	"netcrm-backend/pkg/database"
	"netcrm-backend/pkg/enrich"
	"netcrm-backend/pkg/google"
	"netcrm-backend/pkg/metrics"
	"netcrm-backend/pkg/sanitize"
	"netcrm-backend/pkg/sse"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&contactdomain.Contact{},
		&contactdomain.Interaction{},
		&integrationdomain.Integration{},
		&syncdomain.EmailThread{},
		&syncdomain.ImportJob{},
		&syncdomain.SyncConfig{},
		&reminderdomain.Reminder{},
		&insightdomain.AIInsight{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	contactRepository := contactRepo.NewContactRepository(db)
	interactionRepository := contactRepo.NewInteractionRepository(db)
	integrationRepository := integrationRepo.NewIntegrationRepository(db)
	threadRepository := syncRepo.NewThreadRepository(db)
	importJobRepository := syncRepo.NewImportJobRepository(db)
	syncConfigRepository := syncRepo.NewSyncConfigRepository(db)
	reminderRepository := reminderRepo.NewReminderRepository(db)
	insightRepository := insightRepo.NewInsightRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()

	// Initialize shared services
	googleService := google.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.VendorRateLimit)
	enrichClient := enrich.NewClient(cfg.EnrichBaseURL, cfg.EnrichAPIKey)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	sanitizer := sanitize.New()

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	contactUsecaseInstance := contactUsecase.NewContactUsecase(contactRepository, interactionRepository)
	integrationUsecaseInstance := integrationUsecase.NewIntegrationUsecase(integrationRepository, googleService, cfg.GoogleRedirectURI, cfg.JWTSecret)
	syncUsecaseInstance := syncUsecase.NewSyncUsecase(
		googleService,
		integrationRepository,
		contactUsecaseInstance,
		contactRepository,
		interactionRepository,
		threadRepository,
		importJobRepository,
		syncConfigRepository,
		sanitizer,
		collector,
	)
	reminderUsecaseInstance := reminderUsecase.NewReminderUsecase(reminderRepository, contactRepository)
	enrichUsecaseInstance := enrichUsecase.NewEnrichUsecase(enrichClient, contactUsecaseInstance, contactRepository)
	insightService := insightUsecase.NewInsightService(insightRepository, contactUsecaseInstance, interactionRepository, sseManager, cfg.SyncWorkers)

	// When two contacts merge, rows owned by the duplicate follow it to the
	// surviving contact.
	contactUsecaseInstance.RegisterMergeHook(func(userID, fromContactID, toContactID string) error {
		return threadRepository.ReassignContact(fromContactID, toContactID)
	})
	contactUsecaseInstance.RegisterMergeHook(func(userID, fromContactID, toContactID string) error {
		return reminderRepository.ReassignContact(fromContactID, toContactID)
	})
	contactUsecaseInstance.RegisterMergeHook(func(userID, fromContactID, toContactID string) error {
		return insightRepository.ReassignContact(fromContactID, toContactID)
	})

	// Background sync: a shared worker pool drains per-user sync jobs on a
	// fixed interval.
	workerPool := syncUsecase.NewWorkerPool(cfg.SyncWorkers, 0)
	syncScheduler := syncUsecase.NewScheduler(syncUsecaseInstance, integrationRepository, contactUsecaseInstance, userRepository, workerPool, cfg.SyncInterval)
	syncScheduler.Start()

	reminderScheduler := reminderUsecase.NewScheduler(reminderRepository, reminderUsecaseInstance, userRepository, sseManager)
	reminderScheduler.Start()

	// Initialize HTTP handler
	handler := api.NewHandler(
		authUsecaseInstance,
		contactUsecaseInstance,
		integrationUsecaseInstance,
		syncUsecaseInstance,
		reminderUsecaseInstance,
		enrichUsecaseInstance,
		insightService,
		sseManager,
		cfg,
	)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
