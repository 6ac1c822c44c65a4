package usecase

import (
	"time"

	contactrepo "netcrm-backend/internal/contact/repository"
	contactusecase "netcrm-backend/internal/contact/usecase"
	integrationdomain "netcrm-backend/internal/integration/domain"
	integrationrepo "netcrm-backend/internal/integration/repository"
	syncdomain "netcrm-backend/internal/sync/domain"
	"netcrm-backend/internal/sync/dto"
	syncrepo "netcrm-backend/internal/sync/repository"
	"netcrm-backend/pkg/google"
	"netcrm-backend/pkg/metrics"
	"netcrm-backend/pkg/sanitize"

	"golang.org/x/oauth2"
)

const (
	// resyncOverlap re-reads a slice of already-synced history so threads
	// updated near the last cutoff are not missed. Upserts keep it idempotent.
	resyncOverlap = 24 * time.Hour

	snippetMaxRunes = 160
)

type syncUsecase struct {
	google       GoogleGateway
	integrations integrationrepo.IntegrationRepository
	contacts     contactusecase.ContactUsecase
	contactRepo  contactrepo.ContactRepository
	interactions contactrepo.InteractionRepository
	threads      syncrepo.ThreadRepository
	jobs         syncrepo.ImportJobRepository
	configs      syncrepo.SyncConfigRepository
	sanitizer    *sanitize.Sanitizer
	metrics      metrics.Collector
}

func NewSyncUsecase(
	googleGateway GoogleGateway,
	integrations integrationrepo.IntegrationRepository,
	contacts contactusecase.ContactUsecase,
	contactRepo contactrepo.ContactRepository,
	interactions contactrepo.InteractionRepository,
	threads syncrepo.ThreadRepository,
	jobs syncrepo.ImportJobRepository,
	configs syncrepo.SyncConfigRepository,
	sanitizer *sanitize.Sanitizer,
	collector metrics.Collector,
) SyncUsecase {
	if collector == nil {
		collector = metrics.Nop()
	}
	return &syncUsecase{
		google:       googleGateway,
		integrations: integrations,
		contacts:     contacts,
		contactRepo:  contactRepo,
		interactions: interactions,
		threads:      threads,
		jobs:         jobs,
		configs:      configs,
		sanitizer:    sanitizer,
		metrics:      collector,
	}
}

// connected loads the user's integration for the provider or ErrNotConnected.
func (u *syncUsecase) connected(userID string, provider integrationdomain.Provider) (*integrationdomain.Integration, error) {
	integration, err := u.integrations.FindByUserAndProvider(userID, provider)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, ErrNotConnected
	}
	return integration, nil
}

// tokenPersister stores refreshed access tokens back on the integration row.
func (u *syncUsecase) tokenPersister(integrationID string) google.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		var expiry *time.Time
		if !token.Expiry.IsZero() {
			e := token.Expiry
			expiry = &e
		}
		return u.integrations.UpdateTokens(integrationID, token.AccessToken, token.RefreshToken, expiry)
	}
}

// sinceFor picks the window start for an incremental pull. First syncs go
// back the configured lookback; later runs resume from the last sync with a
// small overlap.
func sinceFor(integration *integrationdomain.Integration, now time.Time, lookbackDays int) time.Time {
	if integration.LastSyncAt == nil {
		return now.Add(-time.Duration(lookbackDays) * 24 * time.Hour)
	}
	return integration.LastSyncAt.Add(-resyncOverlap)
}

// settingsFor loads the user's sync config, falling back to the defaults.
func (u *syncUsecase) settingsFor(userID string) (*syncdomain.SyncConfig, error) {
	config, err := u.configs.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = syncdomain.DefaultSyncConfig(userID)
	}
	config.Normalize()
	return config, nil
}

func (u *syncUsecase) GetSyncConfig(userID string) (*syncdomain.SyncConfig, error) {
	return u.settingsFor(userID)
}

func (u *syncUsecase) UpdateSyncConfig(userID string, req *dto.UpdateSyncConfigRequest) (*syncdomain.SyncConfig, error) {
	config, err := u.configs.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = syncdomain.DefaultSyncConfig(userID)
	}

	if req.Enabled != nil {
		config.Enabled = *req.Enabled
	}
	if req.FullContent != nil {
		config.FullContent = *req.FullContent
	}
	if req.LookbackDays != nil {
		config.LookbackDays = *req.LookbackDays
	}
	if req.MaxThreads != nil {
		config.MaxThreads = *req.MaxThreads
	}
	config.Normalize()

	if err := u.configs.Upsert(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (u *syncUsecase) GetImportJob(userID, jobID string) (*syncdomain.ImportJob, error) {
	job, err := u.jobs.FindByID(jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (u *syncUsecase) ListImportJobs(userID string) ([]*syncdomain.ImportJob, error) {
	return u.jobs.FindByUser(userID, 20)
}

func (u *syncUsecase) ListThreadsByContact(userID, contactID string, limit, offset int) ([]*syncdomain.EmailThread, int64, error) {
	// Ownership check happens through the contact lookup.
	if _, err := u.contacts.Get(userID, contactID); err != nil {
		return nil, 0, err
	}
	return u.threads.ListByContact(contactID, limit, offset)
}
