package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	authrepo "netcrm-backend/internal/auth/repository"
	contactusecase "netcrm-backend/internal/contact/usecase"
	integrationdomain "netcrm-backend/internal/integration/domain"
	integrationrepo "netcrm-backend/internal/integration/repository"
)

// strengthRecomputeEvery is how often all scores are refreshed so they decay
// even for contacts with no new interactions.
const strengthRecomputeEvery = 24 * time.Hour

// Scheduler drives periodic background work: incremental Gmail syncs,
// calendar scans and the daily strength decay pass.
type Scheduler struct {
	sync         SyncUsecase
	integrations integrationrepo.IntegrationRepository
	contacts     contactusecase.ContactUsecase
	users        authrepo.UserRepository
	pool         *WorkerPool

	interval      time.Duration
	lastRecompute time.Time
	stopChan      chan struct{}
}

func NewScheduler(
	syncUsecase SyncUsecase,
	integrations integrationrepo.IntegrationRepository,
	contacts contactusecase.ContactUsecase,
	users authrepo.UserRepository,
	pool *WorkerPool,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		sync:         syncUsecase,
		integrations: integrations,
		contacts:     contacts,
		users:        users,
		pool:         pool,
		interval:     interval,
		stopChan:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go func() {
		log.Printf("[Scheduler] Started, interval %s", s.interval)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.stopChan:
				log.Println("[Scheduler] Stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) tick() {
	s.enqueueProvider(integrationdomain.ProviderGmail, func(userID string) error {
		_, err := s.sync.SyncGmail(context.Background(), userID)
		return err
	})
	s.enqueueProvider(integrationdomain.ProviderGoogleCalendar, func(userID string) error {
		_, err := s.sync.ScanCalendar(context.Background(), userID)
		return err
	})

	if time.Since(s.lastRecompute) >= strengthRecomputeEvery {
		s.lastRecompute = time.Now()
		s.enqueueStrengthPass()
	}
}

func (s *Scheduler) enqueueProvider(provider integrationdomain.Provider, run func(userID string) error) {
	integrations, err := s.integrations.FindAllByProvider(provider)
	if err != nil {
		log.Printf("[Scheduler] Listing %s integrations failed: %v", provider, err)
		return
	}

	for _, integration := range integrations {
		userID := integration.UserID
		ok := s.pool.Submit(func() {
			if err := run(userID); err != nil && !errors.Is(err, ErrNotConnected) && !errors.Is(err, ErrSyncDisabled) {
				log.Printf("[Scheduler] %s sync for user %s failed: %v", provider, userID, err)
			}
		})
		if !ok {
			// Queue is full; the next tick picks this user up again.
			log.Printf("[Scheduler] Queue full, skipping %s sync for user %s", provider, userID)
		}
	}
}

func (s *Scheduler) enqueueStrengthPass() {
	userIDs, err := s.users.ListIDs()
	if err != nil {
		log.Printf("[Scheduler] Listing users for strength pass failed: %v", err)
		return
	}

	for _, userID := range userIDs {
		userID := userID
		if !s.pool.Submit(func() {
			n, err := s.contacts.RecomputeAllStrengths(userID, time.Now())
			if err != nil {
				log.Printf("[Scheduler] Strength pass for user %s failed: %v", userID, err)
				return
			}
			if n > 0 {
				log.Printf("[Scheduler] Refreshed %d contact scores for user %s", n, userID)
			}
		}) {
			log.Printf("[Scheduler] Queue full, skipping strength pass for user %s", userID)
		}
	}
}
