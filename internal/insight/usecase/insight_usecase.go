package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	contactrepo "netcrm-backend/internal/contact/repository"
	contactusecase "netcrm-backend/internal/contact/usecase"
	"netcrm-backend/internal/insight/domain"
	"netcrm-backend/internal/insight/repository"
	"netcrm-backend/pkg/ai"
	"netcrm-backend/pkg/sse"
)

var ErrUnknownKind = errors.New("unknown insight kind")

// InsightJob is one generation request for the background workers.
type InsightJob struct {
	UserID    string
	ContactID string
	Kind      string
	Force     bool
}

// InsightService generates and caches AI content for contacts on a fixed
// worker pool. Results are pushed to the owning user over SSE.
type InsightService struct {
	insightRepo  repository.InsightRepository
	contacts     contactusecase.ContactUsecase
	interactions contactrepo.InteractionRepository
	aiService    ai.InsightService
	sseManager   *sse.Manager

	jobQueue    chan InsightJob
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	mu          sync.Mutex
}

func NewInsightService(
	insightRepo repository.InsightRepository,
	contacts contactusecase.ContactUsecase,
	interactions contactrepo.InteractionRepository,
	sseManager *sse.Manager,
	workerCount int,
) *InsightService {
	if workerCount <= 0 {
		workerCount = 3
	}
	return &InsightService{
		insightRepo:  insightRepo,
		contacts:     contacts,
		interactions: interactions,
		sseManager:   sseManager,
		jobQueue:     make(chan InsightJob, 500),
		workerCount:  workerCount,
	}
}

// SetAIService wires the model provider. Kept as a setter so the service can
// be constructed before the provider is configured.
func (s *InsightService) SetAIService(svc ai.InsightService) {
	s.aiService = svc
}

func (s *InsightService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	for i := 0; i < s.workerCount; i++ {
		s.workerWg.Add(1)
		go s.worker(i)
	}
	s.started = true
	log.Printf("[Insight] Started %d workers", s.workerCount)
}

func (s *InsightService) Stop() {
	close(s.jobQueue)
	s.workerWg.Wait()
	log.Println("[Insight] All workers stopped")
}

func (s *InsightService) worker(id int) {
	defer s.workerWg.Done()
	for job := range s.jobQueue {
		s.processJob(job)
	}
	log.Printf("[Insight] Worker %d stopped", id)
}

// Request returns the cached insight when present and queues generation when
// it is missing, stale-forced, or previously failed. The returned insight may
// be in pending state; the SSE stream announces completion.
func (s *InsightService) Request(userID, contactID, kind string, force bool) (*domain.AIInsight, error) {
	if kind != domain.KindIcebreakers && kind != domain.KindSummary {
		return nil, ErrUnknownKind
	}
	// Ownership check before anything is queued.
	if _, err := s.contacts.Get(userID, contactID); err != nil {
		return nil, err
	}

	existing, err := s.insightRepo.FindByContactAndKind(contactID, kind)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == domain.StatusReady && !force {
		return existing, nil
	}
	// A pending row without force is already on its way. With force it is
	// re-queued, so a row stranded by an earlier outage can still recover.
	if existing != nil && existing.Status == domain.StatusPending && !force {
		return existing, nil
	}

	pending := &domain.AIInsight{
		UserID:    userID,
		ContactID: contactID,
		Kind:      kind,
		Status:    domain.StatusPending,
	}
	if err := s.insightRepo.Upsert(pending); err != nil {
		return nil, err
	}

	job := InsightJob{UserID: userID, ContactID: contactID, Kind: kind, Force: force}
	if !s.queueJob(job) {
		log.Printf("[Insight] Queue full, dropping %s job for contact %s", kind, contactID)
		s.storeFailure(job, errors.New("generation queue full"))
		return s.insightRepo.FindByContactAndKind(contactID, kind)
	}
	return pending, nil
}

// ListByContact returns whatever insights exist for the contact.
func (s *InsightService) ListByContact(userID, contactID string) ([]*domain.AIInsight, error) {
	if _, err := s.contacts.Get(userID, contactID); err != nil {
		return nil, err
	}
	return s.insightRepo.FindByContact(contactID)
}

func (s *InsightService) queueJob(job InsightJob) bool {
	select {
	case s.jobQueue <- job:
		return true
	default:
		return false
	}
}

func (s *InsightService) processJob(job InsightJob) {
	if s.aiService == nil {
		// Without a failure row the request would sit at pending forever.
		s.storeFailure(job, errors.New("ai service not configured"))
		return
	}

	profile, err := s.buildProfile(job.UserID, job.ContactID)
	if err != nil {
		log.Printf("[Insight] Profile build for contact %s failed: %v", job.ContactID, err)
		s.storeFailure(job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	insight := &domain.AIInsight{
		UserID:    job.UserID,
		ContactID: job.ContactID,
		Kind:      job.Kind,
		Status:    domain.StatusReady,
	}

	switch job.Kind {
	case domain.KindIcebreakers:
		lines, err := s.aiService.GenerateIcebreakers(ctx, profile)
		if err != nil {
			log.Printf("[Insight] AI error for contact %s: %v", job.ContactID, err)
			s.storeFailure(job, err)
			return
		}
		insight.Lines = lines
	case domain.KindSummary:
		summary, err := s.aiService.SummarizeRelationship(ctx, profile)
		if err != nil {
			log.Printf("[Insight] AI error for contact %s: %v", job.ContactID, err)
			s.storeFailure(job, err)
			return
		}
		insight.Summary = summary
	default:
		return
	}

	now := time.Now()
	insight.GeneratedAt = &now
	if err := s.insightRepo.Upsert(insight); err != nil {
		log.Printf("[Insight] Save error for contact %s: %v", job.ContactID, err)
		return
	}

	s.sseManager.SendToUser(job.UserID, "insight.ready", insight)
	log.Printf("[Insight] Generated %s for contact %s", job.Kind, job.ContactID)
}

func (s *InsightService) storeFailure(job InsightJob, cause error) {
	failed := &domain.AIInsight{
		UserID:    job.UserID,
		ContactID: job.ContactID,
		Kind:      job.Kind,
		Status:    domain.StatusFailed,
		Error:     cause.Error(),
	}
	if err := s.insightRepo.Upsert(failed); err != nil {
		log.Printf("[Insight] Failure save error for contact %s: %v", job.ContactID, err)
		return
	}
	s.sseManager.SendToUser(job.UserID, "insight.failed", failed)
}

func (s *InsightService) buildProfile(userID, contactID string) (ai.ContactProfile, error) {
	contact, err := s.contacts.Get(userID, contactID)
	if err != nil {
		return ai.ContactProfile{}, err
	}

	profile := ai.ContactProfile{
		Name:             contact.Name,
		Company:          contact.Company,
		JobTitle:         contact.JobTitle,
		Tags:             contact.Tags,
		Notes:            contact.Notes,
		InteractionCount: contact.InteractionCount,
	}
	if contact.LastInteractionAt != nil {
		profile.LastInteraction = contact.LastInteractionAt.Format("2006-01-02")
	}

	subjects, err := s.interactions.RecentSubjects(contactID, 5)
	if err != nil {
		return profile, err
	}
	profile.RecentSubjects = subjects
	return profile, nil
}
