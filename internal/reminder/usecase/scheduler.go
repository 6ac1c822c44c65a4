package usecase

import (
	"log"
	"time"

	authrepo "netcrm-backend/internal/auth/repository"
	"netcrm-backend/internal/reminder/repository"
	"netcrm-backend/pkg/sse"
)

const (
	dueCheckInterval = time.Minute
	stayInTouchEvery = 24 * time.Hour
	dueBatchSize     = 200
)

// Scheduler announces due reminders over SSE and runs the daily
// stay-in-touch pass.
type Scheduler struct {
	reminders repository.ReminderRepository
	usecase   ReminderUsecase
	users     authrepo.UserRepository
	events    *sse.Manager

	lastStayInTouch time.Time
	stopChan        chan struct{}
}

func NewScheduler(reminders repository.ReminderRepository, reminderUsecase ReminderUsecase, users authrepo.UserRepository, events *sse.Manager) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		usecase:   reminderUsecase,
		users:     users,
		events:    events,
		stopChan:  make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go func() {
		log.Println("[Reminder] Scheduler started")
		ticker := time.NewTicker(dueCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.announceDue()
				if time.Since(s.lastStayInTouch) >= stayInTouchEvery {
					s.lastStayInTouch = time.Now()
					s.stayInTouchPass()
				}
			case <-s.stopChan:
				log.Println("[Reminder] Scheduler stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) announceDue() {
	due, err := s.reminders.FindDueUnnotified(time.Now(), dueBatchSize)
	if err != nil {
		log.Printf("[Reminder] Listing due reminders failed: %v", err)
		return
	}

	for _, reminder := range due {
		s.events.SendToUser(reminder.UserID, "reminder.due", reminder)

		now := time.Now()
		reminder.NotifiedAt = &now
		if err := s.reminders.Update(reminder); err != nil {
			log.Printf("[Reminder] Marking reminder %s notified failed: %v", reminder.ID, err)
		}
	}
}

func (s *Scheduler) stayInTouchPass() {
	userIDs, err := s.users.ListIDs()
	if err != nil {
		log.Printf("[Reminder] Listing users for stay-in-touch pass failed: %v", err)
		return
	}

	for _, userID := range userIDs {
		created, err := s.usecase.EnsureStayInTouch(userID)
		if err != nil {
			log.Printf("[Reminder] Stay-in-touch pass for user %s failed: %v", userID, err)
			continue
		}
		if created > 0 {
			log.Printf("[Reminder] Created %d stay-in-touch reminders for user %s", created, userID)
		}
	}
}
