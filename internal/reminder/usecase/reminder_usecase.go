package usecase

import (
	"errors"
	"log"
	"time"

	contactdomain "netcrm-backend/internal/contact/domain"
	contactrepo "netcrm-backend/internal/contact/repository"
	"netcrm-backend/internal/reminder/domain"
	"netcrm-backend/internal/reminder/dto"
	"netcrm-backend/internal/reminder/repository"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrNotOwner         = errors.New("reminder does not belong to user")
	ErrBadDueDate       = errors.New("due_at must be a valid RFC3339 timestamp")
	ErrBadSnoozeDays    = errors.New("days must be positive")
)

type ReminderUsecase interface {
	Create(userID string, req *dto.CreateReminderRequest) (*domain.Reminder, error)
	List(userID string, includeDone bool, limit, offset int) ([]*domain.Reminder, int64, error)
	Update(userID, reminderID string, req *dto.UpdateReminderRequest) (*domain.Reminder, error)
	// Complete marks the reminder done. Recurring reminders roll forward to
	// the next occurrence instead.
	Complete(userID, reminderID string) (*domain.Reminder, error)
	Snooze(userID, reminderID string, days int) (*domain.Reminder, error)
	Delete(userID, reminderID string) error

	// EnsureStayInTouch creates an auto reminder for each cold contact that
	// has none pending. Returns how many were created. Run by the scheduler.
	EnsureStayInTouch(userID string) (int, error)
}

type reminderUsecase struct {
	reminders repository.ReminderRepository
	contacts  contactrepo.ContactRepository
}

func NewReminderUsecase(reminders repository.ReminderRepository, contacts contactrepo.ContactRepository) ReminderUsecase {
	return &reminderUsecase{
		reminders: reminders,
		contacts:  contacts,
	}
}

func (u *reminderUsecase) owned(userID, reminderID string) (*domain.Reminder, error) {
	reminder, err := u.reminders.FindByID(reminderID)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, ErrReminderNotFound
	}
	if reminder.UserID != userID {
		return nil, ErrNotOwner
	}
	return reminder, nil
}

func (u *reminderUsecase) Create(userID string, req *dto.CreateReminderRequest) (*domain.Reminder, error) {
	dueAt, err := time.Parse(time.RFC3339, req.DueAt)
	if err != nil {
		return nil, ErrBadDueDate
	}

	recurrence := domain.Recurrence(req.Recurrence)
	if recurrence == "" {
		recurrence = domain.RecurrenceNone
	}

	if req.ContactID != "" {
		contact, err := u.contacts.FindByID(req.ContactID)
		if err != nil {
			return nil, err
		}
		if contact == nil || contact.UserID != userID {
			return nil, errors.New("contact not found")
		}
	}

	reminder := &domain.Reminder{
		UserID:     userID,
		ContactID:  req.ContactID,
		Title:      req.Title,
		Notes:      req.Notes,
		DueAt:      dueAt,
		Recurrence: recurrence,
	}
	if err := u.reminders.Create(reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (u *reminderUsecase) List(userID string, includeDone bool, limit, offset int) ([]*domain.Reminder, int64, error) {
	return u.reminders.FindByUser(userID, includeDone, limit, offset)
}

func (u *reminderUsecase) Update(userID, reminderID string, req *dto.UpdateReminderRequest) (*domain.Reminder, error) {
	reminder, err := u.owned(userID, reminderID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		reminder.Title = *req.Title
	}
	if req.Notes != nil {
		reminder.Notes = *req.Notes
	}
	if req.DueAt != nil {
		dueAt, err := time.Parse(time.RFC3339, *req.DueAt)
		if err != nil {
			return nil, ErrBadDueDate
		}
		reminder.DueAt = dueAt
		// A moved reminder becomes announceable again.
		reminder.NotifiedAt = nil
	}
	if req.Recurrence != nil {
		reminder.Recurrence = domain.Recurrence(*req.Recurrence)
	}

	if err := u.reminders.Update(reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (u *reminderUsecase) Complete(userID, reminderID string) (*domain.Reminder, error) {
	reminder, err := u.owned(userID, reminderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if reminder.Recurrence != domain.RecurrenceNone {
		reminder.DueAt = reminder.Recurrence.Next(reminder.DueAt, now)
		reminder.NotifiedAt = nil
	} else {
		reminder.Done = true
		reminder.CompletedAt = &now
	}

	if err := u.reminders.Update(reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (u *reminderUsecase) Snooze(userID, reminderID string, days int) (*domain.Reminder, error) {
	if days <= 0 {
		return nil, ErrBadSnoozeDays
	}
	reminder, err := u.owned(userID, reminderID)
	if err != nil {
		return nil, err
	}

	base := reminder.DueAt
	if now := time.Now(); base.Before(now) {
		base = now
	}
	reminder.DueAt = base.AddDate(0, 0, days)
	reminder.NotifiedAt = nil

	if err := u.reminders.Update(reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (u *reminderUsecase) Delete(userID, reminderID string) error {
	if _, err := u.owned(userID, reminderID); err != nil {
		return err
	}
	return u.reminders.Delete(reminderID)
}

func (u *reminderUsecase) EnsureStayInTouch(userID string) (int, error) {
	contacts, err := u.contacts.FindAllByUser(userID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, contact := range contacts {
		if contact.Band != contactdomain.BandCold {
			continue
		}
		if contact.LastInteractionAt == nil {
			// Never-contacted entries are imports, not decayed relationships.
			continue
		}
		open, err := u.reminders.HasOpenAutoReminder(userID, contact.ID)
		if err != nil {
			return created, err
		}
		if open {
			continue
		}

		reminder := &domain.Reminder{
			UserID:    userID,
			ContactID: contact.ID,
			Title:     "Reconnect with " + contact.Name,
			Notes:     "It has been a while since you were last in touch.",
			DueAt:     time.Now(),
			Auto:      true,
		}
		if err := u.reminders.Create(reminder); err != nil {
			log.Printf("[Reminder] Auto reminder for %s failed: %v", contact.ID, err)
			continue
		}
		created++
	}
	return created, nil
}
