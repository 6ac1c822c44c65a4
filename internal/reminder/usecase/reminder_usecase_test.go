package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactdomain "netcrm-backend/internal/contact/domain"
	contactrepo "netcrm-backend/internal/contact/repository"
	"netcrm-backend/internal/reminder/domain"
	"netcrm-backend/internal/reminder/dto"
)

type fakeReminderRepo struct {
	reminders map[string]*domain.Reminder
	nextID    int
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[string]*domain.Reminder)}
}

func (r *fakeReminderRepo) Create(reminder *domain.Reminder) error {
	if reminder.ID == "" {
		r.nextID++
		reminder.ID = fmt.Sprintf("r%d", r.nextID)
	}
	cp := *reminder
	r.reminders[reminder.ID] = &cp
	return nil
}

func (r *fakeReminderRepo) FindByID(id string) (*domain.Reminder, error) {
	reminder, ok := r.reminders[id]
	if !ok {
		return nil, nil
	}
	cp := *reminder
	return &cp, nil
}

func (r *fakeReminderRepo) FindByUser(userID string, includeDone bool, limit, offset int) ([]*domain.Reminder, int64, error) {
	var out []*domain.Reminder
	for _, reminder := range r.reminders {
		if reminder.UserID != userID {
			continue
		}
		if !includeDone && reminder.Done {
			continue
		}
		cp := *reminder
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeReminderRepo) FindDueUnnotified(now time.Time, limit int) ([]*domain.Reminder, error) {
	var out []*domain.Reminder
	for _, reminder := range r.reminders {
		if !reminder.Done && reminder.NotifiedAt == nil && !reminder.DueAt.After(now) {
			cp := *reminder
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) HasOpenAutoReminder(userID, contactID string) (bool, error) {
	for _, reminder := range r.reminders {
		if reminder.UserID == userID && reminder.ContactID == contactID && reminder.Auto && !reminder.Done {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReminderRepo) Update(reminder *domain.Reminder) error {
	cp := *reminder
	r.reminders[reminder.ID] = &cp
	return nil
}

func (r *fakeReminderRepo) Delete(id string) error {
	delete(r.reminders, id)
	return nil
}

func (r *fakeReminderRepo) ReassignContact(fromContactID, toContactID string) error {
	for _, reminder := range r.reminders {
		if reminder.ContactID == fromContactID {
			reminder.ContactID = toContactID
		}
	}
	return nil
}

func (r *fakeReminderRepo) DeleteByContact(contactID string) error {
	for id, reminder := range r.reminders {
		if reminder.ContactID == contactID {
			delete(r.reminders, id)
		}
	}
	return nil
}

type fakeContactRepo struct {
	contacts map[string]*contactdomain.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[string]*contactdomain.Contact)}
}

func (r *fakeContactRepo) Create(c *contactdomain.Contact) error {
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *fakeContactRepo) FindByID(id string) (*contactdomain.Contact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContactRepo) FindByUser(userID string, filter contactrepo.ListFilter) ([]*contactdomain.Contact, int64, error) {
	all, _ := r.FindAllByUser(userID)
	return all, int64(len(all)), nil
}

func (r *fakeContactRepo) FindAllByUser(userID string) ([]*contactdomain.Contact, error) {
	var out []*contactdomain.Contact
	for _, c := range r.contacts {
		if c.UserID == userID && !c.Archived {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) FindByEmail(userID, email string) (*contactdomain.Contact, error) {
	return nil, nil
}

func (r *fakeContactRepo) Update(c *contactdomain.Contact) error {
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *fakeContactRepo) Delete(id string) error {
	delete(r.contacts, id)
	return nil
}

func newTestUsecase() (ReminderUsecase, *fakeReminderRepo, *fakeContactRepo) {
	reminders := newFakeReminderRepo()
	contacts := newFakeContactRepo()
	return NewReminderUsecase(reminders, contacts), reminders, contacts
}

func TestCreateReminder(t *testing.T) {
	uc, _, _ := newTestUsecase()

	due := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	reminder, err := uc.Create("u1", &dto.CreateReminderRequest{
		Title: "Follow up on proposal",
		DueAt: due,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RecurrenceNone, reminder.Recurrence)
	assert.False(t, reminder.Done)
}

func TestCreateReminderRejectsBadDate(t *testing.T) {
	uc, _, _ := newTestUsecase()

	_, err := uc.Create("u1", &dto.CreateReminderRequest{Title: "x", DueAt: "tomorrow"})
	assert.ErrorIs(t, err, ErrBadDueDate)
}

func TestCreateReminderChecksContactOwnership(t *testing.T) {
	uc, _, contacts := newTestUsecase()

	require.NoError(t, contacts.Create(&contactdomain.Contact{ID: "c1", UserID: "other", Name: "X"}))

	_, err := uc.Create("u1", &dto.CreateReminderRequest{
		Title:     "x",
		ContactID: "c1",
		DueAt:     time.Now().Format(time.RFC3339),
	})
	assert.Error(t, err)
}

func TestCompleteOneShotReminder(t *testing.T) {
	uc, _, _ := newTestUsecase()

	created, err := uc.Create("u1", &dto.CreateReminderRequest{
		Title: "One shot",
		DueAt: time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)

	done, err := uc.Complete("u1", created.ID)
	require.NoError(t, err)
	assert.True(t, done.Done)
	assert.NotNil(t, done.CompletedAt)
}

func TestCompleteRecurringRollsForward(t *testing.T) {
	uc, _, _ := newTestUsecase()

	due := time.Now().Add(-time.Hour)
	created, err := uc.Create("u1", &dto.CreateReminderRequest{
		Title:      "Monthly check-in",
		DueAt:      due.Format(time.RFC3339),
		Recurrence: "monthly",
	})
	require.NoError(t, err)

	rolled, err := uc.Complete("u1", created.ID)
	require.NoError(t, err)
	assert.False(t, rolled.Done, "recurring reminders stay open")
	assert.True(t, rolled.DueAt.After(time.Now()), "next occurrence must be in the future")
	assert.Nil(t, rolled.NotifiedAt)
}

func TestRecurrenceNextSkipsMissedOccurrences(t *testing.T) {
	due := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	after := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	next := domain.RecurrenceWeekly.Next(due, after)
	assert.True(t, next.After(after))
	assert.True(t, next.Sub(after) <= 7*24*time.Hour, "next weekly slot is within a week")

	next = domain.RecurrenceMonthly.Next(due, after)
	assert.Equal(t, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), next)

	next = domain.RecurrenceQuarterly.Next(due, after)
	assert.Equal(t, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), next)
}

func TestSnoozePushesDueDate(t *testing.T) {
	uc, _, _ := newTestUsecase()

	created, err := uc.Create("u1", &dto.CreateReminderRequest{
		Title: "Overdue",
		DueAt: time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	snoozed, err := uc.Snooze("u1", created.ID, 3)
	require.NoError(t, err)
	assert.True(t, snoozed.DueAt.After(time.Now().Add(2*24*time.Hour)), "overdue reminders snooze from now, not from the old due date")
}

func TestSnoozeRejectsNonPositiveDays(t *testing.T) {
	uc, _, _ := newTestUsecase()

	created, err := uc.Create("u1", &dto.CreateReminderRequest{
		Title: "Check in",
		DueAt: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	_, err = uc.Snooze("u1", created.ID, 0)
	assert.ErrorIs(t, err, ErrBadSnoozeDays)

	_, err = uc.Snooze("u1", created.ID, -5)
	assert.ErrorIs(t, err, ErrBadSnoozeDays, "negative days must not move the due date backwards")
}

func TestReminderOwnership(t *testing.T) {
	uc, _, _ := newTestUsecase()

	created, err := uc.Create("u1", &dto.CreateReminderRequest{
		Title: "Private",
		DueAt: time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)

	_, err = uc.Complete("u2", created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = uc.Delete("u2", created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = uc.Complete("u1", "missing")
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestEnsureStayInTouch(t *testing.T) {
	uc, reminders, contacts := newTestUsecase()

	lastTouch := time.Now().AddDate(0, -6, 0)
	require.NoError(t, contacts.Create(&contactdomain.Contact{
		ID: "cold1", UserID: "u1", Name: "Cold Contact",
		Band: contactdomain.BandCold, LastInteractionAt: &lastTouch,
	}))
	require.NoError(t, contacts.Create(&contactdomain.Contact{
		ID: "warm1", UserID: "u1", Name: "Warm Contact",
		Band: contactdomain.BandWarm, LastInteractionAt: &lastTouch,
	}))
	require.NoError(t, contacts.Create(&contactdomain.Contact{
		ID: "import1", UserID: "u1", Name: "Imported Never Touched",
		Band: contactdomain.BandCold,
	}))

	created, err := uc.EnsureStayInTouch("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the decayed cold contact gets a reminder")

	// Second pass must not duplicate.
	created, err = uc.EnsureStayInTouch("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	list, _, err := reminders.FindByUser("u1", false, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Auto)
	assert.Equal(t, "cold1", list[0].ContactID)
}
