package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/reminder/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderRepository interface {
	Create(reminder *domain.Reminder) error
	FindByID(id string) (*domain.Reminder, error)
	FindByUser(userID string, includeDone bool, limit, offset int) ([]*domain.Reminder, int64, error)
	// FindDueUnnotified returns pending reminders across all users that are
	// due and have not been announced yet.
	FindDueUnnotified(now time.Time, limit int) ([]*domain.Reminder, error)
	// HasOpenAutoReminder reports whether the contact already has a pending
	// auto-generated reminder.
	HasOpenAutoReminder(userID, contactID string) (bool, error)
	Update(reminder *domain.Reminder) error
	Delete(id string) error
	ReassignContact(fromContactID, toContactID string) error
	DeleteByContact(contactID string) error
}

type reminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(reminder *domain.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()
	return r.db.Create(reminder).Error
}

func (r *reminderRepository) FindByID(id string) (*domain.Reminder, error) {
	var reminder domain.Reminder
	err := r.db.Where("id = ?", id).First(&reminder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepository) FindByUser(userID string, includeDone bool, limit, offset int) ([]*domain.Reminder, int64, error) {
	query := r.db.Model(&domain.Reminder{}).Where("user_id = ?", userID)
	if !includeDone {
		query = query.Where("done = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}

	var reminders []*domain.Reminder
	err := query.Order("due_at ASC").Limit(limit).Offset(offset).Find(&reminders).Error
	if err != nil {
		return nil, 0, err
	}
	return reminders, total, nil
}

func (r *reminderRepository) FindDueUnnotified(now time.Time, limit int) ([]*domain.Reminder, error) {
	if limit <= 0 {
		limit = 100
	}
	var reminders []*domain.Reminder
	err := r.db.Where("done = ? AND due_at <= ? AND notified_at IS NULL", false, now).
		Order("due_at ASC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

func (r *reminderRepository) HasOpenAutoReminder(userID, contactID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Reminder{}).
		Where("user_id = ? AND contact_id = ? AND auto = ? AND done = ?", userID, contactID, true, false).
		Count(&count).Error
	return count > 0, err
}

func (r *reminderRepository) Update(reminder *domain.Reminder) error {
	reminder.UpdatedAt = time.Now()
	return r.db.Save(reminder).Error
}

func (r *reminderRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Reminder{}).Error
}

func (r *reminderRepository) ReassignContact(fromContactID, toContactID string) error {
	return r.db.Model(&domain.Reminder{}).
		Where("contact_id = ?", fromContactID).
		Update("contact_id", toContactID).Error
}

func (r *reminderRepository) DeleteByContact(contactID string) error {
	return r.db.Where("contact_id = ?", contactID).Delete(&domain.Reminder{}).Error
}
