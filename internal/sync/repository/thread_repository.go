package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type threadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) Upsert(thread *domain.EmailThread) (bool, error) {
	var existing domain.EmailThread
	err := r.db.Where("user_id = ? AND external_id = ?", thread.UserID, thread.ExternalID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		thread.ID = uuid.New().String()
		thread.CreatedAt = time.Now()
		thread.UpdatedAt = time.Now()
		return true, r.db.Create(thread).Error
	}

	thread.ID = existing.ID
	thread.CreatedAt = existing.CreatedAt
	thread.UpdatedAt = time.Now()
	return false, r.db.Save(thread).Error
}

func (r *threadRepository) ListByContact(contactID string, limit, offset int) ([]*domain.EmailThread, int64, error) {
	query := r.db.Model(&domain.EmailThread{}).Where("contact_id = ?", contactID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}

	var threads []*domain.EmailThread
	err := query.Order("last_message_at DESC").Limit(limit).Offset(offset).Find(&threads).Error
	if err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

func (r *threadRepository) ReassignContact(fromContactID, toContactID string) error {
	return r.db.Model(&domain.EmailThread{}).
		Where("contact_id = ?", fromContactID).
		Update("contact_id", toContactID).Error
}

func (r *threadRepository) DeleteByContact(contactID string) error {
	return r.db.Where("contact_id = ?", contactID).Delete(&domain.EmailThread{}).Error
}
