package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/insight/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InsightRepository interface {
	// Upsert writes the insight for its (contact, kind) slot.
	Upsert(insight *domain.AIInsight) error
	FindByContactAndKind(contactID, kind string) (*domain.AIInsight, error)
	FindByContact(contactID string) ([]*domain.AIInsight, error)
	ReassignContact(fromContactID, toContactID string) error
	DeleteByContact(contactID string) error
}

type insightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) InsightRepository {
	return &insightRepository{db: db}
}

func (r *insightRepository) Upsert(insight *domain.AIInsight) error {
	existing, err := r.FindByContactAndKind(insight.ContactID, insight.Kind)
	if err != nil {
		return err
	}
	if existing != nil {
		insight.ID = existing.ID
		insight.CreatedAt = existing.CreatedAt
		insight.UpdatedAt = time.Now()
		return r.db.Save(insight).Error
	}
	insight.ID = uuid.New().String()
	insight.CreatedAt = time.Now()
	insight.UpdatedAt = time.Now()
	return r.db.Create(insight).Error
}

func (r *insightRepository) FindByContactAndKind(contactID, kind string) (*domain.AIInsight, error) {
	var insight domain.AIInsight
	err := r.db.Where("contact_id = ? AND kind = ?", contactID, kind).First(&insight).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &insight, nil
}

func (r *insightRepository) FindByContact(contactID string) ([]*domain.AIInsight, error) {
	var insights []*domain.AIInsight
	err := r.db.Where("contact_id = ?", contactID).Order("kind ASC").Find(&insights).Error
	return insights, err
}

func (r *insightRepository) ReassignContact(fromContactID, toContactID string) error {
	// The target may already hold insights of the same kind; stale copies
	// from the duplicate are dropped instead of violating the unique index.
	var targetKinds []string
	if err := r.db.Model(&domain.AIInsight{}).
		Where("contact_id = ?", toContactID).
		Pluck("kind", &targetKinds).Error; err != nil {
		return err
	}
	if len(targetKinds) > 0 {
		if err := r.db.Where("contact_id = ? AND kind IN ?", fromContactID, targetKinds).
			Delete(&domain.AIInsight{}).Error; err != nil {
			return err
		}
	}
	return r.db.Model(&domain.AIInsight{}).
		Where("contact_id = ?", fromContactID).
		Update("contact_id", toContactID).Error
}

func (r *insightRepository) DeleteByContact(contactID string) error {
	return r.db.Where("contact_id = ?", contactID).Delete(&domain.AIInsight{}).Error
}
