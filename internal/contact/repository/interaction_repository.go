package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/contact/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Upsert(interaction *domain.Interaction) (bool, error) {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.ExternalID == "" {
		interaction.ExternalID = uuid.New().String()
	}
	interaction.CreatedAt = time.Now()

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contact_id"}, {Name: "external_id"}},
		DoNothing: true,
	}).Create(interaction)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *interactionRepository) ListByContact(contactID string, limit, offset int) ([]*domain.Interaction, int64, error) {
	query := r.db.Model(&domain.Interaction{}).Where("contact_id = ?", contactID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}

	var interactions []*domain.Interaction
	err := query.Order("occurred_at DESC").Limit(limit).Offset(offset).Find(&interactions).Error
	if err != nil {
		return nil, 0, err
	}
	return interactions, total, nil
}

func (r *interactionRepository) CountSince(contactID string, since time.Time) (int, error) {
	var count int64
	err := r.db.Model(&domain.Interaction{}).
		Where("contact_id = ? AND occurred_at >= ?", contactID, since).
		Count(&count).Error
	return int(count), err
}

func (r *interactionRepository) LatestByContact(contactID string) (*domain.Interaction, error) {
	var interaction domain.Interaction
	err := r.db.Where("contact_id = ?", contactID).
		Order("occurred_at DESC").
		First(&interaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &interaction, nil
}

func (r *interactionRepository) RecentSubjects(contactID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	var subjects []string
	err := r.db.Model(&domain.Interaction{}).
		Where("contact_id = ? AND subject <> ''", contactID).
		Order("occurred_at DESC").
		Limit(limit).
		Pluck("subject", &subjects).Error
	return subjects, err
}

func (r *interactionRepository) ReassignContact(fromContactID, toContactID string) error {
	// Both contacts may have recorded the same event, e.g. a calendar entry
	// inviting both. Duplicate rows are dropped instead of violating the
	// unique index on (contact_id, external_id).
	var targetExternalIDs []string
	if err := r.db.Model(&domain.Interaction{}).
		Where("contact_id = ?", toContactID).
		Pluck("external_id", &targetExternalIDs).Error; err != nil {
		return err
	}
	if len(targetExternalIDs) > 0 {
		if err := r.db.Where("contact_id = ? AND external_id IN ?", fromContactID, targetExternalIDs).
			Delete(&domain.Interaction{}).Error; err != nil {
			return err
		}
	}
	return r.db.Model(&domain.Interaction{}).
		Where("contact_id = ?", fromContactID).
		Update("contact_id", toContactID).Error
}

func (r *interactionRepository) DeleteByContact(contactID string) error {
	return r.db.Where("contact_id = ?", contactID).Delete(&domain.Interaction{}).Error
}
