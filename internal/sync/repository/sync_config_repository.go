package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type syncConfigRepository struct {
	db *gorm.DB
}

func NewSyncConfigRepository(db *gorm.DB) SyncConfigRepository {
	return &syncConfigRepository{db: db}
}

func (r *syncConfigRepository) FindByUser(userID string) (*domain.SyncConfig, error) {
	var config domain.SyncConfig
	err := r.db.Where("user_id = ?", userID).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *syncConfigRepository) Upsert(config *domain.SyncConfig) error {
	existing, err := r.FindByUser(config.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		config.ID = existing.ID
		config.CreatedAt = existing.CreatedAt
		config.UpdatedAt = time.Now()
		return r.db.Save(config).Error
	}

	config.ID = uuid.New().String()
	config.CreatedAt = time.Now()
	config.UpdatedAt = time.Now()
	return r.db.Create(config).Error
}
