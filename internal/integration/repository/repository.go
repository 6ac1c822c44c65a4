package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/integration/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntegrationRepository interface {
	// Upsert creates the integration or replaces the row for the same user
	// and provider.
	Upsert(integration *domain.Integration) error
	FindByUserAndProvider(userID string, provider domain.Provider) (*domain.Integration, error)
	FindByUser(userID string) ([]*domain.Integration, error)
	// FindAllByProvider returns every connected integration of the given
	// provider. Used by the sync scheduler to walk all users.
	FindAllByProvider(provider domain.Provider) ([]*domain.Integration, error)
	UpdateTokens(id, accessToken, refreshToken string, expiry *time.Time) error
	MarkSynced(id string, at time.Time) error
	MarkError(id string, message string) error
	Delete(userID string, provider domain.Provider) error
}

type integrationRepository struct {
	db *gorm.DB
}

func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

func (r *integrationRepository) Upsert(integration *domain.Integration) error {
	existing, err := r.FindByUserAndProvider(integration.UserID, integration.Provider)
	if err != nil {
		return err
	}
	if existing != nil {
		integration.ID = existing.ID
		integration.CreatedAt = existing.CreatedAt
		integration.UpdatedAt = time.Now()
		return r.db.Save(integration).Error
	}
	integration.ID = uuid.New().String()
	integration.CreatedAt = time.Now()
	integration.UpdatedAt = time.Now()
	return r.db.Create(integration).Error
}

func (r *integrationRepository) FindByUserAndProvider(userID string, provider domain.Provider) (*domain.Integration, error) {
	var integration domain.Integration
	err := r.db.Where("user_id = ? AND provider = ?", userID, provider).First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepository) FindByUser(userID string) ([]*domain.Integration, error) {
	var integrations []*domain.Integration
	err := r.db.Where("user_id = ?", userID).Order("provider ASC").Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepository) FindAllByProvider(provider domain.Provider) ([]*domain.Integration, error) {
	var integrations []*domain.Integration
	err := r.db.Where("provider = ? AND status = ?", provider, domain.StatusConnected).
		Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepository) UpdateTokens(id, accessToken, refreshToken string, expiry *time.Time) error {
	updates := map[string]interface{}{
		"access_token": accessToken,
		"token_expiry": expiry,
		"updated_at":   time.Now(),
	}
	// An empty refresh token on a refresh response means the provider kept
	// the old one. Do not wipe it.
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	return r.db.Model(&domain.Integration{}).Where("id = ?", id).Updates(updates).Error
}

func (r *integrationRepository) MarkSynced(id string, at time.Time) error {
	return r.db.Model(&domain.Integration{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_sync_at": at,
		"status":       domain.StatusConnected,
		"last_error":   "",
		"updated_at":   time.Now(),
	}).Error
}

func (r *integrationRepository) MarkError(id string, message string) error {
	return r.db.Model(&domain.Integration{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     domain.StatusError,
		"last_error": message,
		"updated_at": time.Now(),
	}).Error
}

func (r *integrationRepository) Delete(userID string, provider domain.Provider) error {
	return r.db.Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&domain.Integration{}).Error
}
