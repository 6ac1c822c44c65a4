package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type importJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) ImportJobRepository {
	return &importJobRepository{db: db}
}

func (r *importJobRepository) Create(job *domain.ImportJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = domain.ImportStatusPending
	}
	job.CreatedAt = time.Now()
	return r.db.Create(job).Error
}

func (r *importJobRepository) Update(job *domain.ImportJob) error {
	return r.db.Save(job).Error
}

func (r *importJobRepository) FindByID(id string) (*domain.ImportJob, error) {
	var job domain.ImportJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *importJobRepository) FindByUser(userID string, limit int) ([]*domain.ImportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []*domain.ImportJob
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
