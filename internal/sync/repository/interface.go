package repository

import "netcrm-backend/internal/sync/domain"

type ThreadRepository interface {
	// Upsert inserts the thread or updates the existing row for the same
	// user and external ID. Returns true when a row was created.
	Upsert(thread *domain.EmailThread) (bool, error)
	ListByContact(contactID string, limit, offset int) ([]*domain.EmailThread, int64, error)
	ReassignContact(fromContactID, toContactID string) error
	DeleteByContact(contactID string) error
}

type SyncConfigRepository interface {
	FindByUser(userID string) (*domain.SyncConfig, error)
	Upsert(config *domain.SyncConfig) error
}

type ImportJobRepository interface {
	Create(job *domain.ImportJob) error
	Update(job *domain.ImportJob) error
	FindByID(id string) (*domain.ImportJob, error)
	FindByUser(userID string, limit int) ([]*domain.ImportJob, error)
}
