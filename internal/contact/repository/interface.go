package repository

import (
	"time"

	"netcrm-backend/internal/contact/domain"
)

// ListFilter narrows a contact listing.
type ListFilter struct {
	Tag      string
	Band     domain.Band
	Archived *bool
	Search   string // matched against name/email/company with ILIKE
	Limit    int
	Offset   int
	OrderBy  string // name, strength, last_interaction; defaults to name
}

type ContactRepository interface {
	Create(contact *domain.Contact) error
	FindByID(id string) (*domain.Contact, error)
	FindByUser(userID string, filter ListFilter) ([]*domain.Contact, int64, error)
	// FindAllByUser returns every non-archived contact. Used by dedup and
	// fuzzy search, which score in memory.
	FindAllByUser(userID string) ([]*domain.Contact, error)
	FindByEmail(userID, email string) (*domain.Contact, error)
	Update(contact *domain.Contact) error
	Delete(id string) error
}

type InteractionRepository interface {
	// Upsert inserts the interaction unless one with the same contact and
	// external ID already exists. Returns true when a row was created.
	Upsert(interaction *domain.Interaction) (bool, error)
	ListByContact(contactID string, limit, offset int) ([]*domain.Interaction, int64, error)
	CountSince(contactID string, since time.Time) (int, error)
	LatestByContact(contactID string) (*domain.Interaction, error)
	RecentSubjects(contactID string, limit int) ([]string, error)
	ReassignContact(fromContactID, toContactID string) error
	DeleteByContact(contactID string) error
}
