package usecase

import (
	"errors"
	"time"

	"netcrm-backend/internal/contact/domain"
	"netcrm-backend/internal/contact/dto"
	"netcrm-backend/internal/contact/repository"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrNotOwner        = errors.New("contact does not belong to user")
	ErrSelfMerge       = errors.New("cannot merge a contact into itself")
)

// MergeHook is called after a duplicate has been folded into its target so
// other modules can re-parent rows they keyed by contact ID.
type MergeHook func(userID, fromContactID, toContactID string) error

type ContactUsecase interface {
	Create(userID string, req *dto.CreateContactRequest) (*domain.Contact, error)
	Get(userID, contactID string) (*domain.Contact, error)
	List(userID string, filter repository.ListFilter) (*dto.ContactsResponse, error)
	Update(userID, contactID string, req *dto.UpdateContactRequest) (*domain.Contact, error)
	// Archive hides the contact from listings without losing its history.
	Archive(userID, contactID string) error
	Delete(userID, contactID string) error

	RecordInteraction(userID, contactID string, req *dto.RecordInteractionRequest) (*domain.Interaction, error)
	ListInteractions(userID, contactID string, limit, offset int) ([]*domain.Interaction, int64, error)

	// ResolveByEmail finds the contact owning the address, creating one with
	// the given source when none exists and name is non-empty. Returns nil
	// when nothing matched and nothing could be created.
	ResolveByEmail(userID, email, name, source string) (*domain.Contact, error)

	// RecomputeStrength refreshes the score of one contact from its
	// interaction history.
	RecomputeStrength(contactID string, now time.Time) (*domain.Contact, error)
	// RecomputeAllStrengths refreshes every contact of the user. Run by the
	// nightly scheduler so scores decay even without new interactions.
	RecomputeAllStrengths(userID string, now time.Time) (int, error)

	FindDuplicates(userID string) ([]*dto.DuplicatePair, error)
	Merge(userID string, req *dto.MergeRequest) (*domain.Contact, error)
	RegisterMergeHook(hook MergeHook)

	// FuzzySearch ranks contacts by edit distance against the query in
	// addition to plain substring matches.
	FuzzySearch(userID, query string, limit int) ([]*domain.Contact, error)
}
