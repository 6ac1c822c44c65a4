package usecase

import (
	"context"
	"errors"

	contactdomain "netcrm-backend/internal/contact/domain"
	contactrepo "netcrm-backend/internal/contact/repository"
	contactusecase "netcrm-backend/internal/contact/usecase"
	"netcrm-backend/pkg/enrich"
)

var (
	ErrNotConfigured = errors.New("enrichment provider not configured")
	ErrNoLinkedInURL = errors.New("contact has no linkedin url")
)

// EnrichResult reports which fields the lookup filled in.
type EnrichResult struct {
	Contact       *contactdomain.Contact `json:"contact"`
	FieldsUpdated []string               `json:"fields_updated"`
}

type EnrichUsecase interface {
	// EnrichContact pulls the public profile behind the contact's LinkedIn
	// URL and fills empty fields. Existing values are never overwritten.
	EnrichContact(ctx context.Context, userID, contactID string) (*EnrichResult, error)
}

type enrichUsecase struct {
	client   *enrich.Client
	contacts contactusecase.ContactUsecase
	repo     contactrepo.ContactRepository
}

func NewEnrichUsecase(client *enrich.Client, contacts contactusecase.ContactUsecase, repo contactrepo.ContactRepository) EnrichUsecase {
	return &enrichUsecase{
		client:   client,
		contacts: contacts,
		repo:     repo,
	}
}

func (u *enrichUsecase) EnrichContact(ctx context.Context, userID, contactID string) (*EnrichResult, error) {
	if !u.client.Enabled() {
		return nil, ErrNotConfigured
	}

	contact, err := u.contacts.Get(userID, contactID)
	if err != nil {
		return nil, err
	}
	if contact.LinkedInURL == "" {
		return nil, ErrNoLinkedInURL
	}

	profile, err := u.client.LookupProfile(ctx, contact.LinkedInURL)
	if err != nil {
		return nil, err
	}

	result := &EnrichResult{Contact: contact}
	fill := func(field string, dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			result.FieldsUpdated = append(result.FieldsUpdated, field)
		}
	}

	fill("company", &contact.Company, profile.Company)
	fill("job_title", &contact.JobTitle, profile.JobTitle)
	fill("location", &contact.Location, locationOf(profile))
	if contact.Notes == "" && profile.Headline != "" {
		contact.Notes = profile.Headline
		result.FieldsUpdated = append(result.FieldsUpdated, "notes")
	}

	if len(result.FieldsUpdated) == 0 {
		return result, nil
	}
	if err := u.repo.Update(contact); err != nil {
		return nil, err
	}
	return result, nil
}

func locationOf(profile *enrich.Profile) string {
	switch {
	case profile.City != "" && profile.Country != "":
		return profile.City + ", " + profile.Country
	case profile.City != "":
		return profile.City
	default:
		return profile.Country
	}
}
