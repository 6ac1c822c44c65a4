package usecase

import (
	"log"
	"strings"
	"time"

	"netcrm-backend/internal/contact/domain"
	"netcrm-backend/internal/contact/dto"
	"netcrm-backend/internal/contact/repository"
)

type contactUsecase struct {
	contactRepo     repository.ContactRepository
	interactionRepo repository.InteractionRepository
	mergeHooks      []MergeHook
}

func NewContactUsecase(contactRepo repository.ContactRepository, interactionRepo repository.InteractionRepository) ContactUsecase {
	return &contactUsecase{
		contactRepo:     contactRepo,
		interactionRepo: interactionRepo,
	}
}

func (u *contactUsecase) RegisterMergeHook(hook MergeHook) {
	u.mergeHooks = append(u.mergeHooks, hook)
}

// owned loads a contact and checks it belongs to the user.
func (u *contactUsecase) owned(userID, contactID string) (*domain.Contact, error) {
	contact, err := u.contactRepo.FindByID(contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	if contact.UserID != userID {
		return nil, ErrNotOwner
	}
	return contact, nil
}

func (u *contactUsecase) Create(userID string, req *dto.CreateContactRequest) (*domain.Contact, error) {
	contact := &domain.Contact{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Email:       normalizeEmail(req.Email),
		AltEmails:   normalizeEmails(req.AltEmails),
		Company:     strings.TrimSpace(req.Company),
		JobTitle:    strings.TrimSpace(req.JobTitle),
		LinkedInURL: strings.TrimSpace(req.LinkedInURL),
		Location:    strings.TrimSpace(req.Location),
		Tags:        req.Tags,
		Notes:       req.Notes,
		Source:      "manual",
		Band:        domain.BandCold,
	}
	if err := u.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (u *contactUsecase) Get(userID, contactID string) (*domain.Contact, error) {
	return u.owned(userID, contactID)
}

func (u *contactUsecase) List(userID string, filter repository.ListFilter) (*dto.ContactsResponse, error) {
	if filter.Archived == nil {
		notArchived := false
		filter.Archived = &notArchived
	}
	contacts, total, err := u.contactRepo.FindByUser(userID, filter)
	if err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	return &dto.ContactsResponse{
		Contacts: contacts,
		Total:    total,
		Limit:    limit,
		Offset:   filter.Offset,
	}, nil
}

func (u *contactUsecase) Update(userID, contactID string, req *dto.UpdateContactRequest) (*domain.Contact, error) {
	contact, err := u.owned(userID, contactID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		contact.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		contact.Email = normalizeEmail(*req.Email)
	}
	if req.AltEmails != nil {
		contact.AltEmails = normalizeEmails(*req.AltEmails)
	}
	if req.Company != nil {
		contact.Company = strings.TrimSpace(*req.Company)
	}
	if req.JobTitle != nil {
		contact.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.LinkedInURL != nil {
		contact.LinkedInURL = strings.TrimSpace(*req.LinkedInURL)
	}
	if req.Location != nil {
		contact.Location = strings.TrimSpace(*req.Location)
	}
	if req.Tags != nil {
		contact.Tags = *req.Tags
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}
	if req.Archived != nil {
		contact.Archived = *req.Archived
	}

	if err := u.contactRepo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (u *contactUsecase) Archive(userID, contactID string) error {
	contact, err := u.owned(userID, contactID)
	if err != nil {
		return err
	}
	contact.Archived = true
	return u.contactRepo.Update(contact)
}

func (u *contactUsecase) Delete(userID, contactID string) error {
	if _, err := u.owned(userID, contactID); err != nil {
		return err
	}
	if err := u.interactionRepo.DeleteByContact(contactID); err != nil {
		return err
	}
	return u.contactRepo.Delete(contactID)
}

func (u *contactUsecase) RecordInteraction(userID, contactID string, req *dto.RecordInteractionRequest) (*domain.Interaction, error) {
	contact, err := u.owned(userID, contactID)
	if err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return nil, err
		}
		occurredAt = parsed
	}

	interaction := &domain.Interaction{
		UserID:     userID,
		ContactID:  contact.ID,
		Kind:       domain.InteractionKind(req.Kind),
		Subject:    req.Subject,
		OccurredAt: occurredAt,
	}
	if _, err := u.interactionRepo.Upsert(interaction); err != nil {
		return nil, err
	}

	if _, err := u.RecomputeStrength(contact.ID, time.Now()); err != nil {
		log.Printf("[Contact] strength recompute after interaction failed: %v", err)
	}
	return interaction, nil
}

func (u *contactUsecase) ListInteractions(userID, contactID string, limit, offset int) ([]*domain.Interaction, int64, error) {
	if _, err := u.owned(userID, contactID); err != nil {
		return nil, 0, err
	}
	return u.interactionRepo.ListByContact(contactID, limit, offset)
}

func (u *contactUsecase) ResolveByEmail(userID, email, name, source string) (*domain.Contact, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	contact, err := u.contactRepo.FindByEmail(userID, email)
	if err != nil {
		return nil, err
	}
	if contact != nil {
		return contact, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	contact = &domain.Contact{
		UserID: userID,
		Name:   name,
		Email:  email,
		Source: source,
		Band:   domain.BandCold,
	}
	if err := u.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (u *contactUsecase) RecomputeStrength(contactID string, now time.Time) (*domain.Contact, error) {
	contact, err := u.contactRepo.FindByID(contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	latest, err := u.interactionRepo.LatestByContact(contactID)
	if err != nil {
		return nil, err
	}
	count, err := u.interactionRepo.CountSince(contactID, now.AddDate(0, 0, -90))
	if err != nil {
		return nil, err
	}

	var lastAt *time.Time
	if latest != nil {
		t := latest.OccurredAt
		lastAt = &t
	}

	contact.LastInteractionAt = lastAt
	contact.InteractionCount = count
	contact.Strength = domain.ComputeStrength(lastAt, count, now)
	contact.Band = domain.BandFor(contact.Strength)

	if err := u.contactRepo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (u *contactUsecase) RecomputeAllStrengths(userID string, now time.Time) (int, error) {
	contacts, err := u.contactRepo.FindAllByUser(userID)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, contact := range contacts {
		if _, err := u.RecomputeStrength(contact.ID, now); err != nil {
			log.Printf("[Contact] strength recompute for %s failed: %v", contact.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}

func (u *contactUsecase) Merge(userID string, req *dto.MergeRequest) (*domain.Contact, error) {
	if req.TargetID == req.DuplicateID {
		return nil, ErrSelfMerge
	}
	target, err := u.owned(userID, req.TargetID)
	if err != nil {
		return nil, err
	}
	duplicate, err := u.owned(userID, req.DuplicateID)
	if err != nil {
		return nil, err
	}

	mergeFields(target, duplicate)

	if err := u.interactionRepo.ReassignContact(duplicate.ID, target.ID); err != nil {
		return nil, err
	}
	for _, hook := range u.mergeHooks {
		if err := hook(userID, duplicate.ID, target.ID); err != nil {
			log.Printf("[Contact] merge hook failed for %s -> %s: %v", duplicate.ID, target.ID, err)
		}
	}
	if err := u.contactRepo.Delete(duplicate.ID); err != nil {
		return nil, err
	}
	if err := u.contactRepo.Update(target); err != nil {
		return nil, err
	}
	return u.RecomputeStrength(target.ID, time.Now())
}

// mergeFields folds the duplicate into the target: the target keeps its own
// values, empty fields are filled from the duplicate, and emails and tags are
// unioned.
func mergeFields(target, duplicate *domain.Contact) {
	emails := target.AltEmails
	for _, e := range duplicate.AllEmails() {
		if e != "" && !target.HasEmail(e) {
			emails = append(emails, e)
		}
	}
	target.AltEmails = emails

	seen := make(map[string]bool)
	for _, t := range target.Tags {
		seen[t] = true
	}
	for _, t := range duplicate.Tags {
		if !seen[t] {
			target.Tags = append(target.Tags, t)
		}
	}

	if target.Company == "" {
		target.Company = duplicate.Company
	}
	if target.JobTitle == "" {
		target.JobTitle = duplicate.JobTitle
	}
	if target.LinkedInURL == "" {
		target.LinkedInURL = duplicate.LinkedInURL
	}
	if target.Location == "" {
		target.Location = duplicate.Location
	}
	if duplicate.Notes != "" {
		if target.Notes == "" {
			target.Notes = duplicate.Notes
		} else {
			target.Notes = target.Notes + "\n\n" + duplicate.Notes
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeEmails(emails []string) domain.StringList {
	var out domain.StringList
	seen := make(map[string]bool)
	for _, e := range emails {
		e = normalizeEmail(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
