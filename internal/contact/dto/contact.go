package dto

import "netcrm-backend/internal/contact/domain"

type CreateContactRequest struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"omitempty,email"`
	AltEmails   []string `json:"alt_emails"`
	Company     string   `json:"company"`
	JobTitle    string   `json:"job_title"`
	LinkedInURL string   `json:"linkedin_url"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	Notes       string   `json:"notes"`
}

// UpdateContactRequest uses pointers so absent fields are left untouched.
type UpdateContactRequest struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	AltEmails   *[]string `json:"alt_emails"`
	Company     *string   `json:"company"`
	JobTitle    *string   `json:"job_title"`
	LinkedInURL *string   `json:"linkedin_url"`
	Location    *string   `json:"location"`
	Tags        *[]string `json:"tags"`
	Notes       *string   `json:"notes"`
	Archived    *bool     `json:"archived"`
}

type RecordInteractionRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=email_in email_out meeting note"`
	Subject    string `json:"subject"`
	OccurredAt string `json:"occurred_at"` // RFC3339, defaults to now
}

type MergeRequest struct {
	TargetID    string `json:"target_id" binding:"required"`
	DuplicateID string `json:"duplicate_id" binding:"required"`
}

type ContactsResponse struct {
	Contacts []*domain.Contact `json:"contacts"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// DuplicatePair is a candidate duplicate with the reason it matched.
type DuplicatePair struct {
	Contact   *domain.Contact `json:"contact"`
	Duplicate *domain.Contact `json:"duplicate"`
	Reason    string          `json:"reason"` // shared_email, similar_name
	Score     float64         `json:"score"`
}
