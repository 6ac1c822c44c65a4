package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList stores a JSON array in a text column. Used for alternate email
// addresses and tags.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// Contact is a person in the user's network.
type Contact struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index;not null"`
	Name        string     `json:"name" gorm:"not null"`
	Email       string     `json:"email" gorm:"index"`
	AltEmails   StringList `json:"alt_emails,omitempty" gorm:"type:text"`
	Company     string     `json:"company,omitempty"`
	JobTitle    string     `json:"job_title,omitempty"`
	LinkedInURL string     `json:"linkedin_url,omitempty"`
	Location    string     `json:"location,omitempty"`
	Tags        StringList `json:"tags,omitempty" gorm:"type:text"`
	Notes       string     `json:"notes,omitempty"`
	Source      string     `json:"source" gorm:"default:manual"` // manual, gmail, google_contacts, csv
	Archived    bool       `json:"archived" gorm:"default:false"`

	Strength          float64    `json:"strength"`
	Band              Band       `json:"band" gorm:"default:cold"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`
	InteractionCount  int        `json:"interaction_count" gorm:"default:0"`
	NextMeetingAt     *time.Time `json:"next_meeting_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllEmails returns the primary address plus alternates, lowercased, without
// duplicates.
func (c *Contact) AllEmails() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(e string) {
		if e == "" || seen[e] {
			return
		}
		seen[e] = true
		out = append(out, e)
	}
	add(c.Email)
	for _, e := range c.AltEmails {
		add(e)
	}
	return out
}

// HasEmail reports whether the contact owns the given address.
func (c *Contact) HasEmail(email string) bool {
	for _, e := range c.AllEmails() {
		if e == email {
			return true
		}
	}
	return false
}

// InteractionKind classifies a timeline entry.
type InteractionKind string

const (
	InteractionEmailIn  InteractionKind = "email_in"
	InteractionEmailOut InteractionKind = "email_out"
	InteractionMeeting  InteractionKind = "meeting"
	InteractionNote     InteractionKind = "note"
)

// Interaction is one touchpoint with a contact. ExternalID makes syncs
// idempotent: vendor-derived interactions reuse the vendor ID, manual ones
// get a fresh UUID.
type Interaction struct {
	ID         string          `json:"id" gorm:"primaryKey"`
	UserID     string          `json:"user_id" gorm:"index;not null"`
	ContactID  string          `json:"contact_id" gorm:"index:idx_contact_external,unique;not null"`
	ExternalID string          `json:"external_id" gorm:"index:idx_contact_external,unique;not null"`
	Kind       InteractionKind `json:"kind" gorm:"not null"`
	Subject    string          `json:"subject,omitempty"`
	OccurredAt time.Time       `json:"occurred_at" gorm:"index"`
	CreatedAt  time.Time       `json:"created_at"`
}
