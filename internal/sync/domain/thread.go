package domain

import "time"

// EmailThread is a synced Gmail conversation linked to a contact. One row per
// thread per user; re-syncs update the row in place.
type EmailThread struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"index:idx_user_thread,unique;not null"`
	ExternalID    string    `json:"external_id" gorm:"index:idx_user_thread,unique;not null"`
	ContactID     string    `json:"contact_id" gorm:"index;not null"`
	Subject       string    `json:"subject"`
	Snippet       string    `json:"snippet"`
	BodyHTML      string    `json:"body_html,omitempty" gorm:"type:text"`
	MessageCount  int       `json:"message_count"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`
	Outbound      bool      `json:"outbound"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
