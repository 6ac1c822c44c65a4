package domain

import "time"

// Provider identifies an external account type that can be linked.
type Provider string

const (
	ProviderGmail          Provider = "gmail"
	ProviderGoogleContacts Provider = "google_contacts"
	ProviderGoogleCalendar Provider = "google_calendar"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderGmail, ProviderGoogleContacts, ProviderGoogleCalendar:
		return true
	}
	return false
}

// Integration status values.
const (
	StatusConnected = "connected"
	StatusError     = "error"
)

// Integration is a linked external account. Tokens never leave the server:
// they are excluded from JSON and only used by the sync workers.
type Integration struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"index:idx_user_provider,unique;not null"`
	Provider     Provider   `json:"provider" gorm:"index:idx_user_provider,unique;not null"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenExpiry  *time.Time `json:"-"`
	AccountEmail string     `json:"account_email"`
	Status       string     `json:"status" gorm:"default:connected"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
