package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Import job kinds.
const (
	ImportKindCSV            = "csv"
	ImportKindGoogleContacts = "google_contacts"
	ImportKindGmailSync      = "gmail_sync"
)

// Import job statuses.
const (
	ImportStatusPending   = "pending"
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// maxStoredErrors caps the per-row error list so a garbage file cannot bloat
// the jobs table.
const maxStoredErrors = 50

// ErrorList stores per-row import errors as a JSON array in a text column.
type ErrorList []string

func (l ErrorList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *ErrorList) Scan(value interface{}) error {
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
		return errors.New("unsupported type for ErrorList")
	}
}

// ImportJob tracks one bulk import run and its counters.
type ImportJob struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	UserID     string     `json:"user_id" gorm:"index;not null"`
	Kind       string     `json:"kind" gorm:"not null"`
	Status     string     `json:"status" gorm:"default:pending"`
	Total      int        `json:"total"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Errors     ErrorList  `json:"errors,omitempty" gorm:"type:text"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AddError records a row failure, dropping errors past the cap.
func (j *ImportJob) AddError(msg string) {
	if len(j.Errors) < maxStoredErrors {
		j.Errors = append(j.Errors, msg)
	}
}
