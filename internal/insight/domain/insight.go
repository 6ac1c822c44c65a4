package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Insight kinds.
const (
	KindIcebreakers = "icebreakers"
	KindSummary     = "summary"
)

// Insight statuses.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

// Lines stores generated suggestion lines as a JSON array in a text column.
type Lines []string

func (l Lines) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *Lines) Scan(value interface{}) error {
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
		return errors.New("unsupported type for Lines")
	}
}

// AIInsight caches generated content per contact and kind, so repeated views
// do not re-hit the model.
type AIInsight struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index;not null"`
	ContactID   string     `json:"contact_id" gorm:"index:idx_contact_kind,unique;not null"`
	Kind        string     `json:"kind" gorm:"index:idx_contact_kind,unique;not null"`
	Status      string     `json:"status" gorm:"default:pending"`
	Lines       Lines      `json:"lines,omitempty" gorm:"type:text"`
	Summary     string     `json:"summary,omitempty"`
	Error       string     `json:"error,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
