package domain

import "time"

// Recurrence controls how a completed reminder rolls forward.
type Recurrence string

const (
	RecurrenceNone      Recurrence = "none"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceMonthly, RecurrenceQuarterly:
		return true
	}
	return false
}

// Next returns the first occurrence after `after`, stepping from `due`.
// Stepping repeats so a reminder completed months late lands in the future
// instead of immediately firing again.
func (r Recurrence) Next(due, after time.Time) time.Time {
	next := due
	for !next.After(after) {
		switch r {
		case RecurrenceWeekly:
			next = next.AddDate(0, 0, 7)
		case RecurrenceMonthly:
			next = next.AddDate(0, 1, 0)
		case RecurrenceQuarterly:
			next = next.AddDate(0, 3, 0)
		default:
			return due
		}
	}
	return next
}

// Reminder is a follow-up the user asked for, optionally tied to a contact.
// Auto-generated stay-in-touch reminders set Auto so they can be told apart
// and not re-created after dismissal.
type Reminder struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index;not null"`
	ContactID   string     `json:"contact_id,omitempty" gorm:"index"`
	Title       string     `json:"title" gorm:"not null"`
	Notes       string     `json:"notes,omitempty"`
	DueAt       time.Time  `json:"due_at" gorm:"index;not null"`
	Recurrence  Recurrence `json:"recurrence" gorm:"default:none"`
	Auto        bool       `json:"auto" gorm:"default:false"`
	Done        bool       `json:"done" gorm:"default:false"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
