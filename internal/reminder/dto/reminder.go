package dto

type CreateReminderRequest struct {
	ContactID  string `json:"contact_id"`
	Title      string `json:"title" binding:"required"`
	Notes      string `json:"notes"`
	DueAt      string `json:"due_at" binding:"required"` // RFC3339
	Recurrence string `json:"recurrence" binding:"omitempty,oneof=none weekly monthly quarterly"`
}

type UpdateReminderRequest struct {
	Title      *string `json:"title"`
	Notes      *string `json:"notes"`
	DueAt      *string `json:"due_at"`
	Recurrence *string `json:"recurrence" binding:"omitempty,oneof=none weekly monthly quarterly"`
}

type SnoozeRequest struct {
	Days int `json:"days" binding:"required,min=1,max=90"`
}
