package ai

import "context"

// ContactProfile is the slice of CRM data handed to the model. Only fields
// the user already stores are included; nothing is fetched on demand.
type ContactProfile struct {
	Name             string   `json:"name"`
	Company          string   `json:"company,omitempty"`
	JobTitle         string   `json:"job_title,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	LastInteraction  string   `json:"last_interaction,omitempty"`
	RecentSubjects   []string `json:"recent_subjects,omitempty"`
	InteractionCount int      `json:"interaction_count"`
}

// InsightService generates relationship content from a contact profile.
// Implement this interface to add new providers (Gemini, Ollama, OpenAI, ...).
type InsightService interface {
	GenerateIcebreakers(ctx context.Context, profile ContactProfile) ([]string, error)
	SummarizeRelationship(ctx context.Context, profile ContactProfile) (string, error)
}

// ProviderType selects the backing model.
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
