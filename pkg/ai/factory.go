package ai

import "fmt"

// Config holds AI provider configuration.
type Config struct {
	Provider ProviderType

	GeminiAPIKey string

	OllamaBaseURL string
	OllamaModel   string
}

// NewInsightService is the provider factory. "auto" wires both providers with
// Gemini preferred and Ollama as the fallback.
func NewInsightService(cfg Config) (InsightService, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiService(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		if cfg.GeminiAPIKey == "" {
			return ollama, nil
		}
		return NewFallbackService(NewGeminiService(cfg.GeminiAPIKey), ollama), nil
	}
}
