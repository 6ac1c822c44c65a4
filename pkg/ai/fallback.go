package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes to Gemini first and retries on Ollama when Gemini is
// unreachable or over quota.
type FallbackService struct {
	gemini InsightService
	ollama InsightService
}

func NewFallbackService(gemini, ollama InsightService) *FallbackService {
	return &FallbackService{gemini: gemini, ollama: ollama}
}

func (f *FallbackService) GenerateIcebreakers(ctx context.Context, profile ContactProfile) ([]string, error) {
	if f.gemini != nil {
		result, err := f.gemini.GenerateIcebreakers(ctx, profile)
		if err == nil {
			return result, nil
		}
		if isConnectionError(err) {
			log.Printf("[AI] Gemini unreachable: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini icebreakers failed: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.GenerateIcebreakers(ctx, profile)
		if err == nil {
			return result, nil
		}
		return nil, fmt.Errorf("ollama icebreakers failed: %w", err)
	}

	return nil, fmt.Errorf("no AI provider available")
}

func (f *FallbackService) SummarizeRelationship(ctx context.Context, profile ContactProfile) (string, error) {
	if f.gemini != nil {
		result, err := f.gemini.SummarizeRelationship(ctx, profile)
		if err == nil {
			return result, nil
		}
		if isConnectionError(err) {
			log.Printf("[AI] Gemini unreachable: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini summary failed: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.SummarizeRelationship(ctx, profile)
		if err == nil {
			return result, nil
		}
		return "", fmt.Errorf("ollama summary failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available")
}

// isConnectionError reports whether err looks like a network failure rather
// than a model-level rejection.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(net.Error); ok {
		return true
	}
	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{"connection refused", "no such host", "network is unreachable", "connection reset", "timeout", "dial tcp", "eof"} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
