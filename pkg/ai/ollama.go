package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaService implements InsightService against a local Ollama instance.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaService{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (o *OllamaService) GenerateIcebreakers(ctx context.Context, profile ContactProfile) ([]string, error) {
	prompt := fmt.Sprintf(`You help a user revive a professional relationship. Based on the contact data below, write exactly 3 short conversation openers the user could send. One sentence each, specific to the contact.

Return ONLY a JSON array of 3 strings.

CONTACT:
%s`, profileText(profile))

	text, err := o.generate(ctx, prompt, 200)
	if err != nil {
		return nil, err
	}
	return parseStringArray(text)
}

func (o *OllamaService) SummarizeRelationship(ctx context.Context, profile ContactProfile) (string, error) {
	prompt := fmt.Sprintf(`Summarize the user's relationship with this contact in at most 2 sentences. Plain text only.

CONTACT:
%s`, profileText(profile))

	return o.generate(ctx, prompt, 120)
}

func (o *OllamaService) generate(ctx context.Context, prompt string, numPredict int) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.4,
			"num_predict": numPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return strings.TrimSpace(result.Response), nil
}
