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

// GeminiService implements InsightService against the Gemini REST API.
type GeminiService struct {
	apiKey string
	model  string
	client *http.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  "gemini-2.5-flash",
		client: &http.Client{},
	}
}

func (g *GeminiService) GenerateIcebreakers(ctx context.Context, profile ContactProfile) ([]string, error) {
	prompt := fmt.Sprintf(`You help a user revive a professional relationship. Based on the contact data below, write exactly 3 short conversation openers the user could send. Each opener is one sentence, specific to the contact, no greetings like "Hi" and no placeholders.

Return ONLY a JSON array of 3 strings, nothing else.

CONTACT:
%s`, profileText(profile))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseStringArray(text)
}

func (g *GeminiService) SummarizeRelationship(ctx context.Context, profile ContactProfile) (string, error) {
	prompt := fmt.Sprintf(`Summarize the user's relationship with this contact in at most 2 sentences: who they are, how the relationship has developed, and whether it needs attention. Plain text only.

CONTACT:
%s`, profileText(profile))

	return g.generate(ctx, prompt)
}

func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", g.model, g.apiKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

// profileText renders the profile as labelled lines. Empty fields are omitted
// so the model is not tempted to invent values for them.
func profileText(p ContactProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if p.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", p.Company)
	}
	if p.JobTitle != "" {
		fmt.Fprintf(&b, "Title: %s\n", p.JobTitle)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	if p.LastInteraction != "" {
		fmt.Fprintf(&b, "Last interaction: %s\n", p.LastInteraction)
	}
	fmt.Fprintf(&b, "Total interactions: %d\n", p.InteractionCount)
	if len(p.RecentSubjects) > 0 {
		fmt.Fprintf(&b, "Recent email subjects: %s\n", strings.Join(p.RecentSubjects, "; "))
	}
	if p.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", p.Notes)
	}
	return b.String()
}

// parseStringArray extracts a JSON string array from model output, tolerating
// markdown fences and surrounding prose.
func parseStringArray(text string) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var items []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("model returned an empty list")
	}
	return out, nil
}
