// Package enrich calls a Proxycurl-compatible profile API to pull public
// LinkedIn data for a contact.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// Profile is the subset of the vendor response the CRM maps onto a contact.
type Profile struct {
	FullName   string `json:"full_name"`
	Headline   string `json:"headline"`
	Occupation string `json:"occupation"`
	City       string `json:"city"`
	Country    string `json:"country_full_name"`
	Company    string `json:"-"`
	JobTitle   string `json:"-"`

	Experiences []struct {
		Company string `json:"company"`
		Title   string `json:"title"`
		EndsAt  *struct {
			Year int `json:"year"`
		} `json:"ends_at"`
	} `json:"experiences"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds the enrichment client. The vendor allows roughly 2 calls
// per second on the standard plan, so that's the default budget.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// LookupProfile fetches the public profile behind a LinkedIn URL.
func (c *Client) LookupProfile(ctx context.Context, linkedinURL string) (*Profile, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("enrichment API key not configured")
	}
	if linkedinURL == "" {
		return nil, fmt.Errorf("contact has no LinkedIn URL")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/linkedin?" + url.Values{"url": {linkedinURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("profile not found")
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("enrichment rate limit exceeded")
	default:
		return nil, fmt.Errorf("enrichment API error (%d): %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse enrichment response: %w", err)
	}

	// The current position is the experience entry without an end date.
	for _, exp := range profile.Experiences {
		if exp.EndsAt == nil {
			profile.Company = exp.Company
			profile.JobTitle = exp.Title
			break
		}
	}
	if profile.JobTitle == "" {
		profile.JobTitle = profile.Occupation
	}

	return &profile, nil
}
