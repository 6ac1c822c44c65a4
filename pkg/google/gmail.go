package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Address is a parsed mailbox from a message header.
type Address struct {
	Name  string
	Email string
}

// ThreadSummary is the slice of a Gmail thread the CRM keeps: enough to link
// it to a contact and render a timeline entry, nothing more.
type ThreadSummary struct {
	ExternalID    string
	Subject       string
	Snippet       string
	BodyHTML      string
	From          Address
	Participants  []Address
	MessageCount  int
	LastMessageAt time.Time
	Outbound      bool
}

// gmailClient builds the Gmail service for one user.
func (s *Service) gmailClient(ctx context.Context, accessToken, refreshToken string, onRefresh TokenUpdateFunc) (*gmailapi.Service, error) {
	client := oauth2.NewClient(ctx, s.tokenSource(ctx, accessToken, refreshToken, onRefresh))
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	srv, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// Profile returns the authenticated user's email address. Used to tell
// outbound threads from inbound ones and to validate tokens on connect.
func (s *Service) Profile(ctx context.Context, accessToken, refreshToken string, onRefresh TokenUpdateFunc) (string, error) {
	srv, err := s.gmailClient(ctx, accessToken, refreshToken, onRefresh)
	if err != nil {
		return "", err
	}

	if err := s.wait(ctx); err != nil {
		return "", err
	}
	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return "", fmt.Errorf("unable to fetch Gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// ListThreads pages through the user's threads newer than `after` and returns
// summaries, newest first, capped at maxThreads. The caller's email address is
// needed to classify thread direction.
func (s *Service) ListThreads(ctx context.Context, accessToken, refreshToken, selfEmail string, after time.Time, maxThreads int, onRefresh TokenUpdateFunc) ([]*ThreadSummary, error) {
	srv, err := s.gmailClient(ctx, accessToken, refreshToken, onRefresh)
	if err != nil {
		return nil, err
	}

	if maxThreads <= 0 {
		maxThreads = 200
	}

	query := fmt.Sprintf("after:%d", after.Unix())
	pageToken := ""
	summaries := make([]*ThreadSummary, 0, maxThreads)

	for len(summaries) < maxThreads {
		if err := s.wait(ctx); err != nil {
			return summaries, err
		}

		call := srv.Users.Threads.List("me").Q(query).MaxResults(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return summaries, fmt.Errorf("unable to list threads: %w", err)
		}

		for _, t := range resp.Threads {
			if len(summaries) >= maxThreads {
				break
			}

			if err := s.wait(ctx); err != nil {
				return summaries, err
			}
			full, err := srv.Users.Threads.Get("me", t.Id).Format("full").Context(ctx).Do()
			if err != nil {
				// Skip threads we cannot fetch; one flaky thread must not
				// fail the whole run.
				log.Printf("[Google] Unable to fetch thread %s, skipping: %v", t.Id, err)
				continue
			}

			summary := buildThreadSummary(full, selfEmail)
			if summary != nil {
				summaries = append(summaries, summary)
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return summaries, nil
}

func buildThreadSummary(thread *gmailapi.Thread, selfEmail string) *ThreadSummary {
	if len(thread.Messages) == 0 {
		return nil
	}

	last := thread.Messages[len(thread.Messages)-1]
	seen := make(map[string]bool)
	var participants []Address

	for _, msg := range thread.Messages {
		for _, header := range []string{"From", "To", "Cc"} {
			for _, addr := range parseAddressList(getHeader(msg.Payload, header)) {
				key := strings.ToLower(addr.Email)
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				participants = append(participants, addr)
			}
		}
	}

	from := parseAddress(getHeader(last.Payload, "From"))
	outbound := strings.EqualFold(from.Email, selfEmail)

	return &ThreadSummary{
		ExternalID:    thread.Id,
		Subject:       getHeader(last.Payload, "Subject"),
		Snippet:       last.Snippet,
		BodyHTML:      extractBody(last.Payload),
		From:          from,
		Participants:  participants,
		MessageCount:  len(thread.Messages),
		LastMessageAt: time.Unix(last.InternalDate/1000, 0),
		Outbound:      outbound,
	}
}

func getHeader(payload *gmailapi.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, header := range payload.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

// extractBody walks the MIME tree and returns the HTML part, falling back to
// plain text.
func extractBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(data)
		}
	}

	var htmlBody, plainBody string
	var walk func(parts []*gmailapi.MessagePart)
	walk = func(parts []*gmailapi.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err == nil {
					switch part.MimeType {
					case "text/html":
						htmlBody = string(data)
					case "text/plain":
						plainBody = string(data)
					}
				}
			}
			if len(part.Parts) > 0 {
				walk(part.Parts)
			}
		}
	}
	walk(payload.Parts)

	if htmlBody != "" {
		return htmlBody
	}
	return plainBody
}

// parseAddressList tolerates malformed headers: anything net/mail rejects is
// dropped rather than failing the whole thread.
func parseAddressList(header string) []Address {
	if header == "" {
		return nil
	}
	parsed, err := mail.ParseAddressList(header)
	if err != nil {
		if single := parseAddress(header); single.Email != "" {
			return []Address{single}
		}
		return nil
	}

	out := make([]Address, 0, len(parsed))
	for _, a := range parsed {
		out = append(out, Address{Name: a.Name, Email: strings.ToLower(a.Address)})
	}
	return out
}

func parseAddress(header string) Address {
	if header == "" {
		return Address{}
	}
	parsed, err := mail.ParseAddress(header)
	if err != nil {
		// Fall back to the raw token between angle brackets, if any.
		raw := header
		if i := strings.Index(raw, "<"); i >= 0 {
			if j := strings.Index(raw[i:], ">"); j > 0 {
				raw = raw[i+1 : i+j]
			}
		}
		raw = strings.TrimSpace(strings.ToLower(raw))
		if strings.Contains(raw, "@") {
			return Address{Email: raw}
		}
		return Address{}
	}
	return Address{Name: parsed.Name, Email: strings.ToLower(parsed.Address)}
}
