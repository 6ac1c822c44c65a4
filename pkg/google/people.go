package google

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	peopleapi "google.golang.org/api/people/v1"
)

// PersonRecord is a Google contact reduced to the fields the CRM imports.
type PersonRecord struct {
	ResourceName string
	Name         string
	Emails       []string
	Company      string
	JobTitle     string
}

// ListContacts pages through the user's Google Contacts connections.
func (s *Service) ListContacts(ctx context.Context, accessToken, refreshToken string, onRefresh TokenUpdateFunc) ([]*PersonRecord, error) {
	client := oauth2.NewClient(ctx, s.tokenSource(ctx, accessToken, refreshToken, onRefresh))
	srv, err := peopleapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create People service: %w", err)
	}

	var records []*PersonRecord
	pageToken := ""

	for {
		if err := s.wait(ctx); err != nil {
			return records, err
		}

		call := srv.People.Connections.List("people/me").
			PersonFields("names,emailAddresses,organizations").
			PageSize(200)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			return records, fmt.Errorf("unable to list connections: %w", err)
		}

		for _, person := range resp.Connections {
			record := convertPerson(person)
			if record != nil {
				records = append(records, record)
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return records, nil
}

// convertPerson drops contacts without a name or email address — they cannot
// be matched to anything later.
func convertPerson(person *peopleapi.Person) *PersonRecord {
	record := &PersonRecord{ResourceName: person.ResourceName}

	for _, n := range person.Names {
		if n.DisplayName != "" {
			record.Name = n.DisplayName
			break
		}
	}

	for _, e := range person.EmailAddresses {
		addr := strings.ToLower(strings.TrimSpace(e.Value))
		if addr != "" {
			record.Emails = append(record.Emails, addr)
		}
	}

	for _, org := range person.Organizations {
		if record.Company == "" {
			record.Company = org.Name
		}
		if record.JobTitle == "" {
			record.JobTitle = org.Title
		}
	}

	if record.Name == "" && len(record.Emails) == 0 {
		return nil
	}
	if record.Name == "" {
		record.Name = record.Emails[0]
	}
	return record
}
