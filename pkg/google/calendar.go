package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventRecord is a calendar event reduced to attendee matching data.
type EventRecord struct {
	ExternalID string
	Summary    string
	StartsAt   time.Time
	Attendees  []string
}

// ListEvents returns events on the primary calendar between from and to,
// excluding ones the user declined.
func (s *Service) ListEvents(ctx context.Context, accessToken, refreshToken string, from, to time.Time, onRefresh TokenUpdateFunc) ([]*EventRecord, error) {
	client := oauth2.NewClient(ctx, s.tokenSource(ctx, accessToken, refreshToken, onRefresh))
	srv, err := calendarapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	var records []*EventRecord
	pageToken := ""

	for {
		if err := s.wait(ctx); err != nil {
			return records, err
		}

		call := srv.Events.List("primary").
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(250)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			return records, fmt.Errorf("unable to list events: %w", err)
		}

		for _, ev := range resp.Items {
			record := convertEvent(ev)
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

func convertEvent(ev *calendarapi.Event) *EventRecord {
	if ev.Status == "cancelled" {
		return nil
	}

	var start time.Time
	if ev.Start != nil {
		if ev.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
				start = t
			}
		} else if ev.Start.Date != "" {
			if t, err := time.Parse("2006-01-02", ev.Start.Date); err == nil {
				start = t
			}
		}
	}
	if start.IsZero() {
		return nil
	}

	record := &EventRecord{
		ExternalID: ev.Id,
		Summary:    ev.Summary,
		StartsAt:   start,
	}

	for _, att := range ev.Attendees {
		if att.Self || att.ResponseStatus == "declined" {
			continue
		}
		addr := strings.ToLower(strings.TrimSpace(att.Email))
		if addr != "" {
			record.Attendees = append(record.Attendees, addr)
		}
	}

	return record
}
