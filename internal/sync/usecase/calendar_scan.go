package usecase

import (
	"context"
	"log"
	"time"

	contactdomain "netcrm-backend/internal/contact/domain"
	integrationdomain "netcrm-backend/internal/integration/domain"
	"netcrm-backend/pkg/google"
)

const (
	// calendarPastWindow is how far back meetings are turned into
	// interactions on each scan. Upserts keep repeat scans idempotent.
	calendarPastWindow = 30 * 24 * time.Hour
	// calendarFutureWindow is how far ahead to look for the next meeting.
	calendarFutureWindow = 60 * 24 * time.Hour
)

func (u *syncUsecase) ScanCalendar(ctx context.Context, userID string) (*SyncResult, error) {
	integration, err := u.connected(userID, integrationdomain.ProviderGoogleCalendar)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := u.scanCalendar(ctx, userID, integration)
	u.metrics.RecordSyncLatency("calendar", time.Since(start))
	if err != nil {
		u.metrics.RecordSyncFailure("calendar", "vendor_error")
		if markErr := u.integrations.MarkError(integration.ID, err.Error()); markErr != nil {
			log.Printf("[Sync] Failed to record calendar scan error: %v", markErr)
		}
		return nil, err
	}

	u.metrics.RecordSyncSuccess("calendar")
	if err := u.integrations.MarkSynced(integration.ID, time.Now()); err != nil {
		log.Printf("[Sync] Failed to stamp calendar scan time: %v", err)
	}
	return result, nil
}

func (u *syncUsecase) scanCalendar(ctx context.Context, userID string, integration *integrationdomain.Integration) (*SyncResult, error) {
	now := time.Now()
	from := now.Add(-calendarPastWindow)
	to := now.Add(calendarFutureWindow)

	u.metrics.RecordVendorCall("calendar")
	events, err := u.google.ListEvents(ctx, integration.AccessToken, integration.RefreshToken, from, to, u.tokenPersister(integration.ID))
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Provider: "calendar", EventsSeen: len(events)}
	touched := make(map[string]bool)
	// Earliest upcoming meeting per contact. Events arrive ordered by start
	// time, so the first future hit per contact wins.
	nextMeeting := make(map[string]time.Time)

	for _, event := range events {
		for _, attendee := range event.Attendees {
			// Only attendees already in the address book are matched; a
			// calendar invite alone does not create a contact.
			contact, err := u.contacts.ResolveByEmail(userID, attendee, "", "")
			if err != nil {
				return result, err
			}
			if contact == nil {
				continue
			}

			if event.StartsAt.After(now) {
				if _, ok := nextMeeting[contact.ID]; !ok {
					nextMeeting[contact.ID] = event.StartsAt
				}
				continue
			}

			if err := u.recordMeeting(userID, contact.ID, event); err != nil {
				return result, err
			}
			touched[contact.ID] = true
		}
	}

	for contactID := range touched {
		if _, err := u.contacts.RecomputeStrength(contactID, now); err != nil {
			log.Printf("[Sync] Strength recompute for %s failed: %v", contactID, err)
		}
	}

	for contactID, at := range nextMeeting {
		if err := u.stampNextMeeting(userID, contactID, at); err != nil {
			log.Printf("[Sync] Next-meeting stamp for %s failed: %v", contactID, err)
		}
		touched[contactID] = true
	}

	result.ContactsTouched = len(touched)
	u.metrics.RecordItemsUpserted("calendar", len(touched))
	return result, nil
}

func (u *syncUsecase) recordMeeting(userID, contactID string, event *google.EventRecord) error {
	_, err := u.interactions.Upsert(&contactdomain.Interaction{
		UserID:     userID,
		ContactID:  contactID,
		ExternalID: "calendar:" + event.ExternalID,
		Kind:       contactdomain.InteractionMeeting,
		Subject:    event.Summary,
		OccurredAt: event.StartsAt,
	})
	return err
}

func (u *syncUsecase) stampNextMeeting(userID, contactID string, at time.Time) error {
	contact, err := u.contactRepo.FindByID(contactID)
	if err != nil {
		return err
	}
	if contact == nil || contact.UserID != userID {
		return nil
	}
	if contact.NextMeetingAt != nil && contact.NextMeetingAt.Equal(at) {
		return nil
	}
	contact.NextMeetingAt = &at
	return u.contactRepo.Update(contact)
}
