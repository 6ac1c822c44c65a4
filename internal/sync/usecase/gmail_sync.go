package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	contactdomain "netcrm-backend/internal/contact/domain"
	integrationdomain "netcrm-backend/internal/integration/domain"
	syncdomain "netcrm-backend/internal/sync/domain"
	"netcrm-backend/pkg/google"
)

func (u *syncUsecase) SyncGmail(ctx context.Context, userID string) (*SyncResult, error) {
	integration, err := u.connected(userID, integrationdomain.ProviderGmail)
	if err != nil {
		return nil, err
	}
	settings, err := u.settingsFor(userID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, ErrSyncDisabled
	}

	job := &syncdomain.ImportJob{
		UserID: userID,
		Kind:   syncdomain.ImportKindGmailSync,
	}
	if err := u.jobs.Create(job); err != nil {
		return nil, err
	}
	u.startJob(job)

	start := time.Now()
	result, err := u.syncGmail(ctx, userID, integration, settings, job)
	u.metrics.RecordSyncLatency("gmail", time.Since(start))
	if err != nil {
		u.metrics.RecordSyncFailure("gmail", "vendor_error")
		u.failJob(job, err)
		if markErr := u.integrations.MarkError(integration.ID, err.Error()); markErr != nil {
			log.Printf("[Sync] Failed to record gmail sync error: %v", markErr)
		}
		return nil, err
	}

	u.finishJob(job)
	u.metrics.RecordSyncSuccess("gmail")
	if err := u.integrations.MarkSynced(integration.ID, time.Now()); err != nil {
		log.Printf("[Sync] Failed to stamp gmail sync time: %v", err)
	}
	return result, nil
}

func (u *syncUsecase) syncGmail(ctx context.Context, userID string, integration *integrationdomain.Integration, settings *syncdomain.SyncConfig, job *syncdomain.ImportJob) (*SyncResult, error) {
	onRefresh := u.tokenPersister(integration.ID)

	selfEmail := integration.AccountEmail
	if selfEmail == "" {
		u.metrics.RecordVendorCall("gmail")
		email, err := u.google.Profile(ctx, integration.AccessToken, integration.RefreshToken, onRefresh)
		if err != nil {
			return nil, err
		}
		selfEmail = email
	}

	since := sinceFor(integration, time.Now(), settings.LookbackDays)
	u.metrics.RecordVendorCall("gmail")
	summaries, err := u.google.ListThreads(ctx, integration.AccessToken, integration.RefreshToken, selfEmail, since, settings.MaxThreads, onRefresh)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Provider: "gmail", ThreadsSeen: len(summaries)}
	job.Total = len(summaries)
	touched := make(map[string]bool)

	for _, summary := range summaries {
		contact, err := u.linkThreadContact(userID, summary, selfEmail)
		if err != nil {
			log.Printf("[Sync] Skipping thread %s: %v", summary.ExternalID, err)
			job.AddError("thread " + summary.ExternalID + ": " + err.Error())
			job.Skipped++
			continue
		}
		if contact == nil {
			job.Skipped++
			continue
		}

		created, err := u.storeThread(userID, contact.ID, summary, settings.FullContent)
		if err != nil {
			return result, err
		}
		if created {
			result.ThreadsCreated++
			job.Created++
		} else {
			job.Updated++
		}

		if err := u.recordThreadInteraction(userID, contact.ID, summary); err != nil {
			return result, err
		}
		touched[contact.ID] = true
	}

	now := time.Now()
	for contactID := range touched {
		if _, err := u.contacts.RecomputeStrength(contactID, now); err != nil {
			log.Printf("[Sync] Strength recompute for %s failed: %v", contactID, err)
		}
	}

	result.ContactsTouched = len(touched)
	u.metrics.RecordItemsUpserted("gmail", result.ThreadsCreated)
	return result, nil
}

// linkThreadContact picks the counterpart of the thread and resolves it to a
// contact, creating one when the thread names the sender. Threads with no
// counterpart (self-mail, newsletters without a usable address) return nil.
func (u *syncUsecase) linkThreadContact(userID string, summary *google.ThreadSummary, selfEmail string) (*contactdomain.Contact, error) {
	counterpart := counterpartOf(summary, selfEmail)
	if counterpart.Email == "" {
		return nil, nil
	}
	return u.contacts.ResolveByEmail(userID, counterpart.Email, counterpart.Name, "gmail")
}

// counterpartOf prefers the sender of the latest inbound message, otherwise
// the first participant that is not the user.
func counterpartOf(summary *google.ThreadSummary, selfEmail string) google.Address {
	if !summary.Outbound && summary.From.Email != "" && !strings.EqualFold(summary.From.Email, selfEmail) {
		return summary.From
	}
	for _, p := range summary.Participants {
		if !strings.EqualFold(p.Email, selfEmail) {
			return p
		}
	}
	return google.Address{}
}

// storeThread upserts the thread row. With full-content retention off, only
// metadata (subject, counters, timestamps) is kept.
func (u *syncUsecase) storeThread(userID, contactID string, summary *google.ThreadSummary, fullContent bool) (bool, error) {
	thread := &syncdomain.EmailThread{
		UserID:        userID,
		ExternalID:    summary.ExternalID,
		ContactID:     contactID,
		Subject:       summary.Subject,
		MessageCount:  summary.MessageCount,
		LastMessageAt: summary.LastMessageAt,
		Outbound:      summary.Outbound,
	}

	if fullContent {
		snippet := summary.Snippet
		if snippet == "" {
			snippet = summary.BodyHTML
		}
		thread.Snippet = u.sanitizer.Snippet(snippet, snippetMaxRunes)
		thread.BodyHTML = u.sanitizer.HTML(summary.BodyHTML)
	}
	return u.threads.Upsert(thread)
}

// recordThreadInteraction writes one timeline entry per thread state. The
// external ID includes the last-message timestamp so a reply produces a new
// entry while a plain re-sync does not.
func (u *syncUsecase) recordThreadInteraction(userID, contactID string, summary *google.ThreadSummary) error {
	kind := contactdomain.InteractionEmailIn
	if summary.Outbound {
		kind = contactdomain.InteractionEmailOut
	}

	_, err := u.interactions.Upsert(&contactdomain.Interaction{
		UserID:     userID,
		ContactID:  contactID,
		ExternalID: fmt.Sprintf("gmail:%s:%d", summary.ExternalID, summary.LastMessageAt.Unix()),
		Kind:       kind,
		Subject:    summary.Subject,
		OccurredAt: summary.LastMessageAt,
	})
	return err
}
