package usecase

import (
	"context"
	"log"
	"time"

	contactdomain "netcrm-backend/internal/contact/domain"
	integrationdomain "netcrm-backend/internal/integration/domain"
	syncdomain "netcrm-backend/internal/sync/domain"
	"netcrm-backend/pkg/google"
)

func (u *syncUsecase) ImportGoogleContacts(ctx context.Context, userID string) (*syncdomain.ImportJob, error) {
	integration, err := u.connected(userID, integrationdomain.ProviderGoogleContacts)
	if err != nil {
		return nil, err
	}

	job := &syncdomain.ImportJob{
		UserID: userID,
		Kind:   syncdomain.ImportKindGoogleContacts,
	}
	if err := u.jobs.Create(job); err != nil {
		return nil, err
	}

	u.startJob(job)
	start := time.Now()

	u.metrics.RecordVendorCall("google_contacts")
	records, err := u.google.ListContacts(ctx, integration.AccessToken, integration.RefreshToken, u.tokenPersister(integration.ID))
	u.metrics.RecordSyncLatency("google_contacts", time.Since(start))
	if err != nil {
		u.metrics.RecordSyncFailure("google_contacts", "vendor_error")
		u.failJob(job, err)
		if markErr := u.integrations.MarkError(integration.ID, err.Error()); markErr != nil {
			log.Printf("[Import] Failed to record contacts import error: %v", markErr)
		}
		return job, err
	}

	job.Total = len(records)
	for _, record := range records {
		if err := u.importPerson(userID, record, job); err != nil {
			job.AddError(record.Name + ": " + err.Error())
			job.Skipped++
		}
	}

	u.finishJob(job)
	u.metrics.RecordSyncSuccess("google_contacts")
	u.metrics.RecordItemsUpserted("google_contacts", job.Created+job.Updated)
	if err := u.integrations.MarkSynced(integration.ID, time.Now()); err != nil {
		log.Printf("[Import] Failed to stamp contacts import time: %v", err)
	}
	return job, nil
}

// importPerson merges one Google contact into the address book. Existing
// contacts (matched by email) get empty fields filled in; unknown addresses
// become new contacts.
func (u *syncUsecase) importPerson(userID string, record *google.PersonRecord, job *syncdomain.ImportJob) error {
	if len(record.Emails) == 0 {
		// Nothing to match on; importing would create guaranteed duplicates.
		job.Skipped++
		return nil
	}

	var existing *contactdomain.Contact
	for _, email := range record.Emails {
		found, err := u.contactRepo.FindByEmail(userID, email)
		if err != nil {
			return err
		}
		if found != nil {
			existing = found
			break
		}
	}

	if existing == nil {
		contact := &contactdomain.Contact{
			UserID:   userID,
			Name:     record.Name,
			Email:    record.Emails[0],
			Company:  record.Company,
			JobTitle: record.JobTitle,
			Source:   "google_contacts",
			Band:     contactdomain.BandCold,
		}
		if len(record.Emails) > 1 {
			contact.AltEmails = record.Emails[1:]
		}
		if err := u.contactRepo.Create(contact); err != nil {
			return err
		}
		job.Created++
		return nil
	}

	if !fillFromPerson(existing, record) {
		job.Skipped++
		return nil
	}
	if err := u.contactRepo.Update(existing); err != nil {
		return err
	}
	job.Updated++
	return nil
}

// fillFromPerson copies record data into empty fields and unions email
// addresses. Reports whether anything changed.
func fillFromPerson(contact *contactdomain.Contact, record *google.PersonRecord) bool {
	changed := false
	if contact.Company == "" && record.Company != "" {
		contact.Company = record.Company
		changed = true
	}
	if contact.JobTitle == "" && record.JobTitle != "" {
		contact.JobTitle = record.JobTitle
		changed = true
	}
	for _, email := range record.Emails {
		if !contact.HasEmail(email) {
			contact.AltEmails = append(contact.AltEmails, email)
			changed = true
		}
	}
	return changed
}

func (u *syncUsecase) startJob(job *syncdomain.ImportJob) {
	now := time.Now()
	job.Status = syncdomain.ImportStatusRunning
	job.StartedAt = &now
	if err := u.jobs.Update(job); err != nil {
		log.Printf("[Import] Failed to mark job %s running: %v", job.ID, err)
	}
}

func (u *syncUsecase) finishJob(job *syncdomain.ImportJob) {
	now := time.Now()
	job.Status = syncdomain.ImportStatusCompleted
	job.FinishedAt = &now
	if err := u.jobs.Update(job); err != nil {
		log.Printf("[Import] Failed to mark job %s completed: %v", job.ID, err)
	}
}

func (u *syncUsecase) failJob(job *syncdomain.ImportJob, cause error) {
	now := time.Now()
	job.Status = syncdomain.ImportStatusFailed
	job.FinishedAt = &now
	job.AddError(cause.Error())
	if err := u.jobs.Update(job); err != nil {
		log.Printf("[Import] Failed to mark job %s failed: %v", job.ID, err)
	}
}
