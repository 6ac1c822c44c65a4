package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	contactdomain "netcrm-backend/internal/contact/domain"
	syncdomain "netcrm-backend/internal/sync/domain"
)

var ErrNoHeaderRow = errors.New("csv file has no header row")

// csvColumns maps recognized header names to canonical fields. Headers are
// matched case-insensitively with spaces and dashes treated as underscores.
var csvColumns = map[string]string{
	"name":          "name",
	"full_name":     "name",
	"email":         "email",
	"email_address": "email",
	"company":       "company",
	"organization":  "company",
	"job_title":     "job_title",
	"title":         "job_title",
	"position":      "job_title",
	"location":      "location",
	"city":          "location",
	"linkedin":      "linkedin_url",
	"linkedin_url":  "linkedin_url",
	"tags":          "tags",
	"notes":         "notes",
}

func (u *syncUsecase) ImportCSV(userID string, r io.Reader) (*syncdomain.ImportJob, error) {
	job := &syncdomain.ImportJob{
		UserID: userID,
		Kind:   syncdomain.ImportKindCSV,
	}
	if err := u.jobs.Create(job); err != nil {
		return nil, err
	}
	u.startJob(job)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		u.failJob(job, ErrNoHeaderRow)
		return job, ErrNoHeaderRow
	}

	columns := mapHeader(header)
	if _, hasName := columns["name"]; !hasName {
		if _, hasEmail := columns["email"]; !hasEmail {
			err := errors.New("csv header has neither a name nor an email column")
			u.failJob(job, err)
			return job, err
		}
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			job.AddError(fmt.Sprintf("line %d: %v", line, err))
			job.Skipped++
			continue
		}

		job.Total++
		if err := u.importCSVRow(userID, columns, row, job); err != nil {
			job.AddError(fmt.Sprintf("line %d: %v", line, err))
			job.Skipped++
		}
	}

	u.finishJob(job)
	u.metrics.RecordItemsUpserted("csv", job.Created+job.Updated)
	return job, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int)
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
		if field, ok := csvColumns[key]; ok {
			if _, taken := columns[field]; !taken {
				columns[field] = i
			}
		}
	}
	return columns
}

func cell(row []string, columns map[string]int, field string) string {
	i, ok := columns[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (u *syncUsecase) importCSVRow(userID string, columns map[string]int, row []string, job *syncdomain.ImportJob) error {
	name := cell(row, columns, "name")
	email := strings.ToLower(cell(row, columns, "email"))
	if name == "" && email == "" {
		return errors.New("row has neither name nor email")
	}
	if name == "" {
		name = email
	}

	var existing *contactdomain.Contact
	if email != "" {
		found, err := u.contactRepo.FindByEmail(userID, email)
		if err != nil {
			return err
		}
		existing = found
	}

	company := cell(row, columns, "company")
	jobTitle := cell(row, columns, "job_title")
	location := cell(row, columns, "location")
	linkedin := cell(row, columns, "linkedin_url")
	notes := cell(row, columns, "notes")
	tags := splitTags(cell(row, columns, "tags"))

	if existing == nil {
		contact := &contactdomain.Contact{
			UserID:      userID,
			Name:        name,
			Email:       email,
			Company:     company,
			JobTitle:    jobTitle,
			Location:    location,
			LinkedInURL: linkedin,
			Notes:       notes,
			Tags:        tags,
			Source:      "csv",
			Band:        contactdomain.BandCold,
		}
		if err := u.contactRepo.Create(contact); err != nil {
			return err
		}
		job.Created++
		return nil
	}

	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&existing.Company, company)
	fill(&existing.JobTitle, jobTitle)
	fill(&existing.Location, location)
	fill(&existing.LinkedInURL, linkedin)
	fill(&existing.Notes, notes)

	seen := make(map[string]bool)
	for _, t := range existing.Tags {
		seen[t] = true
	}
	for _, t := range tags {
		if !seen[t] {
			existing.Tags = append(existing.Tags, t)
			changed = true
		}
	}

	if !changed {
		job.Skipped++
		return nil
	}
	if err := u.contactRepo.Update(existing); err != nil {
		return err
	}
	job.Updated++
	return nil
}

// splitTags accepts semicolon, pipe or comma separated tag lists.
func splitTags(raw string) contactdomain.StringList {
	if raw == "" {
		return nil
	}
	raw = strings.NewReplacer(";", ",", "|", ",").Replace(raw)
	var tags contactdomain.StringList
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
