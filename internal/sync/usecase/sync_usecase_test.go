package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactdomain "netcrm-backend/internal/contact/domain"
	contactrepo "netcrm-backend/internal/contact/repository"
	contactusecase "netcrm-backend/internal/contact/usecase"
	integrationdomain "netcrm-backend/internal/integration/domain"
	syncdomain "netcrm-backend/internal/sync/domain"
	"netcrm-backend/internal/sync/dto"
	"netcrm-backend/pkg/google"
	"netcrm-backend/pkg/metrics"
	"netcrm-backend/pkg/sanitize"
)

// fakeGateway serves canned vendor responses.
type fakeGateway struct {
	profile string
	threads []*google.ThreadSummary
	people  []*google.PersonRecord
	events  []*google.EventRecord
	err     error
}

func (g *fakeGateway) Profile(ctx context.Context, accessToken, refreshToken string, onRefresh google.TokenUpdateFunc) (string, error) {
	return g.profile, g.err
}

func (g *fakeGateway) ListThreads(ctx context.Context, accessToken, refreshToken, selfEmail string, after time.Time, maxThreads int, onRefresh google.TokenUpdateFunc) ([]*google.ThreadSummary, error) {
	return g.threads, g.err
}

func (g *fakeGateway) ListContacts(ctx context.Context, accessToken, refreshToken string, onRefresh google.TokenUpdateFunc) ([]*google.PersonRecord, error) {
	return g.people, g.err
}

func (g *fakeGateway) ListEvents(ctx context.Context, accessToken, refreshToken string, from, to time.Time, onRefresh google.TokenUpdateFunc) ([]*google.EventRecord, error) {
	return g.events, g.err
}

type fakeIntegrationRepo struct {
	rows map[string]*integrationdomain.Integration
}

func newFakeIntegrationRepo() *fakeIntegrationRepo {
	return &fakeIntegrationRepo{rows: make(map[string]*integrationdomain.Integration)}
}

func intKey(userID string, provider integrationdomain.Provider) string {
	return userID + "/" + string(provider)
}

func (r *fakeIntegrationRepo) Upsert(i *integrationdomain.Integration) error {
	cp := *i
	r.rows[intKey(i.UserID, i.Provider)] = &cp
	return nil
}

func (r *fakeIntegrationRepo) FindByUserAndProvider(userID string, provider integrationdomain.Provider) (*integrationdomain.Integration, error) {
	i, ok := r.rows[intKey(userID, provider)]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *fakeIntegrationRepo) FindByUser(userID string) ([]*integrationdomain.Integration, error) {
	return nil, nil
}

func (r *fakeIntegrationRepo) FindAllByProvider(provider integrationdomain.Provider) ([]*integrationdomain.Integration, error) {
	var out []*integrationdomain.Integration
	for _, i := range r.rows {
		if i.Provider == provider {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeIntegrationRepo) UpdateTokens(id, accessToken, refreshToken string, expiry *time.Time) error {
	return nil
}

func (r *fakeIntegrationRepo) MarkSynced(id string, at time.Time) error {
	for _, i := range r.rows {
		if i.ID == id {
			t := at
			i.LastSyncAt = &t
			i.Status = integrationdomain.StatusConnected
			i.LastError = ""
		}
	}
	return nil
}

func (r *fakeIntegrationRepo) MarkError(id string, message string) error {
	for _, i := range r.rows {
		if i.ID == id {
			i.Status = integrationdomain.StatusError
			i.LastError = message
		}
	}
	return nil
}

func (r *fakeIntegrationRepo) Delete(userID string, provider integrationdomain.Provider) error {
	delete(r.rows, intKey(userID, provider))
	return nil
}

type fakeContactRepo struct {
	contacts map[string]*contactdomain.Contact
	nextID   int
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[string]*contactdomain.Contact)}
}

func (r *fakeContactRepo) Create(c *contactdomain.Contact) error {
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("c%d", r.nextID)
	}
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *fakeContactRepo) FindByID(id string) (*contactdomain.Contact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContactRepo) FindByUser(userID string, filter contactrepo.ListFilter) ([]*contactdomain.Contact, int64, error) {
	all, _ := r.FindAllByUser(userID)
	return all, int64(len(all)), nil
}

func (r *fakeContactRepo) FindAllByUser(userID string) ([]*contactdomain.Contact, error) {
	var out []*contactdomain.Contact
	for _, c := range r.contacts {
		if c.UserID == userID && !c.Archived {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) FindByEmail(userID, email string) (*contactdomain.Contact, error) {
	for _, c := range r.contacts {
		if c.UserID == userID && c.HasEmail(email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeContactRepo) Update(c *contactdomain.Contact) error {
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *fakeContactRepo) Delete(id string) error {
	delete(r.contacts, id)
	return nil
}

type fakeInteractionRepo struct {
	interactions []*contactdomain.Interaction
	nextID       int
}

func (r *fakeInteractionRepo) Upsert(i *contactdomain.Interaction) (bool, error) {
	for _, existing := range r.interactions {
		if existing.ContactID == i.ContactID && existing.ExternalID == i.ExternalID {
			return false, nil
		}
	}
	r.nextID++
	if i.ID == "" {
		i.ID = fmt.Sprintf("i%d", r.nextID)
	}
	if i.ExternalID == "" {
		i.ExternalID = fmt.Sprintf("ext%d", r.nextID)
	}
	cp := *i
	r.interactions = append(r.interactions, &cp)
	return true, nil
}

func (r *fakeInteractionRepo) ListByContact(contactID string, limit, offset int) ([]*contactdomain.Interaction, int64, error) {
	var out []*contactdomain.Interaction
	for _, i := range r.interactions {
		if i.ContactID == contactID {
			out = append(out, i)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeInteractionRepo) CountSince(contactID string, since time.Time) (int, error) {
	count := 0
	for _, i := range r.interactions {
		if i.ContactID == contactID && !i.OccurredAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeInteractionRepo) LatestByContact(contactID string) (*contactdomain.Interaction, error) {
	var latest *contactdomain.Interaction
	for _, i := range r.interactions {
		if i.ContactID != contactID {
			continue
		}
		if latest == nil || i.OccurredAt.After(latest.OccurredAt) {
			latest = i
		}
	}
	return latest, nil
}

func (r *fakeInteractionRepo) RecentSubjects(contactID string, limit int) ([]string, error) {
	return nil, nil
}

func (r *fakeInteractionRepo) ReassignContact(fromContactID, toContactID string) error {
	for _, i := range r.interactions {
		if i.ContactID == fromContactID {
			i.ContactID = toContactID
		}
	}
	return nil
}

func (r *fakeInteractionRepo) DeleteByContact(contactID string) error {
	return nil
}

type fakeThreadRepo struct {
	threads map[string]*syncdomain.EmailThread
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{threads: make(map[string]*syncdomain.EmailThread)}
}

func (r *fakeThreadRepo) Upsert(t *syncdomain.EmailThread) (bool, error) {
	key := t.UserID + "/" + t.ExternalID
	_, exists := r.threads[key]
	if t.ID == "" {
		t.ID = key
	}
	cp := *t
	r.threads[key] = &cp
	return !exists, nil
}

func (r *fakeThreadRepo) ListByContact(contactID string, limit, offset int) ([]*syncdomain.EmailThread, int64, error) {
	var out []*syncdomain.EmailThread
	for _, t := range r.threads {
		if t.ContactID == contactID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeThreadRepo) ReassignContact(fromContactID, toContactID string) error {
	for _, t := range r.threads {
		if t.ContactID == fromContactID {
			t.ContactID = toContactID
		}
	}
	return nil
}

func (r *fakeThreadRepo) DeleteByContact(contactID string) error {
	return nil
}

type fakeJobRepo struct {
	jobs   map[string]*syncdomain.ImportJob
	nextID int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*syncdomain.ImportJob)}
}

func (r *fakeJobRepo) Create(job *syncdomain.ImportJob) error {
	r.nextID++
	if job.ID == "" {
		job.ID = fmt.Sprintf("job%d", r.nextID)
	}
	if job.Status == "" {
		job.Status = syncdomain.ImportStatusPending
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) Update(job *syncdomain.ImportJob) error {
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) FindByID(id string) (*syncdomain.ImportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (r *fakeJobRepo) FindByUser(userID string, limit int) ([]*syncdomain.ImportJob, error) {
	var out []*syncdomain.ImportJob
	for _, job := range r.jobs {
		if job.UserID == userID {
			cp := *job
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSyncConfigRepo struct {
	configs map[string]*syncdomain.SyncConfig
}

func newFakeSyncConfigRepo() *fakeSyncConfigRepo {
	return &fakeSyncConfigRepo{configs: make(map[string]*syncdomain.SyncConfig)}
}

func (r *fakeSyncConfigRepo) FindByUser(userID string) (*syncdomain.SyncConfig, error) {
	c, ok := r.configs[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeSyncConfigRepo) Upsert(c *syncdomain.SyncConfig) error {
	cp := *c
	r.configs[c.UserID] = &cp
	return nil
}

type testEnv struct {
	sync         SyncUsecase
	gateway      *fakeGateway
	integrations *fakeIntegrationRepo
	contacts     *fakeContactRepo
	interactions *fakeInteractionRepo
	threads      *fakeThreadRepo
	jobs         *fakeJobRepo
	configs      *fakeSyncConfigRepo
}

func newTestEnv() *testEnv {
	gateway := &fakeGateway{profile: "me@example.com"}
	integrations := newFakeIntegrationRepo()
	contacts := newFakeContactRepo()
	interactions := &fakeInteractionRepo{}
	threads := newFakeThreadRepo()
	jobs := newFakeJobRepo()
	configs := newFakeSyncConfigRepo()

	contactUC := contactusecase.NewContactUsecase(contacts, interactions)
	syncUC := NewSyncUsecase(gateway, integrations, contactUC, contacts, interactions, threads, jobs, configs, sanitize.New(), metrics.Nop())

	return &testEnv{
		sync:         syncUC,
		gateway:      gateway,
		integrations: integrations,
		contacts:     contacts,
		interactions: interactions,
		threads:      threads,
		jobs:         jobs,
		configs:      configs,
	}
}

func (e *testEnv) connect(provider integrationdomain.Provider) {
	e.integrations.Upsert(&integrationdomain.Integration{
		ID:           "int-" + string(provider),
		UserID:       "u1",
		Provider:     provider,
		AccessToken:  "access",
		RefreshToken: "refresh",
		AccountEmail: "me@example.com",
		Status:       integrationdomain.StatusConnected,
	})
}

func TestSyncGmailRequiresIntegration(t *testing.T) {
	env := newTestEnv()

	_, err := env.sync.SyncGmail(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSyncGmailCreatesContactThreadAndInteraction(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGmail)

	lastMessage := time.Now().Add(-2 * time.Hour)
	env.gateway.threads = []*google.ThreadSummary{
		{
			ExternalID:    "t1",
			Subject:       "Coffee next week?",
			Snippet:       "Would love to catch up",
			BodyHTML:      "<p>Would love to catch up</p><script>evil()</script>",
			From:          google.Address{Name: "Jane Doe", Email: "jane@example.com"},
			Participants:  []google.Address{{Name: "Jane Doe", Email: "jane@example.com"}, {Email: "me@example.com"}},
			MessageCount:  2,
			LastMessageAt: lastMessage,
			Outbound:      false,
		},
	}

	result, err := env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.ThreadsSeen)
	assert.Equal(t, 1, result.ThreadsCreated)
	assert.Equal(t, 1, result.ContactsTouched)

	contact, err := env.contacts.FindByEmail("u1", "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, contact, "sender should become a contact")
	assert.Equal(t, "Jane Doe", contact.Name)
	assert.Equal(t, "gmail", contact.Source)
	assert.Greater(t, contact.Strength, 0.0, "strength recomputed after sync")

	threads, _, err := env.threads.ListByContact(contact.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.NotContains(t, threads[0].BodyHTML, "<script>", "body must be sanitized")
	assert.False(t, threads[0].Outbound)

	interactions, _, err := env.interactions.ListByContact(contact.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, contactdomain.InteractionEmailIn, interactions[0].Kind)
}

func TestSyncGmailIsIdempotent(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGmail)

	env.gateway.threads = []*google.ThreadSummary{
		{
			ExternalID:    "t1",
			Subject:       "Hello",
			From:          google.Address{Name: "Jane", Email: "jane@example.com"},
			Participants:  []google.Address{{Email: "jane@example.com"}},
			MessageCount:  1,
			LastMessageAt: time.Now().Add(-time.Hour).Truncate(time.Second),
		},
	}

	first, err := env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ThreadsCreated)

	second, err := env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.ThreadsCreated, "re-sync must not duplicate threads")

	contact, _ := env.contacts.FindByEmail("u1", "jane@example.com")
	interactions, _, _ := env.interactions.ListByContact(contact.ID, 0, 0)
	assert.Len(t, interactions, 1, "unchanged thread must not add interactions")
}

func TestSyncGmailReplyAddsInteraction(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGmail)

	base := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	thread := &google.ThreadSummary{
		ExternalID:    "t1",
		Subject:       "Hello",
		From:          google.Address{Name: "Jane", Email: "jane@example.com"},
		Participants:  []google.Address{{Email: "jane@example.com"}},
		MessageCount:  1,
		LastMessageAt: base,
	}
	env.gateway.threads = []*google.ThreadSummary{thread}

	_, err := env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)

	// A reply arrives: same thread, newer last message.
	thread.MessageCount = 2
	thread.LastMessageAt = base.Add(time.Hour)

	result, err := env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ThreadsCreated, "thread row is updated, not duplicated")

	contact, _ := env.contacts.FindByEmail("u1", "jane@example.com")
	interactions, _, _ := env.interactions.ListByContact(contact.ID, 0, 0)
	assert.Len(t, interactions, 2, "reply produces a second timeline entry")
}

func TestSyncGmailSkipsSelfOnlyThreads(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGmail)

	env.gateway.threads = []*google.ThreadSummary{
		{
			ExternalID:    "t1",
			Subject:       "Note to self",
			From:          google.Address{Email: "me@example.com"},
			Participants:  []google.Address{{Email: "me@example.com"}},
			MessageCount:  1,
			LastMessageAt: time.Now(),
			Outbound:      true,
		},
	}

	result, err := env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ThreadsCreated)
	assert.Equal(t, 0, result.ContactsTouched)
}

func TestSyncGmailTrackedAsJob(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGmail)

	env.gateway.threads = []*google.ThreadSummary{
		{
			ExternalID:    "t1",
			Subject:       "Hello",
			From:          google.Address{Name: "Jane", Email: "jane@example.com"},
			Participants:  []google.Address{{Email: "jane@example.com"}},
			MessageCount:  1,
			LastMessageAt: time.Now().Add(-time.Hour),
		},
		{
			ExternalID:    "t2",
			Subject:       "Note to self",
			From:          google.Address{Email: "me@example.com"},
			Participants:  []google.Address{{Email: "me@example.com"}},
			MessageCount:  1,
			LastMessageAt: time.Now(),
			Outbound:      true,
		},
	}

	_, err := env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)

	jobs, err := env.sync.ListImportJobs("u1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, syncdomain.ImportKindGmailSync, jobs[0].Kind)
	assert.Equal(t, syncdomain.ImportStatusCompleted, jobs[0].Status)
	assert.Equal(t, 2, jobs[0].Total)
	assert.Equal(t, 1, jobs[0].Created)
	assert.Equal(t, 1, jobs[0].Skipped, "self-only thread counts as skipped")
}

func TestSyncGmailHonorsDisabledConfig(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGmail)

	enabled := false
	_, err := env.sync.UpdateSyncConfig("u1", &dto.UpdateSyncConfigRequest{Enabled: &enabled})
	require.NoError(t, err)

	_, err = env.sync.SyncGmail(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrSyncDisabled)
}

func TestSyncGmailMetadataOnlyRetention(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGmail)

	fullContent := false
	_, err := env.sync.UpdateSyncConfig("u1", &dto.UpdateSyncConfigRequest{FullContent: &fullContent})
	require.NoError(t, err)

	env.gateway.threads = []*google.ThreadSummary{
		{
			ExternalID:    "t1",
			Subject:       "Quarterly numbers",
			Snippet:       "The figures look good",
			BodyHTML:      "<p>The figures look good</p>",
			From:          google.Address{Name: "Jane", Email: "jane@example.com"},
			Participants:  []google.Address{{Email: "jane@example.com"}},
			MessageCount:  1,
			LastMessageAt: time.Now().Add(-time.Hour),
		},
	}

	_, err = env.sync.SyncGmail(context.Background(), "u1")
	require.NoError(t, err)

	contact, _ := env.contacts.FindByEmail("u1", "jane@example.com")
	threads, _, err := env.threads.ListByContact(contact.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "Quarterly numbers", threads[0].Subject, "metadata is kept")
	assert.Empty(t, threads[0].Snippet, "content is dropped")
	assert.Empty(t, threads[0].BodyHTML)
}

func TestSyncConfigDefaultsAndUpdate(t *testing.T) {
	env := newTestEnv()

	config, err := env.sync.GetSyncConfig("u1")
	require.NoError(t, err)
	assert.True(t, config.Enabled)
	assert.True(t, config.FullContent)
	assert.Equal(t, syncdomain.DefaultLookbackDays, config.LookbackDays)
	assert.Equal(t, syncdomain.DefaultMaxThreads, config.MaxThreads)

	lookback := 30
	tooMany := 10000
	updated, err := env.sync.UpdateSyncConfig("u1", &dto.UpdateSyncConfigRequest{
		LookbackDays: &lookback,
		MaxThreads:   &tooMany,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.LookbackDays)
	assert.Equal(t, syncdomain.DefaultMaxThreads, updated.MaxThreads, "out-of-range values fall back")

	reread, err := env.sync.GetSyncConfig("u1")
	require.NoError(t, err)
	assert.Equal(t, 30, reread.LookbackDays)
}

func TestScanCalendarRecordsMeetingsAndNextMeeting(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGoogleCalendar)

	require.NoError(t, env.contacts.Create(&contactdomain.Contact{
		UserID: "u1",
		Name:   "Jane Doe",
		Email:  "jane@example.com",
	}))

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(72 * time.Hour)
	env.gateway.events = []*google.EventRecord{
		{ExternalID: "e1", Summary: "Catch-up", StartsAt: past, Attendees: []string{"jane@example.com"}},
		{ExternalID: "e2", Summary: "Planning", StartsAt: future, Attendees: []string{"jane@example.com"}},
		{ExternalID: "e3", Summary: "Stranger meeting", StartsAt: past, Attendees: []string{"stranger@example.com"}},
	}

	result, err := env.sync.ScanCalendar(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.EventsSeen)
	assert.Equal(t, 1, result.ContactsTouched)

	contact, _ := env.contacts.FindByEmail("u1", "jane@example.com")
	require.NotNil(t, contact.NextMeetingAt)
	assert.True(t, contact.NextMeetingAt.Equal(future))

	interactions, _, _ := env.interactions.ListByContact(contact.ID, 0, 0)
	require.Len(t, interactions, 1)
	assert.Equal(t, contactdomain.InteractionMeeting, interactions[0].Kind)
	assert.Equal(t, "Catch-up", interactions[0].Subject)

	// The stranger must not have been created as a contact.
	stranger, _ := env.contacts.FindByEmail("u1", "stranger@example.com")
	assert.Nil(t, stranger)
}

func TestImportGoogleContacts(t *testing.T) {
	env := newTestEnv()
	env.connect(integrationdomain.ProviderGoogleContacts)

	require.NoError(t, env.contacts.Create(&contactdomain.Contact{
		UserID: "u1",
		Name:   "Jane Doe",
		Email:  "jane@example.com",
	}))

	env.gateway.people = []*google.PersonRecord{
		{Name: "Jane Doe", Emails: []string{"jane@example.com"}, Company: "Acme", JobTitle: "CTO"},
		{Name: "New Person", Emails: []string{"new@example.com"}},
		{Name: "No Email"},
	}

	job, err := env.sync.ImportGoogleContacts(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, syncdomain.ImportStatusCompleted, job.Status)
	assert.Equal(t, 3, job.Total)
	assert.Equal(t, 1, job.Created)
	assert.Equal(t, 1, job.Updated)
	assert.Equal(t, 1, job.Skipped)

	jane, _ := env.contacts.FindByEmail("u1", "jane@example.com")
	assert.Equal(t, "Acme", jane.Company, "empty fields filled from import")
	assert.Equal(t, "CTO", jane.JobTitle)

	created, _ := env.contacts.FindByEmail("u1", "new@example.com")
	require.NotNil(t, created)
	assert.Equal(t, "google_contacts", created.Source)
}

func TestImportCSV(t *testing.T) {
	env := newTestEnv()

	require.NoError(t, env.contacts.Create(&contactdomain.Contact{
		UserID: "u1",
		Name:   "Jane Doe",
		Email:  "jane@example.com",
	}))

	csvData := strings.Join([]string{
		"Name,Email,Company,Tags",
		"Jane Doe,jane@example.com,Acme,work",
		"Bob Jones,bob@example.com,Globex,friends;conference",
		",,,",
	}, "\n")

	job, err := env.sync.ImportCSV("u1", strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, syncdomain.ImportStatusCompleted, job.Status)
	assert.Equal(t, 3, job.Total)
	assert.Equal(t, 1, job.Created)
	assert.Equal(t, 1, job.Updated)
	assert.Equal(t, 1, job.Skipped)
	require.Len(t, job.Errors, 1)
	assert.Contains(t, job.Errors[0], "neither name nor email")

	bob, _ := env.contacts.FindByEmail("u1", "bob@example.com")
	require.NotNil(t, bob)
	assert.Equal(t, "csv", bob.Source)
	assert.ElementsMatch(t, []string(bob.Tags), []string{"friends", "conference"})

	jane, _ := env.contacts.FindByEmail("u1", "jane@example.com")
	assert.Equal(t, "Acme", jane.Company)
	assert.ElementsMatch(t, []string(jane.Tags), []string{"work"})
}

func TestImportCSVRejectsUselessHeader(t *testing.T) {
	env := newTestEnv()

	_, err := env.sync.ImportCSV("u1", strings.NewReader("foo,bar\n1,2\n"))
	require.Error(t, err)

	jobs, _ := env.jobs.FindByUser("u1", 10)
	require.Len(t, jobs, 1)
	assert.Equal(t, syncdomain.ImportStatusFailed, jobs[0].Status)
}

func TestGetImportJobOwnership(t *testing.T) {
	env := newTestEnv()

	job := &syncdomain.ImportJob{UserID: "u1", Kind: syncdomain.ImportKindCSV}
	require.NoError(t, env.jobs.Create(job))

	got, err := env.sync.GetImportJob("u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = env.sync.GetImportJob("u2", job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(2, 8)

	results := make(chan int, 4)
	for i := 0; i < 4; i++ {
		i := i
		require.True(t, pool.Submit(func() { results <- i }))
	}

	pool.Stop()
	close(results)

	seen := make(map[int]bool)
	for i := range results {
		seen[i] = true
	}
	assert.Len(t, seen, 4)
}

func TestWorkerPoolRejectsWhenFull(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	defer pool.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	// Occupy the single worker and wait until it has dequeued the job.
	require.True(t, pool.Submit(func() { close(started); <-block }))
	<-started

	// One job fits in the queue, the next is rejected.
	assert.True(t, pool.Submit(func() {}))
	assert.False(t, pool.Submit(func() {}))
	close(block)
}
