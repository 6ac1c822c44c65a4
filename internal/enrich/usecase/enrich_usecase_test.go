package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactdomain "netcrm-backend/internal/contact/domain"
	contactrepo "netcrm-backend/internal/contact/repository"
	contactusecase "netcrm-backend/internal/contact/usecase"
	"netcrm-backend/pkg/enrich"
)

type fakeContactRepo struct {
	contacts map[string]*contactdomain.Contact
}

func (r *fakeContactRepo) Create(c *contactdomain.Contact) error {
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
	return nil, 0, nil
}

func (r *fakeContactRepo) FindAllByUser(userID string) ([]*contactdomain.Contact, error) {
	return nil, nil
}

func (r *fakeContactRepo) FindByEmail(userID, email string) (*contactdomain.Contact, error) {
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

type nopInteractionRepo struct{}

func (nopInteractionRepo) Upsert(i *contactdomain.Interaction) (bool, error) { return true, nil }
func (nopInteractionRepo) ListByContact(contactID string, limit, offset int) ([]*contactdomain.Interaction, int64, error) {
	return nil, 0, nil
}
func (nopInteractionRepo) CountSince(contactID string, since time.Time) (int, error) {
	return 0, nil
}
func (nopInteractionRepo) LatestByContact(contactID string) (*contactdomain.Interaction, error) {
	return nil, nil
}
func (nopInteractionRepo) RecentSubjects(contactID string, limit int) ([]string, error) {
	return nil, nil
}
func (nopInteractionRepo) ReassignContact(fromContactID, toContactID string) error { return nil }
func (nopInteractionRepo) DeleteByContact(contactID string) error                  { return nil }

func vendorResponse() map[string]interface{} {
	return map[string]interface{}{
		"full_name":         "Jane Doe",
		"headline":          "Building data platforms",
		"city":              "Berlin",
		"country_full_name": "Germany",
		"experiences": []map[string]interface{}{
			{"company": "OldCo", "title": "Engineer", "ends_at": map[string]int{"year": 2022}},
			{"company": "Acme", "title": "CTO", "ends_at": nil},
		},
	}
}

func newTestUsecase(t *testing.T, apiKey string) (EnrichUsecase, *fakeContactRepo, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/linkedin" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(vendorResponse())
	}))
	t.Cleanup(server.Close)

	repo := &fakeContactRepo{contacts: make(map[string]*contactdomain.Contact)}
	repo.Create(&contactdomain.Contact{
		ID:          "c1",
		UserID:      "u1",
		Name:        "Jane Doe",
		LinkedInURL: "https://linkedin.com/in/janedoe",
	})
	repo.Create(&contactdomain.Contact{
		ID:     "c2",
		UserID: "u1",
		Name:   "No LinkedIn",
	})

	contactUC := contactusecase.NewContactUsecase(repo, nopInteractionRepo{})
	client := enrich.NewClient(server.URL, apiKey)
	return NewEnrichUsecase(client, contactUC, repo), repo, server
}

func TestEnrichContactFillsEmptyFields(t *testing.T) {
	uc, repo, _ := newTestUsecase(t, "test-key")

	result, err := uc.EnrichContact(context.Background(), "u1", "c1")
	require.NoError(t, err)

	assert.ElementsMatch(t, result.FieldsUpdated, []string{"company", "job_title", "location", "notes"})

	stored, _ := repo.FindByID("c1")
	assert.Equal(t, "Acme", stored.Company, "current position comes from the open-ended experience")
	assert.Equal(t, "CTO", stored.JobTitle)
	assert.Equal(t, "Berlin, Germany", stored.Location)
	assert.Equal(t, "Building data platforms", stored.Notes)
}

func TestEnrichContactNeverOverwrites(t *testing.T) {
	uc, repo, _ := newTestUsecase(t, "test-key")

	existing, _ := repo.FindByID("c1")
	existing.Company = "HandEntered Inc"
	require.NoError(t, repo.Update(existing))

	result, err := uc.EnrichContact(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.NotContains(t, result.FieldsUpdated, "company")

	stored, _ := repo.FindByID("c1")
	assert.Equal(t, "HandEntered Inc", stored.Company)
}

func TestEnrichContactRequiresLinkedInURL(t *testing.T) {
	uc, _, _ := newTestUsecase(t, "test-key")

	_, err := uc.EnrichContact(context.Background(), "u1", "c2")
	assert.ErrorIs(t, err, ErrNoLinkedInURL)
}

func TestEnrichContactRequiresConfiguration(t *testing.T) {
	uc, _, _ := newTestUsecase(t, "")

	_, err := uc.EnrichContact(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEnrichContactEnforcesOwnership(t *testing.T) {
	uc, _, _ := newTestUsecase(t, "test-key")

	_, err := uc.EnrichContact(context.Background(), "u2", "c1")
	assert.ErrorIs(t, err, contactusecase.ErrNotOwner)
}
