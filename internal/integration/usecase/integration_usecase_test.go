package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netcrm-backend/internal/integration/domain"
	"netcrm-backend/pkg/google"
)

type fakeIntegrationRepo struct {
	rows map[string]*domain.Integration
}

func newFakeIntegrationRepo() *fakeIntegrationRepo {
	return &fakeIntegrationRepo{rows: make(map[string]*domain.Integration)}
}

func key(userID string, provider domain.Provider) string {
	return userID + "/" + string(provider)
}

func (r *fakeIntegrationRepo) Upsert(i *domain.Integration) error {
	cp := *i
	r.rows[key(i.UserID, i.Provider)] = &cp
	return nil
}

func (r *fakeIntegrationRepo) FindByUserAndProvider(userID string, provider domain.Provider) (*domain.Integration, error) {
	i, ok := r.rows[key(userID, provider)]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *fakeIntegrationRepo) FindByUser(userID string) ([]*domain.Integration, error) {
	var out []*domain.Integration
	for _, i := range r.rows {
		if i.UserID == userID {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeIntegrationRepo) FindAllByProvider(provider domain.Provider) ([]*domain.Integration, error) {
	var out []*domain.Integration
	for _, i := range r.rows {
		if i.Provider == provider && i.Status == domain.StatusConnected {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeIntegrationRepo) UpdateTokens(id, accessToken, refreshToken string, expiry *time.Time) error {
	for _, i := range r.rows {
		if i.ID == id {
			i.AccessToken = accessToken
			if refreshToken != "" {
				i.RefreshToken = refreshToken
			}
			i.TokenExpiry = expiry
		}
	}
	return nil
}

func (r *fakeIntegrationRepo) MarkSynced(id string, at time.Time) error { return nil }

func (r *fakeIntegrationRepo) MarkError(id string, message string) error { return nil }

func (r *fakeIntegrationRepo) Delete(userID string, provider domain.Provider) error {
	delete(r.rows, key(userID, provider))
	return nil
}

func newTestUsecase() (IntegrationUsecase, *fakeIntegrationRepo) {
	repo := newFakeIntegrationRepo()
	svc := google.NewService("client-id", "client-secret", 5)
	return NewIntegrationUsecase(repo, svc, "http://localhost:8080/api/integrations/callback", "test-secret"), repo
}

func TestStartConnectBuildsConsentURL(t *testing.T) {
	uc, _ := newTestUsecase()

	url, err := uc.StartConnect("u1", domain.ProviderGmail)
	require.NoError(t, err)

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "prompt=consent")
	assert.Contains(t, url, "gmail.readonly")
	assert.Contains(t, url, "state=")
}

func TestStartConnectRejectsUnknownProvider(t *testing.T) {
	uc, _ := newTestUsecase()

	_, err := uc.StartConnect("u1", domain.Provider("facebook"))
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestStateRoundTrip(t *testing.T) {
	uc, _ := newTestUsecase()
	impl := uc.(*integrationUsecase)

	state, err := impl.signState("u1", domain.ProviderGoogleCalendar)
	require.NoError(t, err)

	userID, provider, err := impl.parseState(state)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, domain.ProviderGoogleCalendar, provider)
}

func TestParseStateRejectsTampering(t *testing.T) {
	uc, _ := newTestUsecase()
	impl := uc.(*integrationUsecase)

	state, err := impl.signState("u1", domain.ProviderGmail)
	require.NoError(t, err)

	tampered := state[:len(state)-4] + "AAAA"
	if tampered == state {
		tampered = state[:len(state)-4] + "BBBB"
	}
	_, _, err = impl.parseState(tampered)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, _, err = impl.parseState("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestParseStateRejectsForeignSecret(t *testing.T) {
	uc, _ := newTestUsecase()
	impl := uc.(*integrationUsecase)

	other := &integrationUsecase{stateSecret: "different-secret"}
	state, err := other.signState("u1", domain.ProviderGmail)
	require.NoError(t, err)

	_, _, err = impl.parseState(state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDisconnect(t *testing.T) {
	uc, repo := newTestUsecase()

	err := uc.Disconnect("u1", domain.ProviderGmail)
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, repo.Upsert(&domain.Integration{
		ID:       "i1",
		UserID:   "u1",
		Provider: domain.ProviderGmail,
		Status:   domain.StatusConnected,
	}))

	require.NoError(t, uc.Disconnect("u1", domain.ProviderGmail))

	got, err := repo.FindByUserAndProvider("u1", domain.ProviderGmail)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHandleCallbackRejectsBadState(t *testing.T) {
	uc, _ := newTestUsecase()

	_, err := uc.HandleCallback(t.Context(), "garbage", "code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStatusListsOnlyOwnIntegrations(t *testing.T) {
	uc, repo := newTestUsecase()

	require.NoError(t, repo.Upsert(&domain.Integration{ID: "i1", UserID: "u1", Provider: domain.ProviderGmail, Status: domain.StatusConnected}))
	require.NoError(t, repo.Upsert(&domain.Integration{ID: "i2", UserID: "u2", Provider: domain.ProviderGmail, Status: domain.StatusConnected}))

	list, err := uc.Status("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].UserID)
}
