package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"netcrm-backend/internal/integration/domain"
	"netcrm-backend/internal/integration/repository"
	"netcrm-backend/pkg/google"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrInvalidState      = errors.New("invalid or expired state")
	ErrNotConnected      = errors.New("integration not connected")
	ErrMissingAuthTokens = errors.New("provider returned no tokens")
)

type IntegrationUsecase interface {
	// StartConnect returns the consent URL the user must visit to link the
	// provider.
	StartConnect(userID string, provider domain.Provider) (string, error)
	// HandleCallback exchanges the authorization code from the consent
	// redirect and stores the resulting tokens.
	HandleCallback(ctx context.Context, state, code string) (*domain.Integration, error)
	Status(userID string) ([]*domain.Integration, error)
	Disconnect(userID string, provider domain.Provider) error
}

type integrationUsecase struct {
	repo        repository.IntegrationRepository
	google      *google.Service
	redirectURI string
	stateSecret string
}

func NewIntegrationUsecase(repo repository.IntegrationRepository, googleService *google.Service, redirectURI, stateSecret string) IntegrationUsecase {
	return &integrationUsecase{
		repo:        repo,
		google:      googleService,
		redirectURI: redirectURI,
		stateSecret: stateSecret,
	}
}

func scopesFor(provider domain.Provider) []string {
	switch provider {
	case domain.ProviderGmail:
		return google.ScopesGmail
	case domain.ProviderGoogleContacts:
		return google.ScopesContacts
	case domain.ProviderGoogleCalendar:
		return google.ScopesCalendar
	}
	return nil
}

func (u *integrationUsecase) StartConnect(userID string, provider domain.Provider) (string, error) {
	if !provider.Valid() {
		return "", ErrUnknownProvider
	}

	state, err := u.signState(userID, provider)
	if err != nil {
		return "", err
	}

	config := u.google.OAuthConfig(u.redirectURI, scopesFor(provider))
	// offline + consent forces Google to hand back a refresh token even on
	// re-link.
	url := config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return url, nil
}

func (u *integrationUsecase) HandleCallback(ctx context.Context, state, code string) (*domain.Integration, error) {
	userID, provider, err := u.parseState(state)
	if err != nil {
		return nil, ErrInvalidState
	}

	config := u.google.OAuthConfig(u.redirectURI, scopesFor(provider))
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, ErrMissingAuthTokens
	}

	integration := &domain.Integration{
		UserID:       userID,
		Provider:     provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Status:       domain.StatusConnected,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		integration.TokenExpiry = &expiry
	}

	if provider == domain.ProviderGmail {
		email, err := u.google.Profile(ctx, token.AccessToken, token.RefreshToken, nil)
		if err != nil {
			log.Printf("[Integration] Could not read Gmail profile: %v", err)
		} else {
			integration.AccountEmail = email
		}
	}

	if err := u.repo.Upsert(integration); err != nil {
		return nil, err
	}
	return integration, nil
}

func (u *integrationUsecase) Status(userID string) ([]*domain.Integration, error) {
	return u.repo.FindByUser(userID)
}

func (u *integrationUsecase) Disconnect(userID string, provider domain.Provider) error {
	if !provider.Valid() {
		return ErrUnknownProvider
	}
	existing, err := u.repo.FindByUserAndProvider(userID, provider)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotConnected
	}
	return u.repo.Delete(userID, provider)
}

// signState packs the user and provider into a short-lived token so the
// callback can be verified without server-side session storage.
func (u *integrationUsecase) signState(userID string, provider domain.Provider) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"provider": string(provider),
		"exp":      time.Now().Add(10 * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.stateSecret))
}

func (u *integrationUsecase) parseState(state string) (string, domain.Provider, error) {
	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(u.stateSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidState
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidState
	}
	userID, _ := claims["user_id"].(string)
	providerStr, _ := claims["provider"].(string)
	provider := domain.Provider(providerStr)
	if userID == "" || !provider.Valid() {
		return "", "", ErrInvalidState
	}
	return userID, provider, nil
}
