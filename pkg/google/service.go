package google

import (
	"context"
	"log"
	"time"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

// TokenUpdateFunc persists a refreshed token. Wired to the integration row so
// refreshed access tokens survive restarts.
type TokenUpdateFunc func(*oauth2.Token) error

// Scopes requested per provider. All read-only: the CRM never mutates the
// user's mailbox, contacts or calendar.
var (
	ScopesGmail    = []string{"https://www.googleapis.com/auth/gmail.readonly"}
	ScopesContacts = []string{"https://www.googleapis.com/auth/contacts.readonly"}
	ScopesCalendar = []string{"https://www.googleapis.com/auth/calendar.readonly"}
)

// Service wraps the Google API clients used by sync. A shared limiter keeps
// the combined call rate under the vendor quota.
type Service struct {
	clientID     string
	clientSecret string
	limiter      *rate.Limiter

	// endpoint overrides the API base URL. Set in tests only.
	endpoint string
}

func NewService(clientID, clientSecret string, callsPerSecond float64) *Service {
	if callsPerSecond <= 0 {
		callsPerSecond = 5
	}
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		limiter:      rate.NewLimiter(rate.Limit(callsPerSecond), int(callsPerSecond)+1),
	}
}

// OAuthConfig builds the oauth2 config for the consent flow.
func (s *Service) OAuthConfig(redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint:     googleauth.Endpoint,
	}
}

// tokenSource builds a refreshing token source that reports refreshes
// through onRefresh.
func (s *Service) tokenSource(ctx context.Context, accessToken, refreshToken string, onRefresh TokenUpdateFunc) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	// Force a refresh attempt when we hold a refresh token so a stale access
	// token never reaches the API.
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     googleauth.Endpoint,
	}

	return &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: onRefresh,
	}
}

// wait blocks until the vendor-rate limiter releases a slot.
func (s *Service) wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// notifyTokenSource wraps an oauth2.TokenSource and invokes the callback when
// the underlying source hands back a different access token.
type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (n *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := n.src.Token()
	if err != nil {
		return nil, err
	}
	if n.callback != nil && n.current.AccessToken != t.AccessToken {
		n.current = t
		if err := n.callback(t); err != nil {
			log.Printf("[Google] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}
