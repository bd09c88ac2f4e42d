package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-accounts-api/internal/config"
	"github.com/go-accounts-api/internal/domain"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider(&config.Config{
		JWTSecret:       "test-secret",
		SessionTokenTTL: time.Hour,
		ResetTokenTTL:   time.Minute,
	})
	require.NoError(t, err)
	return p
}

// stubUserLoader returns a fixed user per id.
type stubUserLoader struct {
	users map[string]*domain.User
}

func (s *stubUserLoader) Get(_ context.Context, userID string) (*domain.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuth_MissingHeader(t *testing.T) {
	p := newTestProvider(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserLoader{})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_BadToken(t *testing.T) {
	p := newTestProvider(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()
	Auth(p, &stubUserLoader{})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_UserGone(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.SignSession("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserLoader{})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_TokenNotCurrentSession(t *testing.T) {
	// A logout clears the stored token; an otherwise valid bearer is refused.
	p := newTestProvider(t)
	tok, err := p.SignSession("u1")
	require.NoError(t, err)

	loader := &stubUserLoader{users: map[string]*domain.User{
		"u1": {UserID: "u1", SessionToken: ""},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	Auth(p, loader)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ValidToken_InjectsUser(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.SignSession("u1")
	require.NoError(t, err)

	loader := &stubUserLoader{users: map[string]*domain.User{
		"u1": {UserID: "u1", Name: "Alice", SessionToken: tok},
	}}

	var gotUser *domain.User
	captureHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	Auth(p, loader)(captureHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, "Alice", gotUser.Name)
}
