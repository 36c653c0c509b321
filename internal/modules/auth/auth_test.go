package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

type stubRoles struct {
	admins map[string]bool
	err    error
	calls  int
}

func (s *stubRoles) IsAdmin(_ context.Context, externalID, _ string) (bool, error) {
	s.calls++
	return s.admins[externalID], s.err
}

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("secret", "printa")
	tok, err := v.Issue("user_1", "a@example.com", "Ada", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret", "printa")

	expired, err := v.Issue("user_1", "", "", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := NewVerifier("other", "printa").Issue("user_1", "", "", time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := NewVerifier("secret", "someone-else").Issue("user_1", "", "", time.Hour)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	_, err := NewVerifier("secret", "").Issue("", "", "", time.Hour)
	assert.Error(t, err)
}

func callerEcho(w http.ResponseWriter, r *http.Request) {
	c, ok := CallerFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if c.Admin {
		w.Header().Set("X-Admin", "1")
	}
	w.Header().Set("X-Caller", c.ID)
	w.WriteHeader(http.StatusOK)
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	v := NewVerifier("secret", "")
	roles := &stubRoles{admins: map[string]bool{"boss": true}}
	h := Authenticate(v, roles)(http.HandlerFunc(callerEcho))

	t.Run("anonymous passes through", func(t *testing.T) {
		rec := serve(h, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		rec := serve(h, "junk")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"Unauthorized"`)
	})

	t.Run("caller and role are resolved", func(t *testing.T) {
		tok, err := v.Issue("boss", "boss@example.com", "", time.Hour)
		require.NoError(t, err)
		rec := serve(h, tok)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "boss", rec.Header().Get("X-Caller"))
		assert.Equal(t, "1", rec.Header().Get("X-Admin"))
	})

	t.Run("resolver failure is a server error", func(t *testing.T) {
		failing := Authenticate(v, &stubRoles{err: errors.New("db down")})(http.HandlerFunc(callerEcho))
		tok, err := v.Issue("user_1", "", "", time.Hour)
		require.NoError(t, err)
		rec := serve(failing, tok)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestRequireGuards(t *testing.T) {
	v := NewVerifier("secret", "")
	roles := &stubRoles{admins: map[string]bool{"boss": true}}
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	user := Authenticate(v, roles)(RequireUser(ok))
	admin := Authenticate(v, roles)(RequireAdmin(ok))

	customerTok, err := v.Issue("user_1", "", "", time.Hour)
	require.NoError(t, err)
	adminTok, err := v.Issue("boss", "", "", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(user, "").Code)
	assert.Equal(t, http.StatusOK, serve(user, customerTok).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(admin, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(admin, customerTok).Code)
	assert.Equal(t, http.StatusOK, serve(admin, adminTok).Code)
}

func TestBearerParsing(t *testing.T) {
	for header, want := range map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		got, _ := bearer(req)
		assert.Equal(t, want, got, header)
	}
}
