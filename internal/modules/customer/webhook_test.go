package customer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/georgemunganga/printa-apparel/internal/modules/auth"
	"github.com/georgemunganga/printa-apparel/internal/platform/cache"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type memDeduper struct{ keys map[string]bool }

func (d *memDeduper) FirstSeen(_ context.Context, key string, _ time.Duration) (bool, error) {
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}

func (d *memDeduper) Forget(_ context.Context, key string) error {
	delete(d.keys, key)
	return nil
}

func webhookRouter(t *testing.T, svc Service, secret string, seen cache.Deduper) http.Handler {
	t.Helper()
	h, err := NewWebhookHandler(svc, secret, seen)
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/api/v1", h.RegisterRoutes)
	return r
}

func post(h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signed(t *testing.T, msgID, body string) map[string]string {
	t.Helper()
	wh, err := svix.NewWebhook(testSecret)
	require.NoError(t, err)
	now := time.Now()
	sig, err := wh.Sign(msgID, now, []byte(body))
	require.NoError(t, err)
	return map[string]string{
		"svix-id":        msgID,
		"svix-timestamp": strconv.FormatInt(now.Unix(), 10),
		"svix-signature": sig,
	}
}

const createdEvent = `{"type":"user.created","data":{
	"id":"user_1",
	"primary_email_address_id":"e2",
	"email_addresses":[{"id":"e1","email_address":"old@example.com"},{"id":"e2","email_address":"ada@example.com"}],
	"first_name":"Ada","last_name":"Lovelace","username":"ada"}}`

func TestWebhookProvisionsCustomers(t *testing.T) {
	repo := newMemRepo()
	h := webhookRouter(t, NewService(repo, nil), testSecret, nil)
	deliver := func(id, body string) *httptest.ResponseRecorder {
		return post(h, body, signed(t, id, body))
	}

	rec := deliver("msg_1", createdEvent)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c := repo.byExternal["user_1"]
	assert.Equal(t, "ada@example.com", c.Email)
	require.NotNil(t, c.Name)
	assert.Equal(t, "Ada Lovelace", *c.Name)
	assert.Equal(t, RoleAdmin, c.Role)

	rec = deliver("msg_2", `{"type":"user.created","data":{"id":"user_2","username":"bob"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	bob := repo.byExternal["user_2"]
	assert.Equal(t, RoleCustomer, bob.Role)
	assert.Equal(t, "user_2@example.invalid", bob.Email)
	require.NotNil(t, bob.Name)
	assert.Equal(t, "bob", *bob.Name)

	rec = deliver("msg_3", `{"type":"user.updated","data":{"id":"user_1","email_addresses":[{"id":"x","email_address":"new@example.com"}]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new@example.com", repo.byExternal["user_1"].Email)
	assert.Equal(t, RoleAdmin, repo.byExternal["user_1"].Role)

	rec = deliver("msg_4", `{"type":"user.deleted","data":{"id":"user_2"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, repo.byExternal, "user_2")

	rec = deliver("msg_5", `{"type":"session.created","data":{}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = deliver("msg_6", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	for _, secret := range []string{testSecret, ""} {
		repo := newMemRepo()
		svc := NewService(repo, nil)
		_, err := svc.Provision(context.Background(), Profile{ExternalID: "user_admin"})
		require.NoError(t, err)
		h := webhookRouter(t, svc, secret, nil)

		body := `{"type":"user.deleted","data":{"id":"user_admin"}}`
		rec := post(h, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		partial := signed(t, "msg_1", body)
		delete(partial, "svix-signature")
		rec = post(h, body, partial)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		assert.Contains(t, repo.byExternal, "user_admin")
	}
}

func TestWebhookWithoutSecretFailsClosed(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	_, err := svc.Provision(context.Background(), Profile{ExternalID: "user_admin"})
	require.NoError(t, err)
	h := webhookRouter(t, svc, "", nil)

	body := `{"type":"user.deleted","data":{"id":"user_admin"}}`
	rec := post(h, body, signed(t, "msg_1", body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	_, err = svc.Me(context.Background(), "user_admin")
	assert.NoError(t, err)
}

func TestWebhookVerifiesSignature(t *testing.T) {
	repo := newMemRepo()
	h := webhookRouter(t, NewService(repo, nil), testSecret, nil)

	rec := post(h, createdEvent, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	headers := signed(t, "msg_1", createdEvent)
	tampered := strings.Replace(createdEvent, "Ada", "Eve", 1)
	rec = post(h, tampered, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.byExternal)

	rec = post(h, createdEvent, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, repo.byExternal, "user_1")
}

func TestWebhookSkipsDuplicateDeliveries(t *testing.T) {
	repo := newMemRepo()
	seen := &memDeduper{keys: map[string]bool{}}
	h := webhookRouter(t, NewService(repo, nil), testSecret, seen)

	headers := signed(t, "msg_1", createdEvent)
	require.Equal(t, http.StatusOK, post(h, createdEvent, headers).Code)

	delete(repo.byExternal, "user_1")
	rec := post(h, createdEvent, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["duplicate"])
	assert.NotContains(t, repo.byExternal, "user_1")
}

func TestWebhookFailureStaysRetryable(t *testing.T) {
	repo := newMemRepo()
	repo.failCreate = assert.AnError
	seen := &memDeduper{keys: map[string]bool{}}
	h := webhookRouter(t, NewService(repo, nil), testSecret, seen)

	headers := signed(t, "msg_9", createdEvent)
	rec := post(h, createdEvent, headers)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, seen.keys)

	repo.failCreate = nil
	rec = post(h, createdEvent, headers)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, repo.byExternal, "user_1")
}

func TestMeReportsRedirect(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	_, err := svc.Provision(ctx, Profile{ExternalID: "admin_1"})
	require.NoError(t, err)
	_, err = svc.Provision(ctx, Profile{ExternalID: "user_1"})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1", NewHandler(svc).RegisterRoutes)

	me := func(id string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if id != "" {
			req = req.WithContext(auth.WithCaller(req.Context(), auth.Caller{ID: id}))
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body
	}

	code, body := me("admin_1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/admin", body["redirect"])

	code, body = me("user_1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/account", body["redirect"])

	code, _ = me("")
	assert.Equal(t, http.StatusUnauthorized, code)
}
