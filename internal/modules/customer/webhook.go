package customer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/platform/cache"
	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
	"github.com/georgemunganga/printa-apparel/internal/platform/metrics"
)

const (
	maxWebhookBody = 1 << 20
	deliveryTTL    = 24 * time.Hour
)

// errWebhookNotConfigured renders as a ServerError.
var errWebhookNotConfigured = errors.New("identity webhook secret is not configured")

// Identity provider event envelope and user payload.
type (
	event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	emailAddress struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	}

	userData struct {
		ID                    string         `json:"id"`
		EmailAddresses        []emailAddress `json:"email_addresses"`
		PrimaryEmailAddressID string         `json:"primary_email_address_id"`
		FirstName             *string        `json:"first_name"`
		LastName              *string        `json:"last_name"`
		Username              *string        `json:"username"`
	}
)

// primaryEmail returns the address flagged primary, else the first listed.
func (u userData) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID != "" && e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// displayName joins first and last name, falling back to the username.
func (u userData) displayName() *string {
	var parts []string
	for _, p := range []*string{u.FirstName, u.LastName} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	if len(parts) > 0 {
		name := strings.Join(parts, " ")
		return &name
	}
	if u.Username != nil && strings.TrimSpace(*u.Username) != "" {
		name := strings.TrimSpace(*u.Username)
		return &name
	}
	return nil
}

// WebhookHandler receives identity provider user events.
type WebhookHandler struct {
	service  Service
	verifier *svix.Webhook
	seen     cache.Deduper
}

// NewWebhookHandler creates the handler. With an empty secret every delivery
// is refused; a nil deduper processes every delivery.
func NewWebhookHandler(service Service, secret string, seen cache.Deduper) (*WebhookHandler, error) {
	h := &WebhookHandler{service: service, seen: seen}
	if secret != "" {
		wh, err := svix.NewWebhook(secret)
		if err != nil {
			return nil, err
		}
		h.verifier = wh
	}
	if h.seen == nil {
		h.seen = cache.NewDeduper(nil, "")
	}
	return h, nil
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/identity", h.receive) // POST /api/v1/webhooks/identity
}

func (h *WebhookHandler) receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		apperr.Write(w, r, apperr.Invalid("read body: %v", err))
		return
	}

	msgID := r.Header.Get("svix-id")
	if msgID == "" || r.Header.Get("svix-timestamp") == "" || r.Header.Get("svix-signature") == "" {
		apperr.Write(w, r, apperr.Invalid("missing webhook signature headers"))
		return
	}
	if h.verifier == nil {
		apperr.Write(w, r, errWebhookNotConfigured)
		return
	}
	if err := h.verifier.Verify(payload, r.Header); err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		apperr.Write(w, r, apperr.Invalid("invalid webhook signature"))
		return
	}

	var evt event
	if err := json.Unmarshal(payload, &evt); err != nil {
		apperr.Write(w, r, apperr.Invalid("malformed event: %v", err))
		return
	}

	dedupeKey := "identity-webhook:" + msgID
	first, err := h.seen.FirstSeen(ctx, dedupeKey, deliveryTTL)
	if err != nil {
		log.Warn("webhook dedupe unavailable", "error", err)
	} else if !first {
		metrics.WebhookEvents.WithLabelValues(evt.Type, "duplicate").Inc()
		respond(w, http.StatusOK, map[string]any{"ok": true, "duplicate": true})
		return
	}
	// A failed delivery must stay retryable.
	fail := func(err error) {
		metrics.WebhookEvents.WithLabelValues(evt.Type, "error").Inc()
		if ferr := h.seen.Forget(ctx, dedupeKey); ferr != nil {
			log.Warn("webhook dedupe forget failed", "error", ferr)
		}
		apperr.Write(w, r, err)
	}

	switch evt.Type {
	case "user.created", "user.updated":
		var u userData
		if err := json.Unmarshal(evt.Data, &u); err != nil {
			fail(apperr.Invalid("malformed user payload: %v", err))
			return
		}
		c, err := h.service.Provision(ctx, Profile{ExternalID: u.ID, Email: u.primaryEmail(), Name: u.displayName()})
		if err != nil {
			fail(err)
			return
		}
		metrics.WebhookEvents.WithLabelValues(evt.Type, "processed").Inc()
		respond(w, http.StatusOK, map[string]any{"ok": true, "id": c.ID})

	case "user.deleted":
		var u struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(evt.Data, &u); err != nil {
			fail(apperr.Invalid("malformed user payload: %v", err))
			return
		}
		if err := h.service.Remove(ctx, u.ID); err != nil {
			fail(err)
			return
		}
		metrics.WebhookEvents.WithLabelValues(evt.Type, "processed").Inc()
		respond(w, http.StatusOK, map[string]any{"ok": true})

	default:
		metrics.WebhookEvents.WithLabelValues("other", "ignored").Inc()
		respond(w, http.StatusOK, map[string]any{"ok": true})
	}
}
