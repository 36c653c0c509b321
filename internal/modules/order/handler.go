package order

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/auth"
)

// Handler exposes checkout and order HTTP endpoints.
type Handler struct {
	service Service
	appURL  string
}

// NewHandler creates the handler. appURL is the storefront origin used when
// a request carries none.
func NewHandler(service Service, appURL string) *Handler {
	return &Handler{service: service, appURL: appURL}
}

// RegisterRoutes mounts the routes on r. r must already run auth.Authenticate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/checkout/design/{id}", h.checkout) // POST /api/v1/checkout/design/{id}
		r.Get("/orders", h.listMine)                // GET  /api/v1/orders
		r.Get("/orders/{id}", h.get)                // GET  /api/v1/orders/{id}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/admin/orders", h.adminList)                  // GET   /api/v1/admin/orders?status=PAID
		r.Patch("/admin/orders/{id}/status", h.updateStatus) // PATCH /api/v1/admin/orders/{id}/status
	})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFrom(r.Context())
	res, err := h.service.Checkout(r.Context(), caller, chi.URLParam(r, "id"), h.origin(r))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFrom(r.Context())
	orders, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFrom(r.Context())
	o, err := h.service.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"order": o})
}

func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.AdminList(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, r, apperr.Invalid("malformed JSON body: %v", err))
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"ok": true, "order": o})
}

// origin picks the storefront base URL: the Origin header, then the
// forwarded proto and host, then the configured app URL.
func (h *Handler) origin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return o
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto + "://" + r.Header.Get("X-Forwarded-Host")
	}
	return strings.TrimRight(h.appURL, "/")
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
