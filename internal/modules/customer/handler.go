package customer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/auth"
)

// Handler exposes the signed-in customer's profile.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(auth.RequireUser).Get("/me", h.me) // GET /api/v1/me
}

// me returns the caller's customer record and where the storefront should
// send them after sign-in.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFrom(r.Context())
	c, err := h.service.Me(r.Context(), caller.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	redirect := "/account"
	if c.Role == RoleAdmin || caller.Admin {
		redirect = "/admin"
	}
	respond(w, http.StatusOK, map[string]any{"customer": c, "redirect": redirect})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
