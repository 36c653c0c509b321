package printarea

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// Handler serves the print-area catalog to the design editor.
type Handler struct{ catalog *Catalog }

func NewHandler(catalog *Catalog) *Handler { return &Handler{catalog: catalog} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/print-areas", h.list) // GET /api/v1/print-areas?side=front
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	side := Side(r.URL.Query().Get("side"))
	if side == "" {
		respond(w, http.StatusOK, map[string]any{"areas": h.catalog.All()})
		return
	}
	if !side.Valid() {
		apperr.Write(w, r, apperr.Invalid("unknown side %q", side))
		return
	}
	respond(w, http.StatusOK, map[string]any{"areas": h.catalog.AreasForSide(side)})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
