package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)      // GET /api/v1/products
	r.Get("/products/{slug}", h.getProduct) // GET /api/v1/products/{slug}
	r.Get("/colors", h.listColors)          // GET /api/v1/colors
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"product": p})
}

func (h *Handler) listColors(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"colors": Palette})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
