package design

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/auth"
)

// Handler exposes design HTTP endpoints for customers and admins.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes mounts the routes on r. r must already run auth.Authenticate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Route("/designs", func(r chi.Router) {
			r.Post("/", h.create)                                  // POST   /api/v1/designs
			r.Get("/", h.latest)                                   // GET    /api/v1/designs?productId=
			r.Get("/mine", h.listMine)                             // GET    /api/v1/designs/mine
			r.Get("/{id}", h.get)                                  // GET    /api/v1/designs/{id}
			r.Delete("/{id}", h.delete)                            // DELETE /api/v1/designs/{id}
			r.Post("/{id}/placements", h.setPlacement)             // POST   /api/v1/designs/{id}/placements
			r.Patch("/{id}/placements/{side}", h.updateGeometry)   // PATCH  /api/v1/designs/{id}/placements/{side}
			r.Delete("/{id}/placements/{side}", h.removePlacement) // DELETE /api/v1/designs/{id}/placements/{side}
			r.Get("/{id}/quantities", h.getQuantities)             // GET    /api/v1/designs/{id}/quantities
			r.Put("/{id}/quantities", h.setQuantities)             // PUT    /api/v1/designs/{id}/quantities
			r.Post("/{id}/quantities", h.setQuantities)            // POST   /api/v1/designs/{id}/quantities
			r.Post("/{id}/submit", h.submit)                       // POST   /api/v1/designs/{id}/submit
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Route("/admin/designs", func(r chi.Router) {
			r.Get("/", h.adminList)                           // GET  /api/v1/admin/designs?status=submitted
			r.Post("/{id}/approve", h.approve)                // POST /api/v1/admin/designs/{id}/approve
			r.Post("/{id}/reject", h.reject)                  // POST /api/v1/admin/designs/{id}/reject
			r.Post("/{id}/request-changes", h.requestChanges) // POST /api/v1/admin/designs/{id}/request-changes
			r.Post("/{id}/comments", h.addComment)            // POST /api/v1/admin/designs/{id}/comments
		})
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.service.Create(r.Context(), actor(r), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{"design": d})
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Latest(r.Context(), actor(r), r.URL.Query().Get("productId"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"design": d})
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	designs, err := h.service.ListMine(r.Context(), actor(r))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"designs": designs})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"design": d})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) setPlacement(w http.ResponseWriter, r *http.Request) {
	var req PlacementRequest
	if !decode(w, r, &req) {
		return
	}
	p, d, err := h.service.SetPlacement(r.Context(), actor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"placement": p, "design": d})
}

func (h *Handler) updateGeometry(w http.ResponseWriter, r *http.Request) {
	var req GeometryRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdatePlacementGeometry(r.Context(), actor(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "side"), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"placement": p})
}

func (h *Handler) removePlacement(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.RemovePlacement(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "side"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"design": d})
}

func (h *Handler) getQuantities(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Quantities(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, quantitiesBody(v))
}

func (h *Handler) setQuantities(w http.ResponseWriter, r *http.Request) {
	var req QuantitiesRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.service.SetQuantities(r.Context(), actor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, quantitiesBody(v))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Submit(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"ok": true, "design": d})
}

// ── admin ────────────────────────────────────────────────────────────────────

func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	designs, err := h.service.AdminList(r.Context(), actor(r), r.URL.Query().Get("status"))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"designs": designs})
}

type reviewRequest struct {
	Note    string `json:"note"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Body    string `json:"body"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.service.Approve(r.Context(), actor(r), chi.URLParam(r, "id"), req.Note)
	h.reviewed(w, r, d, err)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.service.Reject(r.Context(), actor(r), chi.URLParam(r, "id"), req.Reason)
	h.reviewed(w, r, d, err)
}

func (h *Handler) requestChanges(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.service.RequestChanges(r.Context(), actor(r), chi.URLParam(r, "id"), req.Message)
	h.reviewed(w, r, d, err)
}

func (h *Handler) reviewed(w http.ResponseWriter, r *http.Request, d *Design, err error) {
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"ok": true, "id": d.ID, "status": d.Status})
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.service.AddComment(r.Context(), actor(r), chi.URLParam(r, "id"), req.Body)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{"ok": true, "comment": c})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func actor(r *http.Request) Actor {
	c, _ := auth.CallerFrom(r.Context())
	return Actor{UserID: c.ID, Admin: c.Admin}
}

func quantitiesBody(v *QuantitiesView) map[string]any {
	return map[string]any{"ok": true, "quantities": v.Quantities, "items": v.Items, "summary": v.Summary}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	apperr.Write(w, r, apperr.Invalid("malformed JSON body: %v", err))
	return false
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
