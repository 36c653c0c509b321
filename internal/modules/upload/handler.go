package upload

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/modules/auth"
)

// Handler exposes upload signing to signed-in users.
type Handler struct{ signer *Signer }

func NewHandler(signer *Signer) *Handler { return &Handler{signer: signer} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(auth.RequireUser).Post("/uploads/sign", h.sign) // POST /api/v1/uploads/sign
}

func (h *Handler) sign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Folder string `json:"folder"`
	}
	// A missing or unreadable body falls back to the default folder.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		req.Folder = ""
	}
	params, err := h.signer.Sign(req.Folder)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, params)
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
