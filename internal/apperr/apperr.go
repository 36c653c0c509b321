// Package apperr holds the error taxonomy shared by every module and its
// mapping onto HTTP responses.
package apperr

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnknownArea      = errors.New("unknown print area")
	ErrSideAreaMismatch = errors.New("print area does not belong to side")
	ErrUnknownSize      = errors.New("unknown size")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrEmptyDesign      = errors.New("design has no placements")
	ErrEmptyCart        = errors.New("no quantities to check out")
	ErrMissingReason    = errors.New("reason is required")
	ErrUndeletable      = errors.New("design cannot be deleted")
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type kind struct {
	err    error
	name   string
	status int
}

var kinds = []kind{
	{ErrUnauthorized, "Unauthorized", http.StatusUnauthorized},
	{ErrForbidden, "Forbidden", http.StatusForbidden},
	{ErrNotFound, "NotFound", http.StatusNotFound},
	{ErrAlreadyExists, "AlreadyExists", http.StatusConflict},
	{ErrInvalidState, "InvalidState", http.StatusConflict},
	{ErrUndeletable, "Undeletable", http.StatusConflict},
	{ErrUnknownArea, "UnknownArea", http.StatusBadRequest},
	{ErrSideAreaMismatch, "SideAreaMismatch", http.StatusBadRequest},
	{ErrUnknownSize, "UnknownSize", http.StatusBadRequest},
	{ErrInvalidQuantity, "InvalidQuantity", http.StatusBadRequest},
	{ErrEmptyDesign, "EmptyDesign", http.StatusBadRequest},
	{ErrEmptyCart, "EmptyCart", http.StatusBadRequest},
	{ErrMissingReason, "MissingReason", http.StatusBadRequest},
	{ErrInvalidInput, "InvalidInput", http.StatusBadRequest},
}

// Kind returns the stable name of the error's kind, or "ServerError".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "ServerError"
}

// Status returns the HTTP status for err.
func Status(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Invalid wraps ErrInvalidInput with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// FromDB translates driver errors into the taxonomy. Unknown errors pass
// through unchanged.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrAlreadyExists, pqErr.Constraint)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pqErr.Constraint)
		}
	}
	return err
}

// Write renders err as {error, kind}. Server errors are logged and their
// message replaced.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		msg = "server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "kind": Kind(err)})
}
