// Package auth resolves the caller of a request from its bearer token and
// guards routes by role.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
)

// Caller is the authenticated user of a request.
type Caller struct {
	ID    string // identity provider user id
	Email string
	Name  string
	Admin bool
}

// RoleResolver decides whether a caller is an admin. Implementations may
// provision or promote the caller's customer record as a side effect.
type RoleResolver interface {
	IsAdmin(ctx context.Context, externalID, email string) (bool, error)
}

type ctxKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// CallerFrom returns the caller stored by Authenticate.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(Caller)
	return c, ok
}

// Authenticate reads an optional bearer token. Requests without one pass
// through anonymously; an invalid token is rejected with 401. When roles is
// non-nil the caller's admin flag is resolved on every authenticated request.
func Authenticate(v *Verifier, roles RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := v.Verify(token)
			if err != nil {
				apperr.Write(w, r, err)
				return
			}

			c := Caller{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
			if roles != nil {
				c.Admin, err = roles.IsAdmin(r.Context(), c.ID, c.Email)
				if err != nil {
					apperr.Write(w, r, fmt.Errorf("resolve role: %w", err))
					return
				}
			}

			ctx := WithCaller(r.Context(), c)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("user_id", c.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFrom(r.Context()); !ok {
			apperr.Write(w, r, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := CallerFrom(r.Context())
		if !ok {
			apperr.Write(w, r, apperr.ErrUnauthorized)
			return
		}
		if !c.Admin {
			apperr.Write(w, r, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
