package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/crowdtrust/backend/internal/models"
)

type contextKey string

const ctxRequestUserKey contextKey = "request_user"

// TokenValidator resolves a bearer token into a principal.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (models.RequestUser, error)
}

// ResolvePrincipal attaches the resolved principal to the request context.
// Requests without a (valid) token proceed as Anonymous; route guards decide
// what each principal type may do.
func ResolvePrincipal(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := models.RequestUser{UserType: models.UserTypeAnonymous}
			if raw := extractBearer(r); raw != "" {
				if resolved, err := validator.ValidateToken(r.Context(), raw); err == nil {
					principal = resolved
				}
			}
			ctx := context.WithValue(r.Context(), ctxRequestUserKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects principals that are not a signed-in User or Admin.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := RequestUserFrom(r.Context())
		if principal.UserType != models.UserTypeUser && principal.UserType != models.UserTypeAdmin {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone but Admin principals.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !RequestUserFrom(r.Context()).IsAdmin() {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestUserFrom returns the resolved principal; Anonymous when the
// middleware did not run.
func RequestUserFrom(ctx context.Context) models.RequestUser {
	if p, ok := ctx.Value(ctxRequestUserKey).(models.RequestUser); ok {
		return p
	}
	return models.RequestUser{UserType: models.UserTypeAnonymous}
}

// WithRequestUser returns a context carrying the given principal. Used in tests.
func WithRequestUser(ctx context.Context, principal models.RequestUser) context.Context {
	return context.WithValue(ctx, ctxRequestUserKey, principal)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
