package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"certiva/pkg/apperrors"
	"certiva/pkg/platform/httputil"
)

// TokenValidator validates bearer tokens presented on protected routes.
type TokenValidator interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims is what the middleware needs from a validated token.
type TokenClaims struct {
	UserID        string
	Role          string
	Email         string
	InstitutionID string
}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID        string
	Role          string
	Email         string
	InstitutionID string
}

type contextKeyIdentity struct{}

// GetIdentity retrieves the authenticated caller from the context. The zero
// Identity means the request was not authenticated.
func GetIdentity(ctx context.Context) Identity {
	ident, _ := ctx.Value(contextKeyIdentity{}).(Identity)
	return ident
}

// WithIdentity attaches an identity to a context. Exported for handler tests.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity{}, ident)
}

// RequireAuth validates the Authorization bearer token and attaches the
// caller identity to the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.WriteError(w, apperrors.New(apperrors.CodeUnauthorized, "missing authorization header"))
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.WriteError(w, apperrors.New(apperrors.CodeUnauthorized, "authorization header must be a bearer token"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Debug("token validation failed", "error", err)
				httputil.WriteError(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:        claims.UserID,
				Role:          claims.Role,
				Email:         claims.Email,
				InstitutionID: claims.InstitutionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole narrows a protected route to the given roles. It assumes
// RequireAuth already ran.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := GetIdentity(r.Context())
			if _, ok := allowed[ident.Role]; !ok {
				httputil.WriteError(w, apperrors.New(apperrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
