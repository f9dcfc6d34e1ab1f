package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/fkhayef/dongsplit/internal/auth"
	"github.com/fkhayef/dongsplit/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ActorKey is the context key for the authenticated ActingUser
	ActorKey ContextKey = "actor"
)

// AuthMiddleware validates the bearer token and stores the ActingUser in the request context
func AuthMiddleware(validator *auth.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				response.Unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			actor := auth.ActingUser{ID: claims.UserID, Language: AcceptLanguage(r)}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// TestUserMiddleware allows setting the user via X-Test-User-ID header (DEV ONLY)
func TestUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get("X-Test-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			response.Unauthorized(w, "X-Test-User-ID header required")
			return
		}
		actor := auth.ActingUser{ID: userID, Language: AcceptLanguage(r)}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor returns a copy of ctx carrying actor
func WithActor(ctx context.Context, actor auth.ActingUser) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActor extracts the ActingUser from the request context
func GetActor(ctx context.Context) (auth.ActingUser, bool) {
	actor, ok := ctx.Value(ActorKey).(auth.ActingUser)
	return actor, ok
}

// AcceptLanguage returns the first language tag of Accept-Language, e.g. "fa" for "fa-IR,fa;q=0.9"
func AcceptLanguage(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(header, ",")[0])
	tag = strings.Split(tag, ";")[0]
	tag = strings.Split(tag, "-")[0]
	return strings.ToLower(tag)
}
