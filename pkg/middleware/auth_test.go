package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/dongsplit/internal/auth"
)

func actorEcho(t *testing.T, got *auth.ActingUser) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		require.True(t, ok)
		*got = actor
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	validator := auth.NewTokenValidator("secret")
	token, err := validator.Sign(7, time.Hour)
	require.NoError(t, err)

	var got auth.ActingUser
	h := AuthMiddleware(validator)(actorEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.8")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "fa", got.Language)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := auth.NewTokenValidator("secret")
	h := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	for name, header := range map[string]string{
		"missing":    "",
		"bad format": "Token abc",
		"bad token":  "Bearer not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestTestUserMiddleware(t *testing.T) {
	var got auth.ActingUser
	h := TestUserMiddleware(actorEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Test-User-ID", "3")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, "", got.Language)
}
