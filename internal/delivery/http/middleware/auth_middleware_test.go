package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ae-triage-intake/config"
	"ae-triage-intake/pkg/jwt"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	jwtService := jwt.NewJWTService(config.SessionConfig{TTL: time.Hour, Secret: "test-secret"})
	auth := NewAuthMiddleware(jwtService)

	var seen uuid.UUID
	var bound bool
	r := mux.NewRouter()
	r.Handle("/sessions/{id}", auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, bound = GetSessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	serve := func(id, token string) int {
		req := httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("Binds Session To Context", func(t *testing.T) {
		id := uuid.New()
		token, _, err := jwtService.GenerateSessionToken(id)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, serve(id.String(), token))
		assert.True(t, bound)
		assert.Equal(t, id, seen)
	})

	t.Run("Malformed Path ID", func(t *testing.T) {
		token, _, err := jwtService.GenerateSessionToken(uuid.New())
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, serve("not-a-uuid", token))
	})

	t.Run("Wrong Session", func(t *testing.T) {
		bound = false
		token, _, err := jwtService.GenerateSessionToken(uuid.New())
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, serve(uuid.New().String(), token))
		assert.False(t, bound, "handler must not run")
	})

	t.Run("Bad Header Format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sessions/"+uuid.New().String(), nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Empty Context", func(t *testing.T) {
		_, ok := GetSessionIDFromContext(context.Background())
		assert.False(t, ok)
	})
}
