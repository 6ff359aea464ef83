package middleware

import (
	"context"
	"net/http"
	"strings"

	"ae-triage-intake/pkg/jwt"
	"ae-triage-intake/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

type AuthMiddleware struct {
	jwtService *jwt.JWTService
}

func NewAuthMiddleware(jwtService *jwt.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate accepts only a session token issued for the session named
// in the {id} path variable.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		pathID, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			response.BadRequest(w, "Invalid session ID")
			return
		}
		if pathID != claims.SessionID {
			response.Forbidden(w, "Token does not belong to this session")
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, claims.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionIDFromContext extracts session ID from context
func GetSessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return sessionID, ok
}
