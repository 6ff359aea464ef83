package middleware

import (
	"net/http"

	"ae-triage-intake/config"

	"github.com/go-chi/cors"
)

type CORSMiddleware struct {
	options cors.Options
}

func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &CORSMiddleware{
		options: cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			// The handoff download name is read by the ward UI
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		},
	}
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return cors.Handler(m.options)(next)
}
