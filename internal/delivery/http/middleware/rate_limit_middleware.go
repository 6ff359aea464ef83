package middleware

import (
	"net/http"
	"time"

	"ae-triage-intake/pkg/response"

	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware throttles backend-bound requests per client IP.
type RateLimitMiddleware struct {
	limiter func(http.Handler) http.Handler
}

func NewRateLimitMiddleware(requestsPerMinute int, log *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: httprate.Limit(
			requestsPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				log.WithField("remote_addr", r.RemoteAddr).Warn("Triage rate limit exceeded")
				response.TooManyRequests(w, "Too many triage requests, try again shortly")
			}),
		),
	}
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return m.limiter(next)
}
