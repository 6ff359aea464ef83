package middleware

import (
	"net/http"
	"strconv"
	"time"

	"ae-triage-intake/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

type MetricsMiddleware struct {
	collector *metrics.Collector
	log       *logrus.Logger
}

func NewMetricsMiddleware(collector *metrics.Collector, log *logrus.Logger) *MetricsMiddleware {
	return &MetricsMiddleware{
		collector: collector,
		log:       log,
	}
}

// routeLabel uses the matched route template so that session ids do not
// explode label cardinality.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func (m *MetricsMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.collector.InFlightGauge.Inc()
		defer m.collector.InFlightGauge.Dec()

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := routeLabel(r)
		status := strconv.Itoa(rec.statusCode)
		elapsed := time.Since(start)

		m.collector.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.collector.RequestDuration.WithLabelValues(r.Method, path, status).Observe(elapsed.Seconds())

		m.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     path,
			"status":   rec.statusCode,
			"duration": elapsed.String(),
		}).Debug("Request completed")
	})
}
