package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	SessionsStartedTotal prometheus.Counter
	SessionsEndedTotal   prometheus.Counter
	StageAdvancesTotal   *prometheus.CounterVec

	TriageResultsTotal     *prometheus.CounterVec
	BackendErrorsTotal     *prometheus.CounterVec
	BackendRequestDuration prometheus.Histogram

	ActionsAcceptedTotal prometheus.Counter
	EPRSubmissionsTotal  prometheus.Counter
}

// NewCollector registers every metric on its own registry so several
// collectors can coexist in one process.
func NewCollector(serviceName string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		SessionsStartedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "intake",
			Name:      "sessions_started_total",
			Help:      "Total intake sessions started.",
		}),

		SessionsEndedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "intake",
			Name:      "sessions_ended_total",
			Help:      "Total intake sessions explicitly ended.",
		}),

		StageAdvancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "intake",
			Name:      "stage_advances_total",
			Help:      "Advance attempts by stage and outcome (advanced or blocked).",
		}, []string{"stage", "outcome"}),

		TriageResultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "triage",
			Name:      "results_total",
			Help:      "Triage results produced by source and category.",
		}, []string{"source", "category"}),

		BackendErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "triage",
			Name:      "backend_errors_total",
			Help:      "Reasoning backend failures by kind. Each one triggered the fallback.",
		}, []string{"kind"}),

		BackendRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "triage",
			Name:      "backend_request_duration_seconds",
			Help:      "Reasoning backend call latency, failures included.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}),

		ActionsAcceptedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "triage",
			Name:      "actions_accepted_total",
			Help:      "Next actions marked accepted by a clinician.",
		}),

		EPRSubmissionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "epr",
			Name:      "submissions_total",
			Help:      "Handoffs of accepted actions to the patient record.",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
