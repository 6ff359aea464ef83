package http

import (
	"net/http"

	"ae-triage-intake/internal/delivery/http/handler"
	"ae-triage-intake/internal/delivery/http/middleware"
	"ae-triage-intake/pkg/metrics"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	intakeHandler     *handler.IntakeHandler
	triageHandler     *handler.TriageHandler
	complaintHandler  *handler.ComplaintHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	metricsMiddleware *middleware.MetricsMiddleware
	triageRateLimit   *middleware.RateLimitMiddleware
	collector         *metrics.Collector
}

func NewRouter(
	intakeHandler *handler.IntakeHandler,
	triageHandler *handler.TriageHandler,
	complaintHandler *handler.ComplaintHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
	triageRateLimit *middleware.RateLimitMiddleware,
	collector *metrics.Collector,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		intakeHandler:     intakeHandler,
		triageHandler:     triageHandler,
		complaintHandler:  complaintHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
		metricsMiddleware: metricsMiddleware,
		triageRateLimit:   triageRateLimit,
		collector:         collector,
	}
}

// Setup registers every route. CORS wraps the whole mux so preflight
// requests are answered before route matching.
func (r *Router) Setup() http.Handler {
	r.router.Handle("/metrics", r.collector.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()
	api.Use(r.metricsMiddleware.Handle)

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Complaint catalog (public)
	api.HandleFunc("/complaints", r.complaintHandler.Browse).Methods(http.MethodGet)
	api.HandleFunc("/complaints/categories", r.complaintHandler.Categories).Methods(http.MethodGet)
	api.HandleFunc("/complaints/{code}", r.complaintHandler.GetComplaint).Methods(http.MethodGet)

	// Session start (public, returns the session token)
	api.HandleFunc("/sessions", r.intakeHandler.StartSession).Methods(http.MethodPost)

	// Session routes (protected by the session token)
	sessions := api.PathPrefix("/sessions/{id}").Subrouter()
	sessions.Use(r.authMiddleware.Authenticate)

	sessions.HandleFunc("", r.intakeHandler.GetSession).Methods(http.MethodGet)
	sessions.HandleFunc("", r.intakeHandler.EndSession).Methods(http.MethodDelete)

	sessions.HandleFunc("/details", r.intakeHandler.UpdateDetails).Methods(http.MethodPut)
	sessions.HandleFunc("/allergies/nka", r.intakeHandler.SetNoKnownAllergies).Methods(http.MethodPut)
	sessions.HandleFunc("/allergies", r.intakeHandler.AddAllergy).Methods(http.MethodPost)
	sessions.HandleFunc("/allergies/{index}", r.intakeHandler.RemoveAllergy).Methods(http.MethodDelete)
	sessions.HandleFunc("/medications", r.intakeHandler.AddMedication).Methods(http.MethodPost)
	sessions.HandleFunc("/medications/{index}", r.intakeHandler.RemoveMedication).Methods(http.MethodDelete)

	sessions.HandleFunc("/complaint", r.intakeHandler.SelectComplaint).Methods(http.MethodPut)
	sessions.HandleFunc("/complaint", r.intakeHandler.ResetComplaint).Methods(http.MethodDelete)

	sessions.HandleFunc("/symptoms", r.intakeHandler.GetSymptoms).Methods(http.MethodGet)
	sessions.HandleFunc("/symptoms", r.intakeHandler.UpdateSymptoms).Methods(http.MethodPut)
	sessions.HandleFunc("/symptoms", r.intakeHandler.ResetSymptoms).Methods(http.MethodDelete)

	sessions.HandleFunc("/advance", r.intakeHandler.Advance).Methods(http.MethodPost)
	sessions.HandleFunc("/back", r.intakeHandler.Back).Methods(http.MethodPost)

	// Triage suggestion (rate limited per client IP)
	sessions.Handle("/triage", r.triageRateLimit.Handle(http.HandlerFunc(r.triageHandler.RequestSuggestion))).Methods(http.MethodPost)
	sessions.HandleFunc("/triage/actions/accept-all", r.triageHandler.AcceptAll).Methods(http.MethodPost)
	sessions.HandleFunc("/triage/actions/{index}", r.triageHandler.ToggleAction).Methods(http.MethodPut)

	sessions.HandleFunc("/epr", r.triageHandler.SendToEPR).Methods(http.MethodPost)
	sessions.HandleFunc("/handoff.pdf", r.triageHandler.Handoff).Methods(http.MethodGet)

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
