// Package http exposes the scoring, session, visit and report services over
// a chi router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/handlers"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware settings needed to
// build the route tree. Nil handlers leave their routes unmounted.
type RouterConfig struct {
	ScoreHandler   *handlers.ScoreHandler
	SessionHandler *handlers.SessionHandler
	VisitHandler   *handlers.VisitHandler
	ReportHandler  *handlers.ReportHandler
	HealthHandler  *handlers.HealthHandler

	CORS    *middleware.CORSConfig
	Logging middleware.LoggingConfig

	Logger         logging.Logger
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(logger.Named("http"), cfg.Metrics, cfg.Logging))
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerScoreRoutes(api, cfg.ScoreHandler)
		registerSessionRoutes(api, cfg.SessionHandler)
		registerVisitRoutes(api, cfg.VisitHandler)
		registerReportRoutes(api, cfg.ReportHandler)
	})

	return r
}

func registerScoreRoutes(r chi.Router, h *handlers.ScoreHandler) {
	if h == nil {
		return
	}
	r.Get("/instruments", h.ListInstruments)
	r.Post("/scores/{instrument}", h.Score)
	r.Get("/forms", h.ListForms)
	r.Route("/forms/{formID}", func(fr chi.Router) {
		fr.Get("/", h.GetForm)
		fr.Post("/calculate", h.Calculate)
	})
}

// registerSessionRoutes mounts the form-reactive session endpoints. Sessions
// are started under their form.
func registerSessionRoutes(r chi.Router, h *handlers.SessionHandler) {
	if h == nil {
		return
	}
	r.Post("/forms/{formID}/sessions", h.Start)
	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.Get)
		sr.Post("/evaluate", h.Evaluate)
		sr.Post("/save", h.Save)
	})
}

func registerVisitRoutes(r chi.Router, h *handlers.VisitHandler) {
	if h == nil {
		return
	}
	r.Route("/families/{familyID}/visits", func(vr chi.Router) {
		vr.Get("/", h.List)
		vr.Post("/", h.Log)
	})
}

func registerReportRoutes(r chi.Router, h *handlers.ReportHandler) {
	if h == nil {
		return
	}
	r.Route("/students/{studentID}/report", func(rr chi.Router) {
		rr.Get("/", h.Get)
		rr.Post("/archive", h.Archive)
	})
}
