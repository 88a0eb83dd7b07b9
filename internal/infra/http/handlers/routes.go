package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/metrics"
	"github.com/xavierca1/ligue-leads/internal/router"
)

type RouterConfig struct {
	Dispatcher     *router.Dispatcher
	Health         *HealthHandler
	Logger         zerolog.Logger
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter

	// TrustProxy liga o chi RealIP: o IP do cliente passa a vir de
	// X-Forwarded-For / X-Real-IP. Só com proxy confiável na frente.
	TrustProxy bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	cfg.Dispatcher.OnResult = func(route router.Route, status int) {
		metrics.RecordLeadOperation(route.String(), outcome(status))
	}
	leads := NewLeadHandler(cfg.Dispatcher)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
		MaxAge:             int((10 * time.Minute).Seconds()),
	}))

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}

		r.Get("/leads/{id}", leads.Route(router.KeyGetByID))
		r.Put("/leads/{id}", leads.Route(router.KeyConvertByID))
		r.Delete("/leads/{id}", leads.Route(router.KeyDeleteByID))
		r.Get("/leads", leads.Route(router.KeyListAll))
		r.Post("/leads", leads.Route(router.KeyCreate))
		r.Options("/*", leads.Unmatched)
	})

	r.NotFound(leads.Unmatched)
	r.MethodNotAllowed(leads.Unmatched)

	return r
}

func outcome(status int) string {
	switch {
	case status < 400:
		return "success"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status >= 500:
		return "error"
	default:
		return "invalid"
	}
}
