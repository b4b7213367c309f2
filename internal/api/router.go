package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Scorecard/internal/broker"
	"github.com/MikeSquared-Agency/Scorecard/internal/config"
	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

const maxBodyBytes = 32 << 20

// NewRouter builds the public API. h may be nil when events are disabled.
func NewRouter(s store.Store, h hermes.Client, b *broker.Broker, cats profile.Catalogues, rec ValidationRecorder, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))
	r.Use(chiMiddleware.RequestSize(maxBodyBytes))

	catalogue := NewCatalogueHandler(cats)
	profiles := NewProfilesHandler(s, h, b.Scorers(), cats, rec, logger)
	score := NewScoreHandler(b)
	admin := NewAdminHandler(s, b)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalogue/{family}", catalogue.List)
		r.Get("/catalogue/{family}/{name}", catalogue.Get)
		r.Post("/desirability/{name}/compute", catalogue.ComputeDesirability)
		r.Post("/aggregation/{name}/compute", catalogue.ComputeAggregation)

		r.Post("/profiles/validate", profiles.Validate)
		r.Post("/profiles", profiles.Create)
		r.Get("/profiles", profiles.List)
		r.Get("/profiles/{id}", profiles.Get)

		r.Post("/score", score.Score)
		r.Post("/score/explain", score.Explain)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Delete("/profiles/{id}", profiles.Delete)
			r.Get("/admin/stats", admin.Stats)
		})
	})

	return r
}

// NewMetricsRouter serves health and the metrics in g.
func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
