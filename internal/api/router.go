package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/marceloprado/transferdesk/internal/auth"
	"github.com/marceloprado/transferdesk/internal/metrics"
	"github.com/marceloprado/transferdesk/internal/modfilter"
	"github.com/marceloprado/transferdesk/internal/ratelimit"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Transfers TransferService
	Filter    *modfilter.Filter
	Limiter   *ratelimit.Limiter
	Verifier  *auth.Verifier
	Metrics   *metrics.Metrics
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(slogRequestLogger)
	r.Use(metricsMiddleware(deps.Metrics))

	// Handlers.
	transfers := newTransfersHandler(deps.Transfers, deps.Limiter, deps.Metrics)
	moderation := newModerationHandler(deps.Filter)

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Metrics endpoints.
	r.Handle("/metrics", deps.Metrics.PrometheusHandler())
	r.Get("/metrics/summary", deps.Metrics.SummaryHandler())

	// Service-authed API.
	r.Route("/api/v1", func(ar chi.Router) {
		ar.Use(auth.Middleware(deps.Verifier, deps.Metrics.AuthFailuresTotal.Inc))

		ar.Post("/offers", transfers.ProposeOffer)
		ar.Post("/offers/{userID}/resolve", transfers.ResolveOffer)
		ar.Post("/members/{userID}/dismiss", transfers.DismissMember)
		ar.Post("/members/{userID}/release", transfers.SelfRelease)
		ar.Get("/transfers", transfers.ListTransfers)

		ar.Post("/moderation/check", moderation.CheckMessage)
	})

	return r
}

// slogRequestLogger is a simple structured logging middleware using slog.
func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
		)
	})
}
