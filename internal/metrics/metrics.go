package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric collectors for transferdesk.
type Metrics struct {
	registry *prometheus.Registry

	// Transfer state machine.
	TransfersTotal     *prometheus.CounterVec
	OfferOutcomesTotal *prometheus.CounterVec
	OffersActive       prometheus.Gauge

	// Best-effort side channels.
	AnnounceFailuresTotal prometheus.Counter
	NotifyFailuresTotal   prometheus.Counter

	// HTTP surface.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth and rate limiting.
	AuthFailuresTotal        prometheus.Counter
	RateLimitRejectionsTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		TransfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_transfers_total",
			Help: "Total number of completed transfers by action.",
		}, []string{"action"}),

		OfferOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_offer_outcomes_total",
			Help: "Total number of offer lifecycle outcomes.",
		}, []string{"outcome"}),

		OffersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transferdesk_offers_active",
			Help: "Number of currently pending offers.",
		}),

		AnnounceFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transferdesk_announce_failures_total",
			Help: "Total number of failed transfer-channel announcements.",
		}),

		NotifyFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transferdesk_notify_failures_total",
			Help: "Total number of failed direct notifications.",
		}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transferdesk_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transferdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		AuthFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transferdesk_auth_failures_total",
			Help: "Total number of rejected service-token authentications.",
		}),

		RateLimitRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transferdesk_ratelimit_rejections_total",
			Help: "Total number of rate-limited offer proposals.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transferdesk_server_start_time_seconds",
			Help: "Unix timestamp of server start.",
		}),
	}

	reg.MustRegister(
		m.TransfersTotal,
		m.OfferOutcomesTotal,
		m.OffersActive,
		m.AnnounceFailuresTotal,
		m.NotifyFailuresTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthFailuresTotal,
		m.RateLimitRejectionsTotal,
		m.ServerStartTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))
	return m
}

// PrometheusHandler serves the registry in the Prometheus exposition format.
func (m *Metrics) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
