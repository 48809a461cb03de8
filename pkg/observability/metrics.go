package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Authorization metrics
	GuardDenialsTotal    *prometheus.CounterVec
	ValidationFailsTotal *prometheus.CounterVec
	AuthorityChecksTotal *prometheus.CounterVec

	// Invite metrics
	InvitesIssuedTotal   prometheus.Counter
	InvitesAcceptedTotal prometheus.Counter
	InvitesSweptTotal    prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warden_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "warden_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "warden_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		GuardDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_guard_denials_total",
				Help: "Role-assignment changes rejected by the guard",
			},
			[]string{"kind"},
		),
		ValidationFailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_role_validation_failures_total",
				Help: "Role definitions rejected by the validator",
			},
			[]string{"kind"},
		),
		AuthorityChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_authority_checks_total",
				Help: "Capability gate decisions",
			},
			[]string{"authority", "allowed"},
		),
		InvitesIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_invites_issued_total",
				Help: "Invite tokens issued",
			},
		),
		InvitesAcceptedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_invites_accepted_total",
				Help: "Invite tokens accepted",
			},
		),
		InvitesSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_invites_swept_total",
				Help: "Expired invite tokens removed by the sweep",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.GuardDenialsTotal,
		m.ValidationFailsTotal,
		m.AuthorityChecksTotal,
		m.InvitesIssuedTotal,
		m.InvitesAcceptedTotal,
		m.InvitesSweptTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			status := strconv.Itoa(rw.statusCode)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}

// MetricsHandler returns the /metrics endpoint handler for the registry.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
