// Package metrics provides Prometheus instrumentation for the wagering
// engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StakesTotal counts accepted stakes, partitioned by outcome.
	StakesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kgame_stakes_total",
		Help: "Total number of stakes accepted",
	}, []string{"outcome"})

	// StakeVolume tracks cumulative staked value per event in whole units.
	StakeVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kgame_stake_volume_total",
		Help: "Cumulative staked value in whole units",
	}, []string{"event_id", "outcome"})

	// SettlementsTotal counts resolutions and cancellations.
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kgame_settlements_total",
		Help: "Total number of event settlements",
	}, []string{"kind"})

	// WithdrawalsTotal counts completed withdrawals.
	WithdrawalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgame_withdrawals_total",
		Help: "Total number of completed withdrawals",
	})

	// OpenEvents tracks the number of events currently accepting stakes.
	OpenEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kgame_open_events",
		Help: "Number of currently open events",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kgame_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kgame_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kgame_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})

	// StakeRejections counts stakes rejected by validation.
	StakeRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgame_stake_rejections_total",
		Help: "Stakes rejected by validation or transfer failure",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
