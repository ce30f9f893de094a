package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		apiRequestsTotal,
		apiRequestSeconds,
	)
}

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payeer_sandbox_requests_total",
			Help: "API requests handled by the sandbox, by action and outcome (ok/error).",
		},
		[]string{"action", "status"},
	)

	apiRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payeer_sandbox_request_seconds",
			Help:    "Sandbox request handling time distribution.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"action"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ObserveRequest records one handled API request. It has the shape the
// sandbox server expects for its observer hook.
func ObserveRequest(action, status string, elapsed time.Duration) {
	if action == "" {
		action = "unknown"
	}
	apiRequestsTotal.WithLabelValues(norm(action), norm(status)).Inc()
	apiRequestSeconds.WithLabelValues(norm(action)).Observe(elapsed.Seconds())
}
