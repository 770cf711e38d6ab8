package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Command metrics
	CommandsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cerberus_commands_total",
			Help: "Total number of processed chat commands",
		},
		[]string{"outcome"}, // outcome: unlock|logout|login|authenticated|rejected|unknown|error
	)

	CommandDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cerberus_command_duration_seconds",
			Help:    "Command handling duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// Unlock actuator metrics
	UnlockAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cerberus_unlock_attempts_total",
			Help: "Total number of unlock requests sent to the lock controller",
		},
		[]string{"result"}, // result: success|failure
	)

	// Session store metrics
	DuplicateRepairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cerberus_session_duplicate_repairs_total",
			Help: "Total number of duplicate session purge-and-recreate repairs",
		},
	)
)

// Register registers all collectors with the default registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(
		CommandsProcessed,
		CommandDuration,
		UnlockAttempts,
		DuplicateRepairs,
	)
}

// Handler returns the HTTP handler exposing the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
