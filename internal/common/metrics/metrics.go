package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status, method and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration tracks HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "giveaway_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	GiveawaysStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giveaway_started_total",
			Help: "Total number of giveaways started",
		},
	)

	// GiveawaysCompleted is labelled by trigger: "sweep" or "manual"
	GiveawaysCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_completed_total",
			Help: "Total number of giveaways completed",
		},
		[]string{"trigger"},
	)

	ActiveGiveaways = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "giveaway_active",
			Help: "Number of giveaways currently accepting entries",
		},
	)

	RosterChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_roster_changes_total",
			Help: "Participant additions and removals that changed a roster",
		},
		[]string{"op"},
	)

	Rerolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giveaway_rerolls_total",
			Help: "Total number of successful rerolls",
		},
	)

	// GatewayFailures counts failed persistence and messaging calls
	GatewayFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_gateway_failures_total",
			Help: "Failed calls to the persistence and messaging gateways",
		},
		[]string{"gateway", "operation"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "giveaway_sweep_duration_seconds",
			Help:    "Duration of one expiry sweep",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_bot_events_total",
			Help: "Inbound bot events by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)

// RecordSweep observes the duration of a sweep started at startTime
func RecordSweep(startTime time.Time) {
	SweepDuration.Observe(time.Since(startTime).Seconds())
}
