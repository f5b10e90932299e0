// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Engine metrics
	TradesExecuted    *prometheus.CounterVec
	TradesRejected    *prometheus.CounterVec
	TokensInitialized prometheus.Counter
	TokensGraduated   prometheus.Counter
	FeesClaimed       *prometheus.CounterVec

	// Recorder metrics
	TradesPersisted   prometheus.Counter
	PricePointsStored prometheus.Counter
	SinkErrors        *prometheus.CounterVec
	SinkWriteLatency  *prometheus.HistogramVec

	// Feed metrics
	FeedClientsConnected prometheus.Gauge
	FeedMessagesSent     prometheus.Counter
	FeedSendErrors       prometheus.Counter

	// Bus metrics
	EventsPublished prometheus.Counter
	EventsDropped   prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "launch_curve"
	}

	return &Metrics{
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trades_executed_total",
			Help:      "Total number of trades executed by side",
		}, []string{"side"}),
		TradesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trades_rejected_total",
			Help:      "Total number of trades rejected by reason",
		}, []string{"reason"}),
		TokensInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tokens_initialized_total",
			Help:      "Total number of tokens listed on the curve",
		}),
		TokensGraduated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tokens_graduated_total",
			Help:      "Total number of tokens graduated off the curve",
		}),
		FeesClaimed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "fees_claimed_total",
			Help:      "Total number of fee claims by kind",
		}, []string{"kind"}),

		TradesPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "trades_persisted_total",
			Help:      "Total number of trades written to durable storage",
		}),
		PricePointsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "price_points_stored_total",
			Help:      "Total number of price points written to the timeseries",
		}),
		SinkErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "sink_errors_total",
			Help:      "Total number of storage write failures by sink",
		}, []string{"sink"}),
		SinkWriteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "sink_write_duration_seconds",
			Help:      "Storage write latency by sink",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),

		FeedClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "clients_connected",
			Help:      "Number of currently connected feed clients",
		}),
		FeedMessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_sent_total",
			Help:      "Total number of feed messages sent to clients",
		}),
		FeedSendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "send_errors_total",
			Help:      "Total number of failed feed sends",
		}),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "events_published_total",
			Help:      "Total number of events published to the bus",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped due to a full buffer",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
