package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "justiniano",
			Subsystem: "chat_gateway",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "justiniano",
			Subsystem: "chat_gateway",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "justiniano",
			Subsystem: "chat_gateway",
			Name:      "chat_turns_total",
			Help:      "Chat relay outcomes by tier",
		},
		[]string{"tier", "outcome"},
	)

	RelayedBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "justiniano",
			Subsystem: "chat_gateway",
			Name:      "relayed_bytes_total",
			Help:      "Streamed bytes forwarded to clients",
		},
		[]string{"tier"},
	)

	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "justiniano",
			Subsystem: "chat_gateway",
			Name:      "upstream_errors_total",
			Help:      "Upstream inference failures by kind",
		},
		[]string{"kind"},
	)
)
