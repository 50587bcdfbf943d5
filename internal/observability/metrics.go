package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	tpiPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evlctl",
			Subsystem: "tpi",
			Name:      "packets_total",
			Help:      "Decoded TPI packets by command.",
		},
		[]string{"command"},
	)
	tpiDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evlctl",
			Subsystem: "tpi",
			Name:      "packets_dropped_total",
			Help:      "TPI segments dropped before decode.",
		},
		[]string{"reason"},
	)
	connectionState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "evlctl",
			Name:      "connection_state",
			Help:      "Panel connection state (0 idle, 1 connecting, 2 connected, 3 disconnected).",
		},
	)
	loginResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evlctl",
			Subsystem: "login",
			Name:      "responses_total",
			Help:      "Login sub-protocol responses by outcome.",
		},
		[]string{"outcome"},
	)
	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evlctl",
			Name:      "notifications_total",
			Help:      "Payloads that passed a notifier's priority gate.",
		},
		[]string{"notifier", "command", "priority"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evlctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evlctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Drop reasons for RecordDropped.
const (
	DropMalformed = "malformed"
	DropFragment  = "fragment"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			tpiPackets,
			tpiDropped,
			connectionState,
			loginResponses,
			notifications,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordPacket(command string) {
	RegisterMetrics()
	tpiPackets.WithLabelValues(command).Inc()
}

func RecordDropped(reason string) {
	RegisterMetrics()
	tpiDropped.WithLabelValues(reason).Inc()
}

func SetConnectionState(state int) {
	RegisterMetrics()
	connectionState.Set(float64(state))
}

func RecordLoginResponse(outcome string) {
	RegisterMetrics()
	loginResponses.WithLabelValues(outcome).Inc()
}

func RecordNotification(notifier, command, priority string) {
	RegisterMetrics()
	notifications.WithLabelValues(notifier, command, priority).Inc()
}

// NotificationCounter returns the notifications child for one label set.
func NotificationCounter(notifier, command, priority string) prometheus.Counter {
	RegisterMetrics()
	return notifications.WithLabelValues(notifier, command, priority)
}

func PacketCounter(command string) prometheus.Counter {
	RegisterMetrics()
	return tpiPackets.WithLabelValues(command)
}

func DroppedCounter(reason string) prometheus.Counter {
	RegisterMetrics()
	return tpiDropped.WithLabelValues(reason)
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
