// Package metricstest reads evlctl's prometheus counters from tests.
// Counters are process-global, so callers compare before/after values.
package metricstest

import (
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danmuck/evlctl/internal/observability"
)

func Notifications(notifier, command, priority string) float64 {
	return testutil.ToFloat64(observability.NotificationCounter(notifier, command, priority))
}

func Packets(command string) float64 {
	return testutil.ToFloat64(observability.PacketCounter(command))
}

func Dropped(reason string) float64 {
	return testutil.ToFloat64(observability.DroppedCounter(reason))
}
