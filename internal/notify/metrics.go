package notify

import (
	"github.com/danmuck/evlctl/internal/observability"
	"github.com/danmuck/evlctl/internal/tpi"
)

// Metrics counts gated payloads in evlctl_notifications_total.
type Metrics struct {
	base
}

func NewMetrics(dest Destination, labels Labels) *Metrics {
	return &Metrics{base: newBase(dest, labels)}
}

func (m *Metrics) Notify(p tpi.Payload) {
	priority, ok := m.passes(p.Command)
	if !ok {
		return
	}
	observability.RecordNotification(m.name, string(p.Command), priority.String())
}
