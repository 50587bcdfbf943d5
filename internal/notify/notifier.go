package notify

import (
	"errors"
	"fmt"

	"github.com/danmuck/evlctl/internal/tpi"
)

var ErrInvalidNotifierType = errors.New("notify: invalid notifier type")

// Settings are free-form, per-type notifier options.
type Settings map[string]string

// Notifier is one sink. Each applies its own priority gate in Notify.
type Notifier interface {
	Priority() Priority
	Enabled() bool
	Name() string
	Settings() Settings
	Notify(p tpi.Payload)
}

type Type string

const (
	TypeConsole Type = "console"
	TypeMetrics Type = "metrics"
)

// Valid reports whether New knows how to build t.
func (t Type) Valid() bool {
	switch t {
	case TypeConsole, TypeMetrics:
		return true
	default:
		return false
	}
}

// Destination is the declarative descriptor New turns into a Notifier.
// A nil Priority means PriorityLow.
type Destination struct {
	Type     Type      `toml:"type"`
	Name     string    `toml:"name"`
	Enabled  bool      `toml:"enabled"`
	Priority *Priority `toml:"priority"`
	Settings Settings  `toml:"settings"`
}

func (d Destination) threshold() Priority {
	if d.Priority == nil {
		return PriorityLow
	}
	return *d.Priority
}

// New builds the notifier for dest.Type.
func New(dest Destination, labels Labels) (Notifier, error) {
	switch dest.Type {
	case TypeConsole:
		return NewConsole(dest, labels), nil
	case TypeMetrics:
		return NewMetrics(dest, labels), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidNotifierType, dest.Type)
	}
}

// FromDestinations builds every enabled destination in order and stops at
// the first error.
func FromDestinations(dests []Destination, labels Labels) ([]Notifier, error) {
	out := make([]Notifier, 0, len(dests))
	for i, dest := range dests {
		if !dest.Enabled {
			continue
		}
		n, err := New(dest, labels)
		if err != nil {
			return nil, fmt.Errorf("notifiers[%d] %q: %w", i, dest.Name, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// base carries the fields every notifier reports.
type base struct {
	name     string
	enabled  bool
	priority Priority
	settings Settings
	labels   Labels
}

func newBase(dest Destination, labels Labels) base {
	settings := dest.Settings
	if settings == nil {
		settings = Settings{}
	}
	return base{
		name:     dest.Name,
		enabled:  dest.Enabled,
		priority: dest.threshold(),
		settings: settings,
		labels:   labels,
	}
}

func (b base) Priority() Priority { return b.priority }
func (b base) Enabled() bool      { return b.enabled }
func (b base) Name() string       { return b.name }
func (b base) Settings() Settings { return b.settings }

// passes reports whether cmd clears the threshold, and its resolved priority.
func (b base) passes(cmd tpi.Command) (Priority, bool) {
	p := b.labels.CommandPriority(cmd)
	return p, p >= b.priority
}
