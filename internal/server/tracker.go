package server

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/danmuck/evlctl/internal/evl"
	"github.com/danmuck/evlctl/internal/notify"
	"github.com/danmuck/evlctl/internal/tpi"
)

// Event is one payload as the status surface reports it.
type Event struct {
	Command     tpi.Command `json:"command"`
	Data        tpi.Data    `json:"data"`
	Description string      `json:"description"`
	Priority    string      `json:"priority"`
	At          time.Time   `json:"at"`
}

// Snapshot is the /status body.
type Snapshot struct {
	Connected         bool        `json:"connected"`
	LastCommand       tpi.Command `json:"last_command,omitempty"`
	LastSeen          *time.Time  `json:"last_seen,omitempty"`
	Disconnects       int         `json:"disconnects"`
	LastDisconnectErr bool        `json:"last_disconnect_error"`
	Events            int         `json:"events"`
}

type TrackerConfig struct {
	Labels      notify.Labels
	EventBuffer int
	LastSeenTTL time.Duration
	Connected   func() bool
}

// Tracker keeps the recent history the status server reads. It is fed from
// the client's callbacks and read from HTTP handlers.
type Tracker struct {
	labels    notify.Labels
	connected func() bool
	now       func() time.Time

	mu                sync.Mutex
	events            []Event
	next              int
	full              bool
	lastCommand       tpi.Command
	lastSeen          time.Time
	disconnects       int
	lastDisconnectErr bool

	// lastSeenByCommand expires entries after LastSeenTTL.
	lastSeenByCommand *gocache.Cache
}

func NewTracker(cfg TrackerConfig) *Tracker {
	if cfg.EventBuffer < 1 {
		cfg.EventBuffer = 50
	}
	if cfg.LastSeenTTL <= 0 {
		cfg.LastSeenTTL = gocache.NoExpiration
	}
	if cfg.Connected == nil {
		cfg.Connected = func() bool { return false }
	}
	return &Tracker{
		labels:            cfg.Labels,
		connected:         cfg.Connected,
		now:               time.Now,
		events:            make([]Event, cfg.EventBuffer),
		lastSeenByCommand: gocache.New(cfg.LastSeenTTL, time.Minute),
	}
}

// Attach subscribes t to every command and disconnect c re-emits.
func (t *Tracker) Attach(c *evl.Client) {
	c.OnCommand(t.Observe)
	c.OnDisconnected(t.ObserveDisconnect)
}

func (t *Tracker) Observe(p tpi.Payload) {
	ev := Event{
		Command:     p.Command,
		Data:        p.Data,
		Description: t.labels.Describe(p),
		Priority:    t.labels.CommandPriority(p.Command).String(),
		At:          t.now(),
	}

	t.mu.Lock()
	t.events[t.next] = ev
	t.next = (t.next + 1) % len(t.events)
	if t.next == 0 {
		t.full = true
	}
	t.lastCommand = p.Command
	t.lastSeen = ev.At
	t.mu.Unlock()

	t.lastSeenByCommand.SetDefault(string(p.Command), ev)
}

func (t *Tracker) ObserveDisconnect(hadError bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnects++
	t.lastDisconnectErr = hadError
}

func (t *Tracker) Snapshot() Snapshot {
	connected := t.connected()

	t.mu.Lock()
	defer t.mu.Unlock()
	s := Snapshot{
		Connected:         connected,
		LastCommand:       t.lastCommand,
		Disconnects:       t.disconnects,
		LastDisconnectErr: t.lastDisconnectErr,
		Events:            t.lenLocked(),
	}
	if !t.lastSeen.IsZero() {
		seen := t.lastSeen
		s.LastSeen = &seen
	}
	return s
}

// Events returns up to limit of the most recent events, oldest first.
// limit <= 0 returns everything buffered.
func (t *Tracker) Events(limit int) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.lenLocked()
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	start := t.next - limit
	if start < 0 {
		start += len(t.events)
	}
	for i := 0; i < limit; i++ {
		out = append(out, t.events[(start+i)%len(t.events)])
	}
	return out
}

// LastSeen returns the latest event for cmd unless it has expired.
func (t *Tracker) LastSeen(cmd tpi.Command) (Event, bool) {
	v, ok := t.lastSeenByCommand.Get(string(cmd))
	if !ok {
		return Event{}, false
	}
	ev, ok := v.(Event)
	return ev, ok
}

func (t *Tracker) lenLocked() int {
	if t.full {
		return len(t.events)
	}
	return t.next
}
