package notify

import (
	"reflect"
	"sync"

	"github.com/danmuck/evlctl/internal/tpi"
)

// Broadcaster fans every payload out to its notifiers in insertion order.
// It applies no filtering of its own.
type Broadcaster struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

func NewBroadcaster(notifiers ...Notifier) *Broadcaster {
	return &Broadcaster{notifiers: append([]Notifier(nil), notifiers...)}
}

// AddNotifier appends n. Duplicates are allowed.
func (b *Broadcaster) AddNotifier(n Notifier) {
	b.mu.Lock()
	b.notifiers = append(b.notifiers, n)
	b.mu.Unlock()
}

// RemoveNotifier drops the first notifier identical to n. Identity needs a
// comparable dynamic type, normally a pointer; other notifiers never match.
func (b *Broadcaster) RemoveNotifier(n Notifier) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.notifiers {
		if sameNotifier(existing, n) {
			b.notifiers = append(b.notifiers[:i:i], b.notifiers[i+1:]...)
			return true
		}
	}
	return false
}

func sameNotifier(a, b Notifier) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.notifiers)
}

func (b *Broadcaster) Notify(p tpi.Payload) {
	b.mu.RLock()
	notifiers := b.notifiers
	b.mu.RUnlock()
	for _, n := range notifiers {
		n.Notify(p)
	}
}

// Disconnect routes the software-disconnect pseudo payload through Notify.
func (b *Broadcaster) Disconnect(hadError bool) {
	b.Notify(tpi.DisconnectPayload(hadError))
}
