package evl

import (
	"sync"
	"sync/atomic"
)

// Subscription identifies one registered callback. Pass it to Unsubscribe.
type Subscription uint64

var nextSubscription atomic.Uint64

type subscriber[T any] struct {
	id Subscription
	fn func(T)
}

// emitter is an ordered subscriber list for one event kind.
type emitter[T any] struct {
	mu   sync.RWMutex
	subs []subscriber[T]
}

func (e *emitter[T]) subscribe(fn func(T)) Subscription {
	id := Subscription(nextSubscription.Add(1))
	e.mu.Lock()
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})
	e.mu.Unlock()
	return id
}

func (e *emitter[T]) unsubscribe(id Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

// emit calls every subscriber synchronously in registration order.
// Subscribers added or removed during delivery take effect next time.
func (e *emitter[T]) emit(v T) {
	e.mu.RLock()
	subs := e.subs
	e.mu.RUnlock()
	for _, s := range subs {
		s.fn(v)
	}
}

func (e *emitter[T]) count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}
