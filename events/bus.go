package events

import (
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Signal names a payload-free notification.
type Signal string

// SessionExpired is published when the current credential stops being valid,
// either through lazy expiry or because the server rejected it.
const SessionExpired Signal = "session-expired"

// Listener receives a published signal.
type Listener func(Signal)

type subscription struct {
	id       uint64
	listener Listener
}

// Bus fans signals out to any number of independent listeners.
// It is passed explicitly to every component that publishes or observes.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Signal][]subscription
	inflight  sync.WaitGroup
	published *prometheus.CounterVec
}

type BusOption func(*Bus)

// WithRegisterer exposes a per-signal publish counter on reg.
func WithRegisterer(reg prometheus.Registerer) BusOption {
	return func(b *Bus) {
		if reg == nil {
			return
		}
		b.published = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regulus",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Signals published on the console event bus.",
		}, []string{"signal"})
		reg.MustRegister(b.published)
	}
}

func NewBus(options ...BusOption) *Bus {
	b := &Bus{
		listeners: make(map[Signal][]subscription),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Subscribe registers listener for signal and returns a function that removes
// it again. The returned function is safe to call more than once.
func (b *Bus) Subscribe(signal Signal, listener Listener) func() {
	if listener == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[signal] = append(b.listeners[signal], subscription{id: id, listener: listener})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(signal, id) })
	}
}

func (b *Bus) unsubscribe(signal Signal, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[signal]
	for i, s := range subs {
		if s.id == id {
			// Copy so that snapshots taken by in-progress publishes stay intact
			remaining := make([]subscription, 0, len(subs)-1)
			remaining = append(remaining, subs[:i]...)
			remaining = append(remaining, subs[i+1:]...)
			if len(remaining) == 0 {
				delete(b.listeners, signal)
			} else {
				b.listeners[signal] = remaining
			}
			return
		}
	}
}

// Publish delivers signal to every current listener. Each listener runs on its
// own goroutine, so Publish neither blocks nor propagates listener panics.
func (b *Bus) Publish(signal Signal) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := b.listeners[signal]
	b.mu.RUnlock()

	if b.published != nil {
		b.published.WithLabelValues(string(signal)).Inc()
	}
	log.Debug().Str("signal", string(signal)).Int("listeners", len(subs)).Msg("Publishing signal")

	for _, s := range subs {
		b.inflight.Add(1)
		go b.deliver(signal, s.listener)
	}
}

func (b *Bus) deliver(signal Signal, listener Listener) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("signal", string(signal)).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Listener panicked")
		}
	}()
	listener(signal)
}

// Listeners returns the number of listeners registered for signal.
func (b *Bus) Listeners(signal Signal) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[signal])
}

// Wait blocks until every delivery started by Publish has returned.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
