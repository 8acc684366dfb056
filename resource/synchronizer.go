package resource

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// Producer asynchronously produces the tracked value.
type Producer[T any] func(ctx context.Context) (T, error)

// State is the view of a tracked value. Data survives both refreshes and
// failures so stale-but-present data can be shown while Loading.
type State[T any] struct {
	Data    *T
	Error   string
	Loading bool
}

// Callback observes every state transition.
type Callback[T any] func(State[T])

// Synchronizer keeps a State current by running a Producer on subscription,
// on dependency key change, on Refetch and on a polling interval. Polling only
// refreshes a settled state; it never supersedes a fetch in flight. Results are
// tagged with the generation that started them and only the current
// generation's result is applied.
type Synchronizer[T any] struct {
	mu         sync.Mutex
	producer   Producer[T]
	key        any
	interval   time.Duration
	generation uint64
	state      State[T]

	ctx        context.Context
	callback   Callback[T]
	subscribed bool
	terminated bool
	stopPoll   chan struct{}

	pending    []State[T]
	delivering bool
	inflight   sync.WaitGroup
}

func New[T any](producer Producer[T], options ...Option) *Synchronizer[T] {
	cfg := settings{}
	for _, opt := range options {
		opt(&cfg)
	}
	return &Synchronizer[T]{
		producer: producer,
		key:      cfg.key,
		interval: cfg.interval,
	}
}

// Subscribe starts tracking. The first fetch begins immediately and callback
// receives every transition from then on, serialized and in order, never while
// the synchronizer's lock is held. ctx is handed to every producer call.
func (s *Synchronizer[T]) Subscribe(ctx context.Context, callback Callback[T]) error {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return errors.ErrTerminated
	}
	if s.subscribed {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInvalidInput, "resource.Subscribe: already subscribed")
	}
	if s.producer == nil {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInvalidInput, "resource.Subscribe: nil producer")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	s.callback = callback
	s.subscribed = true
	s.startLocked()
	s.restartPollLocked()
	s.mu.Unlock()

	s.drain()
	return nil
}

// State returns a snapshot of the current view state.
func (s *Synchronizer[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the current fetch generation.
func (s *Synchronizer[T]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Refetch starts a new generation, superseding any fetch still in flight.
// It does nothing before Subscribe or after Unsubscribe.
func (s *Synchronizer[T]) Refetch() {
	s.mu.Lock()
	if !s.live() {
		s.mu.Unlock()
		return
	}
	s.startLocked()
	s.mu.Unlock()

	s.drain()
}

// SetKey changes the dependency key. A key equal to the current one is
// ignored; otherwise producer (when non-nil) replaces the current producer and
// a fresh fetch starts with the polling timer recreated.
func (s *Synchronizer[T]) SetKey(key any, producer Producer[T]) {
	s.mu.Lock()
	if s.terminated || reflect.DeepEqual(s.key, key) {
		s.mu.Unlock()
		return
	}
	s.key = key
	if producer != nil {
		s.producer = producer
	}
	if !s.subscribed {
		s.mu.Unlock()
		return
	}
	s.startLocked()
	s.restartPollLocked()
	s.mu.Unlock()

	s.drain()
}

// SetInterval changes the polling interval and recreates the timer.
func (s *Synchronizer[T]) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated || s.interval == d {
		return
	}
	s.interval = d
	if s.subscribed {
		s.restartPollLocked()
	}
}

// Unsubscribe terminates the subscription. Polling stops, queued transitions
// are dropped and results still in flight are discarded on arrival. It is safe
// to call more than once.
func (s *Synchronizer[T]) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.terminated = true
	s.pending = nil
	s.stopPollLocked()
}

// Wait blocks until every producer call started so far has returned. With
// polling enabled it is only meaningful after Unsubscribe.
func (s *Synchronizer[T]) Wait() {
	s.inflight.Wait()
}

func (s *Synchronizer[T]) live() bool {
	return s.subscribed && !s.terminated
}

func (s *Synchronizer[T]) startLocked() {
	s.generation++
	generation := s.generation
	s.state.Loading = true
	s.state.Error = ""
	s.enqueueLocked()

	s.inflight.Add(1)
	go s.run(s.ctx, generation, s.producer)
}

func (s *Synchronizer[T]) run(ctx context.Context, generation uint64, producer Producer[T]) {
	defer s.inflight.Done()

	value, err := call(ctx, producer)

	s.mu.Lock()
	if s.terminated || generation != s.generation {
		current, terminated := s.generation, s.terminated
		s.mu.Unlock()
		log.Debug().
			Uint64("generation", generation).
			Uint64("current", current).
			Bool("terminated", terminated).
			Msg("Discarding stale result")
		return
	}
	if err != nil {
		s.state.Error = err.Error()
	} else {
		s.state.Data = &value
		s.state.Error = ""
	}
	s.state.Loading = false
	s.enqueueLocked()
	s.mu.Unlock()

	s.drain()
}

func call[T any](ctx context.Context, producer Producer[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Producer panicked")
			err = fmt.Errorf("producer panicked: %v", r)
		}
	}()
	return producer(ctx)
}

func (s *Synchronizer[T]) enqueueLocked() {
	if s.callback != nil {
		s.pending = append(s.pending, s.state)
	}
}

// drain delivers queued transitions. Only one goroutine delivers at a time;
// others leave their transitions for it to pick up.
func (s *Synchronizer[T]) drain() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 && !s.terminated {
		next := s.pending[0]
		s.pending = s.pending[1:]
		callback := s.callback
		s.mu.Unlock()
		notify(callback, next)
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func notify[T any](callback Callback[T], state State[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("State callback panicked")
		}
	}()
	callback(state)
}

func (s *Synchronizer[T]) restartPollLocked() {
	s.stopPollLocked()
	if s.interval <= 0 {
		return
	}
	stop := make(chan struct{})
	s.stopPoll = stop
	go s.poll(s.ctx, s.interval, stop)
}

func (s *Synchronizer[T]) stopPollLocked() {
	if s.stopPoll != nil {
		close(s.stopPoll)
		s.stopPoll = nil
	}
}

func (s *Synchronizer[T]) poll(ctx context.Context, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			// The timer may have been replaced between the tick and the lock
			select {
			case <-stop:
				s.mu.Unlock()
				return
			default:
			}
			// A background refresh never supersedes a fetch still in flight
			if s.state.Loading {
				s.mu.Unlock()
				continue
			}
			s.startLocked()
			s.mu.Unlock()
			s.drain()
		}
	}
}
