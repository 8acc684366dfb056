package events_test

import (
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/regulus-console/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBus_Publish(t *testing.T) {
	t.Run("no listeners", func(t *testing.T) {
		bus := events.NewBus()
		require.NotPanics(t, func() { bus.Publish(events.SessionExpired) })
		bus.Wait()
	})

	t.Run("every listener exactly once", func(t *testing.T) {
		bus := events.NewBus()
		var first, second atomic.Int32
		bus.Subscribe(events.SessionExpired, func(events.Signal) { first.Add(1) })
		bus.Subscribe(events.SessionExpired, func(events.Signal) { second.Add(1) })

		bus.Publish(events.SessionExpired)
		bus.Wait()

		require.Equal(t, int32(1), first.Load())
		require.Equal(t, int32(1), second.Load())
	})

	t.Run("other signals are not delivered", func(t *testing.T) {
		bus := events.NewBus()
		var calls atomic.Int32
		bus.Subscribe(events.SessionExpired, func(events.Signal) { calls.Add(1) })

		bus.Publish(events.Signal("something-else"))
		bus.Wait()

		require.Zero(t, calls.Load())
	})

	t.Run("panicking listener does not affect others", func(t *testing.T) {
		bus := events.NewBus()
		var calls atomic.Int32
		bus.Subscribe(events.SessionExpired, func(events.Signal) { panic("boom") })
		bus.Subscribe(events.SessionExpired, func(events.Signal) { calls.Add(1) })

		require.NotPanics(t, func() { bus.Publish(events.SessionExpired) })
		bus.Wait()

		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("publish does not wait for slow listeners", func(t *testing.T) {
		bus := events.NewBus()
		release := make(chan struct{})
		bus.Subscribe(events.SessionExpired, func(events.Signal) { <-release })

		bus.Publish(events.SessionExpired)
		close(release)
		bus.Wait()
	})
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	var kept, removed atomic.Int32
	bus.Subscribe(events.SessionExpired, func(events.Signal) { kept.Add(1) })
	unsubscribe := bus.Subscribe(events.SessionExpired, func(events.Signal) { removed.Add(1) })
	require.Equal(t, 2, bus.Listeners(events.SessionExpired))

	unsubscribe()
	unsubscribe()
	require.Equal(t, 1, bus.Listeners(events.SessionExpired))

	bus.Publish(events.SessionExpired)
	bus.Wait()

	require.Equal(t, int32(1), kept.Load())
	require.Zero(t, removed.Load())
}

func TestBus_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := events.NewBus(events.WithRegisterer(reg))

	bus.Publish(events.SessionExpired)
	bus.Publish(events.SessionExpired)
	bus.Wait()

	count, err := testutil.GatherAndCount(reg, "regulus_events_published_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
