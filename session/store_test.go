package session_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/regulus-console/events"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/jrsteele09/regulus-console/session"
	fakesessionrepo "github.com/jrsteele09/regulus-console/session/repofake"
	"github.com/stretchr/testify/require"
)

const testToken = "eyJ.test.token"

// testClock is a settable time source
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type storeFixture struct {
	repo    *fakesessionrepo.FakeRepo
	bus     *events.Bus
	clock   *testClock
	store   *session.Store
	expired atomic.Int32
}

func setupStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	f := &storeFixture{
		repo:  fakesessionrepo.NewFakeRepo(),
		bus:   events.NewBus(),
		clock: &testClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
	}
	f.bus.Subscribe(events.SessionExpired, func(events.Signal) { f.expired.Add(1) })

	store, err := session.NewStore(f.repo, f.bus, session.WithNowFunc(f.clock.Now))
	require.NoError(t, err)
	f.store = store
	return f
}

func (f *storeFixture) published() int32 {
	f.bus.Wait()
	return f.expired.Load()
}

func TestStore_AccessToken(t *testing.T) {
	t.Run("absent credential", func(t *testing.T) {
		f := setupStoreFixture(t)
		token, ok := f.store.AccessToken()
		require.False(t, ok)
		require.Empty(t, token)
		require.Zero(t, f.published())
	})

	t.Run("future expiry round trip", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential(testToken, f.clock.Now().Add(time.Hour)))

		token, ok := f.store.AccessToken()
		require.True(t, ok)
		require.Equal(t, testToken, token)
		require.Equal(t, 2, f.repo.Len())
	})

	t.Run("no expiry never expires", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential(testToken, time.Time{}))
		f.clock.Advance(10 * 365 * 24 * time.Hour)

		token, ok := f.store.AccessToken()
		require.True(t, ok)
		require.Equal(t, testToken, token)
	})

	t.Run("expired credential is cleared and published once", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential(testToken, f.clock.Now().Add(time.Minute)))
		f.clock.Advance(time.Minute)

		token, ok := f.store.AccessToken()
		require.False(t, ok)
		require.Empty(t, token)
		require.Zero(t, f.repo.Len())
		require.Equal(t, int32(1), f.published())

		// Reads of an already-absent credential do not re-publish
		_, ok = f.store.AccessToken()
		require.False(t, ok)
		require.Equal(t, int32(1), f.published())
	})
}

func TestStore_Token(t *testing.T) {
	f := setupStoreFixture(t)

	_, err := f.store.Token()
	require.ErrorIs(t, err, errors.ErrNoCredential)

	expiresAt := f.clock.Now().Add(time.Hour)
	require.NoError(t, f.store.SetCredential(testToken, expiresAt))

	tok, err := f.store.Token()
	require.NoError(t, err)
	require.Equal(t, testToken, tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, tok.Expiry.Equal(expiresAt))
}

func TestStore_SetCredential(t *testing.T) {
	t.Run("empty token rejected", func(t *testing.T) {
		f := setupStoreFixture(t)
		err := f.store.SetCredential("  ", time.Time{})
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("persist failure leaves memory unchanged", func(t *testing.T) {
		f := setupStoreFixture(t)
		f.repo.FailSave = true
		require.Error(t, f.store.SetCredential(testToken, time.Time{}))

		_, ok := f.store.Credential()
		require.False(t, ok)
	})

	t.Run("replaces previous credential", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential("first", f.clock.Now().Add(time.Minute)))
		require.NoError(t, f.store.SetCredential("second", time.Time{}))

		entries, err := f.repo.Load()
		require.NoError(t, err)
		require.Equal(t, "second", entries[session.TokenKey])
		require.Empty(t, entries[session.ExpiryKey])
	})
}

func TestStore_Clear(t *testing.T) {
	f := setupStoreFixture(t)
	require.NoError(t, f.store.SetCredential(testToken, f.clock.Now().Add(time.Hour)))

	require.NoError(t, f.store.Clear())

	_, ok := f.store.AccessToken()
	require.False(t, ok)
	require.Zero(t, f.repo.Len())
	require.Zero(t, f.published())
}

func TestStore_Invalidate(t *testing.T) {
	t.Run("empty store does not publish", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.False(t, f.store.Invalidate(testToken))
		require.False(t, f.store.Invalidate(""))
		require.Zero(t, f.published())
	})

	t.Run("present credential publishes once", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential(testToken, time.Time{}))

		require.True(t, f.store.Invalidate(testToken))
		require.False(t, f.store.Invalidate(testToken))
		require.Zero(t, f.repo.Len())
		require.Equal(t, int32(1), f.published())
	})

	t.Run("concurrent invalidation publishes exactly once", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential(testToken, time.Time{}))

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.store.Invalidate(testToken)
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), f.published())
	})

	t.Run("credential stored after the rejected one is kept", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential(testToken, time.Time{}))
		require.NoError(t, f.store.SetCredential("eyJ.newer.token", time.Time{}))

		require.False(t, f.store.Invalidate(testToken))

		token, ok := f.store.AccessToken()
		require.True(t, ok)
		require.Equal(t, "eyJ.newer.token", token)
		require.Equal(t, 2, f.repo.Len())
		require.Zero(t, f.published())
	})

	t.Run("rejected unauthenticated request keeps a new sign in", func(t *testing.T) {
		f := setupStoreFixture(t)
		require.NoError(t, f.store.SetCredential(testToken, time.Time{}))

		require.False(t, f.store.Invalidate(""))
		_, ok := f.store.AccessToken()
		require.True(t, ok)
		require.Zero(t, f.published())
	})
}

func TestNewStore_Restore(t *testing.T) {
	t.Run("restores persisted credential", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeRepo()
		require.NoError(t, repo.Save(map[string]string{
			session.TokenKey:  testToken,
			session.ExpiryKey: "2099-01-01T00:00:00Z",
		}))

		store, err := session.NewStore(repo, events.NewBus())
		require.NoError(t, err)

		cred, ok := store.Credential()
		require.True(t, ok)
		require.Equal(t, testToken, cred.Token)
		require.Equal(t, 2099, cred.ExpiresAt.Year())
	})

	t.Run("unreadable expiry discards both entries", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeRepo()
		require.NoError(t, repo.Save(map[string]string{
			session.TokenKey:  testToken,
			session.ExpiryKey: "tomorrow-ish",
		}))

		store, err := session.NewStore(repo, events.NewBus())
		require.NoError(t, err)

		_, ok := store.Credential()
		require.False(t, ok)
		require.Zero(t, repo.Len())
	})

	t.Run("expiry without a token is removed", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeRepo()
		require.NoError(t, repo.Save(map[string]string{
			session.ExpiryKey: "2099-01-01T00:00:00Z",
		}))

		store, err := session.NewStore(repo, events.NewBus())
		require.NoError(t, err)

		_, ok := store.Credential()
		require.False(t, ok)
		require.Zero(t, repo.Len())
	})
}
