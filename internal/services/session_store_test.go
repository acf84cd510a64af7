package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type evictions struct {
	mu      sync.Mutex
	reasons map[string]string
}

func (e *evictions) record(id, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reasons == nil {
		e.reasons = make(map[string]string)
	}
	e.reasons[id] = reason
}

func (e *evictions) get(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reasons[id]
}

func newTestStore(t *testing.T, ttl time.Duration, max int) (*MemorySessionStore, *fakeClock, *evictions) {
	t.Helper()
	clock := newFakeClock()
	ev := &evictions{}
	store := NewMemorySessionStore(StoreOptions{
		TTL:             ttl,
		MaxSessions:     max,
		CleanupInterval: time.Hour,
		OnEvict:         ev.record,
		Now:             clock.Now,
	})
	t.Cleanup(func() { _ = store.Close() })
	return store, clock, ev
}

func TestMemorySessionStore_PutGetDelete(t *testing.T) {
	store, _, ev := newTestStore(t, time.Minute, 0)

	require.NoError(t, store.Put(&Session{ID: "a", FileName: "a.xlsx"}))
	assert.Error(t, store.Put(&Session{ID: "a"}), "duplicate id")
	assert.Equal(t, 1, store.Len())

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a.xlsx", got.FileName)
	assert.False(t, got.CreatedAt.IsZero())

	got.FileName = "changed"
	again, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a.xlsx", again.FileName, "Get returns a copy")

	require.NoError(t, store.Delete("a"))
	assert.Equal(t, EvictDeleted, ev.get("a"))
	_, err = store.Get("a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete("a"), ErrSessionNotFound)
}

func TestMemorySessionStore_SlidingTTL(t *testing.T) {
	store, clock, ev := newTestStore(t, 10*time.Minute, 0)
	require.NoError(t, store.Put(&Session{ID: "a"}))

	clock.Advance(9 * time.Minute)
	_, err := store.Get("a")
	require.NoError(t, err, "access refreshes the TTL")

	clock.Advance(9 * time.Minute)
	_, err = store.Get("a")
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = store.Get("a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, EvictExpired, ev.get("a"))
	assert.Zero(t, store.Len())
}

func TestMemorySessionStore_CleanupExpired(t *testing.T) {
	store, clock, _ := newTestStore(t, time.Minute, 0)
	require.NoError(t, store.Put(&Session{ID: "old"}))
	clock.Advance(45 * time.Second)
	require.NoError(t, store.Put(&Session{ID: "new"}))

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, store.CleanupExpired())
	assert.Equal(t, 1, store.Len())
	_, err := store.Get("new")
	assert.NoError(t, err)
}

func TestMemorySessionStore_MaxSessions(t *testing.T) {
	store, clock, ev := newTestStore(t, 0, 2)

	require.NoError(t, store.Put(&Session{ID: "a"}))
	clock.Advance(time.Second)
	require.NoError(t, store.Put(&Session{ID: "b"}))
	clock.Advance(time.Second)
	_, err := store.Get("a")
	require.NoError(t, err)
	clock.Advance(time.Second)

	require.NoError(t, store.Put(&Session{ID: "c"}))
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, EvictCapacity, ev.get("b"), "least recently used session goes first")
	_, err = store.Get("a")
	assert.NoError(t, err)
}

func TestMemorySessionStore_Close(t *testing.T) {
	store, _, ev := newTestStore(t, time.Minute, 0)
	require.NoError(t, store.Put(&Session{ID: "a"}))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.True(t, store.Closed())
	assert.Zero(t, store.Len())
	assert.Equal(t, EvictClosed, ev.get("a"))
	assert.ErrorIs(t, store.Put(&Session{ID: "b"}), ErrStoreClosed)
}

func TestMemorySessionStore_Janitor(t *testing.T) {
	clock := newFakeClock()
	removed := make(chan string, 1)
	store := NewMemorySessionStore(StoreOptions{
		TTL:             time.Minute,
		CleanupInterval: 5 * time.Millisecond,
		Now:             clock.Now,
		OnEvict:         func(id, _ string) { removed <- id },
	})
	defer store.Close()

	require.NoError(t, store.Put(&Session{ID: "a"}))
	clock.Advance(2 * time.Minute)

	select {
	case id := <-removed:
		assert.Equal(t, "a", id)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not remove the expired session")
	}
}

func TestMemorySessionStore_Concurrent(t *testing.T) {
	store := NewMemorySessionStore(StoreOptions{TTL: time.Minute, MaxSessions: 8})
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			_ = store.Put(&Session{ID: id})
			_, _ = store.Get(id)
			if i%3 == 0 {
				_ = store.Delete(id)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, store.Len(), 8)
}
