package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"penyusutan/internal/dataprocessing"
	"penyusutan/pkg/contracts/domain"
)

// Eviction reasons passed to StoreOptions.OnEvict.
const (
	EvictExpired  = "expired"
	EvictCapacity = "capacity"
	EvictDeleted  = "deleted"
	EvictClosed   = "closed"
)

// Session holds one cleaned upload and its dashboard.
type Session struct {
	ID         string
	FileName   string
	CreatedAt  time.Time
	LastAccess time.Time
	Table      *domain.AssetTable
	Stats      dataprocessing.CleanStats
	Dashboard  *domain.Dashboard
}

// SessionStore keeps sessions between requests.
type SessionStore interface {
	Put(session *Session) error
	Get(id string) (*Session, error)
	Delete(id string) error
	Len() int
	Close() error
}

// StoreOptions configures a MemorySessionStore.
type StoreOptions struct {
	// TTL is measured from the last access. Zero disables expiry.
	TTL time.Duration
	// MaxSessions evicts the least recently used session when exceeded.
	MaxSessions int
	// CleanupInterval is the janitor period. Defaults to TTL/2, at most a
	// minute.
	CleanupInterval time.Duration
	// OnEvict is called outside the lock for every removed session.
	OnEvict func(id, reason string)
	Now     func() time.Time
	Logger  *slog.Logger
}

// MemorySessionStore is an in-memory implementation of SessionStore
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     StoreOptions
	closed   bool

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemorySessionStore creates a store and starts its janitor.
func NewMemorySessionStore(opts StoreOptions) *MemorySessionStore {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = opts.Logger.With(slog.String("component", "session_store"))
	if opts.CleanupInterval <= 0 && opts.TTL > 0 {
		opts.CleanupInterval = min(opts.TTL/2, time.Minute)
	}

	s := &MemorySessionStore{
		sessions: make(map[string]*Session),
		opts:     opts,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if opts.CleanupInterval > 0 {
		go s.janitor(opts.CleanupInterval)
	} else {
		close(s.done)
	}
	return s
}

// Put stores a session, evicting the least recently used one when full.
func (s *MemorySessionStore) Put(session *Session) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if _, exists := s.sessions[session.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("session %s already exists", session.ID)
	}

	now := s.opts.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastAccess = now

	var evicted []string
	for s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		id := s.oldestLocked()
		delete(s.sessions, id)
		evicted = append(evicted, id)
	}
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.notify(evicted, EvictCapacity)
	return nil
}

// Get retrieves a session by ID and refreshes its TTL.
func (s *MemorySessionStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	session, exists := s.sessions[id]
	if !exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	now := s.opts.Now()
	if s.expiredLocked(session, now) {
		delete(s.sessions, id)
		s.mu.Unlock()
		s.notify([]string{id}, EvictExpired)
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.LastAccess = now

	// Return a copy to prevent external modification
	sessionCopy := *session
	s.mu.Unlock()
	return &sessionCopy, nil
}

// Delete removes a session from the store
func (s *MemorySessionStore) Delete(id string) error {
	s.mu.Lock()
	if _, exists := s.sessions[id]; !exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	s.notify([]string{id}, EvictDeleted)
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// the janitor runs.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupExpired removes every expired session and returns how many.
func (s *MemorySessionStore) CleanupExpired() int {
	s.mu.Lock()
	now := s.opts.Now()
	var expired []string
	for id, session := range s.sessions {
		if s.expiredLocked(session, now) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.opts.Logger.Debug("expired sessions removed", slog.Int("count", len(expired)))
	}
	s.notify(expired, EvictExpired)
	return len(expired)
}

// Close stops the janitor and drops every session. It is safe to call more
// than once.
func (s *MemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done

		s.mu.Lock()
		s.closed = true
		ids := make([]string, 0, len(s.sessions))
		for id := range s.sessions {
			ids = append(ids, id)
		}
		s.sessions = make(map[string]*Session)
		s.mu.Unlock()

		s.notify(ids, EvictClosed)
	})
	return nil
}

// Closed reports whether Close has been called.
func (s *MemorySessionStore) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *MemorySessionStore) janitor(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.CleanupExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *MemorySessionStore) expiredLocked(session *Session, now time.Time) bool {
	return s.opts.TTL > 0 && now.Sub(session.LastAccess) >= s.opts.TTL
}

func (s *MemorySessionStore) oldestLocked() string {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, session := range s.sessions {
		if oldestID == "" || session.LastAccess.Before(oldest) {
			oldestID, oldest = id, session.LastAccess
		}
	}
	return oldestID
}

func (s *MemorySessionStore) notify(ids []string, reason string) {
	if s.opts.OnEvict == nil {
		return
	}
	for _, id := range ids {
		s.opts.OnEvict(id, reason)
	}
}
