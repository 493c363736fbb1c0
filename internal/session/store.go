package session

import (
	"sync"
	"time"

	"trendspotter/domain/core"
	"trendspotter/internal"
)

// Store keeps sessions in memory, keyed by the id held in the client's cookie.
// Nothing is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[core.SessionID]*Session
	logger   *internal.Logger
}

// NewStore creates an empty registry
func NewStore(logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{sessions: make(map[core.SessionID]*Session), logger: logger}
}

// Get returns an existing session
func (st *Store) Get(id core.SessionID) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for raw, creating one when raw is not a
// known id. The second result reports whether a new session was made.
func (st *Store) GetOrCreate(raw string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id, err := core.ParseSessionID(raw); err == nil {
		if s, ok := st.sessions[id]; ok {
			return s, false
		}
	}

	s := New(core.NewSessionID())
	st.sessions[s.ID] = s
	st.logger.Debug("[SessionStore] created session %s", s.ID)
	return s, true
}

// Delete drops a session
func (st *Store) Delete(id core.SessionID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len is the number of live sessions
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// CleanupIdle drops sessions inactive for longer than olderThan and returns
// how many were removed
func (st *Store) CleanupIdle(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.LastActive().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		st.logger.Info("[SessionStore] removed %d idle sessions", removed)
	}
	return removed
}
