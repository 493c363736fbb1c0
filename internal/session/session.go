package session

import (
	"sync"
	"time"

	"trendspotter/domain/core"
	"trendspotter/internal/errors"

	"golang.org/x/sync/semaphore"
)

// Session is one user's working state. Reads are always allowed; state
// changing actions must hold the gate, see Begin.
type Session struct {
	ID core.SessionID

	mu         sync.RWMutex
	state      State
	lastActive time.Time

	gate *semaphore.Weighted
}

// New creates an empty session
func New(id core.SessionID) *Session {
	return &Session{
		ID:         id,
		state:      Empty{},
		lastActive: time.Now(),
		gate:       semaphore.NewWeighted(1),
	}
}

// Begin admits one action. It fails with SESSION_BUSY while another action
// is running; the returned func releases the gate.
func (s *Session) Begin() (func(), error) {
	if !s.gate.TryAcquire(1) {
		return nil, errors.SessionBusy()
	}
	s.touch()
	var once sync.Once
	return func() { once.Do(func() { s.gate.Release(1) }) }, nil
}

// State returns the current state value
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loaded returns the loaded state, or NO_DATASET when nothing is loaded
func (s *Session) Loaded() (Loaded, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.state.(Loaded); ok {
		return l, nil
	}
	return Loaded{}, errors.NoDataset()
}

// Commit replaces the state. Callers build the next value first so a failed
// action never reaches Commit and the previous state survives.
func (s *Session) Commit(next State) {
	s.mu.Lock()
	s.state = next
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive is when the session last started an action or changed state
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}
