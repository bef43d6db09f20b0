package bot

import (
	"sync"
	"time"
)

type State string

const (
	StateIdle             State = "idle"
	StateAwaitingMessage  State = "awaiting_message"
	StateAwaitingMuteID   State = "awaiting_mute_id"
	StateAwaitingDuration State = "awaiting_mute_duration"
	StateAwaitingReason   State = "awaiting_mute_reason"
	StateAwaitingUnmuteID State = "awaiting_unmute_id"
	StateAwaitingBcast    State = "awaiting_broadcast"
	StateAwaitingSearchID State = "awaiting_search_id"
)

// Session holds only what is needed to interpret the very next message
// from a user.
type Session struct {
	State        State
	TargetID     int64 // relay destination while awaiting a message
	MuteTarget   int64
	MuteDuration time.Duration
}

// SessionStore is the per-user conversation state tracker. Updates for the
// same user may arrive on concurrent handler goroutines, so the map is
// lock-guarded.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]Session)}
}

func (s *SessionStore) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return Session{State: StateIdle}
	}
	return sess
}

func (s *SessionStore) Set(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

// Clear resets the user back to idle.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
