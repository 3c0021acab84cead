// README: Session registry — one processor per active conversation.
package dialogue

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"concierge/internal/types"
)

var ErrSessionNotFound = errors.New("session not found")

// Session pairs a conversation id with its processor.
type Session struct {
	ID        types.ID
	Processor *Processor

	lastSeen time.Time // guarded by the registry mutex
}

// Sessions is an in-memory registry of live conversations. Conversations do
// not survive process restarts; completed or abandoned ones must be removed
// (Remove, Reap) or the registry grows one entry per conversation started.
type Sessions struct {
	mu      sync.Mutex
	byID    map[types.ID]*Session
	newProc func(id types.ID) *Processor
}

// NewSessions creates a registry; newProc builds the processor (and its
// callbacks) for each fresh session.
func NewSessions(newProc func(id types.ID) *Processor) *Sessions {
	return &Sessions{
		byID:    make(map[types.ID]*Session),
		newProc: newProc,
	}
}

// Start creates a new conversation and returns its session.
func (s *Sessions) Start() *Session {
	id := newID()
	sess := &Session{ID: id, Processor: s.newProc(id), lastSeen: time.Now()}
	s.mu.Lock()
	s.byID[id] = sess
	s.mu.Unlock()
	return sess
}

// Get looks up a live session and refreshes its idle clock.
func (s *Sessions) Get(id types.ID) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.byID[id]
	if ok {
		sess.lastSeen = time.Now()
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove drops a session from the registry.
func (s *Sessions) Remove(id types.ID) {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
}

// Reap removes every session idle for longer than ttl and reports the
// evicted ids so callers can release per-session state of their own.
func (s *Sessions) Reap(ttl time.Duration) []types.ID {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []types.ID
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			delete(s.byID, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
