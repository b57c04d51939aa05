package session

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/store"
)

// Session bundles the state and engine for one draft room.
type Session struct {
	RoomCode string
	Store    *store.Store
	Engine   *Engine
}

// Manager owns the live draft sessions, keyed by room code. Sessions are
// created on first access and torn down when their draft is deleted.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	recorder PickRecorder
	clock    clockwork.Clock
}

// NewManager returns an empty session registry.
func NewManager(recorder PickRecorder, clock clockwork.Clock) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		recorder: recorder,
		clock:    clock,
	}
}

// GetOrCreate returns the session for a room code, creating it on first use.
func (m *Manager) GetOrCreate(roomCode string) *Session {
	m.mu.RLock()
	sess, ok := m.sessions[roomCode]
	m.mu.RUnlock()
	if ok {
		return sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[roomCode]; ok {
		return sess
	}

	st := store.New()
	sess = &Session{
		RoomCode: roomCode,
		Store:    st,
		Engine:   NewEngine(st, m.recorder, m.clock),
	}
	m.sessions[roomCode] = sess
	log.Info().Str("room_code", roomCode).Msg("draft session created")
	return sess
}

// Get returns the session for a room code, if one exists.
func (m *Manager) Get(roomCode string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[roomCode]
	return sess, ok
}

// Close tears down a session, resetting its store so late readers observe
// empty state rather than the deleted draft's remnants.
func (m *Manager) Close(roomCode string) {
	m.mu.Lock()
	sess, ok := m.sessions[roomCode]
	if ok {
		delete(m.sessions, roomCode)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	sess.Store.Reset()
	log.Info().Str("room_code", roomCode).Msg("draft session closed")
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
