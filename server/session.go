package main

import (
	"errors"
	"sync"

	"airhockey/hockey"
)

const maxSessions = 100

// ErrTooManySessions is returned by CreateSession once the limit is reached
var ErrTooManySessions = errors.New("too many active sessions")

// Session is one running match and the player who started it
type Session struct {
	ID         string
	PlayerName string
	Difficulty hockey.Difficulty
	Game       *Game
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// CreateSession sets up a match at the given difficulty. The caller starts
// its loop with Game.Run once the owner is attached.
func (sm *SessionManager) CreateSession(name string, d hockey.Difficulty) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil, ErrTooManySessions
	}

	game, err := NewGame(hockey.DefaultConfig().WithDifficulty(d), nil)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:         GenerateUUID(),
		PlayerName: name,
		Difficulty: d,
		Game:       game,
	}
	sm.sessions[sess.ID] = sess
	return sess, nil
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemoveSession stops the match and forgets it
func (sm *SessionManager) RemoveSession(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if ok {
		sess.Game.Stop()
	}
}

// Count returns the number of running sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// StopAll stops every running match and forgets it
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*Session)
	sm.mu.Unlock()
	for _, sess := range sessions {
		sess.Game.Stop()
	}
}
