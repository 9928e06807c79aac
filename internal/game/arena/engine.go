package arena

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Engine tracks the running sessions by ID.
//
// Engine is safe for concurrent use; the sessions it holds are not.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{sessions: make(map[string]*Session)}
}

// Start creates a session between player and foe, starts it, and registers it.
//
// Postcondition: the returned session is in StatePlayerTurn or StateEnded.
func (e *Engine) Start(player, foe *combat.Combatant, opts Options) (*Session, error) {
	s, err := NewSession(player, foe, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}
	if err := e.Add(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Add registers s. It fails if a session with the same ID is registered.
func (e *Engine) Add(s *Session) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[s.ID()]; ok {
		return fmt.Errorf("arena: combat %s already registered", s.ID())
	}
	e.sessions[s.ID()] = s
	return nil
}

// Get returns the session with id.
func (e *Engine) Get(id string) (*Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	return s, ok
}

// End removes the session with id. It is a no-op for unknown IDs.
func (e *Engine) End(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, id)
}

// Len returns the number of registered sessions.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}
