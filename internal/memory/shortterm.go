package memory

import (
	"sync"
	"time"
)

// Roles used in short-term history turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in the short-term history.
type Turn struct {
	Role    string
	Content string
	At      time.Time
}

// ShortTerm keeps the most recent turns per session, bounded to a fixed
// number of entries. Eviction is oldest-first.
type ShortTerm struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string][]Turn
}

// NewShortTerm returns a short-term store keeping at most limit turns
// per session.
func NewShortTerm(limit int) *ShortTerm {
	if limit <= 0 {
		limit = 20
	}
	return &ShortTerm{limit: limit, sessions: make(map[string][]Turn)}
}

// Add appends a turn, evicting the oldest when over the limit.
func (s *ShortTerm) Add(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.sessions[sessionID], Turn{Role: role, Content: content, At: time.Now()})
	if len(turns) > s.limit {
		turns = turns[len(turns)-s.limit:]
	}
	s.sessions[sessionID] = turns
}

// Recent returns up to n of the latest turns, oldest first.
func (s *ShortTerm) Recent(sessionID string, n int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	if n <= 0 || n > len(turns) {
		n = len(turns)
	}
	out := make([]Turn, n)
	copy(out, turns[len(turns)-n:])
	return out
}

// Clear drops a session's history.
func (s *ShortTerm) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
