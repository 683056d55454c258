package decision

import (
	"sync"
)

// SessionStore holds recorded answers keyed by (userID, graphID).
// Implementations must be safe for concurrent use across sessions.
type SessionStore interface {
	// Answers returns a copy of the recorded answers for one graph
	// session. Missing sessions return an empty map.
	Answers(userID, graphID string) map[string]string
	// Record writes or overwrites one answer.
	Record(userID, graphID, nodeID, answer string)
	// Clear drops one graph session, or every session of the user when
	// graphID is empty.
	Clear(userID, graphID string)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]map[string]string
}

// NewMemoryStore returns an in-memory SessionStore.
func NewMemoryStore() SessionStore {
	return &memoryStore{sessions: make(map[string]map[string]map[string]string)}
}

func (m *memoryStore) Answers(userID, graphID string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	answers := m.sessions[userID][graphID]
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}

func (m *memoryStore) Record(userID, graphID, nodeID, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	graphs, ok := m.sessions[userID]
	if !ok {
		graphs = make(map[string]map[string]string)
		m.sessions[userID] = graphs
	}
	answers, ok := graphs[graphID]
	if !ok {
		answers = make(map[string]string)
		graphs[graphID] = answers
	}
	answers[nodeID] = answer
}

func (m *memoryStore) Clear(userID, graphID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if graphID == "" {
		delete(m.sessions, userID)
		return
	}
	if graphs, ok := m.sessions[userID]; ok {
		delete(graphs, graphID)
	}
}
