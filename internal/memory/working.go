package memory

import (
	"context"
	"sync"
)

// Well-known working memory keys.
const (
	KeyActiveGraph     = "active_graph_id"
	KeyPendingResearch = "pending_research"
)

// WorkingStore is session-scoped key/value state. Absent keys read as
// the empty string, and setting the empty string deletes the key, so a
// value's presence is its truth.
type WorkingStore interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	// All returns every key set for the session.
	All(ctx context.Context, sessionID string) (map[string]string, error)
}

type inMemoryWorking struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewWorkingStore returns an in-process WorkingStore.
func NewWorkingStore() WorkingStore {
	return &inMemoryWorking{sessions: make(map[string]map[string]string)}
}

func (w *inMemoryWorking) Get(_ context.Context, sessionID, key string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sessions[sessionID][key], nil
}

func (w *inMemoryWorking) Set(_ context.Context, sessionID, key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if value == "" {
		if kv, ok := w.sessions[sessionID]; ok {
			delete(kv, key)
			if len(kv) == 0 {
				delete(w.sessions, sessionID)
			}
		}
		return nil
	}
	kv, ok := w.sessions[sessionID]
	if !ok {
		kv = make(map[string]string)
		w.sessions[sessionID] = kv
	}
	kv[key] = value
	return nil
}

func (w *inMemoryWorking) All(_ context.Context, sessionID string) (map[string]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]string, len(w.sessions[sessionID]))
	for k, v := range w.sessions[sessionID] {
		out[k] = v
	}
	return out, nil
}
