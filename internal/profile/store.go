package profile

import (
	"sync"
)

// Store keeps per-user profiles in memory. Reads return copies so a
// caller's snapshot is stable across concurrent updates.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Snapshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{profiles: make(map[string]*Snapshot)}
}

// Get returns a copy of the user's profile, or nil if none exists.
func (s *Store) Get(userID string) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil
	}
	return p.Clone()
}

// GetOrCreate returns a copy of the user's profile, creating an empty
// one first if the user is new.
func (s *Store) GetOrCreate(userID string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = NewSnapshot(userID)
		s.profiles[userID] = p
	}
	return p.Clone()
}

// Put replaces the stored profile with a copy of the given snapshot.
func (s *Store) Put(snapshot *Snapshot) {
	if snapshot == nil || snapshot.UserID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[snapshot.UserID] = snapshot.Clone()
}

// Update applies fn to the user's profile under the store lock. The
// profile is created if absent.
func (s *Store) Update(userID string, fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = NewSnapshot(userID)
		s.profiles[userID] = p
	}
	fn(p)
}

// Len reports how many users have profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
