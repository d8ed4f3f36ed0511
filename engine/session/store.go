package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store holds live sessions by id.
type Store struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a store whose sessions share opts.
func NewStore(opts Options) *Store {
	return &Store{opts: opts, sessions: make(map[string]*Session)}
}

// Create starts a new empty session.
func (st *Store) Create() *Session {
	s := New(uuid.NewString(), st.opts)
	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

// Get returns the session or ErrNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and forgets a session.
func (st *Store) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close(ctx)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
