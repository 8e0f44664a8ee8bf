// Package session keeps one wizard session per HTTP user in memory.
package session

import (
	"errors"
	"sync"

	"github.com/fmuoria/interview-invite-agent/internal/wizard"
)

// ErrNotFound indicates the session id is unknown or has been deleted.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu sync.Mutex
	s  wizard.Session
}

// Store is an in-memory session table. The table lock guards membership, and each entry
// carries its own lock so actions on one session run one at a time without blocking others.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Create stores s under its id, replacing any previous session with that id
func (st *Store) Create(s wizard.Session) wizard.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = &entry{s: s}
	return s
}

func (st *Store) lookup(id string) (*entry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[id]
	return e, ok
}

// Get returns the session with the given id
func (st *Store) Get(id string) (wizard.Session, error) {
	e, ok := st.lookup(id)
	if !ok {
		return wizard.Session{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s, nil
}

// Update runs fn with the session locked and stores the returned session. The stored
// session is only replaced when fn succeeds. The returned session is whatever fn returned.
func (st *Store) Update(id string, fn func(wizard.Session) (wizard.Session, error)) (wizard.Session, error) {
	e, ok := st.lookup(id)
	if !ok {
		return wizard.Session{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.s)
	if err != nil {
		return next, err
	}
	e.s = next
	return next, nil
}

// Delete removes a session
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
