// Package session keeps per-conversation dialogue state in memory.
package session

import (
	"sync"

	"github.com/iliyamo/cinema-ticket-assistant/internal/dialogue"
)

// Store maps session ids to dialogue state.  It hands out deep copies,
// so a caller can mutate its state freely and persist it back with
// Put; concurrent readers of the same session never share slices.
type Store struct {
	mu     sync.RWMutex
	states map[string]*dialogue.State

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		states: make(map[string]*dialogue.State),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Get returns a copy of the session's state, creating a fresh state
// for unknown ids.
func (s *Store) Get(id string) *dialogue.State {
	s.mu.RLock()
	st, ok := s.states[id]
	s.mu.RUnlock()
	if !ok {
		return dialogue.NewState()
	}
	return st.Clone()
}

// Put stores a copy of the state under the session id.
func (s *Store) Put(id string, st *dialogue.State) {
	s.mu.Lock()
	s.states[id] = st.Clone()
	s.mu.Unlock()
}

// Acquire takes the per-session turn lock and returns its release
// function.  Turns within one session must run serially; the engine
// mutates a single state across several steps and interleaved turns
// would corrupt the slot caches.
func (s *Store) Acquire(id string) func() {
	s.lockMu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.lockMu.Unlock()

	lock.Lock()
	return lock.Unlock
}
