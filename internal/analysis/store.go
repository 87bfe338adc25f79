package analysis

import "sync"

// Store holds the most recent analysis result for read access from the API
// and the scheduler. Writers replace the whole result; readers get the
// current pointer and must treat it as immutable.
type Store struct {
	mu     sync.RWMutex
	result *Result
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored result.
func (s *Store) Set(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// Latest returns the most recent result, or nil when no run has completed.
func (s *Store) Latest() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}
