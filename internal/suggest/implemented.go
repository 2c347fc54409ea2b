package suggest

import "sync"

// ImplementedSet records applied item ids for the session. It only grows.
type ImplementedSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
	seq []string
}

// NewImplementedSet returns an empty set.
func NewImplementedSet() *ImplementedSet {
	return &ImplementedSet{ids: make(map[string]struct{})}
}

// Add records id and reports whether it was newly added.
func (s *ImplementedSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.seq = append(s.seq, id)
	return true
}

// Has reports whether id was applied.
func (s *ImplementedSet) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns applied ids in application order.
func (s *ImplementedSet) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.seq...)
}

// Len returns the number of applied ids.
func (s *ImplementedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seq)
}
