package document

import (
	"fmt"
	"sync"
	"time"

	"github.com/hpungsan/blueprint/internal/errors"
)

// State is a snapshot of one slot.
type State struct {
	Slot               Slot       `json:"slot"`
	Content            string     `json:"content"`
	InconsistencyCount int        `json:"inconsistency_count"`
	LastModified       *time.Time `json:"last_modified,omitempty"`
}

// Store holds the state of every slot. Every slot has a state at all times
// and counts are never negative.
type Store struct {
	mu      sync.RWMutex
	states  map[Slot]State
	version uint64
}

// NewStore returns a store seeded with the default content and counts.
func NewStore() *Store {
	s := &Store{states: make(map[Slot]State, len(Slots))}
	contents, counts := DefaultContents(), DefaultCounts()
	for _, slot := range Slots {
		s.states[slot] = State{Slot: slot, Content: contents[slot], InconsistencyCount: counts[slot]}
	}
	return s
}

// Get returns a copy of slot's state.
func (s *Store) Get(slot Slot) (State, error) {
	if !slot.Valid() {
		return State{}, invalidSlot(slot)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.states[slot]), nil
}

// ReplaceAll sets every slot's content and count in one update. Both maps
// must name all four slots; negative counts are stored as zero.
func (s *Store) ReplaceAll(contents map[Slot]string, counts map[Slot]int) error {
	for _, slot := range Slots {
		if _, ok := contents[slot]; !ok {
			return errors.NewInvalidRequest(fmt.Sprintf("replace all: missing content for %s", slot))
		}
		if _, ok := counts[slot]; !ok {
			return errors.NewInvalidRequest(fmt.Sprintf("replace all: missing count for %s", slot))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range Slots {
		st := s.states[slot]
		st.Content = contents[slot]
		st.InconsistencyCount = max(counts[slot], 0)
		s.states[slot] = st
	}
	s.version++
	return nil
}

// Patch replaces one slot's content and leaves the others untouched.
func (s *Store) Patch(slot Slot, content string) error {
	if !slot.Valid() {
		return invalidSlot(slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[slot]
	st.Content = content
	s.states[slot] = st
	s.version++
	return nil
}

// AdjustInconsistency adds delta to slot's count, clamping at zero, and
// returns the new count.
func (s *Store) AdjustInconsistency(slot Slot, delta int) (int, error) {
	if !slot.Valid() {
		return 0, invalidSlot(slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[slot]
	st.InconsistencyCount = max(st.InconsistencyCount+delta, 0)
	s.states[slot] = st
	s.version++
	return st.InconsistencyCount, nil
}

// MarkPersisted records when slot was last written to the project registry.
func (s *Store) MarkPersisted(slot Slot, t time.Time) error {
	if !slot.Valid() {
		return invalidSlot(slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[slot]
	st.LastModified = &t
	s.states[slot] = st
	s.version++
	return nil
}

// Snapshot returns a copy of every slot's state.
func (s *Store) Snapshot() map[Slot]State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Slot]State, len(s.states))
	for slot, st := range s.states {
		out[slot] = copyState(st)
	}
	return out
}

// Counts returns every slot's inconsistency count.
func (s *Store) Counts() map[Slot]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Slot]int, len(s.states))
	for slot, st := range s.states {
		out[slot] = st.InconsistencyCount
	}
	return out
}

// Version increases by one for every observable update.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func copyState(st State) State {
	if st.LastModified != nil {
		t := *st.LastModified
		st.LastModified = &t
	}
	return st
}

func invalidSlot(slot Slot) error {
	return errors.NewInvalidRequest(fmt.Sprintf("unknown document slot: %q", string(slot)))
}
