package memory

import (
	"context"
	"fmt"
	"sync"

	"nutritrack/internal/core"
)

// Store is an in-memory DiaryWriter used by tests and the memory backend.
type Store struct {
	mu      sync.Mutex
	entries []core.FoodLogEntry
}

func New() *Store {
	return &Store{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.FoodLogEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// Entries returns a copy of everything appended so far, in append order.
func (s *Store) Entries() []core.FoodLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FoodLogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
