package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
)

// Store implements ports.StatusStore in memory.
// Safe for concurrent use, so an HTTP monitor may read while a runner writes.
type Store struct {
	data map[string]domain.Snapshot
	mu   sync.RWMutex
}

var _ ports.StatusStore = (*Store)(nil)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Snapshot),
	}
}

// Save records the snapshot. Snapshots are values, so no deep copy is needed.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.Name] = snap
	return nil
}

// Load retrieves the snapshot of a named Doer.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[name]
	if !ok {
		return domain.Snapshot{}, domain.ErrDoerNotFound
	}
	return snap, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns recorded names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
