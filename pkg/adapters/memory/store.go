package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/joist/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.SerializedNodes
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.SerializedNodes),
	}
}

// Save persists a deep copy of the document.
func (s *Store) Save(ctx context.Context, documentID string, doc domain.SerializedNodes) error {
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[documentID] = copied
	return nil
}

// Load retrieves a copy of the document so callers can't mutate the stored one.
func (s *Store) Load(ctx context.Context, documentID string) (domain.SerializedNodes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, documentID)
	return nil
}

// List returns the stored document IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
