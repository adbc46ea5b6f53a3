package middleware_test

import (
	"context"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It keeps what it is given, so tests can inspect the stored form.
type MockStore struct {
	data map[string]domain.SerializedNodes
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.SerializedNodes),
	}
}

func (s *MockStore) Save(ctx context.Context, documentID string, doc domain.SerializedNodes) error {
	s.data[documentID] = doc
	return nil
}

func (s *MockStore) Load(ctx context.Context, documentID string) (domain.SerializedNodes, error) {
	doc, ok := s.data[documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *MockStore) Delete(ctx context.Context, documentID string) error {
	delete(s.data, documentID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.DocumentStore = (*MockStore)(nil)

func page(secret string) domain.SerializedNodes {
	return domain.SerializedNodes{
		domain.RootNodeID: {Type: "Container", IsCanvas: true, Props: domain.Props{}, Nodes: []string{"node-form"}},
		"node-form": {
			Type:   "Form",
			Parent: domain.RootNodeID,
			Props: domain.Props{
				"action":   "https://example.com/hook",
				"apiToken": secret,
				"fields":   map[string]any{"email": "ada@example.com", "name": "Ada"},
			},
		},
	}
}
