package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockStore is an in-memory implementation of DocumentStore for testing purposes.
type MockStore struct {
	data map[string]domain.SerializedNodes
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.SerializedNodes),
	}
}

func (m *MockStore) Save(ctx context.Context, documentID string, doc domain.SerializedNodes) error {
	m.data[documentID] = doc.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, documentID string) (domain.SerializedNodes, error) {
	doc, ok := m.data[documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, documentID string) error {
	delete(m.data, documentID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestDocumentStore_Contract(t *testing.T) {
	ports.RunDocumentStoreContract(t, NewMockStore())
}

func TestDOMMap_Lookup(t *testing.T) {
	m := ports.DOMMap{"node-1": {Rect: domain.NewRect(0, 0, 100, 20), Floating: true}}

	info := m.Lookup("node-1")
	if assert.NotNil(t, info) {
		assert.Equal(t, 20.0, info.Bottom)
		assert.True(t, info.Floating)
	}
	assert.Nil(t, m.Lookup("missing"), "unmounted nodes report nil")
}

func TestResolverFunc(t *testing.T) {
	r := ports.ResolverFunc(func(name string) (ports.Component, bool) {
		return ports.Component{Name: name}, name == "Text"
	})

	c, ok := r.Resolve("Text")
	assert.True(t, ok)
	assert.Equal(t, "Text", c.Name)

	_, ok = r.Resolve("Hero")
	assert.False(t, ok)
}
