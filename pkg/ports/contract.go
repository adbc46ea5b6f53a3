package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractDocument is a small valid document: a root canvas holding one leaf.
func contractDocument(text string) domain.SerializedNodes {
	return domain.SerializedNodes{
		domain.RootNodeID: {
			Type:     "Container",
			IsCanvas: true,
			Props:    domain.Props{"padding": 10},
			Nodes:    []string{"node-title"},
		},
		"node-title": {
			Type:   "Text",
			Props:  domain.Props{"text": text},
			Parent: domain.RootNodeID,
		},
	}
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument("hello")

		err := store.Save(ctx, docID, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		require.Contains(t, loaded, domain.RootNodeID)
		require.Contains(t, loaded, "node-title")
		assert.Equal(t, []string{"node-title"}, loaded[domain.RootNodeID].Nodes)
		assert.True(t, loaded[domain.RootNodeID].IsCanvas)
		assert.Equal(t, domain.RootNodeID, loaded["node-title"].Parent)
		assert.Equal(t, "hello", loaded["node-title"].Props["text"])
		// JSON backed stores turn numbers into float64; only check presence.
		assert.NotNil(t, loaded[domain.RootNodeID].Props["padding"])
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		doc := contractDocument("original")
		require.NoError(t, store.Save(ctx, docID, doc))

		doc["node-title"].Props["text"] = "mutated"

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "original", loaded["node-title"].Props["text"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, docID, contractDocument("bye"))
		require.NoError(t, err)

		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, contractDocument("one"))
		_ = store.Save(ctx, id2, contractDocument("two"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		docs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, docs, id1)
		assert.Contains(t, docs, id2)
	})
}
