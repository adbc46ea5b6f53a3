package ports

import (
	"context"

	"github.com/aretw0/joist/pkg/domain"
)

// DocumentStore defines the interface for persisting serialized documents.
type DocumentStore interface {
	// Save persists the document under the given ID.
	Save(ctx context.Context, documentID string, doc domain.SerializedNodes) error

	// Load retrieves the document with the given ID.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, documentID string) (domain.SerializedNodes, error)

	// Delete removes the document with the given ID.
	Delete(ctx context.Context, documentID string) error

	// List returns the IDs of stored documents.
	List(ctx context.Context) ([]string, error)
}
