package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/joist/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware(t *testing.T) {
	store := NewMockStore()
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)token", "^email$"})
	require.NoError(t, err)
	piiStore := mw(store)

	ctx := context.Background()
	doc := page("super-secret")
	require.NoError(t, piiStore.Save(ctx, "home", doc))

	saved, err := store.Load(ctx, "home")
	require.NoError(t, err)
	props := saved["node-form"].Props
	assert.Equal(t, middleware.Mask, props["apiToken"])
	assert.Equal(t, "https://example.com/hook", props["action"])

	fields := props["fields"].(map[string]any)
	assert.Equal(t, middleware.Mask, fields["email"])
	assert.Equal(t, "Ada", fields["name"])

	assert.Equal(t, "super-secret", doc["node-form"].Props["apiToken"], "caller's document is untouched")
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	store := NewMockStore()
	pii, err := middleware.NewPIIMiddleware([]string{"(?i)token"})
	require.NoError(t, err)
	enc := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	// Masking runs before sealing.
	secure := middleware.Chain(store, pii, enc)
	ctx := context.Background()
	require.NoError(t, secure.Save(ctx, "home", page("super-secret")))

	loaded, err := secure.Load(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded["node-form"].Props["apiToken"])

	raw, err := store.Load(ctx, "home")
	require.NoError(t, err)
	assert.Contains(t, raw, middleware.EnvelopeNodeID)
}
