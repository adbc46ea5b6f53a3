package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/persistence/middleware"
	"github.com/aretw0/joist/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunDocumentStoreContract(t, mw(NewMockStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	if err := secureStore.Save(ctx, "home", page("my-secret-sauce")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The underlying store only sees the envelope.
	stored, err := underlyingStore.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected a single envelope node, found %d nodes", len(stored))
	}
	if _, ok := stored["node-form"]; ok {
		t.Fatal("Expected node-form to be hidden")
	}
	if _, ok := stored[middleware.EnvelopeNodeID]; !ok {
		t.Fatal("Expected envelope node")
	}

	loaded, err := secureStore.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded["node-form"].Props["apiToken"] != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", loaded["node-form"].Props["apiToken"])
	}
	if loaded["node-form"].Parent != domain.RootNodeID {
		t.Errorf("Expected parent to survive, got %q", loaded["node-form"].Parent)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	if err := secureStoreOld.Save(ctx, "home", page("encrypted-with-old-key")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded["node-form"].Props["apiToken"] != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	// Saving again seals with the new key.
	if err := secureStoreNew.Save(ctx, "home", page("encrypted-with-new-key")); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}
	if _, err := secureStoreOld.Load(ctx, "home"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_PlainDocument(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	if err := underlyingStore.Save(ctx, "home", page("plain")); err != nil {
		t.Fatal(err)
	}

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Load(ctx, "home"); err == nil {
		t.Error("Expected plain documents to be refused")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	if err := (middleware.EncryptionConfig{ActiveKey: []byte("short-key")}).Validate(); err == nil {
		t.Error("Expected an error for invalid key size")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}
