package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/joist/pkg/adapters/redis"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	ports.RunDocumentStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Keys(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client, redis.WithPrefix("site:"))
	ctx := context.Background()

	doc := domain.SerializedNodes{domain.RootNodeID: {Type: "Container", IsCanvas: true}}
	require.NoError(t, store.Save(ctx, "home", doc))

	assert.True(t, mr.Exists("site:home"))
	members, err := mr.ZMembers("site:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, members)
	assert.Equal(t, "site:", store.Prefix())

	require.NoError(t, store.Delete(ctx, "home"))
	assert.False(t, mr.Exists("site:home"))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "draft", domain.SerializedNodes{domain.RootNodeID: {Type: "Container", IsCanvas: true}}))
	assert.Equal(t, time.Hour, mr.TTL(redis.DefaultPrefix+"draft"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(ctx, "draft")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{not json"))

	_, err := store.Load(context.Background(), "broken")
	assert.ErrorContains(t, err, "failed to unmarshal document")
}
