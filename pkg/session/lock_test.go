package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, documentID string, doc domain.SerializedNodes) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, documentID string) (domain.SerializedNodes, error) {
	return nil, domain.ErrDocumentNotFound
}
func (m *MockStore) Delete(ctx context.Context, documentID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)          { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("doc-%d", i)
		_, _ = mgr.Load(ctx, id)
		_ = mgr.Delete(ctx, id)
	}

	assert.Zero(t, len(mgr.locks), "locks must be released once no caller holds them")
}

type recordingLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	ttls     []time.Duration
	fail     bool
	released int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail {
		return nil, errors.New("lock unavailable")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	l.held[key] = true
	l.ttls = append(l.ttls, ttl)

	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(&MockStore{}, WithLocker(locker), WithLockTTL(5*time.Second))
	ctx := context.Background()

	err := mgr.WithLock(ctx, "home", func(ctx context.Context) error {
		assert.True(t, locker.held["home"], "the distributed lock is held while fn runs")
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, locker.held)
	assert.Equal(t, 1, locker.released)
	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)

	locker.fail = true
	called := false
	err = mgr.WithLock(ctx, "home", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	assert.Zero(t, len(mgr.locks))
}
