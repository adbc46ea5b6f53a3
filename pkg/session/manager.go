package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/joist"
	"github.com/aretw0/joist/internal/logging"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates document access, ensuring edits of one document are
// applied one at a time on top of the latest stored version.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	logger   *slog.Logger
	template joist.Element
	editor   []joist.Option
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTemplate sets the root element new documents are created from.
func WithTemplate(el joist.Element) Option {
	return func(m *Manager) {
		m.template = el
	}
}

// WithEditorOptions configures the editors the Manager opens, typically with
// a resolver and lifecycle hooks.
func WithEditorOptions(opts ...joist.Option) Option {
	return func(m *Manager) {
		m.editor = append(m.editor, opts...)
	}
}

// NewManager creates a new document Manager over the given store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
		template: joist.Element{Component: "Container"},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(documentID) after unlocking.
func (m *Manager) acquire(documentID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[documentID]
	if !exists {
		entry = &lockEntry{}
		m.locks[documentID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[documentID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, documentID)
	}
}

func (m *Manager) newEditor(documentID string) *joist.Editor {
	opts := append([]joist.Option{joist.WithLogger(m.logger)}, m.editor...)
	return joist.New(append(opts, joist.WithName(documentID))...)
}

// Create initializes a document from the template and stores it. It fails
// with domain.ErrDocumentExists when the id is taken.
func (m *Manager) Create(ctx context.Context, documentID string) (domain.SerializedNodes, error) {
	var doc domain.SerializedNodes
	err := m.WithLock(ctx, documentID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, documentID)
		if err == nil {
			return fmt.Errorf("%w: %s", domain.ErrDocumentExists, documentID)
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return fmt.Errorf("failed to check document existence: %w", err)
		}

		editor := m.newEditor(documentID)
		if err := editor.Init(m.template); err != nil {
			return fmt.Errorf("failed to build template: %w", err)
		}
		doc = editor.Serialize()
		if err := m.store.Save(ctx, documentID, doc); err != nil {
			return fmt.Errorf("failed to initialize document: %w", err)
		}
		m.logger.Info("document created", "document", documentID, "nodes", len(doc))
		return nil
	})
	return doc, err
}

// Load retrieves a stored document.
func (m *Manager) Load(ctx context.Context, documentID string) (domain.SerializedNodes, error) {
	var doc domain.SerializedNodes
	err := m.WithLock(ctx, documentID, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, documentID)
		return err
	})
	return doc, err
}

// Open loads a document into a fresh editor. Edits made through the editor
// are not stored; use Edit for that.
func (m *Manager) Open(ctx context.Context, documentID string) (*joist.Editor, error) {
	doc, err := m.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	editor := m.newEditor(documentID)
	if err := editor.Deserialize(doc); err != nil {
		return nil, fmt.Errorf("failed to open document %q: %w", documentID, err)
	}
	return editor, nil
}

// Edit loads a document, runs fn on it and stores the result when fn
// succeeds. It returns what fn changed, or nil when nothing did.
func (m *Manager) Edit(ctx context.Context, documentID string, fn func(*joist.Editor) error) (*domain.TreeDiff, error) {
	var diff *domain.TreeDiff
	err := m.WithLock(ctx, documentID, func(ctx context.Context) error {
		stored, err := m.store.Load(ctx, documentID)
		if err != nil {
			return err
		}

		editor := m.newEditor(documentID)
		if err := editor.Deserialize(stored); err != nil {
			return fmt.Errorf("failed to open document %q: %w", documentID, err)
		}
		before := editor.Serialize()
		if err := fn(editor); err != nil {
			return err
		}

		after := editor.Serialize()
		diff = domain.Diff(documentID, before, after)
		if diff == nil {
			return nil
		}
		if err := m.store.Save(ctx, documentID, after); err != nil {
			return fmt.Errorf("failed to save document %q: %w", documentID, err)
		}
		m.logger.Debug("document edited", "document", documentID, "upserted", len(diff.Upserted), "removed", len(diff.Removed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return diff, nil
}

// Save checks doc against the tree invariants and the component catalog and
// stores it, replacing any previous version.
func (m *Manager) Save(ctx context.Context, documentID string, doc domain.SerializedNodes) error {
	if err := m.newEditor(documentID).Deserialize(doc); err != nil {
		return err
	}
	return m.WithLock(ctx, documentID, func(ctx context.Context) error {
		return m.store.Save(ctx, documentID, doc)
	})
}

// Delete removes the document from the store.
func (m *Manager) Delete(ctx context.Context, documentID string) error {
	return m.WithLock(ctx, documentID, func(ctx context.Context) error {
		return m.store.Delete(ctx, documentID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock executes a function while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, documentID string, fn func(context.Context) error) error {
	entry := m.acquire(documentID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(documentID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, documentID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"document", documentID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
