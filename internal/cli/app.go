package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/joist"
	"github.com/aretw0/joist/internal/adapters/file"
	"github.com/aretw0/joist/internal/config"
	"github.com/aretw0/joist/pkg/adapters/memory"
	"github.com/aretw0/joist/pkg/adapters/redis"
	"github.com/aretw0/joist/pkg/observability"
	"github.com/aretw0/joist/pkg/persistence/middleware"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/aretw0/joist/pkg/registry"
	"github.com/aretw0/joist/pkg/session"
)

// App bundles the services every long-running command needs.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Resolver ports.Resolver
	Store    ports.DocumentStore
	Manager  *session.Manager
	Metrics  *observability.Metrics

	close func() error
}

// NewApp wires store, resolver, hooks and session manager from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var resolver ports.Resolver = registry.Basic()
	if len(cfg.Components) > 0 {
		resolver = registry.Basic().AllowList(cfg.Components)
	}

	template, err := cfg.RootTemplate()
	if err != nil {
		return nil, err
	}

	store, locker, closeFn, err := newStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	store, err = wrapStore(store, cfg.Store)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Resolver: resolver,
		Store:    store,
		close:    closeFn,
	}

	hooks := observability.LoggingHooks(logger)
	if cfg.Metrics.Enabled {
		app.Metrics = observability.NewMetrics()
		hooks = observability.Chain(hooks, app.Metrics.Hooks())
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithTemplate(template),
		session.WithEditorOptions(
			joist.WithResolver(resolver),
			joist.WithLifecycleHooks(hooks),
		),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	app.Manager = session.NewManager(store, opts...)

	logger.Debug("App initialized", "backend", cfg.Store.Backend, "metrics", cfg.Metrics.Enabled)
	return app, nil
}

// Close releases the store connection, if any.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// newStore builds the configured backend. Redis also provides the
// distributed locker so several replicas can share documents.
func newStore(cfg config.StoreConfig) (ports.DocumentStore, ports.DistributedLocker, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return memory.NewStore(), nil, nil, nil
	case config.BackendFile:
		return file.New(cfg.Path), nil, nil, nil
	case config.BackendRedis:
		ttl, err := cfg.Redis.TTLDuration()
		if err != nil {
			return nil, nil, nil, err
		}
		opts := []redis.Option{redis.WithTTL(ttl)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		locker := redis.NewLocker(store.Client(), store.Prefix())
		return store, locker, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// wrapStore applies redaction, then encryption, as configured.
func wrapStore(store ports.DocumentStore, cfg config.StoreConfig) (ports.DocumentStore, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.Encryption.Enabled() {
		active, fallback, err := cfg.Encryption.Keys()
		if err != nil {
			return nil, err
		}
		enc := middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback}
		if err := enc.Validate(); err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return middleware.Chain(store, mws...), nil
}
