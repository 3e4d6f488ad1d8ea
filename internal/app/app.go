// README: Composition root shared by the API server and the CLI; builds every module service from config.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"concierge/internal/ai"
	"concierge/internal/config"
	"concierge/internal/infra"
	"concierge/internal/metrics"
	"concierge/internal/modules/catalog"
	"concierge/internal/modules/concierge"
	"concierge/internal/modules/curation"
	"concierge/internal/modules/intent"
	"concierge/internal/modules/session"
)

type App struct {
	Intents   *intent.Service
	Catalog   *catalog.Service
	Curator   *curation.Service
	Sessions  *session.Service
	Concierge *concierge.Service
	Metrics   *metrics.Metrics
}

// Build wires the services. The returned cleanup releases every opened resource
// and is safe to call even when Build fails.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	m := metrics.New(cfg.MetricsNamespace)

	store, closeStore, err := openStore(ctx, cfg.DB, logger)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeStore)

	rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, cleanup, err
	}
	var cache catalog.Cache
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		cache = catalog.NewRedisCache(rdb, cfg.Catalog.CacheTTL)
		logger.Info("catalog cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	intentLLM, closeIntent, err := ai.NewProvider(ctx, cfg.LLM.Provider, cfg.LLMKey(), cfg.LLM.IntentModel)
	closers = append(closers, closeIntent)
	if err != nil {
		return nil, cleanup, fmt.Errorf("intent llm: %w", err)
	}
	curationLLM, closeCuration, err := ai.NewProvider(ctx, cfg.LLM.Provider, cfg.LLMKey(), cfg.LLM.CurationModel)
	closers = append(closers, closeCuration)
	if err != nil {
		return nil, cleanup, fmt.Errorf("curation llm: %w", err)
	}

	client := catalog.NewClient(cfg.Catalog.SearchURL, cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	a := &App{Metrics: m}
	a.Intents = intent.NewService(intentLLM, logger, m)
	a.Catalog = catalog.NewService(client, cache, logger, m)
	a.Curator = curation.NewService(curationLLM, logger, m)
	a.Sessions = session.NewService(store, logger)
	a.Concierge = concierge.NewService(a.Intents, a.Catalog, a.Curator, a.Sessions, logger, m)
	return a, cleanup, nil
}

func openStore(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (session.Store, func(), error) {
	driver, dsn, err := cfg.Driver()
	if err != nil {
		return nil, func() {}, err
	}

	var (
		store   session.Store
		closeFn func()
	)
	switch driver {
	case "postgres":
		pool, err := infra.NewDB(ctx, dsn)
		if err != nil {
			return nil, func() {}, err
		}
		store, closeFn = session.NewPostgresStore(pool), pool.Close
	default:
		db, err := infra.NewSQLite(ctx, dsn)
		if err != nil {
			return nil, func() {}, err
		}
		store, closeFn = session.NewSQLiteStore(db), func() { _ = db.Close() }
	}

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			closeFn()
			return nil, func() {}, fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info("session store ready", zap.String("driver", driver))
	return store, closeFn, nil
}
