package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/postgresql"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbvec/kbvec/db"
	"github.com/kbvec/kbvec/internal/config"
	"github.com/kbvec/kbvec/internal/knowledge"
	"github.com/kbvec/kbvec/internal/observability"
)

// Setup creates and initializes the application. Any failure here is a
// startup error: the caller reports it once and exits.
func Setup(ctx context.Context, cfg *config.Config) (_ *App, retErr error) {
	a := &App{Config: cfg}

	// On error, release everything already initialized.
	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	// Tracing first so Genkit's provider is ready when plugins start.
	a.otelCleanup = observability.SetupDatadog(ctx, observability.Config{
		AgentHost:   cfg.Datadog.AgentHost,
		Environment: cfg.Datadog.Environment,
		ServiceName: cfg.Datadog.ServiceName,
	})

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	postgres, err := providePostgresPlugin(ctx, pool, cfg)
	if err != nil {
		return nil, err
	}

	g, err := provideGenkit(ctx, postgres)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	docStore, retriever, err := postgresql.DefineRetriever(ctx, g, postgres,
		knowledge.NewDocStoreConfig(cfg.TableName, embedder))
	if err != nil {
		return nil, fmt.Errorf("defining retriever: %w", err)
	}

	a.Store = knowledge.NewStore(docStore, retriever, pool, cfg.TableName, slog.Default())

	return a, nil
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// providePostgresPlugin wraps the connection pool for Genkit's DocStore.
func providePostgresPlugin(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config) (*postgresql.Postgres, error) {
	// WithDatabase is required even when using WithPool.
	pEngine, err := postgresql.NewPostgresEngine(ctx,
		postgresql.WithPool(pool),
		postgresql.WithDatabase(cfg.PostgresDBName),
	)
	if err != nil {
		return nil, fmt.Errorf("creating postgres engine: %w", err)
	}

	return &postgresql.Postgres{Engine: pEngine}, nil
}

// provideGenkit initializes Genkit with the GoogleAI and PostgreSQL plugins.
func provideGenkit(ctx context.Context, postgres *postgresql.Postgres) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}, postgres))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	return g, nil
}
