package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	aiapp "github.com/alchemorsel/mealplanner/internal/application/ai"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/ai/gemini"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/ai/mock"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/cache"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/postgres"
	redisstore "github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/search"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/storage"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/pkg/healthcheck"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the GORM handle and, on postgres, the pgx pool
type Database struct {
	Gorm *gorm.DB
	SQL  *sql.DB
	// Pool is nil on sqlite
	Pool *pgxpool.Pool
}

// NewDatabase opens the configured database. Postgres schemas are owned by
// the SQL migrations; sqlite is migrated from the GORM models.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.Driver == "postgres" {
		if cfg.Database.RunMigrations {
			if err := migrations.Run(cfg.GetPostgresURL(), cfg.Database.Database, log); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		cm, err := postgres.NewConnectionManager(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})

		sqlDB, err := cm.DB().DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		return &Database{Gorm: cm.DB(), SQL: sqlDB, Pool: cm.Pool()}, nil
	}

	level := gormlogger.Warn
	if cfg.App.Debug {
		level = gormlogger.Info
	}
	db, err := sqlite.SetupDatabase(cfg.Database.Path, level)
	if err != nil {
		return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return sqlDB.Close() }})

	log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
	return &Database{Gorm: db, SQL: sqlDB}, nil
}

// SharedCache is the cache shared between instances: Redis when enabled and
// reachable, otherwise an in-process map
type SharedCache struct {
	Repository outbound.CacheRepository
	// Client is nil without Redis
	Client redis.UniversalClient
}

// NewSharedCache connects to Redis, falling back to memory when it is down
func NewSharedCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *SharedCache {
	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(context.Background(), cfg.Redis, log)
		if err == nil {
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
			return &SharedCache{
				Repository: redisstore.NewCacheRepository(client, "mealplanner:", log),
				Client:     client,
			}
		}
		log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
	}

	repo := memory.NewCacheRepository(time.Minute)
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		repo.Close()
		return nil
	}})
	return &SharedCache{Repository: repo}
}

// NewGraphCache puts the local LRU in front of the shared cache
func NewGraphCache(cfg *config.Config, shared *SharedCache, metrics *monitoring.Metrics, log *zap.Logger) outbound.GraphCache {
	return cache.NewGraphCache(cfg.Cache.LocalSize, cfg.Cache.GraphTTL, shared.Repository, metrics, log)
}

// Archive is the optional object storage sink for parse results
type Archive struct {
	// Archiver is nil when archiving is disabled
	Archiver outbound.GraphArchiver
	Store    outbound.ArchiveStore
}

// NewArchive selects the object store
func NewArchive(cfg *config.Config, log *zap.Logger) (*Archive, error) {
	if !cfg.Features.EnableArchive || cfg.Storage.Provider == "none" {
		return &Archive{Store: storage.NoopStore{}}, nil
	}

	var (
		store outbound.ArchiveStore
		err   error
	)
	switch cfg.Storage.Provider {
	case "minio":
		store, err = storage.NewMinioStore(cfg.Storage)
	case "s3":
		store, err = storage.NewS3Store(cfg.Storage)
	default:
		err = fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create archive store: %w", err)
	}

	log.Info("Graph archive enabled",
		zap.String("provider", cfg.Storage.Provider),
		zap.String("bucket", cfg.Storage.Bucket))
	return &Archive{Archiver: storage.NewArchiver(store, cfg.Storage.Prefix), Store: store}, nil
}

// AI is the provider chain plus the offline heuristic annotator
type AI struct {
	Service   *aiapp.Service
	Primary   outbound.AIProvider
	Heuristic outbound.RecipeAnnotator
}

// NewAI builds the configured primary provider and the mock fallback
func NewAI(
	cfg *config.Config,
	metrics *monitoring.Metrics,
	tracing *monitoring.TracingProvider,
	log *zap.Logger,
) (*AI, error) {
	offline := mock.NewProvider(cfg.Search.Dimensions)

	var primary outbound.AIProvider
	switch cfg.AI.Provider {
	case "mock":
		primary = offline
	case "ollama":
		primary = ollama.NewClient(cfg.AI.Ollama, cfg.AI.Timeout, log)
	case "openai":
		primary = openai.NewClient(cfg.AI.OpenAI, cfg.AI.Timeout, log)
	case "gemini":
		client, err := gemini.NewClient(context.Background(), cfg.AI, log)
		if err != nil {
			return nil, err
		}
		primary = client
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}

	opts := aiapp.Options{MaxConcurrency: cfg.AI.MaxConcurrency}
	if cfg.AI.FallbackEnabled {
		opts.Fallback = offline
	}

	return &AI{
		Service:   aiapp.NewService(primary, opts, metrics, tracing, log),
		Primary:   primary,
		Heuristic: offline,
	}, nil
}

// NewRecipeIndex returns nil when search is disabled
func NewRecipeIndex(cfg *config.Config, db *Database, log *zap.Logger) (outbound.RecipeIndex, error) {
	if !cfg.Features.EnableSearch {
		return nil, nil
	}
	if cfg.Search.Backend == "pgvector" {
		if db.Pool == nil {
			return nil, fmt.Errorf("pgvector search requires a postgres database")
		}
		return search.NewPGVectorIndex(db.Pool, log), nil
	}
	return search.NewMemoryIndex(), nil
}

// HealthParams are the dependencies reported by the health endpoints
type HealthParams struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Database *Database
	Cache    *SharedCache
	AI       *AI
	Archive  *Archive
}

// NewHealthCheck registers a check per dependency. Only the database is
// critical; the others degrade the service.
func NewHealthCheck(p HealthParams) *healthcheck.HealthCheck {
	hc := healthcheck.New(p.Config.App.Version, p.Logger.Named("health"))
	hc.SetMetrics(healthcheck.NewHealthMetrics(p.Registry))

	hc.Register("database", healthcheck.NewSQLChecker("database", p.Database.SQL))
	if p.Database.Pool != nil {
		hc.Register("database_pool", healthcheck.NewDatabaseChecker("database_pool", p.Database.Pool))
	}
	if p.Cache.Client != nil {
		hc.RegisterOptional("redis", healthcheck.NewRedisChecker("redis", p.Cache.Client))
	}

	if p.Config.AI.Provider == "ollama" {
		hc.RegisterOptional("ai", healthcheck.NewExternalServiceChecker("ai", p.Config.AI.Ollama.BaseURL+"/api/tags", 5*time.Second))
	} else {
		hc.RegisterOptional("ai", healthcheck.NewPingChecker("ai", p.AI.Primary.Ping))
	}

	if pinger, ok := p.Archive.Store.(outbound.Pinger); ok && p.Archive.Archiver != nil {
		hc.RegisterOptional("storage", healthcheck.NewPingChecker("storage", pinger.Ping))
	}

	return hc
}

// RouterParams are the handlers mounted on the API router
type RouterParams struct {
	fx.In

	Config     *config.Config
	Middleware *middleware.Middleware
	Recipes    *handlers.RecipeHandlers
	Favorites  *handlers.FavoriteHandlers
	Shopping   *handlers.ShoppingHandlers
	Stream     *handlers.ParseStreamHandler
	OpenAPI    *apiserver.OpenAPIHandler
	Health     *healthcheck.HealthCheck
}

// NewRouter builds the gin engine
func NewRouter(p RouterParams) (*gin.Engine, error) {
	return apiserver.NewRouter(p.Config, p.Middleware, apiserver.Handlers{
		Recipes:   p.Recipes,
		Favorites: p.Favorites,
		Shopping:  p.Shopping,
		Stream:    p.Stream,
		OpenAPI:   p.OpenAPI,
		Health:    p.Health,
	})
}
