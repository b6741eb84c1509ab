// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/mealplanner/internal/application/events"
	"github.com/alchemorsel/mealplanner/internal/application/favorite"
	recipeapp "github.com/alchemorsel/mealplanner/internal/application/recipe"
	"github.com/alchemorsel/mealplanner/internal/application/shopping"
	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/admin"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/gorm"
	redisstore "github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/pkg/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const eventChannel = "mealplanner:events"

// Module assembles the whole application from the config file at configPath.
// An empty path searches the default locations.
func Module(configPath string) fx.Option {
	return fx.Options(
		fx.Provide(func() (*config.Config, error) {
			return config.Load(configPath)
		}),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		// Infrastructure modules
		LoggerModule,
		MonitoringModule,
		DatabaseModule,
		CacheModule,
		StorageModule,
		AIModule,

		// Repository modules
		RepositoryModule,

		// Service modules
		EventModule,
		ServiceModule,

		// HTTP modules
		HTTPModule,

		// Lifecycle hooks
		LifecycleModule,
	)
}

// LoggerModule provides logging. The level follows config file changes.
var LoggerModule = fx.Options(
	fx.Provide(
		func(cfg *config.Config) (*logger.Logger, error) {
			return logger.New(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
			})
		},
		func(l *logger.Logger) *zap.Logger {
			return l.Logger
		},
	),
	fx.Invoke(watchLogLevel),
)

func watchLogLevel(cfg *config.Config, l *logger.Logger) {
	zap.ReplaceGlobals(l.Logger)
	cfg.Watch(func(next *config.Config, e fsnotify.Event) {
		if err := l.SetLevel(next.App.LogLevel); err != nil {
			l.Warn("Ignoring invalid log level", zap.String("level", next.App.LogLevel), zap.Error(err))
			return
		}
		l.Info("Configuration reloaded",
			zap.String("file", e.Name),
			zap.String("log_level", next.App.LogLevel))
	}, func(err error) {
		l.Error("Configuration reload rejected", zap.Error(err))
	})
}

// MonitoringModule provides the Prometheus registry, metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewRegistry,
	monitoring.NewMetrics,
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(NewDatabase)

// CacheModule provides the shared cache and the graph cache in front of it
var CacheModule = fx.Provide(
	NewSharedCache,
	NewGraphCache,
)

// StorageModule provides graph archiving
var StorageModule = fx.Provide(NewArchive)

// AIModule provides the LLM provider chain and the semantic index
var AIModule = fx.Provide(
	NewAI,
	NewRecipeIndex,
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	func(db *Database) outbound.RecipeRepository { return gormRepo.NewRecipeRepository(db.Gorm) },
	func(db *Database) outbound.ParsedRecipeRepository { return gormRepo.NewParsedRecipeRepository(db.Gorm) },
	func(db *Database) outbound.FavoriteRepository { return gormRepo.NewFavoriteRepository(db.Gorm) },
	func(db *Database) outbound.ShoppingListRepository { return gormRepo.NewShoppingListRepository(db.Gorm) },
)

// EventModule provides the in-process dispatcher. When Redis is available
// every event is also forwarded on a pub/sub channel.
var EventModule = fx.Options(
	fx.Provide(
		events.NewDispatcher,
		func(d *events.Dispatcher) shared.EventPublisher { return d },
	),
	fx.Invoke(func(d *events.Dispatcher, c *SharedCache, log *zap.Logger) {
		if c.Client == nil {
			return
		}
		forwarder := redisstore.NewEventForwarder(c.Client, eventChannel, log)
		d.Subscribe(events.Wildcard, forwarder.Handle)
	}),
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		cfg *config.Config,
		chain *AI,
		recipes outbound.RecipeRepository,
		parsed outbound.ParsedRecipeRepository,
		graphs outbound.GraphCache,
		index outbound.RecipeIndex,
		archive *Archive,
		publisher shared.EventPublisher,
		metrics *monitoring.Metrics,
		tracing *monitoring.TracingProvider,
		log *zap.Logger,
	) *recipeapp.RecipeService {
		return recipeapp.NewRecipeService(recipeapp.Dependencies{
			AI:        chain.Service,
			Heuristic: chain.Heuristic,
			Recipes:   recipes,
			Parsed:    parsed,
			Cache:     graphs,
			Index:     index,
			Archiver:  archive.Archiver,
			Events:    publisher,
			Metrics:   metrics,
			Tracing:   tracing,
			Logger:    log,
		}, recipeapp.Options{
			MaxConcurrency:     cfg.AI.MaxConcurrency,
			WarnDuplicates:     cfg.Features.WarnDuplicateArtifacts,
			DefaultSearchLimit: cfg.Search.DefaultLimit,
		})
	},
	func(s *recipeapp.RecipeService) inbound.RecipeService { return s },
	fx.Annotate(
		favorite.NewFavoriteService,
		fx.As(new(inbound.FavoriteService)),
	),
	fx.Annotate(
		shopping.NewShoppingService,
		fx.As(new(inbound.ShoppingService)),
	),
)

// HTTPModule provides the public API server, its handlers and the admin server
var HTTPModule = fx.Provide(
	middleware.New,
	handlers.NewValidator,
	handlers.NewRecipeHandlers,
	handlers.NewFavoriteHandlers,
	handlers.NewShoppingHandlers,
	func(cfg *config.Config, recipes inbound.RecipeService, v *handlers.Validator) *handlers.ParseStreamHandler {
		return handlers.NewParseStreamHandler(recipes, v, cfg.Server.AllowedOrigins)
	},
	apiserver.NewOpenAPIHandler,
	NewHealthCheck,
	NewRouter,
	apiserver.NewServer,
	admin.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// LifecycleParams are the components started and stopped with the app
type LifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	API        *apiserver.Server
	Admin      *admin.Server
	Middleware *middleware.Middleware
	Recipes    *recipeapp.RecipeService
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(p LifecycleParams) {
	log := p.Logger
	cfg := p.Config
	stopCleanup := make(chan struct{})

	serve := func(name string, start func() error) {
		go func() {
			if err := start(); err != nil {
				log.Error("Server failed", zap.String("server", name), zap.Error(err))
				_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			}
		}()
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting meal planner",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			serve("api", p.API.Start)
			if cfg.Monitoring.MetricsEnabled {
				serve("admin", p.Admin.Start)
			}
			if cfg.RateLimit.Enable && cfg.RateLimit.CleanupInterval > 0 {
				go cleanupVisitors(p.Middleware, cfg.RateLimit.CleanupInterval, stopCleanup, log)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down meal planner")
			close(stopCleanup)

			var errs []error
			if err := p.API.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			if cfg.Monitoring.MetricsEnabled {
				if err := p.Admin.Shutdown(ctx); err != nil {
					errs = append(errs, err)
				}
			}
			// archive and index writes still in flight
			if err := p.Recipes.Wait(ctx); err != nil {
				log.Warn("Background work did not finish", zap.Error(err))
			}

			_ = log.Sync()
			return errors.Join(errs...)
		},
	})
}

func cleanupVisitors(mw *middleware.Middleware, interval time.Duration, stop <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := mw.CleanupVisitors(3 * interval); removed > 0 {
				log.Debug("Dropped idle rate limiters", zap.Int("removed", removed))
			}
		case <-stop:
			return
		}
	}
}
