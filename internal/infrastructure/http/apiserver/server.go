// Package apiserver provides the public JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/pkg/healthcheck"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Handlers groups the route handlers mounted by the router
type Handlers struct {
	Recipes   *handlers.RecipeHandlers
	Favorites *handlers.FavoriteHandlers
	Shopping  *handlers.ShoppingHandlers
	Stream    *handlers.ParseStreamHandler
	OpenAPI   *OpenAPIHandler
	Health    *healthcheck.HealthCheck
}

// NewRouter builds the gin engine with the middleware chain and all routes
func NewRouter(cfg *config.Config, mw *middleware.Middleware, h Handlers) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.HandleMethodNotAllowed = true

	r.Use(
		mw.RequestID(),
		mw.Logger(),
		mw.Recovery(),
		mw.Security(),
		mw.CORS(),
		mw.Tracing(),
		mw.Metrics(),
		mw.RateLimit(),
		mw.Compression(),
		mw.ErrorHandler(),
	)

	r.GET("/health", h.Health.Handler())
	r.GET("/health/live", h.Health.LivenessHandler())
	r.GET("/health/ready", h.Health.ReadinessHandler())

	v1 := r.Group("/api/v1")
	v1.GET("/openapi.yaml", h.OpenAPI.ServeYAML)
	v1.GET("/openapi.json", h.OpenAPI.ServeJSON)

	api := v1.Group("", mw.Identity())

	recipes := api.Group("/recipes")
	if cfg.Features.EnableGeneration {
		recipes.POST("/generate", h.Recipes.Generate)
	}
	recipes.POST("/parse", h.Recipes.Parse)
	recipes.GET("/parsed/:id", h.Recipes.GetParsed)
	recipes.POST("/graph", h.Recipes.BuildGraph)
	if cfg.Features.EnableSearch {
		recipes.GET("/search", h.Recipes.Search)
	}
	recipes.GET("/:id", h.Recipes.Get)

	api.POST("/swipes", h.Favorites.Swipe)
	api.GET("/swipes/dismissed", h.Favorites.Dismissed)
	api.GET("/favorites", h.Favorites.List)
	api.DELETE("/favorites/:id", h.Favorites.Remove)

	lists := api.Group("/shopping-lists")
	lists.POST("", h.Shopping.Create)
	lists.GET("", h.Shopping.List)
	lists.GET("/:id", h.Shopping.Get)
	lists.PATCH("/:id/items/:name", h.Shopping.ToggleItem)
	lists.GET("/:id/offers", h.Shopping.Offers)
	lists.DELETE("/:id", h.Shopping.Delete)

	if cfg.Features.EnableWebSocket {
		api.GET("/ws/parse", h.Stream.Serve)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.APIResponse{Success: false, Error: "route not found"})
	})

	return r, nil
}

// Server is the public API HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer wraps the engine in an http.Server, optionally speaking
// cleartext HTTP/2
func NewServer(cfg *config.Config, logger *zap.Logger, engine *gin.Engine) *Server {
	var handler http.Handler = engine
	if cfg.Server.H2C {
		handler = h2c.NewHandler(engine, &http2.Server{IdleTimeout: cfg.Server.IdleTimeout})
	}

	return &Server{
		config: cfg,
		logger: logger.Named("api-server"),
		server: &http.Server{
			Addr:           net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port)),
			Handler:        handler,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.Bool("h2c", s.config.Server.H2C),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
