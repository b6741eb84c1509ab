// Package middleware provides HTTP middleware components
// following the Chain of Responsibility pattern
package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/alchemorsel/mealplanner/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Context keys set by the middleware chain
const (
	RequestIDKey = "request_id"
	LoggerKey    = "logger"
	UserIDKey    = "user_id"
)

// Middleware provides all middleware functions
type Middleware struct {
	config  *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *monitoring.Metrics

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a new middleware instance
func New(cfg *config.Config, logger *zap.Logger, tracing *monitoring.TracingProvider, metrics *monitoring.Metrics) *Middleware {
	return &Middleware{
		config:   cfg,
		logger:   logger.Named("http"),
		tracer:   tracing.Tracer(),
		metrics:  metrics,
		visitors: make(map[string]*visitor),
	}
}

// RequestID adds a unique request ID to the context
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// Logger provides structured logging for requests. The request-scoped logger
// is stored on the gin context and on the request context.
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		reqLogger := m.logger.With(zap.String("request_id", c.GetString(RequestIDKey)))
		c.Set(LoggerKey, reqLogger)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLogger))

		c.Next()

		// Skip logging for health checks
		if strings.HasPrefix(path, "/health") {
			return
		}

		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if userID := c.GetString(UserIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		errorMessage := c.Errors.String()
		switch {
		case statusCode >= 500:
			reqLogger.Error("Server error", append(fields, zap.String("error", errorMessage))...)
		case statusCode >= 400:
			reqLogger.Warn("Client error", append(fields, zap.String("error", errorMessage))...)
		default:
			reqLogger.Info("Request completed", fields...)
		}
	}
}

// LoggerFrom returns the request-scoped logger set by Logger
func LoggerFrom(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(LoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.L()
}

// Recovery recovers from panics and returns 500 error
func (m *Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				LoggerFrom(c).Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
				)

				appErr := errors.NewInternalError("Internal server error")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errors.ToErrorResponse(appErr, c.GetString(RequestIDKey)))
			}
		}()

		c.Next()
	}
}

// CORS handles Cross-Origin Resource Sharing
func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Server.EnableCORS {
			c.Next()
			return
		}

		origin := c.Request.Header.Get("Origin")
		if origin != "" && m.isOriginAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Client-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimit applies a token bucket per client IP
func (m *Middleware) RateLimit() gin.HandlerFunc {
	limit := rate.Limit(float64(m.config.RateLimit.RequestsPerMin) / 60)
	burst := m.config.RateLimit.BurstSize

	return func(c *gin.Context) {
		if !m.config.RateLimit.Enable || strings.HasPrefix(c.Request.URL.Path, "/health") {
			c.Next()
			return
		}

		if !m.limiterFor(c.ClientIP(), limit, burst).Allow() {
			c.Header("Retry-After", "60")
			appErr := errors.NewTooManyRequestsError()
			c.AbortWithStatusJSON(appErr.StatusCode(), errors.ToErrorResponse(appErr, c.GetString(RequestIDKey)))
			return
		}

		c.Next()
	}
}

func (m *Middleware) limiterFor(ip string, limit rate.Limit, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		m.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// CleanupVisitors drops limiters idle for longer than maxIdle and reports
// how many were removed
func (m *Middleware) CleanupVisitors(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for ip, v := range m.visitors {
		if time.Since(v.lastSeen) > maxIdle {
			delete(m.visitors, ip)
			removed++
		}
	}
	return removed
}

// Tracing adds distributed tracing
func (m *Middleware) Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := m.tracer.Start(
			c.Request.Context(),
			fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
				attribute.String("http.user_agent", c.Request.UserAgent()),
				attribute.String("request.id", c.GetString(RequestIDKey)),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		span.SetAttributes(
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.Int("http.response_size", c.Writer.Size()),
		)
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
			span.SetStatus(codes.Error, c.Errors.Last().Error())
		}
	}
}

// Metrics records HTTP request metrics
func (m *Middleware) Metrics() gin.HandlerFunc {
	return m.metrics.HTTPMiddleware()
}

// Security adds security headers
func (m *Middleware) Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if m.config.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// ErrorHandler renders the last error attached by a handler
func (m *Middleware) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			appErr = errors.NewAppError(errors.CodeInternal, "An unexpected error occurred", err.Error())
		}

		log := LoggerFrom(c)
		fields := []zap.Field{
			zap.String("code", string(appErr.Code)),
			zap.String("message", appErr.Message),
			zap.String("details", appErr.Details),
		}
		if appErr.StatusCode() >= http.StatusInternalServerError {
			log.Error("Request error", append(fields, zap.Error(appErr.Cause))...)
			// internal details stay in the logs
			if appErr.Code == errors.CodeInternal {
				appErr = errors.NewAppError(appErr.Code, appErr.Message, "")
			}
		} else {
			log.Debug("Request rejected", fields...)
		}

		c.JSON(appErr.StatusCode(), errors.ToErrorResponse(appErr, c.GetString(RequestIDKey)))
	}
}

// isOriginAllowed checks if origin is in allowed list
func (m *Middleware) isOriginAllowed(origin string) bool {
	if m.config.IsDevelopment() {
		return true
	}

	for _, allowed := range m.config.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}
