package healthcheck

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// DatabaseChecker checks a pgx connection pool
type DatabaseChecker struct {
	pool *pgxpool.Pool
	name string
}

// NewDatabaseChecker creates a new database health checker
func NewDatabaseChecker(name string, pool *pgxpool.Pool) *DatabaseChecker {
	return &DatabaseChecker{
		pool: pool,
		name: name,
	}
}

// Check performs database health check
func (d *DatabaseChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:        d.name,
		LastChecked: start,
	}

	if err := d.pool.Ping(ctx); err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Database ping failed: %v", err)
		check.Duration = time.Since(start)
		return check
	}

	stats := d.pool.Stat()
	check.Metadata = map[string]interface{}{
		"total_connections":    stats.TotalConns(),
		"idle_connections":     stats.IdleConns(),
		"acquired_connections": stats.AcquiredConns(),
		"max_connections":      stats.MaxConns(),
	}

	check.Status = StatusHealthy
	// a pool close to saturation is still serving, just slowly
	if stats.MaxConns() > 0 && float64(stats.AcquiredConns())/float64(stats.MaxConns()) > 0.9 {
		check.Status = StatusDegraded
		check.Message = "High connection pool usage"
	}

	check.Duration = time.Since(start)
	return check
}

// SQLChecker checks a database/sql handle, as exposed by gorm
type SQLChecker struct {
	db   *sql.DB
	name string
}

// NewSQLChecker creates a new database/sql health checker
func NewSQLChecker(name string, db *sql.DB) *SQLChecker {
	return &SQLChecker{db: db, name: name}
}

// Check pings the database and reports pool stats
func (s *SQLChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:        s.name,
		LastChecked: start,
		Status:      StatusHealthy,
	}

	if err := s.db.PingContext(ctx); err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Database ping failed: %v", err)
		check.Duration = time.Since(start)
		return check
	}

	stats := s.db.Stats()
	check.Metadata = map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
	if stats.MaxOpenConnections > 0 && float64(stats.InUse)/float64(stats.MaxOpenConnections) > 0.9 {
		check.Status = StatusDegraded
		check.Message = "High connection pool usage"
	}

	check.Duration = time.Since(start)
	return check
}

// RedisChecker checks Redis health
type RedisChecker struct {
	client redis.UniversalClient
	name   string
}

// NewRedisChecker creates a new Redis health checker
func NewRedisChecker(name string, client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{
		client: client,
		name:   name,
	}
}

// Check performs Redis health check
func (r *RedisChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:        r.name,
		LastChecked: start,
	}

	if err := r.client.Ping(ctx).Err(); err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Redis ping failed: %v", err)
		check.Duration = time.Since(start)
		return check
	}

	stats := r.client.PoolStats()
	check.Metadata = map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}

	check.Status = StatusHealthy
	if stats.Timeouts > 0 {
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("Redis pool has %d timeouts", stats.Timeouts)
	}

	check.Duration = time.Since(start)
	return check
}

// ExternalServiceChecker checks an HTTP dependency such as an LLM endpoint
type ExternalServiceChecker struct {
	name    string
	url     string
	client  *http.Client
	timeout time.Duration
}

// NewExternalServiceChecker creates a new external service checker
func NewExternalServiceChecker(name, url string, timeout time.Duration) *ExternalServiceChecker {
	return &ExternalServiceChecker{
		name:    name,
		url:     url,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Check performs external service health check
func (e *ExternalServiceChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:        e.name,
		LastChecked: start,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Failed to create request: %v", err)
		check.Duration = time.Since(start)
		return check
	}

	resp, err := e.client.Do(req)
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Request failed: %v", err)
		check.Duration = time.Since(start)
		return check
	}
	defer resp.Body.Close()

	check.Metadata = map[string]interface{}{
		"status_code": resp.StatusCode,
		"url":         e.url,
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		check.Status = StatusHealthy
	case resp.StatusCode >= 500:
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Service returned %d", resp.StatusCode)
	default:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("Service returned %d", resp.StatusCode)
	}

	check.Duration = time.Since(start)
	return check
}
