package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheRepository implements outbound.CacheRepository on Redis. Keys are
// namespaced with prefix.
type CacheRepository struct {
	client  redis.UniversalClient
	prefix  string
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewCacheRepository creates a new Redis cache repository
func NewCacheRepository(client redis.UniversalClient, prefix string, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		client:  client,
		prefix:  prefix,
		breaker: NewCircuitBreaker(5, 30*time.Second),
		logger:  logger,
	}
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

func (r *CacheRepository) key(k string) string {
	return r.prefix + k
}

// guard runs fn under the circuit breaker. redis.Nil is not a failure.
func (r *CacheRepository) guard(op, key string, fn func() error) error {
	if !r.breaker.AllowRequest() {
		return ErrCircuitOpen
	}

	err := fn()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.breaker.RecordFailure()
		r.logger.Error("Redis command failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	r.breaker.RecordSuccess()
	return err
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.guard("get", key, func() error {
		var err error
		data, err = r.client.Get(ctx, r.key(key)).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, outbound.ErrCacheMiss
	}
	return data, err
}

// Set stores a value in cache with TTL. A zero TTL never expires.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.guard("set", key, func() error {
		return r.client.Set(ctx, r.key(key), value, ttl).Err()
	})
}

// Delete removes a value from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	return r.guard("del", key, func() error {
		return r.client.Del(ctx, r.key(key)).Err()
	})
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := r.guard("exists", key, func() error {
		var err error
		n, err = r.client.Exists(ctx, r.key(key)).Result()
		return err
	})
	return n > 0, err
}

// Increment atomically increments a counter that expires after an hour
func (r *CacheRepository) Increment(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	err := r.guard("incr", key, func() error {
		pipe := r.client.Pipeline()
		incr = pipe.Incr(ctx, r.key(key))
		pipe.Expire(ctx, r.key(key), time.Hour)
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Ping checks the connection
func (r *CacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
