//go:build integration

package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCacheRepository_Redis(t *testing.T) {
	addr := testutils.StartRedis(t)
	ctx := context.Background()

	client, err := redis.NewClient(ctx, config.RedisConfig{Addrs: []string{addr}, PoolSize: 4}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	cache := redis.NewCacheRepository(client, "test:", zap.NewNop())

	_, err = cache.Get(ctx, "graph:missing")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "graph:a", []byte(`{"tracks":[]}`), time.Minute))
	got, err := cache.Get(ctx, "graph:a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tracks":[]}`, string(got))

	ok, err := cache.Exists(ctx, "graph:a")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := cache.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, cache.Delete(ctx, "graph:a"))
	ok, err = cache.Exists(ctx, "graph:a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventForwarder_Redis(t *testing.T) {
	addr := testutils.StartRedis(t)
	ctx := context.Background()

	client, err := redis.NewClient(ctx, config.RedisConfig{Addrs: []string{addr}, PoolSize: 4}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	sub := client.Subscribe(ctx, "events")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	forwarder := redis.NewEventForwarder(client, "events", zap.NewNop())
	event := favorite.FavoriteAddedEvent{FavoriteID: uuid.New(), UserID: "u1", RecipeID: uuid.New(), AddedAt: time.Now().UTC()}
	require.NoError(t, forwarder.Handle(ctx, event))

	select {
	case msg := <-sub.Channel():
		var env redis.EventEnvelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, "favorite.added", env.Name)
		assert.Contains(t, string(env.Payload), event.FavoriteID.String())
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}
