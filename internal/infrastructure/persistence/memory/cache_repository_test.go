package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(now *time.Time) *CacheRepository {
	c := NewCacheRepository(0)
	c.now = func() time.Time { return *now }
	return c
}

func TestCacheRepository_GetSet(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(&now)
	ctx := context.Background()

	_, err := c.Get(ctx, "graph:a")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "graph:a", []byte("payload"), time.Minute))
	got, err := c.Get(ctx, "graph:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "graph:a")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	ok, err := c.Exists(ctx, "graph:a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_SetCopiesValue(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestCacheRepository_Increment(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Increment(ctx, "hits")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCacheRepository_SweepAndDelete(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))
	now = now.Add(time.Minute)

	c.sweep()
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, "long"))
	assert.Equal(t, 0, c.Len())
	c.Close()
	c.Close()
}
