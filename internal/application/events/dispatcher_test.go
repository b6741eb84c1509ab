package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string     { return e.name }
func (e testEvent) OccurredAt() time.Time { return time.Time{} }

func TestDispatcher_RoutesByName(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	var got []string
	record := func(prefix string) shared.EventHandler {
		return func(_ context.Context, e shared.DomainEvent) error {
			got = append(got, prefix+e.EventName())
			return nil
		}
	}
	d.Subscribe("recipe.parsed", record("parsed:"))
	d.Subscribe(Wildcard, record("all:"))

	require.NoError(t, d.Publish(context.Background(), testEvent{"recipe.parsed"}, testEvent{"favorite.added"}))
	assert.Equal(t, []string{"parsed:recipe.parsed", "all:recipe.parsed", "all:favorite.added"}, got)
}

func TestDispatcher_HandlerErrorsAreJoined(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(Wildcard, func(context.Context, shared.DomainEvent) error { return boom })
	d.Subscribe(Wildcard, func(context.Context, shared.DomainEvent) error { calls++; return nil })

	err := d.Publish(context.Background(), testEvent{"a"}, testEvent{"b"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
