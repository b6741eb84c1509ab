package favorite

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"right", "LIKE", " save "} {
		d, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, DirectionRight, d)
	}
	d, err := ParseDirection("dismiss")
	require.NoError(t, err)
	assert.Equal(t, DirectionLeft, d)

	_, err = ParseDirection("up")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestNewSwipe(t *testing.T) {
	recipeID := uuid.New()

	_, err := NewSwipe("", recipeID, DirectionRight)
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = NewSwipe("u1", uuid.Nil, DirectionRight)
	assert.ErrorIs(t, err, ErrMissingRecipe)

	s, err := NewSwipe("u1", recipeID, DirectionLeft)
	require.NoError(t, err)
	assert.False(t, s.Liked())
	assert.False(t, s.At.IsZero())
}

func TestFromSwipe(t *testing.T) {
	left, err := NewSwipe("u1", uuid.New(), DirectionLeft)
	require.NoError(t, err)
	_, err = FromSwipe(left, "Pho")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	right, err := NewSwipe("u1", uuid.New(), DirectionRight)
	require.NoError(t, err)
	fav, err := FromSwipe(right, "Pho")
	require.NoError(t, err)

	assert.Equal(t, right.RecipeID, fav.RecipeID())
	assert.Equal(t, "Pho", fav.Title())
	events := fav.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "favorite.added", events[0].EventName())

	fav.Removed()
	events = fav.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "favorite.removed", events[0].EventName())
}
