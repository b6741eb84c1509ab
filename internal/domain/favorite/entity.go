// Package favorite models swipe curation: liking a recipe keeps it as a
// favorite, dismissing it hides it from future candidate lists.
package favorite

import (
	"errors"
	"strings"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrInvalidDirection = errors.New("swipe direction must be left or right")
	ErrMissingUser      = errors.New("user id is required")
	ErrMissingRecipe    = errors.New("recipe id is required")
)

// Direction of a swipe
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection accepts "left"/"right" and the aliases "dismiss"/"like".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "dismiss", "nope":
		return DirectionLeft, nil
	case "right", "like", "save":
		return DirectionRight, nil
	}
	return "", ErrInvalidDirection
}

// Swipe is a user's verdict on a candidate recipe
type Swipe struct {
	UserID    string
	RecipeID  uuid.UUID
	Direction Direction
	At        time.Time
}

// NewSwipe validates and timestamps a swipe.
func NewSwipe(userID string, recipeID uuid.UUID, direction Direction) (Swipe, error) {
	if strings.TrimSpace(userID) == "" {
		return Swipe{}, ErrMissingUser
	}
	if recipeID == uuid.Nil {
		return Swipe{}, ErrMissingRecipe
	}
	if direction != DirectionLeft && direction != DirectionRight {
		return Swipe{}, ErrInvalidDirection
	}
	return Swipe{UserID: userID, RecipeID: recipeID, Direction: direction, At: time.Now().UTC()}, nil
}

// Liked reports whether the swipe keeps the recipe
func (s Swipe) Liked() bool { return s.Direction == DirectionRight }

// Favorite is a recipe a user decided to keep
type Favorite struct {
	shared.AggregateRoot

	id        uuid.UUID
	userID    string
	recipeID  uuid.UUID
	title     string
	createdAt time.Time
}

// FromSwipe creates a favorite from a right swipe.
func FromSwipe(s Swipe, title string) (*Favorite, error) {
	if !s.Liked() {
		return nil, ErrInvalidDirection
	}
	f := &Favorite{
		id:        uuid.New(),
		userID:    s.UserID,
		recipeID:  s.RecipeID,
		title:     title,
		createdAt: s.At,
	}
	f.AddEvent(FavoriteAddedEvent{FavoriteID: f.id, UserID: f.userID, RecipeID: f.recipeID, AddedAt: f.createdAt})
	return f, nil
}

// Reconstitute rebuilds a stored favorite
func Reconstitute(id uuid.UUID, userID string, recipeID uuid.UUID, title string, createdAt time.Time) *Favorite {
	return &Favorite{id: id, userID: userID, recipeID: recipeID, title: title, createdAt: createdAt}
}

func (f *Favorite) ID() uuid.UUID        { return f.id }
func (f *Favorite) UserID() string       { return f.userID }
func (f *Favorite) RecipeID() uuid.UUID  { return f.recipeID }
func (f *Favorite) Title() string        { return f.title }
func (f *Favorite) CreatedAt() time.Time { return f.createdAt }

// Removed records that the favorite was deleted.
func (f *Favorite) Removed() {
	f.AddEvent(FavoriteRemovedEvent{FavoriteID: f.id, UserID: f.userID, RemovedAt: time.Now().UTC()})
}

// FavoriteAddedEvent is raised on a right swipe
type FavoriteAddedEvent struct {
	FavoriteID uuid.UUID
	UserID     string
	RecipeID   uuid.UUID
	AddedAt    time.Time
}

func (e FavoriteAddedEvent) EventName() string     { return "favorite.added" }
func (e FavoriteAddedEvent) OccurredAt() time.Time { return e.AddedAt }

// FavoriteRemovedEvent is raised when a favorite is deleted
type FavoriteRemovedEvent struct {
	FavoriteID uuid.UUID
	UserID     string
	RemovedAt  time.Time
}

func (e FavoriteRemovedEvent) EventName() string     { return "favorite.removed" }
func (e FavoriteRemovedEvent) OccurredAt() time.Time { return e.RemovedAt }
