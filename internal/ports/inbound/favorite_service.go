package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FavoriteService curates favorites through swipes
type FavoriteService interface {
	Swipe(ctx context.Context, cmd SwipeCommand) (*SwipeResult, error)
	ListFavorites(ctx context.Context, userID string, params PaginationParams) (*FavoriteList, error)
	RemoveFavorite(ctx context.Context, userID string, favoriteID uuid.UUID) error
	Dismissed(ctx context.Context, userID string) ([]uuid.UUID, error)
}

// SwipeCommand records a user's verdict on a recipe
type SwipeCommand struct {
	UserID    string    `json:"-"`
	RecipeID  uuid.UUID `json:"recipe_id" validate:"required"`
	Direction string    `json:"direction" validate:"required,oneof=left right like dismiss save nope"`
}

// SwipeResult reports the recorded swipe and the favorite it produced, if any
type SwipeResult struct {
	Direction string       `json:"direction"`
	Favorite  *FavoriteDTO `json:"favorite,omitempty"`
}

// FavoriteDTO represents a favorite in API responses
type FavoriteDTO struct {
	ID        uuid.UUID  `json:"id"`
	RecipeID  uuid.UUID  `json:"recipe_id"`
	Title     string     `json:"title"`
	Recipe    *RecipeDTO `json:"recipe,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// FavoriteList is a page of favorites
type FavoriteList struct {
	Items    []*FavoriteDTO `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
