package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ShoppingService manages shopping lists of missing ingredients
type ShoppingService interface {
	CreateFromRecipe(ctx context.Context, cmd CreateShoppingListCommand) (*ShoppingListDTO, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*ShoppingListDTO, error)
	List(ctx context.Context, userID string) ([]*ShoppingListDTO, error)
	ToggleItem(ctx context.Context, userID string, id uuid.UUID, item string) (*ShoppingListDTO, error)
	Offers(ctx context.Context, userID string, id uuid.UUID) ([]OfferDTO, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// CreateShoppingListCommand builds a list from a stored or inline recipe
type CreateShoppingListCommand struct {
	UserID   string     `json:"-"`
	RecipeID *uuid.UUID `json:"recipe_id"`
	Recipe   *RecipeDTO `json:"recipe" validate:"omitempty"`
	Pantry   []string   `json:"pantry" validate:"max=200,dive,max=120"`
}

// ShoppingItemDTO is one line of a shopping list
type ShoppingItemDTO struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Checked  bool    `json:"checked"`
}

// ShoppingListDTO represents a shopping list in API responses
type ShoppingListDTO struct {
	ID        uuid.UUID         `json:"id"`
	RecipeID  uuid.UUID         `json:"recipe_id"`
	Title     string            `json:"title"`
	Items     []ShoppingItemDTO `json:"items"`
	Remaining int               `json:"remaining"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// OfferDTO is a simulated store price for one item
type OfferDTO struct {
	Item       string `json:"item"`
	StoreID    string `json:"store_id"`
	Store      string `json:"store"`
	PriceCents int    `json:"price_cents"`
	InStock    bool   `json:"in_stock"`
}
