// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shopping"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// RecipeRepository persists recipes that were generated or parsed
type RecipeRepository interface {
	// Save inserts or replaces the recipe by id
	Save(ctx context.Context, r *recipe.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error)
}

// ParsedRecipeRepository persists parse results
type ParsedRecipeRepository interface {
	Save(ctx context.Context, p *recipe.ParsedRecipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.ParsedRecipe, error)
	FindLatestByHash(ctx context.Context, contentHash string) (*recipe.ParsedRecipe, error)
}

// FavoriteRepository persists favorites and the swipe history
type FavoriteRepository interface {
	Save(ctx context.Context, f *favorite.Favorite) error
	FindByID(ctx context.Context, id uuid.UUID) (*favorite.Favorite, error)
	FindByUserAndRecipe(ctx context.Context, userID string, recipeID uuid.UUID) (*favorite.Favorite, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*favorite.Favorite, int, error)
	Delete(ctx context.Context, id uuid.UUID) error

	RecordSwipe(ctx context.Context, s favorite.Swipe) error
	DismissedRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error)
}

// ShoppingListRepository persists shopping lists
type ShoppingListRepository interface {
	Save(ctx context.Context, l *shopping.List) error
	FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error)
	ListByUser(ctx context.Context, userID string) ([]*shopping.List, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Counter operations
	Increment(ctx context.Context, key string) (int64, error)
}

// ArchiveStore keeps immutable copies of parse results in object storage
type ArchiveStore interface {
	Put(ctx context.Context, key string, body []byte, contentType, contentEncoding string) error
}

// ScoredID is a search hit before the recipe is loaded
type ScoredID struct {
	ID    uuid.UUID
	Score float64
}

// RecipeIndex is a vector index over recipe embeddings
type RecipeIndex interface {
	Upsert(ctx context.Context, id uuid.UUID, vector []float32) error
	Query(ctx context.Context, vector []float32, limit int) ([]ScoredID, error)
}

// Pinger is implemented by adapters that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}

// GraphArchiver writes a snapshot of a parse result and returns its key
type GraphArchiver interface {
	Archive(ctx context.Context, p *recipe.ParsedRecipe) (string, error)
}
