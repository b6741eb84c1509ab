// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/google/uuid"
)

// RecipeService defines the use cases around recipes and their cooking graphs
type RecipeService interface {
	// Generation
	GenerateRecipes(ctx context.Context, cmd GenerateRecipesCommand) ([]*RecipeDTO, error)

	// Parsing into cooking tracks
	ParseRecipe(ctx context.Context, cmd ParseRecipeCommand) (*ParseRecipeResponse, error)
	ParseStream(ctx context.Context, cmd ParseRecipeCommand, progress func(ParseProgress)) (*ParseRecipeResponse, error)
	GetParsedRecipe(ctx context.Context, id uuid.UUID) (*ParseRecipeResponse, error)
	BuildGraph(ctx context.Context, cmd BuildGraphCommand) (*GraphResponse, error)

	// Queries
	GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
	SearchRecipes(ctx context.Context, query SearchQuery) ([]SearchHit, error)
}

// GenerateRecipesCommand asks for a handful of candidate recipes
type GenerateRecipesCommand struct {
	Prompt  string   `json:"prompt" validate:"required,min=3,max=500"`
	Count   int      `json:"count" validate:"omitempty,min=1,max=6"`
	Dietary []string `json:"dietary" validate:"max=10,dive,max=40"`
	Cuisine string   `json:"cuisine" validate:"max=40"`
	UserID  string   `json:"-"`
}

// ParseRecipeCommand identifies the recipe to parse. Exactly one of Recipe,
// RecipeID or RawText is used, in that order of precedence.
type ParseRecipeCommand struct {
	Recipe       *RecipeDTO `json:"recipe" validate:"omitempty"`
	RecipeID     *uuid.UUID `json:"recipe_id"`
	RawText      string     `json:"raw_text" validate:"max=20000"`
	Title        string     `json:"title" validate:"max=200"`
	ForceRefresh bool       `json:"force_refresh"`
}

// ParseRecipeResponse is the {recipe, graph, annotations} payload
type ParseRecipeResponse struct {
	ID          uuid.UUID              `json:"id"`
	Recipe      *RecipeDTO             `json:"recipe"`
	Graph       stepgraph.StepGraph    `json:"graph"`
	Annotations stepgraph.Document     `json:"annotations"`
	Diagnostics []stepgraph.Diagnostic `json:"diagnostics,omitempty"`
	Provider    string                 `json:"provider"`
	Cached      bool                   `json:"cached"`
	ParsedAt    time.Time              `json:"parsed_at"`
}

// Parse stages reported through ParseProgress
const (
	StageResolving  = "resolving"
	StageCache      = "cache"
	StageAnnotating = "annotating"
	StageBuilding   = "building"
	StageDone       = "done"
)

// ParseProgress is one progress frame of a streaming parse
type ParseProgress struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// BuildGraphCommand runs the graph builder on caller-supplied annotations
type BuildGraphCommand struct {
	Annotations    stepgraph.Document `json:"annotations"`
	WarnDuplicates bool               `json:"warn_duplicates"`
}

// GraphResponse is the builder output plus typed diagnostics
type GraphResponse struct {
	Graph       stepgraph.StepGraph    `json:"graph"`
	Diagnostics []stepgraph.Diagnostic `json:"diagnostics"`
	Skipped     []string               `json:"skipped_steps,omitempty"`
}

// SearchQuery is a semantic recipe search
type SearchQuery struct {
	Query string `form:"q" json:"q" validate:"required,min=2,max=200"`
	Limit int    `form:"limit" json:"limit" validate:"omitempty,min=1,max=50"`
}

// SearchHit is a scored search result
type SearchHit struct {
	Recipe *RecipeDTO `json:"recipe"`
	Score  float64    `json:"score"`
}
