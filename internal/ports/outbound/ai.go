package outbound

import (
	"context"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
)

// GenerationRequest describes one recipe candidate to generate
type GenerationRequest struct {
	Prompt  string
	Dietary []string
	Cuisine string
	// Variation distinguishes concurrent candidates for the same prompt
	Variation int
}

// RecipeGenerator produces recipes from a free-text prompt
type RecipeGenerator interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (recipe.Draft, error)
}

// RecipeAnnotator splits a recipe's instructions into tracks and join steps.
// Its output is untrusted and is validated by the graph builder.
type RecipeAnnotator interface {
	Name() string
	Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, error)
}

// Embedder turns text into a vector for semantic search
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AIProvider bundles the capabilities a single LLM backend offers
type AIProvider interface {
	RecipeGenerator
	RecipeAnnotator
	Embedder
	Pinger
}

// AIService is the provider chain used by the application layer. Generate
// and Annotate also return the name of the provider that answered.
type AIService interface {
	Generate(ctx context.Context, req GenerationRequest) (recipe.Draft, string, error)
	Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Ping(ctx context.Context) error
}
