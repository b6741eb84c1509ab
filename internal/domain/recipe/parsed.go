package recipe

import (
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/google/uuid"
)

// ParsedRecipe pairs a recipe with its annotations and the graph built from
// them. It is immutable once created.
type ParsedRecipe struct {
	ID          uuid.UUID
	Recipe      *Recipe
	Annotations stepgraph.Document
	Graph       stepgraph.StepGraph
	Diagnostics []stepgraph.Diagnostic
	Provider    string
	ContentHash string
	ParsedAt    time.Time
}

// NewParsedRecipe builds the graph for annotations produced by provider.
func NewParsedRecipe(r *Recipe, annotations stepgraph.Document, provider string, opts stepgraph.Options) *ParsedRecipe {
	result := annotations.Build(opts)
	return &ParsedRecipe{
		ID:          uuid.New(),
		Recipe:      r,
		Annotations: annotations,
		Graph:       result.Graph,
		Diagnostics: result.Diagnostics,
		Provider:    provider,
		ContentHash: r.ContentHash(),
		ParsedAt:    time.Now().UTC(),
	}
}

// Event describes the parse for event subscribers.
func (p *ParsedRecipe) Event() RecipeParsedEvent {
	return RecipeParsedEvent{
		ParsedID:     p.ID,
		RecipeID:     p.Recipe.ID(),
		ContentHash:  p.ContentHash,
		Tracks:       len(p.Graph.Tracks),
		Joins:        len(p.Graph.Joins),
		WarningCount: len(p.Graph.Warnings),
		Fallback:     p.Graph.IsFallback(),
		ParsedAt:     p.ParsedAt,
	}
}
