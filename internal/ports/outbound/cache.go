package outbound

import (
	"context"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/google/uuid"
)

// CachedGraph is a parse result keyed by recipe content hash. Only the id
// of the recipe it was parsed from is cached: any recipe with the same hash
// shares the entry.
type CachedGraph struct {
	ParsedID    uuid.UUID              `json:"parsed_id"`
	RecipeID    uuid.UUID              `json:"recipe_id"`
	Annotations stepgraph.Document     `json:"annotations"`
	Graph       stepgraph.StepGraph    `json:"graph"`
	Diagnostics []stepgraph.Diagnostic `json:"diagnostics,omitempty"`
	Provider    string                 `json:"provider"`
	ParsedAt    time.Time              `json:"parsed_at"`
}

// GraphCache caches parse results by content hash
type GraphCache interface {
	// Get returns ErrCacheMiss when no tier holds the hash
	Get(ctx context.Context, contentHash string) (*CachedGraph, error)
	Set(ctx context.Context, contentHash string, entry *CachedGraph) error
}
