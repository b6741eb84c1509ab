package recipe

import (
	"time"

	"github.com/google/uuid"
)

// RecipeCreatedEvent is raised when a new recipe is created
type RecipeCreatedEvent struct {
	RecipeID  uuid.UUID
	Title     string
	Source    Source
	CreatedAt time.Time
}

func (e RecipeCreatedEvent) EventName() string {
	return "recipe.created"
}

func (e RecipeCreatedEvent) OccurredAt() time.Time {
	return e.CreatedAt
}

// RecipeGeneratedEvent is raised when an LLM produced the recipe
type RecipeGeneratedEvent struct {
	RecipeID    uuid.UUID
	Provider    string
	Prompt      string
	GeneratedAt time.Time
}

func (e RecipeGeneratedEvent) EventName() string {
	return "recipe.generated"
}

func (e RecipeGeneratedEvent) OccurredAt() time.Time {
	return e.GeneratedAt
}

// RecipeParsedEvent is raised after a recipe was split into cooking tracks
type RecipeParsedEvent struct {
	ParsedID     uuid.UUID
	RecipeID     uuid.UUID
	ContentHash  string
	Tracks       int
	Joins        int
	WarningCount int
	Fallback     bool
	ParsedAt     time.Time
}

func (e RecipeParsedEvent) EventName() string {
	return "recipe.parsed"
}

func (e RecipeParsedEvent) OccurredAt() time.Time {
	return e.ParsedAt
}

// RecipeIndexedEvent is raised when a recipe was added to the search index
type RecipeIndexedEvent struct {
	RecipeID  uuid.UUID
	IndexedAt time.Time
}

func (e RecipeIndexedEvent) EventName() string {
	return "recipe.indexed"
}

func (e RecipeIndexedEvent) OccurredAt() time.Time {
	return e.IndexedAt
}
