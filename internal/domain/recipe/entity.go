// Package recipe contains the recipe aggregate and the parsed-recipe record
// that pairs a recipe with its cooking-track graph.
package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	minTitleLength       = 3
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxInstructions      = 60
)

// Recipe is the aggregate root for a single recipe.
type Recipe struct {
	id          uuid.UUID
	title       string
	description string
	cuisine     string

	ingredients  []Ingredient
	instructions []string
	tags         []string

	servings    int
	prepMinutes int
	cookMinutes int

	source    Source
	createdAt time.Time

	events []shared.DomainEvent
}

// Draft carries the attributes needed to create or rebuild a Recipe.
type Draft struct {
	Title        string
	Description  string
	Cuisine      string
	Ingredients  []Ingredient
	Instructions []string
	Tags         []string
	Servings     int
	PrepMinutes  int
	CookMinutes  int
	Source       Source
}

// NewRecipe validates the draft and creates a new recipe.
func NewRecipe(d Draft) (*Recipe, error) {
	r, err := build(uuid.New(), time.Now().UTC(), d)
	if err != nil {
		return nil, err
	}
	r.addEvent(RecipeCreatedEvent{
		RecipeID:  r.id,
		Title:     r.title,
		Source:    r.source,
		CreatedAt: r.createdAt,
	})
	return r, nil
}

// Reconstitute rebuilds a persisted recipe without raising events.
func Reconstitute(id uuid.UUID, createdAt time.Time, d Draft) (*Recipe, error) {
	return build(id, createdAt, d)
}

func build(id uuid.UUID, createdAt time.Time, d Draft) (*Recipe, error) {
	title := strings.TrimSpace(d.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if len(d.Description) > maxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	if d.Servings < 0 {
		return nil, ErrInvalidServings
	}
	if d.PrepMinutes < 0 || d.CookMinutes < 0 {
		return nil, ErrInvalidDuration
	}

	instructions := make([]string, 0, len(d.Instructions))
	for _, line := range d.Instructions {
		if line = strings.TrimSpace(line); line != "" {
			instructions = append(instructions, line)
		}
	}
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if len(instructions) > maxInstructions {
		return nil, ErrTooManyInstructions
	}

	ingredients := make([]Ingredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		if err := ing.Validate(); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}

	source := d.Source
	if source == "" {
		source = SourceUser
	}

	return &Recipe{
		id:           id,
		title:        title,
		description:  strings.TrimSpace(d.Description),
		cuisine:      strings.ToLower(strings.TrimSpace(d.Cuisine)),
		ingredients:  ingredients,
		instructions: instructions,
		tags:         append([]string{}, d.Tags...),
		servings:     d.Servings,
		prepMinutes:  d.PrepMinutes,
		cookMinutes:  d.CookMinutes,
		source:       source,
		createdAt:    createdAt,
		events:       []shared.DomainEvent{},
	}, nil
}

func validateTitle(title string) error {
	if len(title) < minTitleLength {
		return ErrTitleTooShort
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ID returns the recipe's unique identifier
func (r *Recipe) ID() uuid.UUID { return r.id }

// Title returns the recipe's title
func (r *Recipe) Title() string { return r.title }

// Description returns the recipe's description
func (r *Recipe) Description() string { return r.description }

// Cuisine returns the lower-cased cuisine label
func (r *Recipe) Cuisine() string { return r.cuisine }

// Ingredients returns the recipe's ingredients
func (r *Recipe) Ingredients() []Ingredient { return r.ingredients }

// Instructions returns the ordered instruction lines
func (r *Recipe) Instructions() []string { return r.instructions }

// Tags returns the recipe's tags
func (r *Recipe) Tags() []string { return r.tags }

// Servings returns the number of servings, zero when unknown
func (r *Recipe) Servings() int { return r.servings }

// PrepMinutes returns the preparation time in minutes
func (r *Recipe) PrepMinutes() int { return r.prepMinutes }

// CookMinutes returns the cooking time in minutes
func (r *Recipe) CookMinutes() int { return r.cookMinutes }

// TotalMinutes returns prep plus cook time
func (r *Recipe) TotalMinutes() int { return r.prepMinutes + r.cookMinutes }

// Source reports where the recipe came from
func (r *Recipe) Source() Source { return r.source }

// CreatedAt returns the creation timestamp
func (r *Recipe) CreatedAt() time.Time { return r.createdAt }

// Draft returns the recipe's attributes as a Draft.
func (r *Recipe) Draft() Draft {
	return Draft{
		Title:        r.title,
		Description:  r.description,
		Cuisine:      r.cuisine,
		Ingredients:  append([]Ingredient{}, r.ingredients...),
		Instructions: append([]string{}, r.instructions...),
		Tags:         append([]string{}, r.tags...),
		Servings:     r.servings,
		PrepMinutes:  r.prepMinutes,
		CookMinutes:  r.cookMinutes,
		Source:       r.source,
	}
}

// ContentHash is a stable digest over the parts of a recipe that shape its
// cooking graph. Recipes with equal hashes share a cached graph.
func (r *Recipe) ContentHash() string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(r.title)))
	h.Write([]byte{0})
	for _, ing := range r.ingredients {
		h.Write([]byte(ing.String()))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, line := range r.instructions {
		h.Write([]byte(line))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MarkGenerated records that the recipe came out of a generation request.
func (r *Recipe) MarkGenerated(provider, prompt string) {
	r.source = SourceGenerated
	r.addEvent(RecipeGeneratedEvent{
		RecipeID:    r.id,
		Provider:    provider,
		Prompt:      prompt,
		GeneratedAt: time.Now().UTC(),
	})
}

// Events returns and clears pending domain events
func (r *Recipe) Events() []shared.DomainEvent {
	events := r.events
	r.events = []shared.DomainEvent{}
	return events
}

func (r *Recipe) addEvent(event shared.DomainEvent) {
	r.events = append(r.events, event)
}
