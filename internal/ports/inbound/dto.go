package inbound

import (
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/google/uuid"
)

// IngredientDTO represents an ingredient in API responses
type IngredientDTO struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Quantity float64 `json:"quantity,omitempty" validate:"gte=0"`
	Unit     string  `json:"unit,omitempty" validate:"max=32"`
}

// RecipeDTO represents a recipe in API requests and responses
type RecipeDTO struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title" validate:"required,min=3,max=200"`
	Description  string          `json:"description,omitempty" validate:"max=2000"`
	Cuisine      string          `json:"cuisine,omitempty" validate:"max=40"`
	Servings     int             `json:"servings,omitempty" validate:"gte=0,lte=100"`
	PrepMinutes  int             `json:"prep_minutes,omitempty" validate:"gte=0"`
	CookMinutes  int             `json:"cook_minutes,omitempty" validate:"gte=0"`
	TotalMinutes int             `json:"total_minutes,omitempty"`
	Ingredients  []IngredientDTO `json:"ingredients" validate:"max=80,dive"`
	Instructions []string        `json:"instructions" validate:"required,min=1,max=60,dive,required,max=1000"`
	Tags         []string        `json:"tags,omitempty" validate:"max=20,dive,max=40"`
	Source       string          `json:"source,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewRecipeDTO maps a recipe aggregate to its DTO
func NewRecipeDTO(r *recipe.Recipe) *RecipeDTO {
	if r == nil {
		return nil
	}
	ingredients := make([]IngredientDTO, len(r.Ingredients()))
	for i, ing := range r.Ingredients() {
		ingredients[i] = IngredientDTO{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}
	return &RecipeDTO{
		ID:           r.ID(),
		Title:        r.Title(),
		Description:  r.Description(),
		Cuisine:      r.Cuisine(),
		Servings:     r.Servings(),
		PrepMinutes:  r.PrepMinutes(),
		CookMinutes:  r.CookMinutes(),
		TotalMinutes: r.TotalMinutes(),
		Ingredients:  ingredients,
		Instructions: r.Instructions(),
		Tags:         r.Tags(),
		Source:       string(r.Source()),
		CreatedAt:    r.CreatedAt(),
	}
}

// Draft maps the DTO back to domain attributes
func (d *RecipeDTO) Draft() recipe.Draft {
	ingredients := make([]recipe.Ingredient, len(d.Ingredients))
	for i, ing := range d.Ingredients {
		ingredients[i] = recipe.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}
	return recipe.Draft{
		Title:        d.Title,
		Description:  d.Description,
		Cuisine:      d.Cuisine,
		Ingredients:  ingredients,
		Instructions: d.Instructions,
		Tags:         d.Tags,
		Servings:     d.Servings,
		PrepMinutes:  d.PrepMinutes,
		CookMinutes:  d.CookMinutes,
		Source:       recipe.Source(d.Source),
	}
}

// PaginationParams for paginated queries
type PaginationParams struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize clamps the page to >= 1 and the page size to 1..100, defaulting to 20
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

// Offset returns the row offset for the page
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
