// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Save inserts the recipe or replaces the stored row with the same id
func (r *RecipeRepository) Save(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model)
	return result.Error
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model)
}

// FindByIDs loads recipes in the order of ids. Unknown ids are skipped.
func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []RecipeModel
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	byID := make(map[uuid.UUID]*RecipeModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	recipes := make([]*recipe.Recipe, 0, len(models))
	for _, id := range ids {
		model, ok := byID[id]
		if !ok {
			continue
		}
		rec, err := ModelToRecipe(model)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	return recipes, nil
}

// ParsedRecipeRepository implements the parse result repository using GORM
type ParsedRecipeRepository struct {
	db *gorm.DB
}

// NewParsedRecipeRepository creates a new parse result repository
func NewParsedRecipeRepository(db *gorm.DB) outbound.ParsedRecipeRepository {
	return &ParsedRecipeRepository{db: db}
}

// Save stores the parse result and, when it is new, its recipe in one
// transaction. A recipe that is already stored is never rewritten.
func (r *ParsedRecipeRepository) Save(ctx context.Context, p *recipe.ParsedRecipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(RecipeToModel(p.Recipe)).Error; err != nil {
			return err
		}
		return tx.Omit("Recipe").Create(ParsedToModel(p)).Error
	})
}

// FindByID finds a parse result by ID
func (r *ParsedRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.ParsedRecipe, error) {
	var model ParsedRecipeModel

	result := r.db.WithContext(ctx).
		Preload("Recipe").
		First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrParsedNotFound
		}
		return nil, result.Error
	}

	return ModelToParsed(&model)
}

// FindLatestByHash finds the newest parse of identical recipe content
func (r *ParsedRecipeRepository) FindLatestByHash(ctx context.Context, contentHash string) (*recipe.ParsedRecipe, error) {
	var model ParsedRecipeModel

	result := r.db.WithContext(ctx).
		Preload("Recipe").
		Where("content_hash = ?", contentHash).
		Order("parsed_at DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrParsedNotFound
		}
		return nil, result.Error
	}

	return ModelToParsed(&model)
}
