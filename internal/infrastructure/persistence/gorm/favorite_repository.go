package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository implements the favorite repository interface using GORM
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *gorm.DB) outbound.FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Save stores a favorite. A second favorite of the same recipe by the same
// user is ignored.
func (r *FavoriteRepository) Save(ctx context.Context, f *favorite.Favorite) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).
		Create(FavoriteToModel(f))
	return result.Error
}

// FindByID finds a favorite by ID
func (r *FavoriteRepository) FindByID(ctx context.Context, id uuid.UUID) (*favorite.Favorite, error) {
	var model FavoriteModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, favorite.ErrFavoriteNotFound
		}
		return nil, err
	}
	return ModelToFavorite(&model), nil
}

// FindByUserAndRecipe finds a user's favorite of one recipe
func (r *FavoriteRepository) FindByUserAndRecipe(ctx context.Context, userID string, recipeID uuid.UUID) (*favorite.Favorite, error) {
	var model FavoriteModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, favorite.ErrFavoriteNotFound
		}
		return nil, err
	}
	return ModelToFavorite(&model), nil
}

// ListByUser lists a page of favorites, newest first, with the total count
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*favorite.Favorite, int, error) {
	var models []FavoriteModel
	var total int64

	countResult := r.db.WithContext(ctx).Model(&FavoriteModel{}).
		Where("user_id = ?", userID).
		Count(&total)
	if countResult.Error != nil {
		return nil, 0, countResult.Error
	}

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	favorites := make([]*favorite.Favorite, len(models))
	for i := range models {
		favorites[i] = ModelToFavorite(&models[i])
	}
	return favorites, int(total), nil
}

// Delete deletes a favorite by ID
func (r *FavoriteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&FavoriteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return favorite.ErrFavoriteNotFound
	}
	return nil
}

// RecordSwipe appends a swipe to the history
func (r *FavoriteRepository) RecordSwipe(ctx context.Context, s favorite.Swipe) error {
	return r.db.WithContext(ctx).Create(&SwipeModel{
		UserID:    s.UserID,
		RecipeID:  s.RecipeID,
		Direction: string(s.Direction),
		SwipedAt:  s.At,
	}).Error
}

// DismissedRecipeIDs returns the recipes whose latest swipe by the user is
// left. A right swipe at the same instant wins.
func (r *FavoriteRepository) DismissedRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&SwipeModel{}).
		Distinct("recipe_id").
		Where("user_id = ? AND direction = ?", userID, string(favorite.DirectionLeft)).
		Where(`NOT EXISTS (SELECT 1 FROM swipes AS later
			WHERE later.user_id = swipes.user_id
			AND later.recipe_id = swipes.recipe_id
			AND later.direction = ?
			AND later.swiped_at >= swipes.swiped_at)`, string(favorite.DirectionRight)).
		Pluck("recipe_id", &ids).Error
	return ids, err
}
