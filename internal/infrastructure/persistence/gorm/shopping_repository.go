package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/mealplanner/internal/domain/shopping"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingListRepository implements the shopping list repository using GORM
type ShoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository
func NewShoppingListRepository(db *gorm.DB) outbound.ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

// Save inserts or updates a list
func (r *ShoppingListRepository) Save(ctx context.Context, l *shopping.List) error {
	return r.db.WithContext(ctx).Save(ShoppingListToModel(l)).Error
}

// FindByID finds a list by ID
func (r *ShoppingListRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error) {
	var model ShoppingListModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shopping.ErrListNotFound
		}
		return nil, err
	}
	return ModelToShoppingList(&model), nil
}

// ListByUser returns a user's lists, newest first
func (r *ShoppingListRepository) ListByUser(ctx context.Context, userID string) ([]*shopping.List, error) {
	var models []ShoppingListModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	lists := make([]*shopping.List, len(models))
	for i := range models {
		lists[i] = ModelToShoppingList(&models[i])
	}
	return lists, nil
}

// Delete deletes a list by ID
func (r *ShoppingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ShoppingListModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shopping.ErrListNotFound
	}
	return nil
}
