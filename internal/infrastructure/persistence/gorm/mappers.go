// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shopping"
)

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	ingredients := make([]IngredientJSON, len(r.Ingredients()))
	for i, ing := range r.Ingredients() {
		ingredients[i] = IngredientJSON{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}

	return &RecipeModel{
		ID:              r.ID(),
		Title:           r.Title(),
		Description:     r.Description(),
		Cuisine:         r.Cuisine(),
		Ingredients:     NewJSONField(ingredients),
		Instructions:    StringSlice(r.Instructions()),
		Tags:            StringSlice(r.Tags()),
		PrepTimeMinutes: r.PrepMinutes(),
		CookTimeMinutes: r.CookMinutes(),
		Servings:        r.Servings(),
		Source:          string(r.Source()),
		ContentHash:     r.ContentHash(),
		CreatedAt:       r.CreatedAt(),
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) (*recipe.Recipe, error) {
	ingredients := make([]recipe.Ingredient, len(m.Ingredients.Data))
	for i, ing := range m.Ingredients.Data {
		ingredients[i] = recipe.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}

	return recipe.Reconstitute(m.ID, m.CreatedAt, recipe.Draft{
		Title:        m.Title,
		Description:  m.Description,
		Cuisine:      m.Cuisine,
		Ingredients:  ingredients,
		Instructions: m.Instructions,
		Tags:         m.Tags,
		Servings:     m.Servings,
		PrepMinutes:  m.PrepTimeMinutes,
		CookMinutes:  m.CookTimeMinutes,
		Source:       recipe.Source(m.Source),
	})
}

// ParsedToModel converts a parse result to a GORM model
func ParsedToModel(p *recipe.ParsedRecipe) *ParsedRecipeModel {
	return &ParsedRecipeModel{
		ID:           p.ID,
		RecipeID:     p.Recipe.ID(),
		ContentHash:  p.ContentHash,
		Provider:     p.Provider,
		Annotations:  NewJSONField(p.Annotations),
		Graph:        NewJSONField(p.Graph),
		Diagnostics:  NewJSONField(p.Diagnostics),
		TrackCount:   len(p.Graph.Tracks),
		JoinCount:    len(p.Graph.Joins),
		WarningCount: len(p.Graph.Warnings),
		Fallback:     p.Graph.IsFallback(),
		ParsedAt:     p.ParsedAt,
	}
}

// ModelToParsed converts a GORM model with its preloaded recipe
func ModelToParsed(m *ParsedRecipeModel) (*recipe.ParsedRecipe, error) {
	r, err := ModelToRecipe(&m.Recipe)
	if err != nil {
		return nil, err
	}
	return &recipe.ParsedRecipe{
		ID:          m.ID,
		Recipe:      r,
		Annotations: m.Annotations.Data,
		Graph:       m.Graph.Data,
		Diagnostics: m.Diagnostics.Data,
		Provider:    m.Provider,
		ContentHash: m.ContentHash,
		ParsedAt:    m.ParsedAt,
	}, nil
}

// FavoriteToModel converts a domain favorite to a GORM model
func FavoriteToModel(f *favorite.Favorite) *FavoriteModel {
	return &FavoriteModel{
		ID:        f.ID(),
		UserID:    f.UserID(),
		RecipeID:  f.RecipeID(),
		Title:     f.Title(),
		CreatedAt: f.CreatedAt(),
	}
}

// ModelToFavorite converts a GORM model to a domain favorite
func ModelToFavorite(m *FavoriteModel) *favorite.Favorite {
	return favorite.Reconstitute(m.ID, m.UserID, m.RecipeID, m.Title, m.CreatedAt)
}

// ShoppingListToModel converts a domain shopping list to a GORM model
func ShoppingListToModel(l *shopping.List) *ShoppingListModel {
	items := make([]ShoppingItemJSON, len(l.Items()))
	for i, it := range l.Items() {
		items[i] = ShoppingItemJSON{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit, Checked: it.Checked}
	}
	return &ShoppingListModel{
		ID:        l.ID(),
		UserID:    l.UserID(),
		RecipeID:  l.RecipeID(),
		Title:     l.Title(),
		Items:     NewJSONField(items),
		CreatedAt: l.CreatedAt(),
		UpdatedAt: l.UpdatedAt(),
	}
}

// ModelToShoppingList converts a GORM model to a domain shopping list
func ModelToShoppingList(m *ShoppingListModel) *shopping.List {
	items := make([]shopping.Item, len(m.Items.Data))
	for i, it := range m.Items.Data {
		items[i] = shopping.Item{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit, Checked: it.Checked}
	}
	return shopping.Reconstitute(m.ID, m.UserID, m.RecipeID, m.Title, items, m.CreatedAt, m.UpdatedAt)
}
