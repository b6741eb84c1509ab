package handlers

import (
	"context"

	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockRecipeService struct {
	mock.Mock
}

func (m *mockRecipeService) GenerateRecipes(ctx context.Context, cmd inbound.GenerateRecipesCommand) ([]*inbound.RecipeDTO, error) {
	args := m.Called(ctx, cmd)
	if v := args.Get(0); v != nil {
		return v.([]*inbound.RecipeDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeService) ParseRecipe(ctx context.Context, cmd inbound.ParseRecipeCommand) (*inbound.ParseRecipeResponse, error) {
	args := m.Called(ctx, cmd)
	if v := args.Get(0); v != nil {
		return v.(*inbound.ParseRecipeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeService) ParseStream(ctx context.Context, cmd inbound.ParseRecipeCommand, progress func(inbound.ParseProgress)) (*inbound.ParseRecipeResponse, error) {
	args := m.Called(ctx, cmd, progress)
	if v := args.Get(0); v != nil {
		return v.(*inbound.ParseRecipeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeService) GetParsedRecipe(ctx context.Context, id uuid.UUID) (*inbound.ParseRecipeResponse, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*inbound.ParseRecipeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeService) BuildGraph(ctx context.Context, cmd inbound.BuildGraphCommand) (*inbound.GraphResponse, error) {
	args := m.Called(ctx, cmd)
	if v := args.Get(0); v != nil {
		return v.(*inbound.GraphResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*inbound.RecipeDTO, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*inbound.RecipeDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeService) SearchRecipes(ctx context.Context, query inbound.SearchQuery) ([]inbound.SearchHit, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.([]inbound.SearchHit), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFavoriteService struct {
	mock.Mock
}

func (m *mockFavoriteService) Swipe(ctx context.Context, cmd inbound.SwipeCommand) (*inbound.SwipeResult, error) {
	args := m.Called(ctx, cmd)
	if v := args.Get(0); v != nil {
		return v.(*inbound.SwipeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFavoriteService) ListFavorites(ctx context.Context, userID string, params inbound.PaginationParams) (*inbound.FavoriteList, error) {
	args := m.Called(ctx, userID, params)
	if v := args.Get(0); v != nil {
		return v.(*inbound.FavoriteList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFavoriteService) RemoveFavorite(ctx context.Context, userID string, favoriteID uuid.UUID) error {
	return m.Called(ctx, userID, favoriteID).Error(0)
}

func (m *mockFavoriteService) Dismissed(ctx context.Context, userID string) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]uuid.UUID), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockShoppingService struct {
	mock.Mock
}

func (m *mockShoppingService) CreateFromRecipe(ctx context.Context, cmd inbound.CreateShoppingListCommand) (*inbound.ShoppingListDTO, error) {
	args := m.Called(ctx, cmd)
	if v := args.Get(0); v != nil {
		return v.(*inbound.ShoppingListDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShoppingService) Get(ctx context.Context, userID string, id uuid.UUID) (*inbound.ShoppingListDTO, error) {
	args := m.Called(ctx, userID, id)
	if v := args.Get(0); v != nil {
		return v.(*inbound.ShoppingListDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShoppingService) List(ctx context.Context, userID string) ([]*inbound.ShoppingListDTO, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]*inbound.ShoppingListDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShoppingService) ToggleItem(ctx context.Context, userID string, id uuid.UUID, item string) (*inbound.ShoppingListDTO, error) {
	args := m.Called(ctx, userID, id, item)
	if v := args.Get(0); v != nil {
		return v.(*inbound.ShoppingListDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShoppingService) Offers(ctx context.Context, userID string, id uuid.UUID) ([]inbound.OfferDTO, error) {
	args := m.Called(ctx, userID, id)
	if v := args.Get(0); v != nil {
		return v.([]inbound.OfferDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockShoppingService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}
