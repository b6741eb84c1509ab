// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/alchemorsel/mealplanner/internal/domain/shopping"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAIProvider provides a mock implementation of outbound.AIProvider
type MockAIProvider struct {
	mock.Mock
	name string
}

// NewMockAIProvider creates a mock provider reporting name
func NewMockAIProvider(name string) *MockAIProvider {
	return &MockAIProvider{name: name}
}

// Name returns the provider name
func (m *MockAIProvider) Name() string { return m.name }

// Generate mocks recipe generation
func (m *MockAIProvider) Generate(ctx context.Context, req outbound.GenerationRequest) (recipe.Draft, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(recipe.Draft), args.Error(1)
}

// Annotate mocks recipe annotation
func (m *MockAIProvider) Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(stepgraph.Document), args.Error(1)
}

// Embed mocks embedding
func (m *MockAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

// Ping mocks the health check
func (m *MockAIProvider) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockAIService provides a mock implementation of outbound.AIService
type MockAIService struct {
	mock.Mock
}

// Generate mocks recipe generation
func (m *MockAIService) Generate(ctx context.Context, req outbound.GenerationRequest) (recipe.Draft, string, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(recipe.Draft), args.String(1), args.Error(2)
}

// Annotate mocks recipe annotation
func (m *MockAIService) Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, string, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(stepgraph.Document), args.String(1), args.Error(2)
}

// Embed mocks embedding
func (m *MockAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

// Ping mocks the health check
func (m *MockAIService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockRecipeRepository provides a mock implementation of RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

// Save saves a recipe
func (m *MockRecipeRepository) Save(ctx context.Context, r *recipe.Recipe) error {
	return m.Called(ctx, r).Error(0)
}

// FindByID finds a recipe by ID
func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByIDs finds several recipes
func (m *MockRecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockParsedRecipeRepository provides a mock implementation of ParsedRecipeRepository
type MockParsedRecipeRepository struct {
	mock.Mock
}

// Save saves a parse result
func (m *MockParsedRecipeRepository) Save(ctx context.Context, p *recipe.ParsedRecipe) error {
	return m.Called(ctx, p).Error(0)
}

// FindByID finds a parse result by ID
func (m *MockParsedRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.ParsedRecipe, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*recipe.ParsedRecipe), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindLatestByHash finds the newest parse of identical content
func (m *MockParsedRecipeRepository) FindLatestByHash(ctx context.Context, hash string) (*recipe.ParsedRecipe, error) {
	args := m.Called(ctx, hash)
	if v := args.Get(0); v != nil {
		return v.(*recipe.ParsedRecipe), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockFavoriteRepository provides a mock implementation of FavoriteRepository
type MockFavoriteRepository struct {
	mock.Mock
}

// Save saves a favorite
func (m *MockFavoriteRepository) Save(ctx context.Context, f *favorite.Favorite) error {
	return m.Called(ctx, f).Error(0)
}

// FindByID finds a favorite by ID
func (m *MockFavoriteRepository) FindByID(ctx context.Context, id uuid.UUID) (*favorite.Favorite, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*favorite.Favorite), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByUserAndRecipe finds a user's favorite of a recipe
func (m *MockFavoriteRepository) FindByUserAndRecipe(ctx context.Context, userID string, recipeID uuid.UUID) (*favorite.Favorite, error) {
	args := m.Called(ctx, userID, recipeID)
	if v := args.Get(0); v != nil {
		return v.(*favorite.Favorite), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByUser lists a page of favorites
func (m *MockFavoriteRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*favorite.Favorite, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	var out []*favorite.Favorite
	if v := args.Get(0); v != nil {
		out = v.([]*favorite.Favorite)
	}
	return out, args.Int(1), args.Error(2)
}

// Delete deletes a favorite
func (m *MockFavoriteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// RecordSwipe stores a swipe
func (m *MockFavoriteRepository) RecordSwipe(ctx context.Context, s favorite.Swipe) error {
	return m.Called(ctx, s).Error(0)
}

// DismissedRecipeIDs lists left-swiped recipes
func (m *MockFavoriteRepository) DismissedRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]uuid.UUID), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockShoppingListRepository provides a mock implementation of ShoppingListRepository
type MockShoppingListRepository struct {
	mock.Mock
}

// Save saves a list
func (m *MockShoppingListRepository) Save(ctx context.Context, l *shopping.List) error {
	return m.Called(ctx, l).Error(0)
}

// FindByID finds a list by ID
func (m *MockShoppingListRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*shopping.List), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByUser lists a user's lists
func (m *MockShoppingListRepository) ListByUser(ctx context.Context, userID string) ([]*shopping.List, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]*shopping.List), args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete deletes a list
func (m *MockShoppingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockArchiveStore provides a mock implementation of ArchiveStore
type MockArchiveStore struct {
	mock.Mock
}

// Put stores an object
func (m *MockArchiveStore) Put(ctx context.Context, key string, body []byte, contentType, contentEncoding string) error {
	return m.Called(ctx, key, body, contentType, contentEncoding).Error(0)
}

// MockRecipeIndex provides a mock implementation of RecipeIndex
type MockRecipeIndex struct {
	mock.Mock
}

// Upsert stores a vector
func (m *MockRecipeIndex) Upsert(ctx context.Context, id uuid.UUID, vector []float32) error {
	return m.Called(ctx, id, vector).Error(0)
}

// Query returns nearest neighbours
func (m *MockRecipeIndex) Query(ctx context.Context, vector []float32, limit int) ([]outbound.ScoredID, error) {
	args := m.Called(ctx, vector, limit)
	if v := args.Get(0); v != nil {
		return v.([]outbound.ScoredID), args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordingPublisher is an EventPublisher that keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// Publish records events
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.DomainEvent(nil), p.events...)
}

// Names returns the names of the recorded events in order
func (p *RecordingPublisher) Names() []string {
	events := p.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventName()
	}
	return out
}

// MockGraphArchiver provides a mock implementation of GraphArchiver
type MockGraphArchiver struct {
	mock.Mock
}

// Archive archives a parse result
func (m *MockGraphArchiver) Archive(ctx context.Context, p *recipe.ParsedRecipe) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// MockGraphCache provides a mock implementation of GraphCache
type MockGraphCache struct {
	mock.Mock
}

// Get looks up a cached graph
func (m *MockGraphCache) Get(ctx context.Context, contentHash string) (*outbound.CachedGraph, error) {
	args := m.Called(ctx, contentHash)
	if v := args.Get(0); v != nil {
		return v.(*outbound.CachedGraph), args.Error(1)
	}
	return nil, args.Error(1)
}

// Set stores a cached graph
func (m *MockGraphCache) Set(ctx context.Context, contentHash string, entry *outbound.CachedGraph) error {
	return m.Called(ctx, contentHash, entry).Error(0)
}
