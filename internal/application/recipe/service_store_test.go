package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/ai/mock"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/cache"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	gormrepo "github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/test/testutils"
	"github.com/prometheus/client_golang/prometheus"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecipeServiceStoreTestSuite runs the parse flow against SQLite and the
// real graph cache so recipe ids in responses can be resolved afterwards.
type RecipeServiceStoreTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	ai      *testutils.MockAIService
	recipes outbound.RecipeRepository
	deps    Dependencies
	service *RecipeService
}

func (s *RecipeServiceStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutils.NewTestDB(s.T())
	s.ai = new(testutils.MockAIService)
	s.ai.On("Annotate", testifymock.Anything, testifymock.Anything).
		Return(stepgraph.Document{}, "", errors.New("annotator offline"))
	s.recipes = gormrepo.NewRecipeRepository(s.db)

	tracing, err := monitoring.NewTracingProvider(s.ctx, &config.Config{}, zap.NewNop())
	s.Require().NoError(err)

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	s.deps = Dependencies{
		AI:        s.ai,
		Heuristic: mock.NewProvider(64),
		Recipes:   s.recipes,
		Parsed:    gormrepo.NewParsedRecipeRepository(s.db),
		Cache:     cache.NewGraphCache(16, time.Hour, memory.NewCacheRepository(0), metrics, zap.NewNop()),
		Events:    &testutils.RecordingPublisher{},
		Metrics:   metrics,
		Tracing:   tracing,
		Logger:    zap.NewNop(),
	}
	s.service = NewRecipeService(s.deps, Options{})
}

func (s *RecipeServiceStoreTestSuite) storedRecipe(title string) *recipe.Recipe {
	r, err := recipe.NewRecipe(recipe.Draft{
		Title:        title,
		Ingredients:  []recipe.Ingredient{{Name: "lasagne sheets", Quantity: 12}, {Name: "ricotta", Quantity: 250, Unit: "g"}},
		Instructions: []string{"Make the ragu", "Layer sheets, ragu and ricotta", "Bake for 40 minutes"},
		Source:       recipe.SourceUser,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.recipes.Save(s.ctx, r))
	return r
}

func (s *RecipeServiceStoreTestSuite) TestParseTwice_CacheHitReturnsStoredRecipe() {
	cmd := inbound.ParseRecipeCommand{Title: "Fried rice", RawText: "Cook the rice\nFry the egg\nToss the rice with the egg"}

	first, err := s.service.ParseRecipe(s.ctx, cmd)
	s.Require().NoError(err)
	s.False(first.Cached)

	second, err := s.service.ParseRecipe(s.ctx, cmd)
	s.Require().NoError(err)
	s.True(second.Cached)
	s.Equal(first.ID, second.ID)
	s.Equal(first.Recipe.ID, second.Recipe.ID)

	got, err := s.service.GetRecipe(s.ctx, second.Recipe.ID)
	s.Require().NoError(err)
	s.Equal("Fried rice", got.Title)
}

func (s *RecipeServiceStoreTestSuite) TestParseTwice_StoreHitReturnsStoredRecipe() {
	cmd := inbound.ParseRecipeCommand{RawText: "Boil water\nAdd pasta\nDrain"}

	first, err := s.service.ParseRecipe(s.ctx, cmd)
	s.Require().NoError(err)

	// a fresh process has an empty cache but the same database
	deps := s.deps
	deps.Cache = cache.NewGraphCache(16, time.Hour, memory.NewCacheRepository(0), deps.Metrics, zap.NewNop())
	restarted := NewRecipeService(deps, Options{})

	second, err := restarted.ParseRecipe(s.ctx, cmd)
	s.Require().NoError(err)
	s.True(second.Cached)
	s.Equal(first.Recipe.ID, second.Recipe.ID)

	_, err = restarted.GetRecipe(s.ctx, second.Recipe.ID)
	s.NoError(err)
}

func (s *RecipeServiceStoreTestSuite) TestInlineRecipe_IDCannotRewriteStoredRecipe() {
	stored := s.storedRecipe("Grandma Lasagne")

	dto := inbound.NewRecipeDTO(stored)
	dto.Title = "Rewritten title"
	dto.Instructions = []string{"Order takeaway"}

	resp, err := s.service.ParseRecipe(s.ctx, inbound.ParseRecipeCommand{Recipe: dto})
	s.Require().NoError(err)
	s.NotEqual(stored.ID(), resp.Recipe.ID)
	s.Equal("Rewritten title", resp.Recipe.Title)

	kept, err := s.recipes.FindByID(s.ctx, stored.ID())
	s.Require().NoError(err)
	s.Equal("Grandma Lasagne", kept.Title())
	s.Equal(stored.Instructions(), kept.Instructions())

	copied, err := s.service.GetRecipe(s.ctx, resp.Recipe.ID)
	s.Require().NoError(err)
	s.Equal("Rewritten title", copied.Title)
}

func (s *RecipeServiceStoreTestSuite) TestInlineRecipe_MatchingContentKeepsID() {
	stored := s.storedRecipe("Grandma Lasagne")

	resp, err := s.service.ParseRecipe(s.ctx, inbound.ParseRecipeCommand{Recipe: inbound.NewRecipeDTO(stored)})
	s.Require().NoError(err)
	s.Equal(stored.ID(), resp.Recipe.ID)

	var count int64
	s.Require().NoError(s.db.Model(&gormrepo.RecipeModel{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *RecipeServiceStoreTestSuite) TestInlineRecipe_UnknownIDIsReplaced() {
	r, err := recipe.NewRecipe(recipe.Draft{Title: "Toast", Instructions: []string{"Toast the bread"}})
	s.Require().NoError(err)

	resp, err := s.service.ParseRecipe(s.ctx, inbound.ParseRecipeCommand{Recipe: inbound.NewRecipeDTO(r)})
	s.Require().NoError(err)
	s.NotEqual(r.ID(), resp.Recipe.ID)

	_, err = s.service.GetRecipe(s.ctx, resp.Recipe.ID)
	s.NoError(err)
}

func TestRecipeServiceStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeServiceStoreTestSuite))
}
