package shopping

import (
	"context"
	"testing"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shopping"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	apperrors "github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/alchemorsel/mealplanner/test/testutils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ShoppingServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	factory *testutils.RecipeFactory
	lists   *testutils.MockShoppingListRepository
	recipes *testutils.MockRecipeRepository
	events  *testutils.RecordingPublisher
	service *ShoppingService
	user    string
}

func (s *ShoppingServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.factory = testutils.NewRecipeFactory(9)
	s.lists = new(testutils.MockShoppingListRepository)
	s.recipes = new(testutils.MockRecipeRepository)
	s.events = &testutils.RecordingPublisher{}
	s.service = NewShoppingService(s.lists, s.recipes, s.events, monitoring.NewMetrics(prometheus.NewRegistry()), zap.NewNop())
	s.user = s.factory.UserID()
}

func (s *ShoppingServiceTestSuite) pancakes() *recipe.Recipe {
	r, err := recipe.NewRecipe(recipe.Draft{
		Title: "Pancakes",
		Ingredients: []recipe.Ingredient{
			{Name: "Flour", Quantity: 2, Unit: "cup"},
			{Name: "Eggs", Quantity: 2},
			{Name: "Blueberries", Quantity: 1, Unit: "cup"},
		},
		Instructions: []string{"Mix", "Fry"},
	})
	s.Require().NoError(err)
	return r
}

func (s *ShoppingServiceTestSuite) stored(r *recipe.Recipe) *shopping.List {
	l, err := shopping.NewFromRecipe(s.user, r, nil)
	s.Require().NoError(err)
	l.Events()
	s.lists.On("FindByID", mock.Anything, l.ID()).Return(l, nil)
	return l
}

func (s *ShoppingServiceTestSuite) TestCreateFromRecipeID_SubtractsPantry() {
	r := s.pancakes()
	id := r.ID()
	s.recipes.On("FindByID", mock.Anything, id).Return(r, nil)
	s.lists.On("Save", mock.Anything, mock.Anything).Return(nil)

	dto, err := s.service.CreateFromRecipe(s.ctx, inbound.CreateShoppingListCommand{
		UserID:   s.user,
		RecipeID: &id,
		Pantry:   []string{"  FLOUR ", "egg"},
	})

	s.Require().NoError(err)
	s.Require().Len(dto.Items, 1)
	s.Equal("Blueberries", dto.Items[0].Name)
	s.Equal(1, dto.Remaining)
	s.Equal("Pancakes", dto.Title)
	s.Equal([]string{"shopping.list.created"}, s.events.Names())
}

func (s *ShoppingServiceTestSuite) TestCreateFromInlineRecipe() {
	s.lists.On("Save", mock.Anything, mock.Anything).Return(nil)

	dto, err := s.service.CreateFromRecipe(s.ctx, inbound.CreateShoppingListCommand{
		UserID: s.user,
		Recipe: inbound.NewRecipeDTO(s.pancakes()),
	})

	s.Require().NoError(err)
	s.Len(dto.Items, 3)
	s.recipes.AssertNotCalled(s.T(), "FindByID", mock.Anything, mock.Anything)
}

func (s *ShoppingServiceTestSuite) TestCreate_Errors() {
	_, err := s.service.CreateFromRecipe(s.ctx, inbound.CreateShoppingListCommand{
		UserID: s.user,
		Recipe: inbound.NewRecipeDTO(s.pancakes()),
		Pantry: []string{"flour", "eggs", "blueberry"},
	})
	s.True(apperrors.Is(err, apperrors.CodeNothingToBuy))

	_, err = s.service.CreateFromRecipe(s.ctx, inbound.CreateShoppingListCommand{UserID: s.user})
	s.True(apperrors.Is(err, apperrors.CodeValidationFailed))

	missing := uuid.New()
	s.recipes.On("FindByID", mock.Anything, missing).Return(nil, recipe.ErrRecipeNotFound)
	_, err = s.service.CreateFromRecipe(s.ctx, inbound.CreateShoppingListCommand{UserID: s.user, RecipeID: &missing})
	s.True(apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func (s *ShoppingServiceTestSuite) TestToggleItem() {
	l := s.stored(s.pancakes())
	s.lists.On("Save", mock.Anything, l).Return(nil)

	dto, err := s.service.ToggleItem(s.ctx, s.user, l.ID(), "flour")
	s.Require().NoError(err)
	s.True(dto.Items[0].Checked)
	s.Equal(2, dto.Remaining)

	_, err = s.service.ToggleItem(s.ctx, s.user, l.ID(), "saffron")
	s.True(apperrors.Is(err, apperrors.CodeNotFound))
}

func (s *ShoppingServiceTestSuite) TestOffers_UncheckedItemsOnly() {
	l := s.stored(s.pancakes())
	_, err := l.Toggle("Eggs")
	s.Require().NoError(err)

	offers, err := s.service.Offers(s.ctx, s.user, l.ID())
	s.Require().NoError(err)
	s.Len(offers, 2*len(shopping.Stores))
	for _, o := range offers {
		s.NotEqual("Eggs", o.Item)
		s.Positive(o.PriceCents)
	}

	again, err := s.service.Offers(s.ctx, s.user, l.ID())
	s.Require().NoError(err)
	s.Equal(offers, again)
}

func (s *ShoppingServiceTestSuite) TestOtherUsersListIsHidden() {
	l := s.stored(s.pancakes())

	_, err := s.service.Get(s.ctx, "intruder", l.ID())
	s.True(apperrors.Is(err, apperrors.CodeShoppingListNotFound))

	err = s.service.Delete(s.ctx, "intruder", l.ID())
	s.True(apperrors.Is(err, apperrors.CodeShoppingListNotFound))
	s.lists.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything)
}

func (s *ShoppingServiceTestSuite) TestDeleteAndList() {
	l := s.stored(s.pancakes())
	s.lists.On("Delete", mock.Anything, l.ID()).Return(nil)
	s.lists.On("ListByUser", mock.Anything, s.user).Return([]*shopping.List{l}, nil)

	all, err := s.service.List(s.ctx, s.user)
	s.Require().NoError(err)
	s.Len(all, 1)

	s.Require().NoError(s.service.Delete(s.ctx, s.user, l.ID()))

	missing := uuid.New()
	s.lists.On("FindByID", mock.Anything, missing).Return(nil, shopping.ErrListNotFound)
	_, err = s.service.Get(s.ctx, s.user, missing)
	s.True(apperrors.Is(err, apperrors.CodeShoppingListNotFound))
}

func TestShoppingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShoppingServiceTestSuite))
}
