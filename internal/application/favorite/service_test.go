package favorite

import (
	"context"
	"errors"
	"testing"

	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	apperrors "github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/alchemorsel/mealplanner/test/testutils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type FavoriteServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	factory   *testutils.RecipeFactory
	favorites *testutils.MockFavoriteRepository
	recipes   *testutils.MockRecipeRepository
	events    *testutils.RecordingPublisher
	registry  *prometheus.Registry
	service   *FavoriteService
	user      string
}

func (s *FavoriteServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.factory = testutils.NewRecipeFactory(5)
	s.favorites = new(testutils.MockFavoriteRepository)
	s.recipes = new(testutils.MockRecipeRepository)
	s.events = &testutils.RecordingPublisher{}
	s.registry = prometheus.NewRegistry()
	s.service = NewFavoriteService(s.favorites, s.recipes, s.events, monitoring.NewMetrics(s.registry), zap.NewNop())
	s.user = s.factory.UserID()
}

func (s *FavoriteServiceTestSuite) TestSwipeRight_AddsFavorite() {
	r := s.factory.Recipe()
	s.recipes.On("FindByID", mock.Anything, r.ID()).Return(r, nil)
	s.favorites.On("RecordSwipe", mock.Anything, mock.Anything).Return(nil)
	s.favorites.On("FindByUserAndRecipe", mock.Anything, s.user, r.ID()).Return(nil, favorite.ErrFavoriteNotFound)
	s.favorites.On("Save", mock.Anything, mock.Anything).Return(nil)

	res, err := s.service.Swipe(s.ctx, inbound.SwipeCommand{UserID: s.user, RecipeID: r.ID(), Direction: "like"})

	s.Require().NoError(err)
	s.Equal("right", res.Direction)
	s.Require().NotNil(res.Favorite)
	s.Equal(r.Title(), res.Favorite.Title)
	s.Equal(r.ID(), res.Favorite.Recipe.ID)
	s.Equal([]string{"favorite.added"}, s.events.Names())
	s.favorites.AssertExpectations(s.T())
}

func (s *FavoriteServiceTestSuite) TestSwipeRight_Idempotent() {
	r := s.factory.Recipe()
	existing := s.factory.Favorite(s.user, r)
	existing.Events()
	s.recipes.On("FindByID", mock.Anything, r.ID()).Return(r, nil)
	s.favorites.On("RecordSwipe", mock.Anything, mock.Anything).Return(nil)
	s.favorites.On("FindByUserAndRecipe", mock.Anything, s.user, r.ID()).Return(existing, nil)

	res, err := s.service.Swipe(s.ctx, inbound.SwipeCommand{UserID: s.user, RecipeID: r.ID(), Direction: "right"})

	s.Require().NoError(err)
	s.Equal(existing.ID(), res.Favorite.ID)
	s.favorites.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
	s.Empty(s.events.Names())
}

func (s *FavoriteServiceTestSuite) TestSwipeLeft_RecordsDismissal() {
	r := s.factory.Recipe()
	s.recipes.On("FindByID", mock.Anything, r.ID()).Return(r, nil)
	s.favorites.On("RecordSwipe", mock.Anything, mock.MatchedBy(func(sw favorite.Swipe) bool {
		return sw.Direction == favorite.DirectionLeft && sw.RecipeID == r.ID()
	})).Return(nil)

	res, err := s.service.Swipe(s.ctx, inbound.SwipeCommand{UserID: s.user, RecipeID: r.ID(), Direction: "dismiss"})

	s.Require().NoError(err)
	s.Equal("left", res.Direction)
	s.Nil(res.Favorite)
	s.favorites.AssertExpectations(s.T())
	n, err := testutil.GatherAndCount(s.registry, "mealplanner_swipes_total")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *FavoriteServiceTestSuite) TestSwipe_Invalid() {
	_, err := s.service.Swipe(s.ctx, inbound.SwipeCommand{UserID: s.user, RecipeID: uuid.New(), Direction: "up"})
	s.True(apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = s.service.Swipe(s.ctx, inbound.SwipeCommand{RecipeID: uuid.New(), Direction: "left"})
	s.True(apperrors.Is(err, apperrors.CodeValidationFailed))

	missing := uuid.New()
	s.recipes.On("FindByID", mock.Anything, missing).Return(nil, recipe.ErrRecipeNotFound)
	_, err = s.service.Swipe(s.ctx, inbound.SwipeCommand{UserID: s.user, RecipeID: missing, Direction: "left"})
	s.True(apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func (s *FavoriteServiceTestSuite) TestListFavorites() {
	r1, r2 := s.factory.Recipe(), s.factory.Recipe()
	f1, f2 := s.factory.Favorite(s.user, r1), s.factory.Favorite(s.user, r2)
	s.favorites.On("ListByUser", mock.Anything, s.user, 0, 20).Return([]*favorite.Favorite{f2, f1}, 2, nil)
	s.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{r2.ID(), r1.ID()}).Return([]*recipe.Recipe{r2}, nil)

	page, err := s.service.ListFavorites(s.ctx, s.user, inbound.PaginationParams{})

	s.Require().NoError(err)
	s.Equal(2, page.Total)
	s.Equal(1, page.Page)
	s.Equal(20, page.PageSize)
	s.Require().Len(page.Items, 2)
	s.Equal(r2.ID(), page.Items[0].Recipe.ID)
	// a favorite whose recipe is gone keeps its title snapshot
	s.Nil(page.Items[1].Recipe)
	s.Equal(r1.Title(), page.Items[1].Title)
}

func (s *FavoriteServiceTestSuite) TestRemoveFavorite() {
	r := s.factory.Recipe()
	fav := s.factory.Favorite(s.user, r)
	fav.Events()
	s.favorites.On("FindByID", mock.Anything, fav.ID()).Return(fav, nil)
	s.favorites.On("Delete", mock.Anything, fav.ID()).Return(nil)

	s.Require().NoError(s.service.RemoveFavorite(s.ctx, s.user, fav.ID()))
	s.Equal([]string{"favorite.removed"}, s.events.Names())

	err := s.service.RemoveFavorite(s.ctx, "someone-else", fav.ID())
	s.True(apperrors.Is(err, apperrors.CodeFavoriteNotFound))

	missing := uuid.New()
	s.favorites.On("FindByID", mock.Anything, missing).Return(nil, favorite.ErrFavoriteNotFound)
	err = s.service.RemoveFavorite(s.ctx, s.user, missing)
	s.True(apperrors.Is(err, apperrors.CodeFavoriteNotFound))
}

func (s *FavoriteServiceTestSuite) TestDismissed() {
	s.favorites.On("DismissedRecipeIDs", mock.Anything, s.user).Return(nil, nil).Once()
	ids, err := s.service.Dismissed(s.ctx, s.user)
	s.Require().NoError(err)
	s.NotNil(ids)
	s.Empty(ids)

	s.favorites.On("DismissedRecipeIDs", mock.Anything, s.user).Return(nil, errors.New("db down")).Once()
	_, err = s.service.Dismissed(s.ctx, s.user)
	s.True(apperrors.Is(err, apperrors.CodeDatabaseError))
}

func TestFavoriteServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FavoriteServiceTestSuite))
}
