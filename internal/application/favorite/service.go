// Package favorite provides the application layer for swipe curation
package favorite

import (
	"context"
	stderrors "errors"

	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/alchemorsel/mealplanner/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ inbound.FavoriteService = (*FavoriteService)(nil)

// FavoriteService implements the swipe and favorite use cases
type FavoriteService struct {
	favorites outbound.FavoriteRepository
	recipes   outbound.RecipeRepository
	events    shared.EventPublisher
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	favorites outbound.FavoriteRepository,
	recipes outbound.RecipeRepository,
	events shared.EventPublisher,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		recipes:   recipes,
		events:    events,
		metrics:   metrics,
		logger:    logger.Named("favorite-service"),
	}
}

// Swipe records the swipe. A right swipe keeps the recipe as a favorite;
// liking an already kept recipe returns the existing favorite.
func (s *FavoriteService) Swipe(ctx context.Context, cmd inbound.SwipeCommand) (*inbound.SwipeResult, error) {
	log := logger.FromContext(ctx, s.logger)

	direction, err := favorite.ParseDirection(cmd.Direction)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	swipe, err := favorite.NewSwipe(cmd.UserID, cmd.RecipeID, direction)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	r, err := s.recipes.FindByID(ctx, cmd.RecipeID)
	if stderrors.Is(err, recipe.ErrRecipeNotFound) {
		return nil, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
	}
	if err != nil {
		return nil, errors.NewDatabaseError("find recipe", err)
	}

	if err := s.favorites.RecordSwipe(ctx, swipe); err != nil {
		return nil, errors.NewDatabaseError("record swipe", err)
	}
	s.metrics.Swipe(string(direction))

	result := &inbound.SwipeResult{Direction: string(direction)}
	if !swipe.Liked() {
		log.Debug("Recipe dismissed",
			zap.String("user_id", cmd.UserID),
			zap.String("recipe_id", cmd.RecipeID.String()))
		return result, nil
	}

	existing, err := s.favorites.FindByUserAndRecipe(ctx, cmd.UserID, cmd.RecipeID)
	switch {
	case err == nil:
		result.Favorite = favoriteDTO(existing, r)
		return result, nil
	case !stderrors.Is(err, favorite.ErrFavoriteNotFound):
		return nil, errors.NewDatabaseError("find favorite", err)
	}

	fav, err := favorite.FromSwipe(swipe, r.Title())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create favorite")
	}
	if err := s.favorites.Save(ctx, fav); err != nil {
		return nil, errors.NewDatabaseError("save favorite", err)
	}
	s.publish(ctx, fav.Events())

	log.Info("Favorite added",
		zap.String("user_id", cmd.UserID),
		zap.String("favorite_id", fav.ID().String()),
		zap.String("recipe_id", cmd.RecipeID.String()))

	result.Favorite = favoriteDTO(fav, r)
	return result, nil
}

// ListFavorites returns a page of the user's favorites, newest first
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string, params inbound.PaginationParams) (*inbound.FavoriteList, error) {
	params = params.Normalize()

	favs, total, err := s.favorites.ListByUser(ctx, userID, params.Offset(), params.PageSize)
	if err != nil {
		return nil, errors.NewDatabaseError("list favorites", err)
	}

	recipes := map[uuid.UUID]*recipe.Recipe{}
	if len(favs) > 0 {
		ids := make([]uuid.UUID, len(favs))
		for i, f := range favs {
			ids[i] = f.RecipeID()
		}
		found, err := s.recipes.FindByIDs(ctx, ids)
		if err != nil {
			return nil, errors.NewDatabaseError("load favorite recipes", err)
		}
		for _, r := range found {
			recipes[r.ID()] = r
		}
	}

	items := make([]*inbound.FavoriteDTO, len(favs))
	for i, f := range favs {
		items[i] = favoriteDTO(f, recipes[f.RecipeID()])
	}
	return &inbound.FavoriteList{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// RemoveFavorite deletes one of the user's favorites
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID string, favoriteID uuid.UUID) error {
	fav, err := s.favorites.FindByID(ctx, favoriteID)
	if stderrors.Is(err, favorite.ErrFavoriteNotFound) {
		return errors.NewFavoriteNotFoundError(favoriteID.String())
	}
	if err != nil {
		return errors.NewDatabaseError("find favorite", err)
	}
	// other users' favorites are reported as missing
	if fav.UserID() != userID {
		return errors.NewFavoriteNotFoundError(favoriteID.String())
	}

	if err := s.favorites.Delete(ctx, favoriteID); err != nil {
		if stderrors.Is(err, favorite.ErrFavoriteNotFound) {
			return errors.NewFavoriteNotFoundError(favoriteID.String())
		}
		return errors.NewDatabaseError("delete favorite", err)
	}
	fav.Removed()
	s.publish(ctx, fav.Events())

	logger.FromContext(ctx, s.logger).Info("Favorite removed",
		zap.String("user_id", userID),
		zap.String("favorite_id", favoriteID.String()))
	return nil
}

// Dismissed returns the recipes the user swiped away
func (s *FavoriteService) Dismissed(ctx context.Context, userID string) ([]uuid.UUID, error) {
	ids, err := s.favorites.DismissedRecipeIDs(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list dismissed recipes", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *FavoriteService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to publish events", zap.Error(err))
	}
}

func favoriteDTO(f *favorite.Favorite, r *recipe.Recipe) *inbound.FavoriteDTO {
	return &inbound.FavoriteDTO{
		ID:        f.ID(),
		RecipeID:  f.RecipeID(),
		Title:     f.Title(),
		Recipe:    inbound.NewRecipeDTO(r),
		CreatedAt: f.CreatedAt(),
	}
}
