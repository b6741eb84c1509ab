// Package shopping provides the application layer for shopping lists
package shopping

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/alchemorsel/mealplanner/internal/domain/shopping"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/alchemorsel/mealplanner/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ inbound.ShoppingService = (*ShoppingService)(nil)

// ShoppingService implements the shopping list use cases
type ShoppingService struct {
	lists   outbound.ShoppingListRepository
	recipes outbound.RecipeRepository
	events  shared.EventPublisher
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewShoppingService creates a new shopping service
func NewShoppingService(
	lists outbound.ShoppingListRepository,
	recipes outbound.RecipeRepository,
	events shared.EventPublisher,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *ShoppingService {
	return &ShoppingService{
		lists:   lists,
		recipes: recipes,
		events:  events,
		metrics: metrics,
		logger:  logger.Named("shopping-service"),
	}
}

// CreateFromRecipe lists the recipe's ingredients the pantry does not cover
func (s *ShoppingService) CreateFromRecipe(ctx context.Context, cmd inbound.CreateShoppingListCommand) (*inbound.ShoppingListDTO, error) {
	r, err := s.resolveRecipe(ctx, cmd)
	if err != nil {
		return nil, err
	}

	list, err := shopping.NewFromRecipe(cmd.UserID, r, cmd.Pantry)
	switch {
	case stderrors.Is(err, shopping.ErrNothingToBuy):
		return nil, errors.NewNothingToBuyError()
	case err != nil:
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.lists.Save(ctx, list); err != nil {
		return nil, errors.NewDatabaseError("save shopping list", err)
	}
	s.metrics.ShoppingListCreated()
	if err := s.events.Publish(ctx, list.Events()...); err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to publish events", zap.Error(err))
	}

	logger.FromContext(ctx, s.logger).Info("Shopping list created",
		zap.String("user_id", cmd.UserID),
		zap.String("list_id", list.ID().String()),
		zap.Int("items", len(list.Items())),
		zap.Int("pantry", len(cmd.Pantry)))

	return listDTO(list), nil
}

func (s *ShoppingService) resolveRecipe(ctx context.Context, cmd inbound.CreateShoppingListCommand) (*recipe.Recipe, error) {
	switch {
	case cmd.RecipeID != nil:
		r, err := s.recipes.FindByID(ctx, *cmd.RecipeID)
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
		}
		if err != nil {
			return nil, errors.NewDatabaseError("find recipe", err)
		}
		return r, nil

	case cmd.Recipe != nil:
		id := cmd.Recipe.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		createdAt := cmd.Recipe.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		r, err := recipe.Reconstitute(id, createdAt, cmd.Recipe.Draft())
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		return r, nil
	}
	return nil, errors.NewValidationError("one of recipe or recipe_id is required")
}

// Get returns one of the user's lists
func (s *ShoppingService) Get(ctx context.Context, userID string, id uuid.UUID) (*inbound.ShoppingListDTO, error) {
	list, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return listDTO(list), nil
}

// List returns every list of the user
func (s *ShoppingService) List(ctx context.Context, userID string) ([]*inbound.ShoppingListDTO, error) {
	lists, err := s.lists.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list shopping lists", err)
	}
	out := make([]*inbound.ShoppingListDTO, len(lists))
	for i, l := range lists {
		out[i] = listDTO(l)
	}
	return out, nil
}

// ToggleItem flips the checked state of one item
func (s *ShoppingService) ToggleItem(ctx context.Context, userID string, id uuid.UUID, item string) (*inbound.ShoppingListDTO, error) {
	list, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	toggled, err := list.Toggle(item)
	if stderrors.Is(err, shopping.ErrItemNotFound) {
		return nil, errors.NewNotFoundError("Shopping list item").WithMetadata("item", item)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to toggle item")
	}
	if err := s.lists.Save(ctx, list); err != nil {
		return nil, errors.NewDatabaseError("save shopping list", err)
	}

	logger.FromContext(ctx, s.logger).Debug("Shopping item toggled",
		zap.String("list_id", id.String()),
		zap.String("item", toggled.Name),
		zap.Bool("checked", toggled.Checked))
	return listDTO(list), nil
}

// Offers quotes simulated store prices for the unchecked items, cheapest
// in-stock offer first per item
func (s *ShoppingService) Offers(ctx context.Context, userID string, id uuid.UUID) ([]inbound.OfferDTO, error) {
	list, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	offers := list.Offers()
	out := make([]inbound.OfferDTO, len(offers))
	for i, o := range offers {
		out[i] = inbound.OfferDTO{
			Item:       o.Item,
			StoreID:    o.StoreID,
			Store:      o.Store,
			PriceCents: o.PriceCents,
			InStock:    o.InStock,
		}
	}
	return out, nil
}

// Delete removes one of the user's lists
func (s *ShoppingService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.lists.Delete(ctx, id); err != nil {
		if stderrors.Is(err, shopping.ErrListNotFound) {
			return errors.NewShoppingListNotFoundError(id.String())
		}
		return errors.NewDatabaseError("delete shopping list", err)
	}
	return nil
}

// load fetches a list, hiding lists owned by other users
func (s *ShoppingService) load(ctx context.Context, userID string, id uuid.UUID) (*shopping.List, error) {
	list, err := s.lists.FindByID(ctx, id)
	if stderrors.Is(err, shopping.ErrListNotFound) {
		return nil, errors.NewShoppingListNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.NewDatabaseError("find shopping list", err)
	}
	if list.UserID() != userID {
		return nil, errors.NewShoppingListNotFoundError(id.String())
	}
	return list, nil
}

func listDTO(l *shopping.List) *inbound.ShoppingListDTO {
	items := make([]inbound.ShoppingItemDTO, len(l.Items()))
	for i, it := range l.Items() {
		items[i] = inbound.ShoppingItemDTO{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit, Checked: it.Checked}
	}
	return &inbound.ShoppingListDTO{
		ID:        l.ID(),
		RecipeID:  l.RecipeID(),
		Title:     l.Title(),
		Items:     items,
		Remaining: len(l.Remaining()),
		CreatedAt: l.CreatedAt(),
		UpdatedAt: l.UpdatedAt(),
	}
}
