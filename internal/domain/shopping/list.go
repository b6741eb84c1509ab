// Package shopping builds shopping lists from recipes and quotes simulated
// store prices for the items still missing.
package shopping

import (
	"errors"
	"strings"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrListNotFound = errors.New("shopping list not found")
	ErrItemNotFound = errors.New("item not on shopping list")
	ErrMissingUser  = errors.New("user id is required")
	ErrNothingToBuy = errors.New("pantry already covers every ingredient")
)

// Item is one line on a shopping list
type Item struct {
	Name     string
	Quantity float64
	Unit     string
	Checked  bool
}

// List is a per-user shopping list derived from one recipe
type List struct {
	shared.AggregateRoot

	id        uuid.UUID
	userID    string
	recipeID  uuid.UUID
	title     string
	items     []Item
	createdAt time.Time
	updatedAt time.Time
}

// NewFromRecipe lists the recipe's ingredients that the pantry does not cover.
func NewFromRecipe(userID string, r *recipe.Recipe, pantry []string) (*List, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}

	have := make(map[string]bool, len(pantry))
	for _, p := range pantry {
		have[NormalizeName(p)] = true
	}

	type itemKey struct{ name, unit string }

	var items []Item
	seen := make(map[itemKey]int)
	for _, ing := range r.Ingredients() {
		name := NormalizeName(ing.Name)
		if have[name] {
			continue
		}
		// Repeated ingredients with the same unit are merged.
		key := itemKey{name, ing.Unit}
		if idx, ok := seen[key]; ok {
			items[idx].Quantity += ing.Quantity
			continue
		}
		seen[key] = len(items)
		items = append(items, Item{Name: strings.TrimSpace(ing.Name), Quantity: ing.Quantity, Unit: ing.Unit})
	}
	if len(items) == 0 {
		return nil, ErrNothingToBuy
	}

	now := time.Now().UTC()
	l := &List{
		id:        uuid.New(),
		userID:    userID,
		recipeID:  r.ID(),
		title:     r.Title(),
		items:     items,
		createdAt: now,
		updatedAt: now,
	}
	l.AddEvent(ListCreatedEvent{ListID: l.id, UserID: userID, RecipeID: r.ID(), Items: len(items), CreatedAt: now})
	return l, nil
}

// Reconstitute rebuilds a stored list
func Reconstitute(id uuid.UUID, userID string, recipeID uuid.UUID, title string, items []Item, createdAt, updatedAt time.Time) *List {
	return &List{
		id:        id,
		userID:    userID,
		recipeID:  recipeID,
		title:     title,
		items:     items,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (l *List) ID() uuid.UUID        { return l.id }
func (l *List) UserID() string       { return l.userID }
func (l *List) RecipeID() uuid.UUID  { return l.recipeID }
func (l *List) Title() string        { return l.title }
func (l *List) Items() []Item        { return l.items }
func (l *List) CreatedAt() time.Time { return l.createdAt }
func (l *List) UpdatedAt() time.Time { return l.updatedAt }

// Toggle flips the checked state of the named item. Items sharing the name
// in different units move together and end up in the first one's new state.
func (l *List) Toggle(name string) (Item, error) {
	key := NormalizeName(name)
	first := -1
	for i := range l.items {
		if NormalizeName(l.items[i].Name) != key {
			continue
		}
		if first < 0 {
			first = i
			l.items[i].Checked = !l.items[i].Checked
		} else {
			l.items[i].Checked = l.items[first].Checked
		}
	}
	if first < 0 {
		return Item{}, ErrItemNotFound
	}
	l.updatedAt = time.Now().UTC()
	return l.items[first], nil
}

// Remaining returns the unchecked items in list order.
func (l *List) Remaining() []Item {
	out := make([]Item, 0, len(l.items))
	for _, it := range l.items {
		if !it.Checked {
			out = append(out, it)
		}
	}
	return out
}

// NormalizeName folds case, collapses whitespace and strips a plural suffix
// so that "Tomatoes" matches "tomato".
func NormalizeName(name string) string {
	n := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	switch {
	case strings.HasSuffix(n, "oes"), strings.HasSuffix(n, "ches"),
		strings.HasSuffix(n, "shes"), strings.HasSuffix(n, "xes"), strings.HasSuffix(n, "sses"):
		return strings.TrimSuffix(n, "es")
	case strings.HasSuffix(n, "ies") && len(n) > 4:
		return strings.TrimSuffix(n, "ies") + "y"
	case strings.HasSuffix(n, "s") && !strings.HasSuffix(n, "ss") && len(n) > 3:
		return strings.TrimSuffix(n, "s")
	}
	return n
}

// ListCreatedEvent is raised when a shopping list is created
type ListCreatedEvent struct {
	ListID    uuid.UUID
	UserID    string
	RecipeID  uuid.UUID
	Items     int
	CreatedAt time.Time
}

func (e ListCreatedEvent) EventName() string     { return "shopping.list.created" }
func (e ListCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }
