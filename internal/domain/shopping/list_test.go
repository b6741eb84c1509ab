package shopping

import (
	"testing"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecipe(t *testing.T, ingredients ...recipe.Ingredient) *recipe.Recipe {
	t.Helper()
	r, err := recipe.NewRecipe(recipe.Draft{
		Title:        "Shakshuka",
		Instructions: []string{"Simmer tomatoes", "Crack eggs"},
		Ingredients:  ingredients,
	})
	require.NoError(t, err)
	return r
}

func TestNewFromRecipe(t *testing.T) {
	r := newRecipe(t,
		recipe.Ingredient{Name: "Tomatoes", Quantity: 4},
		recipe.Ingredient{Name: "eggs", Quantity: 4},
		recipe.Ingredient{Name: "Olive  Oil", Quantity: 2, Unit: "tbsp"},
		recipe.Ingredient{Name: "egg", Quantity: 1},
	)

	list, err := NewFromRecipe("user-1", r, []string{"tomato", "OLIVE OIL"})

	require.NoError(t, err)
	require.Len(t, list.Items(), 1)
	assert.Equal(t, "eggs", list.Items()[0].Name)
	assert.Equal(t, 5.0, list.Items()[0].Quantity)
	assert.Equal(t, r.ID(), list.RecipeID())
	assert.Len(t, list.Events(), 1)
}

func TestNewFromRecipe_Errors(t *testing.T) {
	r := newRecipe(t, recipe.Ingredient{Name: "salt"})

	_, err := NewFromRecipe("", r, nil)
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = NewFromRecipe("user-1", r, []string{"Salt"})
	assert.ErrorIs(t, err, ErrNothingToBuy)
}

func TestToggleAndRemaining(t *testing.T) {
	r := newRecipe(t, recipe.Ingredient{Name: "basil"}, recipe.Ingredient{Name: "garlic"})
	list, err := NewFromRecipe("user-1", r, nil)
	require.NoError(t, err)

	item, err := list.Toggle("Basil")
	require.NoError(t, err)
	assert.True(t, item.Checked)
	assert.Equal(t, []Item{{Name: "garlic"}}, list.Remaining())

	_, err = list.Toggle("saffron")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestToggle_FlipsEveryUnitOfAName(t *testing.T) {
	r := newRecipe(t,
		recipe.Ingredient{Name: "Butter", Quantity: 50, Unit: "g"},
		recipe.Ingredient{Name: "flour", Quantity: 200, Unit: "g"},
		recipe.Ingredient{Name: "butter", Quantity: 1, Unit: "tbsp"},
		recipe.Ingredient{Name: "butter", Quantity: 25, Unit: "g"},
	)
	list, err := NewFromRecipe("user-1", r, nil)
	require.NoError(t, err)
	require.Len(t, list.Items(), 3)
	assert.Equal(t, 75.0, list.Items()[0].Quantity)

	item, err := list.Toggle("butter")
	require.NoError(t, err)
	assert.True(t, item.Checked)
	assert.Equal(t, []Item{{Name: "flour", Quantity: 200, Unit: "g"}}, list.Remaining())

	_, err = list.Toggle("Butter")
	require.NoError(t, err)
	assert.Len(t, list.Remaining(), 3)
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Tomatoes":        "tomato",
		"  Red   Onions ": "red onion",
		"peaches":         "peach",
		"berries":         "berry",
		"grass":           "grass",
		"gas":             "gas",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

func TestQuote(t *testing.T) {
	first := Quote("Flour")
	second := Quote("flour")

	require.Len(t, first, len(Stores))
	for i := range first {
		assert.Equal(t, first[i].StoreID, second[i].StoreID, "quotes must be deterministic")
		assert.Equal(t, first[i].PriceCents, second[i].PriceCents)
		assert.Positive(t, first[i].PriceCents)
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].InStock == first[i].InStock {
			assert.LessOrEqual(t, first[i-1].PriceCents, first[i].PriceCents)
		} else {
			assert.True(t, first[i-1].InStock, "in-stock offers come first")
		}
	}
}

func TestListOffersSkipsCheckedItems(t *testing.T) {
	r := newRecipe(t, recipe.Ingredient{Name: "basil"}, recipe.Ingredient{Name: "garlic"})
	list, err := NewFromRecipe("user-1", r, nil)
	require.NoError(t, err)
	_, err = list.Toggle("garlic")
	require.NoError(t, err)

	offers := list.Offers()

	require.Len(t, offers, len(Stores))
	for _, o := range offers {
		assert.Equal(t, "basil", o.Item)
	}
}
