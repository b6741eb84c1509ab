package recipe_test

import (
	"strings"
	"testing"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RecipeTestSuite provides a test suite for the Recipe aggregate
type RecipeTestSuite struct {
	suite.Suite
	factory *testutils.RecipeFactory
}

// SetupSuite initializes the test suite
func (suite *RecipeTestSuite) SetupSuite() {
	suite.factory = testutils.NewRecipeFactory(time.Now().UnixNano())
}

func TestRecipeSuite(t *testing.T) {
	suite.Run(t, new(RecipeTestSuite))
}

// TestRecipeCreation tests recipe creation scenarios
func (suite *RecipeTestSuite) TestRecipeCreation() {
	suite.Run("ValidRecipe_ShouldCreateSuccessfully", func() {
		// Arrange
		draft := recipe.Draft{
			Title:        "  Spaghetti Carbonara ",
			Cuisine:      "Italian",
			Instructions: []string{"Boil pasta", "", "Fry guanciale"},
			Ingredients:  []recipe.Ingredient{{Name: "spaghetti", Quantity: 200, Unit: "g"}},
			PrepMinutes:  10,
			CookMinutes:  15,
		}

		// Act
		r, err := recipe.NewRecipe(draft)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "Spaghetti Carbonara", r.Title())
		assert.Equal(suite.T(), "italian", r.Cuisine())
		assert.Equal(suite.T(), []string{"Boil pasta", "Fry guanciale"}, r.Instructions())
		assert.Equal(suite.T(), 25, r.TotalMinutes())
		assert.Equal(suite.T(), recipe.SourceUser, r.Source())
		assert.NotEqual(suite.T(), uuid.Nil, r.ID())

		events := r.Events()
		require.Len(suite.T(), events, 1)
		created, ok := events[0].(recipe.RecipeCreatedEvent)
		assert.True(suite.T(), ok, "Should emit RecipeCreatedEvent")
		assert.Equal(suite.T(), r.ID(), created.RecipeID)
		assert.Empty(suite.T(), r.Events(), "events should be cleared after read")
	})

	suite.Run("ShortTitle_ShouldReturnError", func() {
		_, err := recipe.NewRecipe(recipe.Draft{Title: "AB", Instructions: []string{"x"}})
		assert.Equal(suite.T(), recipe.ErrTitleTooShort, err)
	})

	suite.Run("LongTitle_ShouldReturnError", func() {
		_, err := recipe.NewRecipe(recipe.Draft{Title: strings.Repeat("a", 201), Instructions: []string{"x"}})
		assert.Equal(suite.T(), recipe.ErrTitleTooLong, err)
	})

	suite.Run("BlankInstructions_ShouldReturnError", func() {
		_, err := recipe.NewRecipe(recipe.Draft{Title: "Toast", Instructions: []string{" ", ""}})
		assert.Equal(suite.T(), recipe.ErrNoInstructions, err)
	})

	suite.Run("NegativeServings_ShouldReturnError", func() {
		_, err := recipe.NewRecipe(recipe.Draft{Title: "Toast", Servings: -1, Instructions: []string{"Toast"}})
		assert.Equal(suite.T(), recipe.ErrInvalidServings, err)
	})

	suite.Run("NamelessIngredient_ShouldReturnError", func() {
		_, err := recipe.NewRecipe(recipe.Draft{
			Title:        "Toast",
			Instructions: []string{"Toast"},
			Ingredients:  []recipe.Ingredient{{Quantity: 1}},
		})
		assert.Error(suite.T(), err)
	})
}

func (suite *RecipeTestSuite) TestContentHash() {
	suite.Run("SameContent_ShouldHashEqually", func() {
		draft := suite.factory.Draft()
		a, err := recipe.NewRecipe(draft)
		require.NoError(suite.T(), err)
		b, err := recipe.Reconstitute(uuid.New(), time.Now(), draft)
		require.NoError(suite.T(), err)

		assert.Equal(suite.T(), a.ContentHash(), b.ContentHash())
		assert.Empty(suite.T(), b.Events(), "reconstitution must not raise events")
	})

	suite.Run("DifferentInstructions_ShouldChangeHash", func() {
		draft := suite.factory.Draft()
		a, err := recipe.NewRecipe(draft)
		require.NoError(suite.T(), err)

		draft.Instructions = append(draft.Instructions, "Garnish with parsley")
		b, err := recipe.NewRecipe(draft)
		require.NoError(suite.T(), err)

		assert.NotEqual(suite.T(), a.ContentHash(), b.ContentHash())
	})
}

func (suite *RecipeTestSuite) TestMarkGenerated() {
	r := suite.factory.Recipe()
	r.Events()

	r.MarkGenerated("ollama", "something spicy")

	assert.Equal(suite.T(), recipe.SourceGenerated, r.Source())
	events := r.Events()
	require.Len(suite.T(), events, 1)
	assert.Equal(suite.T(), "recipe.generated", events[0].EventName())
}

func (suite *RecipeTestSuite) TestParsedRecipe() {
	r := suite.factory.Recipe()
	doc := stepgraph.Document{
		Artifacts: []stepgraph.Artifact{{ID: "main-dish", Title: "Main"}},
		Steps: []stepgraph.StepRecord{
			{StepID: "s1", Number: 1, Instruction: "Cook", Role: stepgraph.RoleSimple, TrackID: "main-dish"},
		},
	}

	parsed := recipe.NewParsedRecipe(r, doc, "mock", stepgraph.Options{})

	assert.Equal(suite.T(), r.ContentHash(), parsed.ContentHash)
	require.Len(suite.T(), parsed.Graph.Tracks, 1)
	event := parsed.Event()
	assert.Equal(suite.T(), 1, event.Tracks)
	assert.False(suite.T(), event.Fallback)
}

func TestSplitInstructions(t *testing.T) {
	raw := `
1. Preheat the oven.
2) Chop onions
Step 3: Saute onions
- Season to taste

* Serve warm
Let it rest`

	assert.Equal(t, []string{
		"Preheat the oven.",
		"Chop onions",
		"Saute onions",
		"Season to taste",
		"Serve warm",
		"Let it rest",
	}, recipe.SplitInstructions(raw))
}

func TestIngredientString(t *testing.T) {
	assert.Equal(t, "1.5 cup flour", recipe.Ingredient{Name: "flour", Quantity: 1.5, Unit: "cup"}.String())
	assert.Equal(t, "salt", recipe.Ingredient{Name: "salt"}.String())
}
