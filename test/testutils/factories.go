// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"math"

	"github.com/alchemorsel/mealplanner/internal/domain/favorite"
	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/brianvoe/gofakeit/v6"
)

var (
	verbs    = []string{"Chop", "Dice", "Saute", "Simmer", "Roast", "Whisk", "Blanch", "Season"}
	units    = []string{"g", "cup", "tbsp", "tsp", "ml", ""}
	cuisines = []string{"italian", "thai", "mexican", "french", "japanese", "indian"}
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Draft returns a valid, random recipe draft
func (f *RecipeFactory) Draft() recipe.Draft {
	ingredients := make([]recipe.Ingredient, f.faker.IntRange(2, 6))
	for i := range ingredients {
		ingredients[i] = recipe.Ingredient{
			Name:     f.faker.Vegetable(),
			Quantity: math.Round(f.faker.Float64Range(0.5, 500)*10) / 10,
			Unit:     f.faker.RandomString(units),
		}
	}

	instructions := make([]string, f.faker.IntRange(3, 8))
	for i := range instructions {
		instructions[i] = fmt.Sprintf("%s the %s", f.faker.RandomString(verbs), f.faker.Vegetable())
	}

	return recipe.Draft{
		Title:        f.faker.Sentence(3),
		Description:  f.faker.Sentence(12),
		Cuisine:      f.faker.RandomString(cuisines),
		Ingredients:  ingredients,
		Instructions: instructions,
		Tags:         []string{f.faker.Adjective(), f.faker.Adjective()},
		Servings:     f.faker.IntRange(1, 8),
		PrepMinutes:  f.faker.IntRange(5, 30),
		CookMinutes:  f.faker.IntRange(0, 90),
		Source:       recipe.SourceUser,
	}
}

// Recipe returns a new recipe built from Draft
func (f *RecipeFactory) Recipe() *recipe.Recipe {
	r, err := recipe.NewRecipe(f.Draft())
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid generated draft: %v", err))
	}
	return r
}

// Annotations splits r over two tracks, "base" and "topping", and closes
// with a join when the recipe has at least three steps.
func (f *RecipeFactory) Annotations(r *recipe.Recipe) stepgraph.Document {
	doc := stepgraph.Document{
		Artifacts: []stepgraph.Artifact{
			{ID: "base", Title: "Base", Glyph: "🍲"},
			{ID: "topping", Title: "Topping", Glyph: "🌿"},
		},
	}

	lines := r.Instructions()
	for i, line := range lines {
		rec := stepgraph.StepRecord{
			StepID:      fmt.Sprintf("s%d", i+1),
			Number:      i + 1,
			Instruction: line,
			Role:        stepgraph.RoleSimple,
			TrackID:     "base",
		}
		switch {
		case i == len(lines)-1 && len(lines) >= 3:
			rec.Role = stepgraph.RoleJoin
			rec.TrackID = ""
			rec.DependsOn = []string{"base", "topping"}
		case i%2 == 1:
			rec.TrackID = "topping"
		}
		doc.Steps = append(doc.Steps, rec)
	}
	return doc
}

// Parsed returns a parsed recipe for a fresh random recipe
func (f *RecipeFactory) Parsed() *recipe.ParsedRecipe {
	r := f.Recipe()
	return recipe.NewParsedRecipe(r, f.Annotations(r), "mock", stepgraph.Options{})
}

// UserID returns a random user id
func (f *RecipeFactory) UserID() string {
	return f.faker.UUID()
}

// Favorite returns a favorite of r for userID
func (f *RecipeFactory) Favorite(userID string, r *recipe.Recipe) *favorite.Favorite {
	s, err := favorite.NewSwipe(userID, r.ID(), favorite.DirectionRight)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid swipe: %v", err))
	}
	fav, err := favorite.FromSwipe(s, r.Title())
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid favorite: %v", err))
	}
	return fav
}
