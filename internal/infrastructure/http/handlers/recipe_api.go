package handlers

import (
	"net/http"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeHandlers handles recipe generation, parsing and search
type RecipeHandlers struct {
	recipes   inbound.RecipeService
	validator *Validator
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(recipes inbound.RecipeService, validator *Validator) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes, validator: validator}
}

// Generate handles POST /api/v1/recipes/generate
func (h *RecipeHandlers) Generate(c *gin.Context) {
	var cmd inbound.GenerateRecipesCommand
	if err := h.validator.bindJSON(c, &cmd); err != nil {
		fail(c, err)
		return
	}
	cmd.UserID = middleware.UserID(c)

	recipes, err := h.recipes.GenerateRecipes(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	middleware.LoggerFrom(c).Info("Recipes generated",
		zap.String("user_id", cmd.UserID),
		zap.Int("count", len(recipes)))
	respond(c, http.StatusOK, recipes, "Recipes generated successfully")
}

// Parse handles POST /api/v1/recipes/parse
func (h *RecipeHandlers) Parse(c *gin.Context) {
	var cmd inbound.ParseRecipeCommand
	if err := h.validator.bindJSON(c, &cmd); err != nil {
		fail(c, err)
		return
	}

	res, err := h.recipes.ParseRecipe(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, res, "")
}

// GetParsed handles GET /api/v1/recipes/parsed/:id
func (h *RecipeHandlers) GetParsed(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	res, err := h.recipes.GetParsedRecipe(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, res, "")
}

// BuildGraph handles POST /api/v1/recipes/graph
func (h *RecipeHandlers) BuildGraph(c *gin.Context) {
	var cmd inbound.BuildGraphCommand
	if err := h.validator.bindJSON(c, &cmd); err != nil {
		fail(c, err)
		return
	}

	res, err := h.recipes.BuildGraph(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, res, "")
}

// Get handles GET /api/v1/recipes/:id
func (h *RecipeHandlers) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	r, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, r, "")
}

// Search handles GET /api/v1/recipes/search?q=&limit=
func (h *RecipeHandlers) Search(c *gin.Context) {
	var query inbound.SearchQuery
	if err := h.validator.bindQuery(c, &query); err != nil {
		fail(c, err)
		return
	}

	hits, err := h.recipes.SearchRecipes(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, hits, "")
}
