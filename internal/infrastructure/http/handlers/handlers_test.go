package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Environment: "test"}}
	tracing, err := monitoring.NewTracingProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	mw := middleware.New(cfg, zap.NewNop(), tracing, monitoring.NewMetrics(monitoring.NewRegistry()))

	r := gin.New()
	r.Use(mw.RequestID(), mw.Logger(), mw.ErrorHandler(), mw.Identity())
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorDetails {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func sampleRecipe() *inbound.RecipeDTO {
	return &inbound.RecipeDTO{
		ID:           uuid.New(),
		Title:        "Weeknight Ragu",
		Ingredients:  []inbound.IngredientDTO{{Name: "onion", Quantity: 1}},
		Instructions: []string{"Chop the onion", "Simmer the sauce"},
		CreatedAt:    time.Now(),
	}
}

func TestRecipeHandlers_Generate(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/recipes/generate", h.Generate)

	recipes := []*inbound.RecipeDTO{sampleRecipe()}
	svc.On("GenerateRecipes", mock.Anything, mock.MatchedBy(func(cmd inbound.GenerateRecipesCommand) bool {
		return cmd.UserID == "user-1" && cmd.Prompt == "pasta night" && cmd.Count == 2
	})).Return(recipes, nil).Once()

	w := do(r, http.MethodPost, "/recipes/generate", map[string]interface{}{"prompt": "pasta night", "count": 2})

	require.Equal(t, http.StatusOK, w.Code)
	var got []inbound.RecipeDTO
	decodeData(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Weeknight Ragu", got[0].Title)
	svc.AssertExpectations(t)
}

func TestRecipeHandlers_Generate_Validation(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/recipes/generate", h.Generate)

	tests := []struct {
		name      string
		body      interface{}
		wantCode  errors.ErrorCode
		wantField string
	}{
		{"missing prompt", map[string]interface{}{"count": 2}, errors.CodeValidationFailed, "prompt"},
		{"count too high", map[string]interface{}{"prompt": "soup", "count": 50}, errors.CodeValidationFailed, "count"},
		{"malformed json", `{"prompt":`, errors.CodeBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/recipes/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			details := decodeError(t, w)
			assert.Equal(t, tt.wantCode, details.Code)
			if tt.wantField != "" {
				fields := details.Metadata["validation_errors"].([]interface{})
				require.NotEmpty(t, fields)
				assert.Equal(t, tt.wantField, fields[0].(map[string]interface{})["field"])
			}
		})
	}
	svc.AssertNotCalled(t, "GenerateRecipes", mock.Anything, mock.Anything)
}

func TestRecipeHandlers_Get(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.GET("/recipes/:id", h.Get)

	found := sampleRecipe()
	missing := uuid.New()
	svc.On("GetRecipe", mock.Anything, found.ID).Return(found, nil)
	svc.On("GetRecipe", mock.Anything, missing).Return(nil, errors.NewRecipeNotFoundError(missing.String()))

	t.Run("found", func(t *testing.T) {
		w := do(r, http.MethodGet, "/recipes/"+found.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got inbound.RecipeDTO
		decodeData(t, w, &got)
		assert.Equal(t, found.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		w := do(r, http.MethodGet, "/recipes/"+missing.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, errors.CodeRecipeNotFound, decodeError(t, w).Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := do(r, http.MethodGet, "/recipes/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.CodeValidationFailed, decodeError(t, w).Code)
	})
}

func TestRecipeHandlers_Search(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.GET("/recipes/search", h.Search)

	hits := []inbound.SearchHit{{Recipe: sampleRecipe(), Score: 0.91}}
	svc.On("SearchRecipes", mock.Anything, inbound.SearchQuery{Query: "ragu", Limit: 5}).Return(hits, nil)

	w := do(r, http.MethodGet, "/recipes/search?q=ragu&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []inbound.SearchHit
	decodeData(t, w, &got)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.91, got[0].Score, 1e-9)

	w = do(r, http.MethodGet, "/recipes/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/recipes/search?q=ragu&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.CodeBadRequest, decodeError(t, w).Code)
}

func TestRecipeHandlers_ParseUpstreamFailure(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/recipes/parse", h.Parse)

	svc.On("ParseRecipe", mock.Anything, mock.Anything).
		Return(nil, errors.NewAIServiceError("annotate", assert.AnError))

	w := do(r, http.MethodPost, "/recipes/parse", map[string]interface{}{"raw_text": "Boil water. Add pasta."})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, errors.CodeAIServiceError, decodeError(t, w).Code)
}

func pastaDocument() stepgraph.Document {
	return stepgraph.Document{
		Artifacts: []stepgraph.Artifact{
			{ID: "sauce", Title: "Sauce", Glyph: "🍅"},
			{ID: "pasta", Title: "Pasta", Glyph: "🍝"},
		},
		Steps: []stepgraph.StepRecord{
			{StepID: "s1", Number: 1, Instruction: "Simmer the tomatoes", Role: "simple", TrackID: "sauce"},
			{StepID: "s2", Number: 2, Instruction: "Boil the pasta", Role: "simple", TrackID: "pasta"},
			{StepID: "s3", Number: 3, Instruction: "Toss together. Serve hot", Role: "join", DependsOn: []string{"sauce", "pasta"}},
			{StepID: "s4", Number: 4, Instruction: "Admire the plate", Role: "interpretive"},
		},
	}
}

func buildResponse(cmd inbound.BuildGraphCommand) *inbound.GraphResponse {
	steps, skipped := cmd.Annotations.Decode()
	result := stepgraph.BuildWithOptions(cmd.Annotations.Artifacts, steps, stepgraph.Options{})
	return &inbound.GraphResponse{Graph: result.Graph, Diagnostics: []stepgraph.Diagnostic{}, Skipped: skipped}
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	decodeData(t, w, &data)
	return data
}

func TestRecipeHandlers_BuildGraph(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/recipes/graph", h.BuildGraph)

	doc := pastaDocument()
	svc.On("BuildGraph", mock.Anything, mock.MatchedBy(func(cmd inbound.BuildGraphCommand) bool {
		return len(cmd.Annotations.Steps) == 4 && cmd.Annotations.Steps[2].DependsOn[1] == "pasta"
	})).Return(buildResponse(inbound.BuildGraphCommand{Annotations: doc}), nil).Once()

	w := do(r, http.MethodPost, "/recipes/graph", map[string]interface{}{"annotations": doc})

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeMap(t, w)
	graph := data["graph"].(map[string]interface{})

	tracks := graph["tracks"].([]interface{})
	require.Len(t, tracks, 2)
	sauce := tracks[0].(map[string]interface{})
	assert.Equal(t, "sauce", sauce["track_id"])
	assert.Equal(t, "🍅", sauce["emoji"])
	steps := sauce["steps"].([]interface{})
	require.Len(t, steps, 1)
	step := steps[0].(map[string]interface{})
	assert.Equal(t, "s1", step["step_id"])
	assert.Equal(t, float64(1), step["number"])
	assert.Equal(t, "Simmer the tomatoes", step["instruction"])
	assert.Equal(t, "pasta", tracks[1].(map[string]interface{})["track_id"])

	joins := graph["joins"].([]interface{})
	require.Len(t, joins, 1)
	join := joins[0].(map[string]interface{})
	assert.Equal(t, "s3", join["step_id"])
	assert.Equal(t, []interface{}{"sauce", "pasta"}, join["depends_on"])

	assert.Equal(t, []interface{}{}, graph["warnings"])
	assert.Equal(t, []interface{}{"s4"}, data["skipped_steps"])
	svc.AssertExpectations(t)
}

func TestRecipeHandlers_BuildGraph_NoSimpleSteps(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/recipes/graph", h.BuildGraph)

	doc := stepgraph.Document{
		Artifacts: []stepgraph.Artifact{{ID: "sauce", Title: "Sauce"}},
		Steps:     []stepgraph.StepRecord{},
	}
	svc.On("BuildGraph", mock.Anything, mock.Anything).Return(buildResponse(inbound.BuildGraphCommand{Annotations: doc}), nil).Once()

	w := do(r, http.MethodPost, "/recipes/graph", map[string]interface{}{"annotations": doc})

	require.Equal(t, http.StatusOK, w.Code)
	graph := decodeMap(t, w)["graph"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, graph["tracks"])
	assert.Equal(t, []interface{}{}, graph["joins"])
	assert.Equal(t, []interface{}{"No simple steps found in annotations."}, graph["warnings"])
}

func TestRecipeHandlers_Parse(t *testing.T) {
	svc := new(mockRecipeService)
	h := NewRecipeHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/recipes/parse", h.Parse)

	doc := pastaDocument()
	dto := sampleRecipe()
	parsed := &inbound.ParseRecipeResponse{
		ID:          uuid.New(),
		Recipe:      dto,
		Graph:       buildResponse(inbound.BuildGraphCommand{Annotations: doc}).Graph,
		Annotations: doc,
		Provider:    "ollama",
		ParsedAt:    time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	svc.On("ParseRecipe", mock.Anything, mock.MatchedBy(func(cmd inbound.ParseRecipeCommand) bool {
		return cmd.Title == "Tomato pasta" && cmd.RawText != "" && !cmd.ForceRefresh
	})).Return(parsed, nil).Once()

	w := do(r, http.MethodPost, "/recipes/parse", map[string]interface{}{
		"title":    "Tomato pasta",
		"raw_text": "1. Simmer the tomatoes\n2. Boil the pasta\n3. Toss together. Serve hot",
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeMap(t, w)
	assert.Equal(t, parsed.ID.String(), data["id"])
	assert.Equal(t, "ollama", data["provider"])
	assert.Equal(t, false, data["cached"])
	assert.Equal(t, dto.ID.String(), data["recipe"].(map[string]interface{})["id"])

	graph := data["graph"].(map[string]interface{})
	tracks := graph["tracks"].([]interface{})
	require.Len(t, tracks, 2)
	pasta := tracks[1].(map[string]interface{})
	assert.Equal(t, "pasta", pasta["track_id"])
	assert.Equal(t, "🍝", pasta["emoji"])
	step := pasta["steps"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "s2", step["step_id"])
	assert.Equal(t, float64(2), step["number"])
	assert.Equal(t, "Boil the pasta", step["instruction"])

	joins := graph["joins"].([]interface{})
	require.Len(t, joins, 1)
	assert.Equal(t, []interface{}{"sauce", "pasta"}, joins[0].(map[string]interface{})["depends_on"])
	assert.Equal(t, []interface{}{}, graph["warnings"])
	svc.AssertExpectations(t)
}

func TestFavoriteHandlers_Swipe(t *testing.T) {
	svc := new(mockFavoriteService)
	h := NewFavoriteHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/swipes", h.Swipe)

	liked := uuid.New()
	dismissed := uuid.New()
	svc.On("Swipe", mock.Anything, inbound.SwipeCommand{UserID: "user-1", RecipeID: liked, Direction: "right"}).
		Return(&inbound.SwipeResult{Direction: "right", Favorite: &inbound.FavoriteDTO{ID: uuid.New(), RecipeID: liked}}, nil)
	svc.On("Swipe", mock.Anything, inbound.SwipeCommand{UserID: "user-1", RecipeID: dismissed, Direction: "left"}).
		Return(&inbound.SwipeResult{Direction: "left"}, nil)

	w := do(r, http.MethodPost, "/swipes", map[string]interface{}{"recipe_id": liked, "direction": "right"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/swipes", map[string]interface{}{"recipe_id": dismissed, "direction": "left"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/swipes", map[string]interface{}{"recipe_id": liked, "direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.CodeValidationFailed, decodeError(t, w).Code)

	svc.AssertExpectations(t)
}

func TestFavoriteHandlers_ListAndRemove(t *testing.T) {
	svc := new(mockFavoriteService)
	h := NewFavoriteHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.GET("/favorites", h.List)
	r.DELETE("/favorites/:id", h.Remove)

	page := &inbound.FavoriteList{Items: []*inbound.FavoriteDTO{{ID: uuid.New(), Title: "Ragu"}}, Total: 1, Page: 2, PageSize: 10}
	svc.On("ListFavorites", mock.Anything, "user-1", inbound.PaginationParams{Page: 2, PageSize: 10}).Return(page, nil)

	w := do(r, http.MethodGet, "/favorites?page=2&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got inbound.FavoriteList
	decodeData(t, w, &got)
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, 2, got.Page)

	id := uuid.New()
	svc.On("RemoveFavorite", mock.Anything, "user-1", id).Return(nil).Once()
	w = do(r, http.MethodDelete, "/favorites/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	other := uuid.New()
	svc.On("RemoveFavorite", mock.Anything, "user-1", other).Return(errors.NewFavoriteNotFoundError(other.String()))
	w = do(r, http.MethodDelete, "/favorites/"+other.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.CodeFavoriteNotFound, decodeError(t, w).Code)
}

func TestShoppingHandlers(t *testing.T) {
	svc := new(mockShoppingService)
	h := NewShoppingHandlers(svc, NewValidator())
	r := newTestRouter(t)
	r.POST("/shopping-lists", h.Create)
	r.PATCH("/shopping-lists/:id/items/:name", h.ToggleItem)
	r.GET("/shopping-lists/:id/offers", h.Offers)
	r.DELETE("/shopping-lists/:id", h.Delete)

	recipeID := uuid.New()
	listID := uuid.New()
	list := &inbound.ShoppingListDTO{
		ID:        listID,
		RecipeID:  recipeID,
		Title:     "Weeknight Ragu",
		Items:     []inbound.ShoppingItemDTO{{Name: "onion", Quantity: 1}},
		Remaining: 1,
	}

	t.Run("create", func(t *testing.T) {
		svc.On("CreateFromRecipe", mock.Anything, mock.MatchedBy(func(cmd inbound.CreateShoppingListCommand) bool {
			return cmd.UserID == "user-1" && cmd.RecipeID != nil && *cmd.RecipeID == recipeID
		})).Return(list, nil).Once()

		w := do(r, http.MethodPost, "/shopping-lists", map[string]interface{}{"recipe_id": recipeID, "pantry": []string{"salt"}})

		require.Equal(t, http.StatusCreated, w.Code)
		var got inbound.ShoppingListDTO
		decodeData(t, w, &got)
		assert.Equal(t, listID, got.ID)
	})

	t.Run("nothing to buy", func(t *testing.T) {
		svc.On("CreateFromRecipe", mock.Anything, mock.Anything).Return(nil, errors.NewNothingToBuyError()).Once()

		w := do(r, http.MethodPost, "/shopping-lists", map[string]interface{}{"recipe_id": recipeID})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, errors.CodeNothingToBuy, decodeError(t, w).Code)
	})

	t.Run("toggle item", func(t *testing.T) {
		toggled := *list
		toggled.Items = []inbound.ShoppingItemDTO{{Name: "onion", Quantity: 1, Checked: true}}
		toggled.Remaining = 0
		svc.On("ToggleItem", mock.Anything, "user-1", listID, "onion").Return(&toggled, nil).Once()

		w := do(r, http.MethodPatch, "/shopping-lists/"+listID.String()+"/items/onion", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got inbound.ShoppingListDTO
		decodeData(t, w, &got)
		assert.True(t, got.Items[0].Checked)
		assert.Zero(t, got.Remaining)
	})

	t.Run("offers", func(t *testing.T) {
		offers := []inbound.OfferDTO{{Item: "onion", StoreID: "s1", Store: "Corner Market", PriceCents: 89, InStock: true}}
		svc.On("Offers", mock.Anything, "user-1", listID).Return(offers, nil).Once()

		w := do(r, http.MethodGet, "/shopping-lists/"+listID.String()+"/offers", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got []inbound.OfferDTO
		decodeData(t, w, &got)
		assert.Equal(t, offers, got)
	})

	t.Run("delete", func(t *testing.T) {
		svc.On("Delete", mock.Anything, "user-1", listID).Return(nil).Once()

		w := do(r, http.MethodDelete, "/shopping-lists/"+listID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	svc.AssertExpectations(t)
}
