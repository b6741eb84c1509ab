package handlers

import (
	"net/http"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/gin-gonic/gin"
)

// ShoppingHandlers handles shopping lists
type ShoppingHandlers struct {
	lists     inbound.ShoppingService
	validator *Validator
}

// NewShoppingHandlers creates a new shopping handlers instance
func NewShoppingHandlers(lists inbound.ShoppingService, validator *Validator) *ShoppingHandlers {
	return &ShoppingHandlers{lists: lists, validator: validator}
}

// Create handles POST /api/v1/shopping-lists
func (h *ShoppingHandlers) Create(c *gin.Context) {
	var cmd inbound.CreateShoppingListCommand
	if err := h.validator.bindJSON(c, &cmd); err != nil {
		fail(c, err)
		return
	}
	cmd.UserID = middleware.UserID(c)

	list, err := h.lists.CreateFromRecipe(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, list, "Shopping list created successfully")
}

// List handles GET /api/v1/shopping-lists
func (h *ShoppingHandlers) List(c *gin.Context) {
	lists, err := h.lists.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, lists, "")
}

// Get handles GET /api/v1/shopping-lists/:id
func (h *ShoppingHandlers) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	list, err := h.lists.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, list, "")
}

// ToggleItem handles PATCH /api/v1/shopping-lists/:id/items/:name
func (h *ShoppingHandlers) ToggleItem(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	list, err := h.lists.ToggleItem(c.Request.Context(), middleware.UserID(c), id, c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, list, "")
}

// Offers handles GET /api/v1/shopping-lists/:id/offers
func (h *ShoppingHandlers) Offers(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	offers, err := h.lists.Offers(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, offers, "")
}

// Delete handles DELETE /api/v1/shopping-lists/:id
func (h *ShoppingHandlers) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.lists.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
