package handlers

import (
	"net/http"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/gin-gonic/gin"
)

// FavoriteHandlers handles swipes and favorites
type FavoriteHandlers struct {
	favorites inbound.FavoriteService
	validator *Validator
}

// NewFavoriteHandlers creates a new favorite handlers instance
func NewFavoriteHandlers(favorites inbound.FavoriteService, validator *Validator) *FavoriteHandlers {
	return &FavoriteHandlers{favorites: favorites, validator: validator}
}

// Swipe handles POST /api/v1/swipes
func (h *FavoriteHandlers) Swipe(c *gin.Context) {
	var cmd inbound.SwipeCommand
	if err := h.validator.bindJSON(c, &cmd); err != nil {
		fail(c, err)
		return
	}
	cmd.UserID = middleware.UserID(c)

	res, err := h.favorites.Swipe(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	status := http.StatusOK
	if res.Favorite != nil {
		status = http.StatusCreated
	}
	respond(c, status, res, "")
}

// Dismissed handles GET /api/v1/swipes/dismissed
func (h *FavoriteHandlers) Dismissed(c *gin.Context) {
	ids, err := h.favorites.Dismissed(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, ids, "")
}

// List handles GET /api/v1/favorites
func (h *FavoriteHandlers) List(c *gin.Context) {
	var params inbound.PaginationParams
	if err := h.validator.bindQuery(c, &params); err != nil {
		fail(c, err)
		return
	}

	page, err := h.favorites.ListFavorites(c.Request.Context(), middleware.UserID(c), params)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "")
}

// Remove handles DELETE /api/v1/favorites/:id
func (h *FavoriteHandlers) Remove(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.favorites.RemoveFavorite(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
