package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// SavedRecipeHandler handles HTTP requests related to bookmarked recipes
type SavedRecipeHandler struct {
	social *services.SocialService
}

// NewSavedRecipeHandler creates a new SavedRecipeHandler
func NewSavedRecipeHandler(social *services.SocialService) *SavedRecipeHandler {
	return &SavedRecipeHandler{social: social}
}

// RegisterSavedRecipeRoutes registers saved-recipe routes
func (h *SavedRecipeHandler) RegisterSavedRecipeRoutes(g *echo.Group, guard Guards) {
	g.POST("/save-recipe/:recipe_id", h.ToggleSave, guard.Require)
	g.GET("/save-status/:recipe_id", h.SaveStatus, guard.Require)
}

// ToggleSave bookmarks a recipe, or removes the bookmark
func (h *SavedRecipeHandler) ToggleSave(c echo.Context) error {
	result, err := h.social.ToggleSave(c.Request().Context(), middleware.UserID(c), c.Param("recipe_id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SavedRecipeHandler) SaveStatus(c echo.Context) error {
	saved, err := h.social.SaveStatus(c.Request().Context(), middleware.UserID(c), c.Param("recipe_id"))
	if err != nil {
		logFallback(c, err, "save status degraded")
		saved = false
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": saved})
}
