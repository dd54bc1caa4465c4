package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// RecipeHandler handles HTTP requests related to recipes
type RecipeHandler struct {
	recipes *services.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipes *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRecipeRoutes registers recipe-related routes. Listing lives on
// FeedHandler.
func (h *RecipeHandler) RegisterRecipeRoutes(g *echo.Group, guard Guards) {
	g.POST("/recipes", h.CreateRecipe, guard.Require)
	g.GET("/recipes/search/:q", h.SearchRecipes, guard.Optional)
	g.GET("/recipes/hashtag/:tag", h.GetRecipesByHashtag, guard.Optional)
	g.GET("/recipes/:id", h.GetRecipe, guard.Optional)
	g.PUT("/recipes/:id", h.UpdateRecipe, guard.Require)
	g.DELETE("/recipes/:id", h.DeleteRecipe, guard.Require)
	g.GET("/trending-hashtags", h.GetTrendingHashtags)
}

// CreateRecipe creates a new recipe owned by the caller
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	identity, _ := middleware.IdentityFrom(c)

	var req models.CreateRecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	recipe, err := h.recipes.Create(c.Request().Context(), identity, &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, recipe)
}

// GetRecipe retrieves a recipe by ID. Private recipes are only found by their owner.
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	view, err := h.recipes.Get(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateRecipe updates an existing recipe
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	var req models.UpdateRecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	recipe, err := h.recipes.Update(c.Request().Context(), c.Param("id"), middleware.UserID(c), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe deletes a recipe
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	if err := h.recipes.Delete(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RecipeHandler) SearchRecipes(c echo.Context) error {
	views, err := h.recipes.Search(c.Request().Context(), c.Param("q"), queryInt(c, "limit"), middleware.UserID(c))
	if err != nil {
		logFallback(c, err, "recipe search degraded")
		views = []models.RecipeView{}
	}
	return c.JSON(http.StatusOK, views)
}

func (h *RecipeHandler) GetRecipesByHashtag(c echo.Context) error {
	page, err := h.recipes.ByHashtag(c.Request().Context(), c.Param("tag"), queryInt(c, "page"), queryInt(c, "limit"), middleware.UserID(c))
	meta := pageMeta(page.Page, page.Limit, page.Total)
	if err != nil {
		logFallback(c, err, "hashtag recipes degraded")
		meta["degraded"] = true
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"recipes": page.Recipes, "hashtag": c.Param("tag")},
		"meta":    meta,
	})
}

func (h *RecipeHandler) GetTrendingHashtags(c echo.Context) error {
	tags, err := h.recipes.TrendingHashtags(c.Request().Context(), queryInt(c, "limit"))
	if err != nil {
		logFallback(c, err, "trending hashtags degraded")
		tags = []models.Hashtag{}
	}
	return c.JSON(http.StatusOK, tags)
}
