package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// FollowHandler handles follow toggles and follow suggestions
type FollowHandler struct {
	social *services.SocialService
	recs   *services.RecommendationService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(social *services.SocialService, recs *services.RecommendationService) *FollowHandler {
	return &FollowHandler{social: social, recs: recs}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, guard Guards) {
	g.POST("/follow/:user_id", h.ToggleFollow, guard.Require)
	g.GET("/follow-status/:user_id", h.FollowStatus, guard.Require)
	g.GET("/recommended-users", h.RecommendedUsers, guard.Require)
}

// ToggleFollow follows the target user, or unfollows when already following
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	result, err := h.social.ToggleFollow(c.Request().Context(), middleware.UserID(c), c.Param("user_id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *FollowHandler) FollowStatus(c echo.Context) error {
	following, err := h.social.FollowStatus(c.Request().Context(), middleware.UserID(c), c.Param("user_id"))
	if err != nil {
		logFallback(c, err, "follow status degraded")
		following = false
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

func (h *FollowHandler) RecommendedUsers(c echo.Context) error {
	rec, err := h.recs.Recommend(c.Request().Context(), middleware.UserID(c), queryInt(c, "limit"))
	if err != nil {
		logFallback(c, err, "recommendations degraded")
		rec = models.Recommendation{Profiles: []models.PublicProfile{}, SimilarAuthors: []string{}}
	}
	return c.JSON(http.StatusOK, rec)
}
