package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// ActivityHandler serves the activity feed
type ActivityHandler struct {
	activities *services.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activities *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// RegisterActivityRoutes registers activity routes
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group, guard Guards) {
	g.GET("/activity-feed", h.GetActivityFeed, guard.Require)
}

// GetActivityFeed returns recent activity by the caller and the accounts they follow
func (h *ActivityHandler) GetActivityFeed(c echo.Context) error {
	entries, err := h.activities.Feed(c.Request().Context(), middleware.UserID(c), queryInt(c, "limit"))
	if err != nil {
		logFallback(c, err, "activity feed degraded")
		entries = []models.ActivityView{}
	}
	return success(c, http.StatusOK, echo.Map{"activities": entries})
}
