package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/metrics"
	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, guard Guards) {
	g.GET("/recipes", h.GetFeed, guard.Require)
}

// GetFeed returns one page of the requested view. When a store fails the
// handler answers with an empty page flagged as degraded.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	q := services.FeedQuery{
		UserID:       middleware.UserID(c),
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
		View:         c.QueryParam("view"),
		TrendingDays: queryInt(c, "trending_days"),
	}.Normalize()

	page, err := h.feed.Assemble(c.Request().Context(), q)
	meta := pageMeta(page.Page, page.Limit, page.Total)
	if err != nil {
		metrics.RecordFeedDegraded(q.View)
		logging.Ctx(c.Request().Context()).Error().Err(err).Str("view", q.View).Msg("feed degraded")
		meta["degraded"] = true
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"recipes": page.Recipes,
			"view":    page.View,
		},
		"meta": meta,
	})
}
