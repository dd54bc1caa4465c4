package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// VoteHandler handles HTTP requests related to recipe votes
type VoteHandler struct {
	social *services.SocialService
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(social *services.SocialService) *VoteHandler {
	return &VoteHandler{social: social}
}

// RegisterVoteRoutes registers vote-related routes
func (h *VoteHandler) RegisterVoteRoutes(g *echo.Group, guard Guards) {
	g.POST("/votes", h.Vote, guard.Require)
}

// Vote casts, switches or withdraws the caller's vote
func (h *VoteHandler) Vote(c echo.Context) error {
	var req models.VoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.social.ToggleVote(c.Request().Context(), middleware.UserID(c), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
