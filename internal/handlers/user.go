package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// MaxAvatarBytes caps the size of an uploaded avatar image.
const MaxAvatarBytes = 2 << 20

// UserHandler handles HTTP requests related to profiles
type UserHandler struct {
	profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterProfileRoutes registers profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, guard Guards) {
	g.GET("/users/profile", h.GetProfile, guard.Require)   // Get own profile
	g.PUT("/users/profile", h.UpdateProfile, guard.Require) // Update own profile
	g.POST("/users/avatar", h.UploadAvatar, guard.Require)
	g.GET("/users/search/:q", h.SearchUsers)
	g.GET("/users/:id", h.GetUser) // Get other user's profile by ID
	g.GET("/user-stats/:user_id", h.GetStats, guard.Optional)
	g.GET("/avatars/:id", h.GetAvatar)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.profiles.GetPublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfile returns the caller's profile, creating it on first access
func (h *UserHandler) GetProfile(c echo.Context) error {
	identity, _ := middleware.IdentityFrom(c)

	profile, err := h.profiles.EnsureProfile(c.Request().Context(), identity)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	identity, _ := middleware.IdentityFrom(c)

	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.UpdateProfile(c.Request().Context(), identity, &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// SearchUsers matches usernames and full names case-insensitively
func (h *UserHandler) SearchUsers(c echo.Context) error {
	profiles, err := h.profiles.Search(c.Request().Context(), c.Param("q"), queryInt(c, "limit"))
	if err != nil {
		logFallback(c, err, "user search degraded")
		profiles = []models.PublicProfile{}
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *UserHandler) GetStats(c echo.Context) error {
	stats, err := h.profiles.Stats(c.Request().Context(), c.Param("user_id"), middleware.UserID(c))
	if err != nil {
		logFallback(c, err, "user stats degraded")
		stats = &models.UserStats{UserID: c.Param("user_id")}
	}
	return c.JSON(http.StatusOK, stats)
}

// UploadAvatar accepts a multipart "avatar" image of at most MaxAvatarBytes
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	identity, _ := middleware.IdentityFrom(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing avatar file")
	}
	if file.Size > MaxAvatarBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Avatar must be 2 MiB or smaller")
	}
	contentType := file.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Avatar must be an image")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable avatar file")
	}
	defer src.Close()

	url, err := h.profiles.UploadAvatar(c.Request().Context(), identity, contentType, io.LimitReader(src, MaxAvatarBytes))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}

// GetAvatar streams a stored avatar image
func (h *UserHandler) GetAvatar(c echo.Context) error {
	avatar, err := h.profiles.OpenAvatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	defer avatar.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, avatar.ContentType, avatar)
}
