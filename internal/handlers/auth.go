package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, guard Guards) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/logout", h.Logout, guard.Require)
}

// Signup handles local account registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	account, err := h.auth.Signup(c.Request().Context(), &req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user": echo.Map{
			"id":    account.ID,
			"email": account.Email,
		},
	})
}

// Login exchanges email and password for an access/refresh token pair
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.Login(c.Request().Context(), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// FirebaseLogin verifies a Firebase ID token and issues a local token pair
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.auth.Logout(c.Request().Context(), middleware.ClaimsFrom(c))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}
