package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"
)

// Authenticator resolves a bearer token to an identity. Claims are nil for
// identities that did not come from a local JWT.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (models.Identity, *models.JwtCustomClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// identity on the echo context.
func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}
			token, ok := bearerToken(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			identity, claims, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}
			setIdentity(c, identity, claims)
			return next(c)
		}
	}
}

// OptionalAuth attaches the identity when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c.Request().Header.Get("Authorization")); ok {
				if identity, claims, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					setIdentity(c, identity, claims)
				}
			}
			return next(c)
		}
	}
}

// Expecting "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c echo.Context, identity models.Identity, claims *models.JwtCustomClaims) {
	c.Set(identityKey, identity)
	if claims != nil {
		c.Set(claimsKey, claims)
	}
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(c echo.Context) (models.Identity, bool) {
	identity, ok := c.Get(identityKey).(models.Identity)
	return identity, ok
}

// UserID returns the caller's id or "" for anonymous requests.
func UserID(c echo.Context) string {
	identity, _ := IdentityFrom(c)
	return identity.ID
}

// ClaimsFrom returns the local JWT claims of the caller, if any.
func ClaimsFrom(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(claimsKey).(*models.JwtCustomClaims)
	return claims
}
