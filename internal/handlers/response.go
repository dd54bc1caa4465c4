package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
	"github.com/anonto42/whatsyourrecipe/backend/internal/validators"
)

// Guards holds the route-level auth middleware handed to each handler.
type Guards struct {
	Require  echo.MiddlewareFunc
	Optional echo.MiddlewareFunc
}

// httpError maps a service error to a client-safe HTTP error. Unknown errors
// are logged and reported as 500 without their text.
func httpError(c echo.Context, err error) error {
	var verr *validators.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to modify this resource")
	case errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	case errors.Is(err, services.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Request conflicts with a concurrent change, retry")
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, services.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Service unavailable")
	default:
		logging.Ctx(c.Request().Context()).Error().Err(err).
			Str("method", c.Request().Method).
			Str("route", c.Path()).
			Msg("request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return httpError(c, err)
	}
	return nil
}

// queryInt reads an integer query parameter; missing or malformed values are 0.
func queryInt(c echo.Context, name string) int {
	v, _ := strconv.Atoi(c.QueryParam(name))
	return v
}

// pageMeta builds the pagination block of the response envelope.
func pageMeta(page, limit int, totalItems int64) echo.Map {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(limit)))
	}
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      totalItems,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// logFallback records a read endpoint that answered with an empty result
// instead of an error.
func logFallback(c echo.Context, err error, msg string) {
	logging.Ctx(c.Request().Context()).Warn().Err(err).Str("route", c.Path()).Msg(msg)
}
