package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
)

// DatabaseProbe counts recipes to prove the relational store answers queries.
type DatabaseProbe func(ctx context.Context) (int64, error)

// HealthInfo describes the running deployment for the operational endpoints.
type HealthInfo struct {
	Environment string
	Port        string
	APIURL      string
	MongoReady  bool
	RedisReady  bool
}

// HealthHandler serves the operational probes
type HealthHandler struct {
	info  HealthInfo
	probe DatabaseProbe
}

func NewHealthHandler(info HealthInfo, probe DatabaseProbe) *HealthHandler {
	return &HealthHandler{info: info, probe: probe}
}

func (h *HealthHandler) RegisterHealthRoutes(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)
	e.GET("/env", h.Environment)
	e.GET("/test-db", h.TestDB)
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "healthy",
		"service":     "whatsyourrecipe-api",
		"environment": h.info.Environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Environment(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"environment": h.info.Environment,
		"api_url":     h.info.APIURL,
		"port":        h.info.Port,
	})
}

// TestDB reports store connectivity. Driver errors are logged, not returned.
func (h *HealthHandler) TestDB(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	body := echo.Map{
		"postgres": false,
		"mongo":    h.info.MongoReady,
		"redis":    h.info.RedisReady,
	}
	count, err := h.probe(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("database probe failed")
		body["status"] = "error"
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	body["status"] = "success"
	body["postgres"] = true
	body["recipes_count"] = count
	return c.JSON(http.StatusOK, body)
}
