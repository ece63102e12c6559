package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	pkgmdw "github.com/aitwy/aitwy-server/internal/server/middleware"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

type Controller interface {
	Health(c echo.Context) error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type controller struct {
	db Pinger
}

func NewHandler(db Pinger) Controller {
	return &controller{
		db: db,
	}
}

type healthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (h *controller) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.Warnw(ctx, "health check failed", "error", err)
		return pkgmdw.NewResponseError(http.StatusServiceUnavailable, "Service unavailable", err)
	}

	return c.JSON(http.StatusOK, pkgmdw.NewResponse(http.StatusOK, "Server is running", healthStatus{
		Status:  "healthy",
		Service: "aitwy-server",
	}))
}
