package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const banner = "TaskFlow API running"

// Health serves the liveness banner and the store health probe.
type Health struct {
	pinger model.Pinger
	logger *logger.Logger
}

func NewHealth(pinger model.Pinger, logger *logger.Logger) *Health {
	return &Health{pinger: pinger, logger: logger}
}

func (h *Health) Root(c echo.Context) error {
	return c.String(http.StatusOK, banner)
}

func (h *Health) Check(c echo.Context) error {
	if err := h.pinger.Ping(c.Request().Context()); err != nil {
		h.logger.Warn("Health handler: store ping failed", "error", err.Error())
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Database unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
