package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskflow-server/internal/logger"
)

// Logging logs every HTTP request once it has been answered.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle renders handler errors through the echo error handler first so that the
// logged status is the one the client received.
func (l *Logging) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()
		args := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", res.Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"origin", req.Header.Get(echo.HeaderOrigin),
			"request_id", res.Header().Get(echo.HeaderXRequestID),
		}
		if err != nil {
			args = append(args, "error", err.Error())
		}

		switch {
		case res.Status >= 500:
			l.logger.Error("HTTP request failed", args...)
		default:
			l.logger.Info("HTTP request", args...)
		}

		return nil
	}
}
