package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskflow-server/internal/logger"
)

func TestLogging_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    echo.HandlerFunc
		wantStatus int
		wantLevel  string
	}{
		{
			name: "success",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
			wantStatus: http.StatusOK,
			wantLevel:  "level=INFO",
		},
		{
			name: "handler error is rendered before logging",
			handler: func(echo.Context) error {
				return echo.NewHTTPError(http.StatusTeapot, "short and stout")
			},
			wantStatus: http.StatusTeapot,
			wantLevel:  "level=INFO",
		},
		{
			name: "server error",
			handler: func(echo.Context) error {
				return echo.NewHTTPError(http.StatusBadGateway, "upstream")
			},
			wantStatus: http.StatusBadGateway,
			wantLevel:  "level=ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := NewLogging(logger.NewWithWriter(&buf, 0, "text"))

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			require.NoError(t, l.Handle(tt.handler)(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			out := buf.String()
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, "method=GET")
			assert.Contains(t, out, "path=/api/tasks")
			assert.Contains(t, out, "origin=http://localhost:5173")
		})
	}
}
