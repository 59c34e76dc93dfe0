package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorHandler turns every handler error into a {"message": ...} body.
type ErrorHandler struct {
	logger      *logger.Logger
	development bool
}

// NewErrorHandler creates an ErrorHandler. In development mode 5xx bodies also carry the raw error text.
func NewErrorHandler(logger *logger.Logger, development bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, development: development}
}

// Handle implements echo.HTTPErrorHandler.
func (h *ErrorHandler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := h.translate(err)

	resp := errorResponse{Message: message}
	if code >= http.StatusInternalServerError {
		h.logger.Error("HTTP handler: request failed",
			"path", c.Request().URL.Path,
			"error", err.Error())
		if h.development {
			resp.Error = err.Error()
		}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, resp)
	}
	if writeErr != nil {
		h.logger.Error("HTTP handler: failed to write error response", "error", writeErr.Error())
	}
}

func (h *ErrorHandler) translate(err error) (int, string) {
	var apiErr *apiErrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			notFound := apiErrors.NewErrRouteNotFound()
			return notFound.Code, notFound.Message
		}
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	internal := apiErrors.NewErrInternalServerError("", err)
	return internal.Code, internal.Message
}
