package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const bearerPrefix = "Bearer "

// TokenService resolves the caller identity from a bearer token.
type TokenService interface {
	GetIdentity(ctx context.Context, token string) (model.Identity, error)
}

// Authenticate validates bearer tokens and injects the caller identity into the request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle rejects the request unless it carries a valid bearer token.
func (m *Authenticate) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		header := req.Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return apiErrors.NewErrMissingAuthorizationToken()
		}
		token := strings.TrimPrefix(header, bearerPrefix)

		identity, err := m.tokenService.GetIdentity(req.Context(), token)
		if err != nil {
			return m.authError(err)
		}

		ctx := m.contextManager.SetIdentityToContext(req.Context(), identity)
		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

func (m *Authenticate) authError(err error) error {
	switch {
	case errors.Is(err, model.ErrTokenExpired):
		return apiErrors.NewErrExpiredAuthorizationToken(err)
	case errors.Is(err, model.ErrTokenInvalid):
		return apiErrors.NewErrInvalidAuthorizationToken(err)
	default:
		m.logger.Error("Authenticate middleware: token verification failed", "error", err.Error())
		return apiErrors.NewErrAuthenticationFailed(err)
	}
}
