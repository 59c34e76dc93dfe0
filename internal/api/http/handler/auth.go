package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// AuthService defines signup, login and profile operations.
type AuthService interface {
	Signup(ctx context.Context, params model.SignupParams) error
	Login(ctx context.Context, params model.LoginParams) (model.Session, error)
	Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

// Auth handles the /api/auth endpoints.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Auth) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	err := h.authService.Signup(c.Request().Context(), model.SignupParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "Signup successful! Please log in."})
}

func (h *Auth) Login(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), model.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   session.Token,
		User:    session.User,
	})
}

// Profile must run behind the Authenticate middleware.
func (h *Auth) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := h.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		h.logger.Error("Auth handler: no caller identity on request context", "path", c.Path())
		return apiErrors.NewErrMissingAuthorizationToken()
	}

	profile, err := h.authService.Profile(ctx, identity.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}
