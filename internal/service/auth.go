package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const (
	// MinPasswordLength is the shortest password accepted on signup and login.
	MinPasswordLength = 6
	// RequiredEmailDomain must appear somewhere in every email address.
	RequiredEmailDomain = "gmail.com"
)

type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenService *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
		now:          time.Now,
	}
}

// Signup registers a new user. It does not log the user in.
func (a *Auth) Signup(ctx context.Context, params model.SignupParams) error {
	a.logger.Debug("Auth service: signup requested", "email", params.Email)

	if params.Name == "" || params.Email == "" || params.Password == "" {
		return apiErrors.NewErrMissingFields()
	}
	if err := validateCredentials(params.Email, params.Password); err != nil {
		return err
	}

	_, err := a.userStore.GetByEmail(ctx, params.Email)
	switch {
	case err == nil:
		a.logger.Info("Auth service: user already exists", "email", params.Email)
		return apiErrors.NewErrUserExists()
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return apiErrors.NewErrInternalServerError("Signup failed", err)
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", params.Email,
			"error", err.Error())
		return apiErrors.NewErrInternalServerError("Signup failed", err)
	}

	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    a.now(),
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			a.logger.Info("Auth service: user already exists", "email", params.Email)
			return apiErrors.NewErrUserExists()
		}
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return apiErrors.NewErrInternalServerError("Signup failed", err)
	}

	a.logger.Info("Auth service: user created",
		"user_id", user.ID,
		"email", user.Email)

	return nil
}

// Login verifies credentials and issues an access token.
func (a *Auth) Login(ctx context.Context, params model.LoginParams) (model.Session, error) {
	a.logger.Debug("Auth service: login requested", "email", params.Email)

	if params.Email == "" || params.Password == "" {
		return model.Session{}, apiErrors.NewErrMissingCredentials()
	}
	if err := validateCredentials(params.Email, params.Password); err != nil {
		return model.Session{}, err
	}

	user, err := a.userStore.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: no user for email", "email", params.Email)
			return model.Session{}, apiErrors.NewErrAccountNotFound()
		}
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.Session{}, apiErrors.NewErrInternalServerError("Login failed", err)
	}

	ok, err := a.hasher.Compare(user.PasswordHash, params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to compare password",
			"user_id", user.ID,
			"error", err.Error())
		return model.Session{}, apiErrors.NewErrInternalServerError("Login failed", err)
	}
	if !ok {
		a.logger.Info("Auth service: invalid password", "user_id", user.ID)
		return model.Session{}, apiErrors.NewErrInvalidCredentials()
	}

	token, err := a.tokenService.Issue(model.Identity{ID: user.ID, Name: user.Name})
	if err != nil {
		return model.Session{}, apiErrors.NewErrInternalServerError("Login failed", err)
	}

	a.logger.Info("Auth service: login successful", "user_id", user.ID)

	return model.Session{Token: token, User: user.Public()}, nil
}

// Profile returns the caller's own user record.
func (a *Auth) Profile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: user not found for profile", "user_id", userID)
			return model.Profile{}, apiErrors.NewErrUserNotFound()
		}
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", userID,
			"error", err.Error())
		return model.Profile{}, apiErrors.NewErrInternalServerError("Error fetching profile", err)
	}

	return user.Profile(), nil
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, RequiredEmailDomain) {
		return apiErrors.NewErrEmailDomain()
	}
	if passwordLength(password) < MinPasswordLength {
		return apiErrors.NewErrPasswordTooShort(MinPasswordLength)
	}
	return nil
}

// passwordLength counts UTF-16 code units, so characters outside the BMP count twice.
func passwordLength(password string) int {
	return len(utf16.Encode([]rune(password)))
}
