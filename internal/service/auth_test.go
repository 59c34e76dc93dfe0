package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	servermocks "github.com/dtroode/taskflow-server/internal/mocks"
	"github.com/dtroode/taskflow-server/internal/model"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

type authDeps struct {
	users   *servermocks.UserStore
	hasher  *servermocks.PasswordHasher
	manager *servermocks.TokenManager
}

func newTestAuth(t *testing.T) (*Auth, authDeps) {
	t.Helper()
	deps := authDeps{
		users:   servermocks.NewUserStore(t),
		hasher:  servermocks.NewPasswordHasher(t),
		manager: servermocks.NewTokenManager(t),
	}
	log := testutil.MakeNoopLogger()
	a := NewAuth(deps.users, deps.hasher, NewTokenService(deps.manager, log), log)
	a.now = testutil.FixedClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	return a, deps
}

func requireAPIError(t *testing.T, err error, code int, message string) {
	t.Helper()
	var apiErr *apiErrors.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, code, apiErr.Code)
	assert.Equal(t, message, apiErr.Message)
}

func TestAuth_Signup_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  model.SignupParams
		message string
	}{
		{
			name:    "missing name",
			params:  model.SignupParams{Email: "ann@gmail.com", Password: "secret1"},
			message: "All fields are required",
		},
		{
			name:    "missing password",
			params:  model.SignupParams{Name: "Ann", Email: "ann@gmail.com"},
			message: "All fields are required",
		},
		{
			name:    "wrong domain",
			params:  model.SignupParams{Name: "Ann", Email: "ann@yahoo.com", Password: "secret1"},
			message: "Email must include gmail.com domain",
		},
		{
			name:    "short password",
			params:  model.SignupParams{Name: "Ann", Email: "ann@gmail.com", Password: "12345"},
			message: "Password must be at least 6 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, _ := newTestAuth(t)

			err := a.Signup(context.Background(), tt.params)
			requireAPIError(t, err, http.StatusBadRequest, tt.message)
		})
	}
}

func TestAuth_Signup_Success(t *testing.T) {
	t.Parallel()
	a, deps := newTestAuth(t)
	params := model.SignupParams{Name: "Ann", Email: "ann@gmail.com", Password: "secret1"}

	deps.users.On("GetByEmail", mock.Anything, params.Email).Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", params.Password).Return("hashed", nil).Once()
	deps.users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.ID != uuid.Nil && u.Name == "Ann" && u.Email == params.Email && u.PasswordHash == "hashed"
	})).Return(model.User{ID: uuid.New()}, nil).Once()

	require.NoError(t, a.Signup(context.Background(), params))
}

func TestAuth_Signup_ExistingUser(t *testing.T) {
	t.Parallel()
	params := model.SignupParams{Name: "Ann", Email: "ann@gmail.com", Password: "secret1"}

	t.Run("found by lookup", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByEmail", mock.Anything, params.Email).Return(model.User{ID: uuid.New()}, nil).Once()

		err := a.Signup(context.Background(), params)
		requireAPIError(t, err, http.StatusBadRequest, "User already exists")
	})

	t.Run("lost race on insert", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByEmail", mock.Anything, params.Email).Return(model.User{}, model.ErrNotFound).Once()
		deps.hasher.On("Hash", params.Password).Return("hashed", nil).Once()
		deps.users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrDuplicateEmail).Once()

		err := a.Signup(context.Background(), params)
		requireAPIError(t, err, http.StatusBadRequest, "User already exists")
	})
}

func TestAuth_Signup_StoreFailure(t *testing.T) {
	t.Parallel()
	a, deps := newTestAuth(t)
	params := model.SignupParams{Name: "Ann", Email: "ann@gmail.com", Password: "secret1"}

	deps.users.On("GetByEmail", mock.Anything, params.Email).Return(model.User{}, assert.AnError).Once()

	err := a.Signup(context.Background(), params)
	requireAPIError(t, err, http.StatusInternalServerError, "Signup failed")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAuth_Login_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  model.LoginParams
		message string
	}{
		{
			name:    "missing email",
			params:  model.LoginParams{Password: "secret1"},
			message: "Email and password are required",
		},
		{
			name:    "wrong domain",
			params:  model.LoginParams{Email: "ann@yahoo.com", Password: "secret1"},
			message: "Email must include gmail.com domain",
		},
		{
			name:    "short password",
			params:  model.LoginParams{Email: "ann@gmail.com", Password: "123"},
			message: "Password must be at least 6 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, _ := newTestAuth(t)

			_, err := a.Login(context.Background(), tt.params)
			requireAPIError(t, err, http.StatusBadRequest, tt.message)
		})
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()
	user := model.User{ID: uuid.New(), Name: "Ann", Email: "ann@gmail.com", PasswordHash: "hashed"}
	params := model.LoginParams{Email: user.Email, Password: "secret1"}

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByEmail", mock.Anything, user.Email).Return(model.User{}, model.ErrNotFound).Once()

		_, err := a.Login(context.Background(), params)
		requireAPIError(t, err, http.StatusNotFound, "No account found with this email")
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()
		deps.hasher.On("Compare", "hashed", "secret1").Return(false, nil).Once()

		_, err := a.Login(context.Background(), params)
		requireAPIError(t, err, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()
		deps.hasher.On("Compare", "hashed", "secret1").Return(true, nil).Once()
		deps.manager.On("GenerateAccessToken", model.Identity{ID: user.ID, Name: "Ann"}).Return("jwt", nil).Once()

		session, err := a.Login(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, "jwt", session.Token)
		assert.Equal(t, model.PublicUser{ID: user.ID, Name: "Ann", Email: user.Email}, session.User)
	})

	t.Run("token failure", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()
		deps.hasher.On("Compare", "hashed", "secret1").Return(true, nil).Once()
		deps.manager.On("GenerateAccessToken", mock.Anything).Return("", assert.AnError).Once()

		_, err := a.Login(context.Background(), params)
		requireAPIError(t, err, http.StatusInternalServerError, "Login failed")
	})
}

func TestAuth_Profile(t *testing.T) {
	t.Parallel()
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	user := model.User{ID: uuid.New(), Name: "Ann", Email: "ann@gmail.com", PasswordHash: "hashed", CreatedAt: created}

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()

		profile, err := a.Profile(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, model.Profile{ID: user.ID, Name: "Ann", Email: user.Email, CreatedAt: created}, profile)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByID", mock.Anything, user.ID).Return(model.User{}, model.ErrNotFound).Once()

		_, err := a.Profile(context.Background(), user.ID)
		requireAPIError(t, err, http.StatusNotFound, "User not found")
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		a, deps := newTestAuth(t)
		deps.users.On("GetByID", mock.Anything, user.ID).Return(model.User{}, assert.AnError).Once()

		_, err := a.Profile(context.Background(), user.ID)
		requireAPIError(t, err, http.StatusInternalServerError, "Error fetching profile")
	})
}

func TestValidateCredentials_PasswordLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantLen  int
		wantErr  bool
	}{
		{name: "ascii at limit", password: "abcdef", wantLen: 6},
		{name: "ascii below limit", password: "abcde", wantLen: 5, wantErr: true},
		{name: "bmp runes count once", password: "пароль", wantLen: 6},
		{name: "astral runes count twice", password: "ab😀😀", wantLen: 6},
		{name: "three runes with astral pair", password: "a😀😀", wantLen: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantLen, passwordLength(tt.password))

			err := validateCredentials("ann@gmail.com", tt.password)
			if tt.wantErr {
				requireAPIError(t, err, http.StatusBadRequest, "Password must be at least 6 characters long")
				return
			}
			assert.NoError(t, err)
		})
	}
}
