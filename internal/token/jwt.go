package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/model"
)

// AccessTTL is the validity window of an access token.
const AccessTTL = 24 * time.Hour

// Claims represents JWT claims carrying the caller identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"id"`
	Name   string    `json:"name"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	method    *jwt.SigningMethodHMAC
	now       func() time.Time
}

// Option configures a JWT manager.
type Option func(*JWT)

// WithClock replaces the wall clock used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// NewJWT creates a new JWT token manager. algorithm must name an HMAC method
// (HS256, HS384, HS512); an empty value selects HS256.
func NewJWT(secretKey, algorithm string, opts ...Option) (*JWT, error) {
	if secretKey == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	j := &JWT{secretKey: []byte(secretKey), method: method, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

var _ model.TokenManager = (*JWT)(nil)

// GenerateAccessToken signs a token embedding the identity, valid for AccessTTL.
func (j *JWT) GenerateAccessToken(identity model.Identity) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(j.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
		UserID: identity.ID,
		Name:   identity.Name,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates the token and extracts the identity.
// It returns model.ErrTokenExpired past the validity window and model.ErrTokenInvalid otherwise.
func (j *JWT) ParseAccessToken(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, fmt.Errorf("%w: %v", model.ErrTokenExpired, err)
		}
		return model.Identity{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return model.Identity{}, model.ErrTokenInvalid
	}
	if claims.UserID == uuid.Nil {
		return model.Identity{}, fmt.Errorf("%w: missing user id", model.ErrTokenInvalid)
	}

	return model.Identity{ID: claims.UserID, Name: claims.Name}, nil
}
