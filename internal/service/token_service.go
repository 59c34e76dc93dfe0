package service

import (
	"context"
	"fmt"

	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// TokenService issues access tokens and resolves them back to identities.
// Tokens are stateless: there is no store and no revocation.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

func (s *TokenService) Issue(identity model.Identity) (string, error) {
	token, err := s.manager.GenerateAccessToken(identity)
	if err != nil {
		s.logger.Error("Token service: failed to issue access token",
			"user_id", identity.ID,
			"error", err.Error())
		return "", fmt.Errorf("issue access: %w", err)
	}

	return token, nil
}

// GetIdentity verifies token. Errors are model.ErrTokenInvalid or model.ErrTokenExpired
// for bad tokens, anything else is unexpected.
func (s *TokenService) GetIdentity(_ context.Context, token string) (model.Identity, error) {
	identity, err := s.manager.ParseAccessToken(token)
	if err != nil {
		s.logger.Debug("Token service: rejected access token", "error", err.Error())
		return model.Identity{}, err
	}

	return identity, nil
}
