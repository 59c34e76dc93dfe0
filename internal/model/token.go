package model

import "github.com/google/uuid"

// Identity is the caller resolved from a bearer token.
type Identity struct {
	ID   uuid.UUID
	Name string
}

// TokenManager generates and validates access tokens.
type TokenManager interface {
	GenerateAccessToken(identity Identity) (string, error)
	ParseAccessToken(token string) (Identity, error)
}
