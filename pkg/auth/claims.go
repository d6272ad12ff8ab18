package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

// TokenUser is the identity block embedded in every access token. Clients
// depend on the nested `user` shape, so it stays as-is.
type TokenUser struct {
	ID   uuid.UUID  `json:"id"`
	Role enums.Role `json:"role"`
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}
