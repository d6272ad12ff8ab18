package auth

import (
	"github.com/firesight-ai/firesight-backend/internal/users"
)

// RegisterRequest is the local-credentials signup payload.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the password login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries the raw Google ID token from the client.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AuthResponse is the shared shape returned by every login path: a bearer
// token plus the public user view, never the stored credential.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
