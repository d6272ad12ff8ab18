package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

// UserDTO is the transport shape that omits the stored credential. Field
// names are camelCase because the web client predates this service.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	FullName       string
	Email          string
	CredentialHash string
	Role           enums.Role
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleUser
	}
	return &models.User{
		FullName:       c.FullName,
		Email:          c.Email,
		CredentialHash: c.CredentialHash,
		Role:           role,
	}
}
