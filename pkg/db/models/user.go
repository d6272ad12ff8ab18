package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

// User represents the canonical identity entity. CredentialHash holds either
// an argon2id password hash or a federated sentinel that no password can
// ever verify against.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FullName       string     `gorm:"column:full_name;not null"`
	Email          string     `gorm:"type:text;not null;uniqueIndex"`
	CredentialHash string     `gorm:"column:credential_hash;not null"`
	Role           enums.Role `gorm:"column:role;type:text;not null;default:'user'"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the ID client-side so drivers without gen_random_uuid
// (sqlite in tests) behave the same as postgres.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
