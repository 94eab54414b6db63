package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the identity-provider-owned record: the authentication unit.
// The engine reads it but only the identity provider mutates it.
type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  string    `gorm:"column:password_hash;not null"`
	EmailVerified bool      `gorm:"column:email_verified;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
