package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile is the attendee's own card. It is keyed by the owning user's id,
// so there is exactly one per user and the id doubles as the upsert key.
type Profile struct {
	UserID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Title        string         `gorm:"size:255" json:"title"`
	Company      string         `gorm:"size:255" json:"company"`
	Email        string         `gorm:"size:255" json:"email"`
	Phone        string         `gorm:"size:50" json:"phone"`
	Socials      datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"socials"`
	AvatarFileID *string        `gorm:"type:uuid" json:"avatar_file_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
