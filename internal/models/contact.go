package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contact is a captured attendee, created by manual entry or by scanning a
// QR payload. Owned by exactly one user.
type Contact struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Title     string         `gorm:"size:255" json:"title"`
	Company   string         `gorm:"size:255" json:"company"`
	Email     string         `gorm:"size:255" json:"email"`
	Phone     string         `gorm:"size:50" json:"phone"`
	Notes     string         `gorm:"type:text" json:"notes"`
	MetAt     string         `gorm:"size:255" json:"met_at"`
	MetDate   time.Time      `json:"met_date"`
	Socials   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"socials"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
