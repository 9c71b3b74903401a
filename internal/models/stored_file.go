package models

import (
	"time"

	"github.com/google/uuid"
)

// StoredFile is the metadata row for an uploaded binary; bytes live on disk
// under the configured upload directory.
type StoredFile struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Path      string    `gorm:"size:512;not null" json:"-"`
	MimeType  string    `gorm:"size:100" json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
