package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QrSettings is pure presentation configuration for the attendee's QR card.
// Keyed by user id like Profile.
type QrSettings struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	BackgroundColor string         `gorm:"size:20" json:"background_color"`
	ForegroundColor string         `gorm:"size:20" json:"foreground_color"`
	TextColor       string         `gorm:"size:20" json:"text_color"`
	CardColor       string         `gorm:"size:20" json:"card_color"`
	PageColor       string         `gorm:"size:20" json:"page_color"`
	FieldVisibility datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"field_visibility"`
	Layout          string         `gorm:"size:20;default:'card'" json:"layout"`
	Size            int            `gorm:"default:256" json:"size"`
	Padding         int            `gorm:"default:16" json:"padding"`
	CornerRadius    int            `gorm:"default:12" json:"corner_radius"`
	FontScale       float64        `gorm:"default:1" json:"font_scale"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

var QrLayouts = []string{"card", "minimal", "business", "modern"}
