package dto

import "time"

// UpdateProfileRequest is a partial update; nil pointers leave the field
// untouched. AvatarFileID is tri-state so an explicit null clears the
// stored reference (and best-effort deletes the old binary) while an absent
// field leaves it alone.
type UpdateProfileRequest struct {
	Name         *string            `json:"name"`
	Title        *string            `json:"title"`
	Company      *string            `json:"company"`
	Email        *string            `json:"email"`
	Phone        *string            `json:"phone"`
	Socials      *map[string]string `json:"socials"`
	AvatarFileID Optional[string]   `json:"avatar_file_id"`
}

type CreateProfileRequest struct {
	Name    string            `json:"name"`
	Title   string            `json:"title"`
	Company string            `json:"company"`
	Email   string            `json:"email"`
	Phone   string            `json:"phone"`
	Socials map[string]string `json:"socials"`
}

type ProfileResponse struct {
	UserID       string            `json:"user_id"`
	Name         string            `json:"name"`
	Title        string            `json:"title"`
	Company      string            `json:"company"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Socials      map[string]string `json:"socials"`
	AvatarFileID *string           `json:"avatar_file_id"`
	AvatarURL    string            `json:"avatar_url,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type UpdateQrSettingsRequest struct {
	BackgroundColor *string          `json:"background_color"`
	ForegroundColor *string          `json:"foreground_color"`
	TextColor       *string          `json:"text_color"`
	CardColor       *string          `json:"card_color"`
	PageColor       *string          `json:"page_color"`
	FieldVisibility *map[string]bool `json:"field_visibility"`
	Layout          *string          `json:"layout"`
	Size            *int             `json:"size"`
	Padding         *int             `json:"padding"`
	CornerRadius    *int             `json:"corner_radius"`
	FontScale       *float64         `json:"font_scale"`
}

type QrSettingsResponse struct {
	UserID          string          `json:"user_id"`
	BackgroundColor string          `json:"background_color"`
	ForegroundColor string          `json:"foreground_color"`
	TextColor       string          `json:"text_color"`
	CardColor       string          `json:"card_color"`
	PageColor       string          `json:"page_color"`
	FieldVisibility map[string]bool `json:"field_visibility"`
	Layout          string          `json:"layout"`
	Size            int             `json:"size"`
	Padding         int             `json:"padding"`
	CornerRadius    int             `json:"corner_radius"`
	FontScale       float64         `json:"font_scale"`
}
