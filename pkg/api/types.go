package api

import (
	"encoding/json"
	"time"
)

// SocialMap tolerates the two shapes the socials field has shipped in: a
// plain JSON object, or that object double-encoded as a JSON string.
// Either decodes to the same map; anything unreadable decodes to an
// empty map rather than failing the whole document.
type SocialMap map[string]string

func (m *SocialMap) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*m = SocialMap{}
			return nil
		}
		data = []byte(s)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*m = SocialMap{}
		return nil
	}
	*m = raw
	return nil
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type Profile struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Socials      SocialMap `json:"socials"`
	AvatarFileID *string   `json:"avatar_file_id"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type QrSettings struct {
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

type Contact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	MetAt     string    `json:"met_at"`
	MetDate   time.Time `json:"met_date"`
	Socials   SocialMap `json:"socials"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContactList struct {
	Contacts []Contact `json:"contacts"`
	Total    int64     `json:"total"`
}

type ScanResult struct {
	Format  string  `json:"format"`
	Contact Contact `json:"contact"`
}
