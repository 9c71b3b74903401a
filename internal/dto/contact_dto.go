package dto

import "time"

type CreateContactRequest struct {
	Name    string            `json:"name"`
	Title   string            `json:"title"`
	Company string            `json:"company"`
	Email   string            `json:"email"`
	Phone   string            `json:"phone"`
	Notes   string            `json:"notes"`
	MetAt   string            `json:"met_at"`
	MetDate *time.Time        `json:"met_date"`
	Socials map[string]string `json:"socials"`
}

type UpdateContactRequest struct {
	Name    *string            `json:"name"`
	Title   *string            `json:"title"`
	Company *string            `json:"company"`
	Email   *string            `json:"email"`
	Phone   *string            `json:"phone"`
	Notes   *string            `json:"notes"`
	MetAt   *string            `json:"met_at"`
	MetDate *time.Time         `json:"met_date"`
	Socials *map[string]string `json:"socials"`
}

type ScanRequest struct {
	Payload string `json:"payload"`
	MetAt   string `json:"met_at"`
}

type ContactResponse struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"owner_id"`
	Name      string            `json:"name"`
	Title     string            `json:"title"`
	Company   string            `json:"company"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Notes     string            `json:"notes"`
	MetAt     string            `json:"met_at"`
	MetDate   time.Time         `json:"met_date"`
	Socials   map[string]string `json:"socials"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ContactListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Total    int64             `json:"total"`
}

type ScanResponse struct {
	Format  string          `json:"format"`
	Contact ContactResponse `json:"contact"`
}
