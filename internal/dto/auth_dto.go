package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RecoveryRequest struct {
	Email string `json:"email"`
}

type RecoveryConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Symbolic error types surfaced alongside the HTTP status so clients can
// branch on the condition rather than the message.
const (
	ErrTypeNotFound      = "document_not_found"
	ErrTypeAlreadyExists = "document_already_exists"
	ErrTypeValidation    = "validation_failed"
	ErrTypeParseFailed   = "parse_failed"
	ErrTypeUnauthorized  = "unauthorized"
)

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
