package dto

import (
	"time"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Username string `json:"username"`
}

// PasswordResetConfirm payload.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UserResponse describes an account without credentials.
type UserResponse struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	FullName     string      `json:"full_name"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	DepartmentID *int64      `json:"department_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
