package dto

import "time"

// ==================== AUTHENTICATION REQUEST DTOs ====================

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"parent@example.com"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum" example:"calmparent"`
	Password string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
	Role     string `json:"role" validate:"omitempty,oneof=parent teacher" example:"teacher"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required" example:"parent@example.com"`
	Password        string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Balance  int    `json:"balance"` // wallet account is opened at registration
}

type LoginResponse struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	TokenPair   TokenPair `json:"token"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// ==================== ERROR RESPONSE DTOs ====================

type ValidationError struct {
	Field   string `json:"field" example:"email"`
	Message string `json:"message" example:"invalid email format"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code" example:"400"`
	Message string            `json:"message" example:"Validation failed"`
	Errors  []ValidationError `json:"errors"`
}
