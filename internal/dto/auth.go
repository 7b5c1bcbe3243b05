package dto

import "time"

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email,max=255"`
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Password        string `json:"password" binding:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	PhoneNumber     string `json:"phone_number" binding:"omitempty,min=9,max=15"`
	Code            string `json:"code" binding:"required,len=6,numeric"`
}

// RegisterResponse deliberately omits password and totp_secret.
type RegisterResponse struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Status      string    `json:"status"`
	RoleID      uint      `json:"role_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Type  string `json:"type" binding:"required,oneof=REGISTER FORGOT_PASSWORD"`
}

type SendOTPResponse struct {
	Email     string    `json:"email"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access token expiry in seconds
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
