package dto

import "time"

// UserResponse is the public view of a user. Password and totp_secret are
// never serialized.
type UserResponse struct {
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

type UpdateProfileRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=100"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,min=9,max=15"`
	Avatar      string `json:"avatar" binding:"omitempty,url"`
}
