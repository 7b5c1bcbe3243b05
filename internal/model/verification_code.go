package model

import (
	"time"
)

// Verification code types
const (
	VerificationCodeRegister       = "REGISTER"
	VerificationCodeForgotPassword = "FORGOT_PASSWORD"
)

// VerificationCode holds at most one outstanding OTP per email. A new
// request for the same email overwrites the previous code and expiry.
type VerificationCode struct {
	ID        uint      `gorm:"primarykey"`
	Email     string    `gorm:"column:email;unique;not null"`
	Code      string    `gorm:"column:code;size:6;not null"`
	Type      string    `gorm:"column:type;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (vc *VerificationCode) Expired(now time.Time) bool {
	return now.After(vc.ExpiresAt)
}
