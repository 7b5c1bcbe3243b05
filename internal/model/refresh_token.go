package model

import (
	"time"
)

// RefreshToken is one row per issued refresh token, keyed by the signed
// token string. The row is deleted on rotation, reuse, and logout, so a
// rotated token can never be replayed.
type RefreshToken struct {
	Token     string    `gorm:"column:token;primarykey"`
	UserID    uint      `gorm:"column:user_id;not null;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}
