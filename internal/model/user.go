package model

import (
	"gorm.io/gorm"
)

// User statuses
const (
	UserStatusActive  = "ACTIVE"
	UserStatusBlocked = "BLOCKED"
)

type User struct {
	gorm.Model
	Email       string `gorm:"column:email;unique;not null"`
	Name        string `gorm:"column:name;not null"`
	Password    string `gorm:"column:password;not null"`
	PhoneNumber string `gorm:"column:phone_number"`
	Avatar      string `gorm:"column:avatar"`
	TOTPSecret  string `gorm:"column:totp_secret"`
	Status      string `gorm:"column:status;default:ACTIVE;not null"`
	RoleID      uint   `gorm:"column:role_id;not null;index"`
	Role        Role   `gorm:"foreignKey:RoleID"`
	CreatedByID *uint  `gorm:"column:created_by_id"`
	UpdatedByID *uint  `gorm:"column:updated_by_id"`
}
