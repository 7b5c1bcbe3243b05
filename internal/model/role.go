package model

import (
	"gorm.io/gorm"
)

// Role names, seeded once at bootstrap and immutable afterwards.
const (
	RoleAdmin  = "Admin"
	RoleSeller = "Seller"
	RoleClient = "Client"
)

type Role struct {
	gorm.Model
	Name        string `gorm:"column:name;unique;not null"`
	Description string `gorm:"column:description"`
}
