package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleCashier = "cashier"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User is a staff account. ShopID restricts a cashier to one shop; nil means
// every shop.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string     `gorm:"uniqueIndex;not null"`
	Name         string     `gorm:"not null"`
	Email        *string    `gorm:"uniqueIndex"`
	PasswordHash string     `gorm:"not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	ShopID       *uuid.UUID `gorm:"type:uuid;index"`
	IsActive     bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
