package model

import (
	"time"

	"github.com/google/uuid"
)

// Shop is a physical point of sale. Stock is tracked per (product, shop).
type Shop struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	Address   *string
	Phone     *string
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
