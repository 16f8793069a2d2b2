package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entry. Prices and quantities live on InventoryRecord
// because they differ per shop.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"column:sku;uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	Unit        string     `gorm:"not null;default:'unit'"`
	// MinStock is the reorder threshold used by the status classifier.
	MinStock  int  `gorm:"not null;default:0"`
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}
