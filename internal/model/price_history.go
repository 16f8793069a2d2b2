package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory records each pricing change of an inventory record. Immutable.
type PriceHistory struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InventoryID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostPriceBefore    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPriceAfter     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPriceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPriceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason             string          `gorm:"not null;default:'manual'"`
	ChangedBy          uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt          time.Time
}

func (PriceHistory) TableName() string { return "price_history" }
