package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"multipos/internal/stock"
)

// InventoryRecord is the stock and pricing of one product at one shop.
// Invariant: 0 <= ReservedQty <= Quantity (also enforced by a check constraint).
type InventoryRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_shop"`
	ShopID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_shop;index"`
	Quantity     int             `gorm:"not null;default:0"`
	ReservedQty  int             `gorm:"not null;default:0"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LastUpdated  time.Time       `gorm:"not null"`
	CreatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Shop    *Shop    `gorm:"foreignKey:ShopID"`
}

func (InventoryRecord) TableName() string { return "inventory_records" }

// Snapshot returns the quantities the movement evaluator works on.
func (r *InventoryRecord) Snapshot() stock.Snapshot {
	return stock.Snapshot{Quantity: r.Quantity, ReservedQty: r.ReservedQty}
}

// Available is Quantity - ReservedQty.
func (r *InventoryRecord) Available() int {
	return stock.Available(r.Quantity, r.ReservedQty)
}

// MinStock returns the product threshold, or 0 when the product is not loaded.
func (r *InventoryRecord) MinStock() int {
	if r.Product == nil {
		return 0
	}
	return r.Product.MinStock
}

// Status classifies the record against its product's minimum stock.
func (r *InventoryRecord) Status() stock.Status {
	return stock.Classify(r.Available(), r.MinStock())
}

// Margin is the markup percentage of the selling price over the cost price.
func (r *InventoryRecord) Margin() decimal.Decimal {
	return stock.Margin(r.CostPrice, r.SellingPrice)
}
