package model

import (
	"time"

	"github.com/google/uuid"

	"multipos/internal/stock"
)

// StockMovement is an append-only audit row for every change of an inventory
// record's quantity. Rows are never updated or deleted.
type StockMovement struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InventoryID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Type        stock.MovementType `gorm:"type:varchar(20);not null"`
	// Quantity is the requested amount; for ADJUSTMENT it is the new absolute level.
	Quantity    int       `gorm:"not null"`
	PreviousQty int       `gorm:"not null"`
	NewQty      int       `gorm:"not null"`
	Reason      string    `gorm:"not null"`
	Reference   *string   `gorm:"index"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }
