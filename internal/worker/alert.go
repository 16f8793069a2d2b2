package worker

import "multipos/internal/model"

// LowStockAlert describes one inventory record that crossed into LOW_STOCK
// or OUT_OF_STOCK.
type LowStockAlert struct {
	InventoryID string `json:"inventory_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	ShopID      string `json:"shop_id"`
	ShopName    string `json:"shop_name"`
	Available   int    `json:"available"`
	MinStock    int    `json:"min_stock"`
	Status      string `json:"status"`
}

// LowStockPayload is the job body on QueueLowStock. Digest marks the
// periodic sweep as opposed to a transition raised by a single mutation.
type LowStockPayload struct {
	Alerts []LowStockAlert `json:"alerts"`
	Digest bool            `json:"digest"`
}

// AlertFromRecord builds an alert from a record. Product and Shop are used
// when preloaded.
func AlertFromRecord(rec *model.InventoryRecord) LowStockAlert {
	a := LowStockAlert{
		InventoryID: rec.ID.String(),
		ProductID:   rec.ProductID.String(),
		ShopID:      rec.ShopID.String(),
		Available:   rec.Available(),
		MinStock:    rec.MinStock(),
		Status:      string(rec.Status()),
	}
	if rec.Product != nil {
		a.ProductName = rec.Product.Name
		a.SKU = rec.Product.SKU
	}
	if rec.Shop != nil {
		a.ShopName = rec.Shop.Name
	}
	return a
}
