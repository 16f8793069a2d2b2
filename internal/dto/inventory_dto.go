package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// InventoryFilter is bound from the query string of GET /v1/inventory.
type InventoryFilter struct {
	ShopID    string `form:"shop_id"    validate:"omitempty,uuid"`
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	// Status narrows to IN_STOCK | LOW_STOCK | OUT_OF_STOCK.
	Status string `form:"status" validate:"omitempty,oneof=IN_STOCK LOW_STOCK OUT_OF_STOCK"`
	Search string `form:"search"`
	Pagination
}

// MovementFilter is bound from the query string of GET /v1/inventory/:id/movements.
type MovementFilter struct {
	Type string `form:"type" validate:"omitempty,oneof=IN OUT ADJUSTMENT TRANSFER RETURN DAMAGE"`
	Pagination
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateInventoryRequest struct {
	ProductID    string          `json:"product_id"    validate:"required,uuid"`
	ShopID       string          `json:"shop_id"       validate:"required,uuid"`
	Quantity     int             `json:"quantity"      validate:"min=0"`
	CostPrice    decimal.Decimal `json:"cost_price"    validate:"min=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"min=0"`
}

// UpdateInventoryRequest applies only the supplied fields. Negative values are
// rejected by the service so the error reads the same for every caller.
type UpdateInventoryRequest struct {
	Quantity     *int             `json:"quantity"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	Reason       string           `json:"reason"`
}

// RecordMovementRequest is the body of POST /v1/inventory/:id/movements.
// Range checks belong to the movement evaluator, not to binding tags.
type RecordMovementRequest struct {
	Type      string  `json:"type"      validate:"required"`
	Quantity  int     `json:"quantity"`
	Reason    string  `json:"reason"`
	Reference *string `json:"reference" validate:"omitempty,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InventoryResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	ShopID       string          `json:"shop_id"`
	ShopName     string          `json:"shop_name,omitempty"`
	Quantity     int             `json:"quantity"`
	ReservedQty  int             `json:"reserved_qty"`
	Available    int             `json:"available"`
	MinStock     int             `json:"min_stock"`
	Status       string          `json:"status"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Margin       decimal.Decimal `json:"margin"`
	LastUpdated  string          `json:"last_updated"`
}

// StatusResponse is the cached result of getStatus.
type StatusResponse struct {
	InventoryID string          `json:"inventory_id"`
	Available   int             `json:"available"`
	Status      string          `json:"status"`
	Margin      decimal.Decimal `json:"margin"`
}

type MovementResponse struct {
	NewQuantity int `json:"new_quantity"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	InventoryID string  `json:"inventory_id"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	PreviousQty int     `json:"previous_qty"`
	NewQty      int     `json:"new_qty"`
	Reason      string  `json:"reason"`
	Reference   *string `json:"reference"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
}

type PriceHistoryResponse struct {
	ID                 string          `json:"id"`
	InventoryID        string          `json:"inventory_id"`
	CostPriceBefore    decimal.Decimal `json:"cost_price_before"`
	CostPriceAfter     decimal.Decimal `json:"cost_price_after"`
	SellingPriceBefore decimal.Decimal `json:"selling_price_before"`
	SellingPriceAfter  decimal.Decimal `json:"selling_price_after"`
	Reason             string          `json:"reason"`
	ChangedBy          string          `json:"changed_by"`
	CreatedAt          string          `json:"created_at"`
}
