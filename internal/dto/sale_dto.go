package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	ShopID string `form:"shop_id" validate:"omitempty,uuid"`
	Date   string `form:"date"    validate:"omitempty,datetime=2006-01-02"` // empty = all dates
	Status string `form:"status"  validate:"omitempty,oneof=completed voided all"`
	Pagination
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	// ShopID defaults to the sale's shop.
	ShopID    *string         `json:"shop_id"    validate:"omitempty,uuid"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
	Discount  decimal.Decimal `json:"discount"   validate:"min=0"`
}

type CreateSaleRequest struct {
	ShopID        string            `json:"shop_id"        validate:"required,uuid"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	CustomerID    *string           `json:"customer_id"    validate:"omitempty,max=64"`
	Notes         *string           `json:"notes"          validate:"omitempty,max=500"`
}

type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CreateSaleResponse struct {
	SaleID      string          `json:"sale_id"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

type SaleItemResponse struct {
	InventoryID string          `json:"inventory_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	ShopID      string          `json:"shop_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	ShopID        string             `json:"shop_id"`
	UserID        string             `json:"user_id"`
	CustomerID    *string            `json:"customer_id"`
	PaymentMethod string             `json:"payment_method"`
	Notes         *string            `json:"notes"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	FinalAmount   decimal.Decimal    `json:"final_amount"`
	Status        string             `json:"status"`
	VoidReason    *string            `json:"void_reason,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
}
