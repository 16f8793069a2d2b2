package dto

import "github.com/shopspring/decimal"

// ── Shops ─────────────────────────────────────────────────────────────────────

type CreateShopRequest struct {
	Name    string  `json:"name"    validate:"required,min=2,max=120"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Phone   *string `json:"phone"   validate:"omitempty,max=40"`
}

type UpdateShopRequest struct {
	Name     *string `json:"name"      validate:"omitempty,min=2,max=120"`
	Address  *string `json:"address"   validate:"omitempty,max=255"`
	Phone    *string `json:"phone"     validate:"omitempty,max=40"`
	IsActive *bool   `json:"is_active"`
}

type ShopFilter struct {
	// Active: "false" = inactive only, "all" = everything, default = active only.
	Active string `form:"active"`
	Pagination
}

type ShopResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive bool    `json:"is_active"`
}

// DeleteShopResponse says whether the shop was removed or only deactivated.
type DeleteShopResponse struct {
	ID          string `json:"id"`
	Deactivated bool   `json:"deactivated"`
}

// ── Categories ────────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=100"`
	Description *string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// ── Products ──────────────────────────────────────────────────────────────────

// InitialStockRequest creates an inventory record together with the product.
type InitialStockRequest struct {
	ShopID       string          `json:"shop_id"       validate:"required,uuid"`
	Quantity     int             `json:"quantity"      validate:"min=0"`
	CostPrice    decimal.Decimal `json:"cost_price"    validate:"min=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"min=0"`
}

type CreateProductRequest struct {
	SKU          string                `json:"sku"           validate:"required,min=2,max=64"`
	Name         string                `json:"name"          validate:"required,min=2,max=120"`
	Description  *string               `json:"description"`
	CategoryID   *string               `json:"category_id"   validate:"omitempty,uuid"`
	Unit         string                `json:"unit"          validate:"omitempty,max=20"`
	MinStock     int                   `json:"min_stock"     validate:"min=0"`
	InitialStock []InitialStockRequest `json:"initial_stock" validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=120"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	Unit        *string `json:"unit"        validate:"omitempty,max=20"`
	MinStock    *int    `json:"min_stock"   validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}

type ProductFilter struct {
	SKU        string `form:"sku"`
	Name       string `form:"name"`
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	Active     string `form:"active"`
	Pagination
}

type ProductResponse struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	Category    string  `json:"category,omitempty"`
	Unit        string  `json:"unit"`
	MinStock    int     `json:"min_stock"`
	IsActive    bool    `json:"is_active"`
	// InventoryIDs lists records created from initial_stock, keyed by shop id.
	InventoryIDs map[string]string `json:"inventory_ids,omitempty"`
}
