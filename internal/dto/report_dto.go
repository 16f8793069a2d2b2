package dto

import "github.com/shopspring/decimal"

// ReportFilter is bound from the query string of the /v1/reports endpoints.
// From and To are inclusive calendar days (YYYY-MM-DD).
type ReportFilter struct {
	ShopID string `form:"shop_id" validate:"omitempty,uuid"`
	From   string `form:"from"    validate:"omitempty,datetime=2006-01-02"`
	To     string `form:"to"      validate:"omitempty,datetime=2006-01-02"`
}

type ProfitLossResponse struct {
	ShopID         *string         `json:"shop_id"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	SalesCount     int64           `json:"sales_count"`
	Revenue        decimal.Decimal `json:"revenue"`
	CostOfGoods    decimal.Decimal `json:"cost_of_goods"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	GrossMarginPct decimal.Decimal `json:"gross_margin_pct"`
}

type LowStockItem struct {
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

type DashboardResponse struct {
	Today         ProfitLossResponse `json:"today"`
	LowStockCount int                `json:"low_stock_count"`
	OutOfStock    int                `json:"out_of_stock_count"`
	InventoryRows int64              `json:"inventory_rows"`
}
