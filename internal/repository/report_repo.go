package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"multipos/internal/model"
)

// ProfitLossTotals are the raw aggregates behind the profit & loss report.
type ProfitLossTotals struct {
	SalesCount  int64
	Revenue     decimal.Decimal
	CostOfGoods decimal.Decimal
}

type ReportRepository interface {
	// ProfitLoss aggregates completed sales created in [from, to).
	ProfitLoss(ctx context.Context, shopID *uuid.UUID, from, to time.Time) (ProfitLossTotals, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) ProfitLoss(ctx context.Context, shopID *uuid.UUID, from, to time.Time) (ProfitLossTotals, error) {
	var row struct {
		SalesCount  int64
		Revenue     decimal.NullDecimal
		CostOfGoods decimal.NullDecimal
	}

	q := r.db.WithContext(ctx).Model(&model.SaleItem{}).
		Select(`COUNT(DISTINCT sales.id) AS sales_count,
			SUM(sale_items.subtotal) AS revenue,
			SUM(sale_items.cost_price * sale_items.quantity) AS cost_of_goods`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status = ?", model.SaleStatusCompleted).
		Where("sales.created_at >= ? AND sales.created_at < ?", from, to)
	if shopID != nil {
		q = q.Where("sales.shop_id = ?", *shopID)
	}
	if err := q.Scan(&row).Error; err != nil {
		return ProfitLossTotals{}, translate(err, "report", "")
	}

	totals := ProfitLossTotals{SalesCount: row.SalesCount, Revenue: decimal.Zero, CostOfGoods: decimal.Zero}
	if row.Revenue.Valid {
		totals.Revenue = row.Revenue.Decimal
	}
	if row.CostOfGoods.Valid {
		totals.CostOfGoods = row.CostOfGoods.Decimal
	}
	return totals, nil
}
