package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/repository"
	"multipos/internal/stock"
)

const dateLayout = "2006-01-02"

type ReportService interface {
	ProfitAndLoss(ctx context.Context, filter dto.ReportFilter) (*dto.ProfitLossResponse, error)
	LowStock(ctx context.Context, shopID *uuid.UUID) ([]dto.LowStockItem, error)
	Dashboard(ctx context.Context, shopID *uuid.UUID) (*dto.DashboardResponse, error)
}

type reportService struct {
	reports   repository.ReportRepository
	inventory repository.InventoryRepository
	now       func() time.Time
}

func NewReportService(reports repository.ReportRepository, inventory repository.InventoryRepository) ReportService {
	return &reportService{reports: reports, inventory: inventory, now: time.Now}
}

// ProfitAndLoss covers the inclusive day range [From, To]. Both default to today.
func (s *reportService) ProfitAndLoss(ctx context.Context, filter dto.ReportFilter) (*dto.ProfitLossResponse, error) {
	shopID, err := parseOptionalID("shop_id", &filter.ShopID)
	if err != nil {
		return nil, err
	}
	today := s.today().Format(dateLayout)
	fromStr, toStr := orDefault(filter.From, today), orDefault(filter.To, today)

	from, err := time.ParseInLocation(dateLayout, fromStr, time.Local)
	if err != nil {
		return nil, apperr.NewFieldValidation("from", "expected YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(dateLayout, toStr, time.Local)
	if err != nil {
		return nil, apperr.NewFieldValidation("to", "expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, apperr.NewFieldValidation("to", "must not be before from")
	}
	return s.profitAndLoss(ctx, shopID, from, to)
}

func (s *reportService) profitAndLoss(ctx context.Context, shopID *uuid.UUID, from, to time.Time) (*dto.ProfitLossResponse, error) {
	totals, err := s.reports.ProfitLoss(ctx, shopID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	gross := totals.Revenue.Sub(totals.CostOfGoods)
	margin := decimal.Zero
	if !totals.Revenue.IsZero() {
		margin = gross.Div(totals.Revenue).Mul(decimal.NewFromInt(100)).Round(1)
	}
	return &dto.ProfitLossResponse{
		ShopID:         uuidPtrString(shopID),
		From:           from.Format(dateLayout),
		To:             to.Format(dateLayout),
		SalesCount:     totals.SalesCount,
		Revenue:        totals.Revenue,
		CostOfGoods:    totals.CostOfGoods,
		GrossProfit:    gross,
		GrossMarginPct: margin,
	}, nil
}

func (s *reportService) LowStock(ctx context.Context, shopID *uuid.UUID) ([]dto.LowStockItem, error) {
	recs, err := s.inventory.ListLowStock(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return lowStockItems(recs), nil
}

// Dashboard runs today's profit & loss, the low-stock scan and the record
// count concurrently.
func (s *reportService) Dashboard(ctx context.Context, shopID *uuid.UUID) (*dto.DashboardResponse, error) {
	var (
		pl    *dto.ProfitLossResponse
		low   []model.InventoryRecord
		count int64
	)
	day := s.today()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pl, err = s.profitAndLoss(gctx, shopID, day, day)
		return err
	})
	g.Go(func() error {
		var err error
		low, err = s.inventory.ListLowStock(gctx, shopID)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.inventory.Count(gctx, shopID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{Today: *pl, InventoryRows: count}
	for i := range low {
		switch low[i].Status() {
		case stock.StatusOutOfStock:
			resp.OutOfStock++
		case stock.StatusLowStock:
			resp.LowStockCount++
		}
	}
	return resp, nil
}

func lowStockItems(recs []model.InventoryRecord) []dto.LowStockItem {
	out := make([]dto.LowStockItem, 0, len(recs))
	for i := range recs {
		r := &recs[i]
		item := dto.LowStockItem{
			InventoryID: r.ID.String(),
			ProductID:   r.ProductID.String(),
			ShopID:      r.ShopID.String(),
			Available:   r.Available(),
			MinStock:    r.MinStock(),
			Status:      string(r.Status()),
		}
		if r.Product != nil {
			item.ProductName = r.Product.Name
			item.SKU = r.Product.SKU
		}
		if r.Shop != nil {
			item.ShopName = r.Shop.Name
		}
		out = append(out, item)
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// today is local midnight of the current day.
func (s *reportService) today() time.Time {
	y, m, d := s.now().In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
