package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/repository"
	"multipos/internal/stock"
)

type SaleService interface {
	CreateSale(ctx context.Context, actorID uuid.UUID, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error)
	VoidSale(ctx context.Context, actorID, saleID uuid.UUID, reason string) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.ListResponse[dto.SaleResponse], error)
}

type saleService struct {
	repo      repository.SaleRepository
	inventory repository.InventoryRepository
	movements repository.StockMovementRepository
	effects   stockEffects
	now       func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	inventory repository.InventoryRepository,
	movements repository.StockMovementRepository,
	cache *StatusCache,
	alerts AlertEnqueuer,
) SaleService {
	return &saleService{
		repo:      repo,
		inventory: inventory,
		movements: movements,
		effects:   stockEffects{cache: cache, alerts: alerts},
		now:       time.Now,
	}
}

// saleLine is a validated request line bound to its inventory record.
type saleLine struct {
	productID uuid.UUID
	shopID    uuid.UUID
	line      stock.Line
	record    uuid.UUID
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// All-or-nothing stock consumption in one transaction:
//   1. resolve every line to its inventory record by (product, shop)
//   2. sum the requested quantity per record and lock the records in id order
//   3. check every record against its available stock before writing anything
//   4. persist the sale, decrement each record and append one OUT movement each
// Low-stock alerts and the cache write-through run after commit.

func (s *saleService) CreateSale(ctx context.Context, actorID uuid.UUID, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	saleShop, err := parseID("shop_id", req.ShopID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(model.PaymentMethods, req.PaymentMethod) {
		return nil, apperr.NewFieldValidation("payment_method", "unsupported payment method")
	}
	if len(req.Items) == 0 {
		return nil, apperr.NewFieldValidation("items", "at least one item is required")
	}

	lines := make([]saleLine, len(req.Items))
	priced := make([]stock.Line, len(req.Items))
	for i, item := range req.Items {
		productID, err := parseID("product_id", item.ProductID)
		if err != nil {
			return nil, err
		}
		shopID := saleShop
		if sid, err := parseOptionalID("shop_id", item.ShopID); err != nil {
			return nil, err
		} else if sid != nil {
			shopID = *sid
		}
		l := stock.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice, Discount: item.Discount}
		if err := l.Validate(); err != nil {
			return nil, err
		}
		lines[i] = saleLine{productID: productID, shopID: shopID, line: l}
		priced[i] = l
	}
	gross, discount, final := stock.Totals(priced)
	if err := stock.ValidateTotals(gross); err != nil {
		return nil, err
	}

	sale := &model.Sale{
		ID:            uuid.New(),
		ShopID:        saleShop,
		UserID:        actorID,
		CustomerID:    trimmedOrNil(req.CustomerID),
		PaymentMethod: req.PaymentMethod,
		Notes:         trimmedOrNil(req.Notes),
		TotalAmount:   gross,
		DiscountTotal: discount,
		FinalAmount:   final,
		Status:        model.SaleStatusCompleted,
	}

	var changes []stockChange
	err = runTx(ctx, s.repo.DB(), "sale.create", func(tx *gorm.DB) error {
		requested := make(map[uuid.UUID]int)
		for i := range lines {
			rec, err := s.inventory.FindByProductShopTx(tx, lines[i].productID, lines[i].shopID)
			if err != nil {
				return err
			}
			lines[i].record = rec.ID
			sum, err := stock.AddQuantity(requested[rec.ID], lines[i].line.Quantity)
			if err != nil {
				return err
			}
			requested[rec.ID] = sum
		}

		locked, err := s.lockRecords(tx, requested)
		if err != nil {
			return err
		}
		for _, rec := range locked {
			if err := stock.CheckAvailable(rec.Snapshot(), requested[rec.ID]); err != nil {
				return withRecord(err, rec)
			}
		}

		byID := make(map[uuid.UUID]*model.InventoryRecord, len(locked))
		for _, rec := range locked {
			byID[rec.ID] = rec
		}
		for _, l := range lines {
			rec := byID[l.record]
			sale.Items = append(sale.Items, model.SaleItem{
				SaleID:      sale.ID,
				InventoryID: rec.ID,
				ProductID:   rec.ProductID,
				ShopID:      rec.ShopID,
				Quantity:    l.line.Quantity,
				UnitPrice:   l.line.UnitPrice,
				Discount:    l.line.Discount,
				CostPrice:   rec.CostPrice,
				Subtotal:    l.line.Subtotal(),
			})
		}
		if err := s.repo.CreateTx(tx, sale); err != nil {
			return err
		}

		ref := sale.ID.String()
		now := s.now()
		changes = changes[:0]
		for _, rec := range locked {
			before := rec.Status()
			newQty := rec.Quantity - requested[rec.ID]
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				InventoryID: rec.ID,
				Type:        stock.MovementOut,
				Quantity:    requested[rec.ID],
				PreviousQty: rec.Quantity,
				NewQty:      newQty,
				Reason:      "sale",
				Reference:   &ref,
				CreatedBy:   actorID,
			}); err != nil {
				return err
			}
			if err := s.inventory.UpdateQuantityTx(tx, rec.ID, newQty, now); err != nil {
				return err
			}
			rec.Quantity = newQty
			rec.LastUpdated = now
			changes = append(changes, stockChange{record: rec, before: before})
		}
		return nil
	})
	if err != nil {
		var ise *apperr.InsufficientStockError
		if errors.As(err, &ise) {
			log.Info().
				Str("product_id", ise.ProductID.String()).
				Str("shop_id", ise.ShopID.String()).
				Int("requested", ise.Requested).
				Int("available", ise.Available).
				Msg("sale rejected: insufficient stock")
		}
		return nil, err
	}

	s.effects.apply(ctx, changes)
	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("shop_id", saleShop.String()).
		Int("items", len(sale.Items)).
		Str("final_amount", final.StringFixed(2)).
		Msg("sale created")
	return &dto.CreateSaleResponse{SaleID: sale.ID.String(), FinalAmount: final}, nil
}

// lockRecords takes row locks in ascending id order so concurrent sales over
// overlapping records cannot deadlock.
func (s *saleService) lockRecords(tx *gorm.DB, ids map[uuid.UUID]int) ([]*model.InventoryRecord, error) {
	sorted := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	slices.SortFunc(sorted, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	locked := make([]*model.InventoryRecord, 0, len(sorted))
	for _, id := range sorted {
		rec, err := s.inventory.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return nil, err
		}
		locked = append(locked, rec)
	}
	return locked, nil
}

// ── VoidSale ──────────────────────────────────────────────────────────────────

func (s *saleService) VoidSale(ctx context.Context, actorID, saleID uuid.UUID, reason string) (*dto.SaleResponse, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.NewValidation("reason required")
	}

	var (
		sale    *model.Sale
		changes []stockChange
	)
	err := runTx(ctx, s.repo.DB(), "sale.void", func(tx *gorm.DB) error {
		var err error
		sale, err = s.repo.FindByIDForUpdateTx(tx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == model.SaleStatusVoided {
			return apperr.NewValidation("sale already voided")
		}

		returned := make(map[uuid.UUID]int)
		for _, item := range sale.Items {
			sum, err := stock.AddQuantity(returned[item.InventoryID], item.Quantity)
			if err != nil {
				return err
			}
			returned[item.InventoryID] = sum
		}
		locked, err := s.lockRecords(tx, returned)
		if err != nil {
			return err
		}

		ref := sale.ID.String()
		now := s.now()
		for _, rec := range locked {
			before := rec.Status()
			newQty, err := stock.Evaluate(rec.Snapshot(), stock.Movement{
				Type:     stock.MovementReturn,
				Quantity: returned[rec.ID],
				Reason:   "sale voided: " + reason,
			})
			if err != nil {
				return err
			}
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				InventoryID: rec.ID,
				Type:        stock.MovementReturn,
				Quantity:    returned[rec.ID],
				PreviousQty: rec.Quantity,
				NewQty:      newQty,
				Reason:      "sale voided: " + reason,
				Reference:   &ref,
				CreatedBy:   actorID,
			}); err != nil {
				return err
			}
			if err := s.inventory.UpdateQuantityTx(tx, rec.ID, newQty, now); err != nil {
				return err
			}
			rec.Quantity = newQty
			changes = append(changes, stockChange{record: rec, before: before})
		}

		sale.Status = model.SaleStatusVoided
		sale.VoidReason = &reason
		return s.repo.UpdateStatusTx(tx, sale.ID, sale.Status, sale.VoidReason)
	})
	if err != nil {
		return nil, err
	}

	s.effects.apply(ctx, changes)
	log.Info().Str("sale_id", saleID.String()).Str("actor_id", actorID.String()).Msg("sale voided")
	return saleToResponse(sale), nil
}

// ── Read ──────────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.ListResponse[dto.SaleResponse], error) {
	filter.Pagination.Normalize()
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		data[i] = *saleToResponse(&sales[i])
	}
	return &dto.ListResponse[dto.SaleResponse]{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            s.ID.String(),
		ShopID:        s.ShopID.String(),
		UserID:        s.UserID.String(),
		CustomerID:    s.CustomerID,
		PaymentMethod: s.PaymentMethod,
		Notes:         s.Notes,
		TotalAmount:   s.TotalAmount,
		DiscountTotal: s.DiscountTotal,
		FinalAmount:   s.FinalAmount,
		Status:        s.Status,
		VoidReason:    s.VoidReason,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range s.Items {
		item := dto.SaleItemResponse{
			InventoryID: it.InventoryID.String(),
			ProductID:   it.ProductID.String(),
			ShopID:      it.ShopID.String(),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Subtotal:    it.Subtotal,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
