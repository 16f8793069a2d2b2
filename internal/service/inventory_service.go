package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/repository"
	"multipos/internal/stock"
)

type InventoryService interface {
	Create(ctx context.Context, actorID uuid.UUID, req dto.CreateInventoryRequest) (*dto.InventoryResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InventoryResponse, error)
	List(ctx context.Context, filter dto.InventoryFilter) (*dto.ListResponse[dto.InventoryResponse], error)
	UpdatePricingAndQuantity(ctx context.Context, actorID, id uuid.UUID, req dto.UpdateInventoryRequest) (*dto.InventoryResponse, error)
	RecordMovement(ctx context.Context, actorID, id uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*dto.StatusResponse, error)
	ListMovements(ctx context.Context, id uuid.UUID, filter dto.MovementFilter) (*dto.ListResponse[dto.StockMovementResponse], error)
	ListPriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error)
}

// InventoryDeps groups the collaborators of the inventory service.
type InventoryDeps struct {
	Inventory repository.InventoryRepository
	Movements repository.StockMovementRepository
	Prices    repository.PriceHistoryRepository
	Products  repository.ProductRepository
	Shops     repository.ShopRepository
	Cache     *StatusCache
	Alerts    AlertEnqueuer
}

type inventoryService struct {
	repo      repository.InventoryRepository
	movements repository.StockMovementRepository
	prices    repository.PriceHistoryRepository
	products  repository.ProductRepository
	shops     repository.ShopRepository
	cache     *StatusCache
	effects   stockEffects
	now       func() time.Time
}

func NewInventoryService(d InventoryDeps) InventoryService {
	return &inventoryService{
		repo:      d.Inventory,
		movements: d.Movements,
		prices:    d.Prices,
		products:  d.Products,
		shops:     d.Shops,
		cache:     d.Cache,
		effects:   stockEffects{cache: d.Cache, alerts: d.Alerts},
		now:       time.Now,
	}
}

func requireActor(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return apperr.NewUnauthorized("")
	}
	return nil
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *inventoryService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateInventoryRequest) (*dto.InventoryResponse, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	productID, err := parseID("product_id", req.ProductID)
	if err != nil {
		return nil, err
	}
	shopID, err := parseID("shop_id", req.ShopID)
	if err != nil {
		return nil, err
	}
	if err := validateStockValues(req.Quantity, req.CostPrice, req.SellingPrice); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByProductShop(ctx, productID, shopID); err == nil {
		return nil, apperr.NewDuplicateKey("inventory record", "inventory record already exists for this product and shop")
	} else if !isNotFound(err) {
		return nil, err
	}

	rec := &model.InventoryRecord{
		ProductID:    productID,
		ShopID:       shopID,
		Quantity:     req.Quantity,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		LastUpdated:  s.now(),
	}
	err = runTx(ctx, s.repo.DB(), "inventory.create", func(tx *gorm.DB) error {
		return createRecordTx(tx, s.repo, s.movements, rec, actorID)
	})
	if err != nil {
		return nil, err
	}
	rec.Product, rec.Shop = product, shop

	log.Info().
		Str("inventory_id", rec.ID.String()).
		Str("product_id", productID.String()).
		Str("shop_id", shopID.String()).
		Int("quantity", rec.Quantity).
		Msg("inventory record created")
	return inventoryToResponse(rec), nil
}

// createRecordTx inserts rec and, when it starts with stock, an IN movement
// so the opening quantity is part of the audit trail.
func createRecordTx(tx *gorm.DB, repo repository.InventoryRepository, movements repository.StockMovementRepository, rec *model.InventoryRecord, actorID uuid.UUID) error {
	if err := repo.CreateTx(tx, rec); err != nil {
		return err
	}
	if rec.Quantity == 0 {
		return nil
	}
	return movements.CreateTx(tx, &model.StockMovement{
		InventoryID: rec.ID,
		Type:        stock.MovementIn,
		Quantity:    rec.Quantity,
		PreviousQty: 0,
		NewQty:      rec.Quantity,
		Reason:      "initial stock",
		CreatedBy:   actorID,
	})
}

// ── Read ──────────────────────────────────────────────────────────────────────

func (s *inventoryService) Get(ctx context.Context, id uuid.UUID) (*dto.InventoryResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return inventoryToResponse(rec), nil
}

func (s *inventoryService) List(ctx context.Context, filter dto.InventoryFilter) (*dto.ListResponse[dto.InventoryResponse], error) {
	filter.Pagination.Normalize()
	recs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InventoryResponse, len(recs))
	for i := range recs {
		data[i] = *inventoryToResponse(&recs[i])
	}
	return &dto.ListResponse[dto.InventoryResponse]{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── UpdatePricingAndQuantity ──────────────────────────────────────────────────

func (s *inventoryService) UpdatePricingAndQuantity(ctx context.Context, actorID, id uuid.UUID, req dto.UpdateInventoryRequest) (*dto.InventoryResponse, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if req.Quantity == nil && req.CostPrice == nil && req.SellingPrice == nil {
		return nil, apperr.NewValidation("nothing to update")
	}
	if req.Quantity != nil {
		if err := validateQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.CostPrice != nil {
		if err := stock.ValidateMoney("cost_price", *req.CostPrice); err != nil {
			return nil, err
		}
	}
	if req.SellingPrice != nil {
		if err := stock.ValidateMoney("selling_price", *req.SellingPrice); err != nil {
			return nil, err
		}
	}

	var (
		rec    *model.InventoryRecord
		before stock.Status
	)
	err := runTx(ctx, s.repo.DB(), "inventory.update", func(tx *gorm.DB) error {
		var err error
		rec, err = s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		before = rec.Status()

		if req.Quantity != nil {
			if *req.Quantity < rec.ReservedQty {
				return apperr.NewFieldValidation("quantity", "quantity below reserved stock")
			}
			rec.Quantity = *req.Quantity
		}

		history := model.PriceHistory{
			InventoryID:        rec.ID,
			CostPriceBefore:    rec.CostPrice,
			SellingPriceBefore: rec.SellingPrice,
			Reason:             reasonOr(req.Reason, "manual"),
			ChangedBy:          actorID,
		}
		if req.CostPrice != nil {
			rec.CostPrice = *req.CostPrice
		}
		if req.SellingPrice != nil {
			rec.SellingPrice = *req.SellingPrice
		}
		rec.LastUpdated = s.now()

		if err := s.repo.UpdateRecordTx(tx, rec); err != nil {
			return err
		}
		if history.CostPriceBefore.Equal(rec.CostPrice) && history.SellingPriceBefore.Equal(rec.SellingPrice) {
			return nil
		}
		history.CostPriceAfter = rec.CostPrice
		history.SellingPriceAfter = rec.SellingPrice
		return s.prices.CreateTx(tx, &history)
	})
	if err != nil {
		return nil, err
	}

	s.effects.apply(ctx, []stockChange{{record: rec, before: before}})
	log.Info().Str("inventory_id", id.String()).Str("actor_id", actorID.String()).Msg("inventory record updated")
	return inventoryToResponse(rec), nil
}

// ── RecordMovement ────────────────────────────────────────────────────────────
// One transaction per movement:
//   1. lock the inventory row
//   2. evaluate the movement against the locked snapshot
//   3. append the movement, then write the new quantity
// A rejected movement writes nothing.

func (s *inventoryService) RecordMovement(ctx context.Context, actorID, id uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	mv := stock.Movement{
		Type:     stock.MovementType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Quantity: req.Quantity,
		Reason:   strings.TrimSpace(req.Reason),
	}

	var (
		rec    *model.InventoryRecord
		before stock.Status
	)
	err := runTx(ctx, s.repo.DB(), "inventory.record_movement", func(tx *gorm.DB) error {
		var err error
		rec, err = s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		before = rec.Status()

		newQty, err := stock.Evaluate(rec.Snapshot(), mv)
		if err != nil {
			return withRecord(err, rec)
		}

		now := s.now()
		if err := s.movements.CreateTx(tx, &model.StockMovement{
			InventoryID: rec.ID,
			Type:        mv.Type,
			Quantity:    mv.Quantity,
			PreviousQty: rec.Quantity,
			NewQty:      newQty,
			Reason:      mv.Reason,
			Reference:   trimmedOrNil(req.Reference),
			CreatedBy:   actorID,
		}); err != nil {
			return err
		}
		if err := s.repo.UpdateQuantityTx(tx, rec.ID, newQty, now); err != nil {
			return err
		}
		rec.Quantity = newQty
		rec.LastUpdated = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.apply(ctx, []stockChange{{record: rec, before: before}})
	log.Info().
		Str("inventory_id", id.String()).
		Str("type", string(mv.Type)).
		Int("quantity", mv.Quantity).
		Int("new_quantity", rec.Quantity).
		Str("actor_id", actorID.String()).
		Msg("stock movement recorded")
	return &dto.MovementResponse{NewQuantity: rec.Quantity}, nil
}

// ── GetStatus ─────────────────────────────────────────────────────────────────

func (s *inventoryService) GetStatus(ctx context.Context, id uuid.UUID) (*dto.StatusResponse, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := statusOf(rec)
	s.cache.Fill(ctx, id, resp)
	return resp, nil
}

// ── History ───────────────────────────────────────────────────────────────────

func (s *inventoryService) ListMovements(ctx context.Context, id uuid.UUID, filter dto.MovementFilter) (*dto.ListResponse[dto.StockMovementResponse], error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	filter.Pagination.Normalize()
	rows, total, err := s.movements.ListByInventory(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockMovementResponse, len(rows))
	for i, m := range rows {
		data[i] = dto.StockMovementResponse{
			ID:          m.ID.String(),
			InventoryID: m.InventoryID.String(),
			Type:        string(m.Type),
			Quantity:    m.Quantity,
			PreviousQty: m.PreviousQty,
			NewQty:      m.NewQty,
			Reason:      m.Reason,
			Reference:   m.Reference,
			CreatedBy:   m.CreatedBy.String(),
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
	}
	return &dto.ListResponse[dto.StockMovementResponse]{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventoryService) ListPriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.prices.ListByInventory(ctx, id, 100)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceHistoryResponse, len(rows))
	for i, h := range rows {
		out[i] = dto.PriceHistoryResponse{
			ID:                 h.ID.String(),
			InventoryID:        h.InventoryID.String(),
			CostPriceBefore:    h.CostPriceBefore,
			CostPriceAfter:     h.CostPriceAfter,
			SellingPriceBefore: h.SellingPriceBefore,
			SellingPriceAfter:  h.SellingPriceAfter,
			Reason:             h.Reason,
			ChangedBy:          h.ChangedBy.String(),
			CreatedAt:          h.CreatedAt.Format(time.RFC3339),
		}
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func validateStockValues(quantity int, cost, selling decimal.Decimal) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if err := stock.ValidateMoney("cost_price", cost); err != nil {
		return err
	}
	return stock.ValidateMoney("selling_price", selling)
}

func validateQuantity(q int) error {
	if q < 0 {
		return apperr.NewFieldValidation("quantity", "must not be negative")
	}
	if q > stock.MaxQuantity {
		return apperr.NewFieldValidation("quantity", "quantity out of range")
	}
	return nil
}

// withRecord fills the product and shop of an InsufficientStockError.
func withRecord(err error, rec *model.InventoryRecord) error {
	var ise *apperr.InsufficientStockError
	if errors.As(err, &ise) {
		ise.ProductID = rec.ProductID
		ise.ShopID = rec.ShopID
	}
	return err
}

func inventoryToResponse(rec *model.InventoryRecord) *dto.InventoryResponse {
	resp := &dto.InventoryResponse{
		ID:           rec.ID.String(),
		ProductID:    rec.ProductID.String(),
		ShopID:       rec.ShopID.String(),
		Quantity:     rec.Quantity,
		ReservedQty:  rec.ReservedQty,
		Available:    rec.Available(),
		MinStock:     rec.MinStock(),
		Status:       string(rec.Status()),
		CostPrice:    rec.CostPrice,
		SellingPrice: rec.SellingPrice,
		Margin:       rec.Margin(),
		LastUpdated:  rec.LastUpdated.Format(time.RFC3339),
	}
	if rec.Product != nil {
		resp.ProductName = rec.Product.Name
		resp.SKU = rec.Product.SKU
		resp.Unit = rec.Product.Unit
	}
	if rec.Shop != nil {
		resp.ShopName = rec.Shop.Name
	}
	return resp
}
