package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, actorID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ListResponse[dto.ProductResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	shops      repository.ShopRepository
	inventory  repository.InventoryRepository
	movements  repository.StockMovementRepository
	cache      *StatusCache
	now        func() time.Time
}

func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	shops repository.ShopRepository,
	inventory repository.InventoryRepository,
	movements repository.StockMovementRepository,
	cache *StatusCache,
) ProductService {
	return &productService{
		repo:       repo,
		categories: categories,
		shops:      shops,
		inventory:  inventory,
		movements:  movements,
		cache:      cache,
		now:        time.Now,
	}
}

func mapProduct(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  uuidPtrString(p.CategoryID),
		Unit:        p.Unit,
		MinStock:    p.MinStock,
		IsActive:    p.IsActive,
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	return resp
}

func (s *productService) resolveCategory(ctx context.Context, raw *string) (*uuid.UUID, error) {
	id, err := parseOptionalID("category_id", raw)
	if err != nil || id == nil {
		return nil, err
	}
	if _, err := s.categories.FindByID(ctx, *id); err != nil {
		return nil, err
	}
	return id, nil
}

// Create inserts the product and, in the same transaction, one inventory
// record per initial_stock entry.
func (s *productService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if req.MinStock < 0 {
		return nil, apperr.NewFieldValidation("min_stock", "must not be negative")
	}
	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	type opening struct {
		shopID uuid.UUID
		entry  dto.InitialStockRequest
	}
	openings := make([]opening, 0, len(req.InitialStock))
	seen := make(map[uuid.UUID]bool, len(req.InitialStock))
	for _, e := range req.InitialStock {
		shopID, err := parseID("shop_id", e.ShopID)
		if err != nil {
			return nil, err
		}
		if seen[shopID] {
			return nil, apperr.NewFieldValidation("initial_stock", "duplicate shop")
		}
		seen[shopID] = true
		if err := validateStockValues(e.Quantity, e.CostPrice, e.SellingPrice); err != nil {
			return nil, err
		}
		if _, err := s.shops.FindByID(ctx, shopID); err != nil {
			return nil, err
		}
		openings = append(openings, opening{shopID: shopID, entry: e})
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "unit"
	}
	p := &model.Product{
		SKU:         strings.TrimSpace(req.SKU),
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  categoryID,
		Unit:        unit,
		MinStock:    req.MinStock,
		IsActive:    true,
	}

	inventoryIDs := make(map[string]string, len(openings))
	err = runTx(ctx, s.repo.DB(), "product.create", func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		for _, o := range openings {
			rec := &model.InventoryRecord{
				ProductID:    p.ID,
				ShopID:       o.shopID,
				Quantity:     o.entry.Quantity,
				CostPrice:    o.entry.CostPrice,
				SellingPrice: o.entry.SellingPrice,
				LastUpdated:  s.now(),
			}
			if err := createRecordTx(tx, s.inventory, s.movements, rec, actorID); err != nil {
				return err
			}
			inventoryIDs[o.shopID.String()] = rec.ID.String()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("product_id", p.ID.String()).Str("sku", p.SKU).Int("shops", len(openings)).Msg("product created")
	resp := mapProduct(p)
	if len(inventoryIDs) > 0 {
		resp.InventoryIDs = inventoryIDs
	}
	return resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapProduct(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ListResponse[dto.ProductResponse], error) {
	filter.Pagination.Normalize()
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = *mapProduct(&products[i])
	}
	return &dto.ListResponse[dto.ProductResponse]{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = categoryID
		p.Category = nil
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	thresholdChanged := false
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, apperr.NewFieldValidation("min_stock", "must not be negative")
		}
		thresholdChanged = *req.MinStock != p.MinStock
		p.MinStock = *req.MinStock
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if thresholdChanged {
		s.refreshStatuses(ctx, p.ID)
	}
	return mapProduct(p), nil
}

// refreshStatuses rewrites cached statuses of every record of the
// product, since they were classified against the old threshold.
func (s *productService) refreshStatuses(ctx context.Context, productID uuid.UUID) {
	filter := dto.InventoryFilter{ProductID: productID.String(), Pagination: dto.Pagination{Page: 1, Limit: 200}}
	recs, _, err := s.inventory.List(ctx, filter)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("status cache: could not list records to refresh")
		return
	}
	loaded := make([]*model.InventoryRecord, len(recs))
	for i := range recs {
		loaded[i] = &recs[i]
	}
	s.cache.Store(ctx, loaded...)
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}
