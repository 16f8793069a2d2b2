package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/repository"
	"multipos/internal/worker"
)

// memStore backs every fake repository. DB() returns nil, so runTx calls the
// transaction callback directly against these maps.
type memStore struct {
	shops      map[uuid.UUID]*model.Shop
	categories map[uuid.UUID]*model.Category
	products   map[uuid.UUID]*model.Product
	users      map[uuid.UUID]*model.User
	inventory  map[uuid.UUID]*model.InventoryRecord
	sales      map[uuid.UUID]*model.Sale
	movements  []model.StockMovement
	prices     []model.PriceHistory
	deleted    []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		shops:      map[uuid.UUID]*model.Shop{},
		categories: map[uuid.UUID]*model.Category{},
		products:   map[uuid.UUID]*model.Product{},
		users:      map[uuid.UUID]*model.User{},
		inventory:  map[uuid.UUID]*model.InventoryRecord{},
		sales:      map[uuid.UUID]*model.Sale{},
	}
}

func (m *memStore) addShop(name string) *model.Shop {
	s := &model.Shop{ID: uuid.New(), Name: name, Slug: strings.ToLower(name), IsActive: true}
	m.shops[s.ID] = s
	return s
}

func (m *memStore) addProduct(sku string, minStock int) *model.Product {
	p := &model.Product{ID: uuid.New(), SKU: sku, Name: "Product " + sku, MinStock: minStock, Unit: "unit", IsActive: true}
	m.products[p.ID] = p
	return p
}

func (m *memStore) addRecord(p *model.Product, s *model.Shop, qty, reserved int, cost, selling string) *model.InventoryRecord {
	r := &model.InventoryRecord{
		ID:           uuid.New(),
		ProductID:    p.ID,
		ShopID:       s.ID,
		Quantity:     qty,
		ReservedQty:  reserved,
		CostPrice:    decimal.RequireFromString(cost),
		SellingPrice: decimal.RequireFromString(selling),
	}
	m.inventory[r.ID] = r
	return r
}

// loaded returns a detached copy of a record with Product and Shop attached,
// the way the GORM repository preloads them.
func (m *memStore) loaded(r *model.InventoryRecord) *model.InventoryRecord {
	cp := *r
	cp.Product = m.products[r.ProductID]
	cp.Shop = m.shops[r.ShopID]
	return &cp
}

func (m *memStore) movementsFor(id uuid.UUID) []model.StockMovement {
	var out []model.StockMovement
	for _, mv := range m.movements {
		if mv.InventoryID == id {
			out = append(out, mv)
		}
	}
	return out
}

// ── inventory ─────────────────────────────────────────────────────────────────

type fakeInventoryRepo struct{ m *memStore }

var _ repository.InventoryRepository = fakeInventoryRepo{}

func (f fakeInventoryRepo) DB() *gorm.DB { return nil }

func (f fakeInventoryRepo) Create(_ context.Context, rec *model.InventoryRecord) error {
	return f.CreateTx(nil, rec)
}

func (f fakeInventoryRepo) CreateTx(_ *gorm.DB, rec *model.InventoryRecord) error {
	for _, r := range f.m.inventory {
		if r.ProductID == rec.ProductID && r.ShopID == rec.ShopID {
			return apperr.NewDuplicateKey("inventory record", "")
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	cp := *rec
	cp.Product, cp.Shop = nil, nil
	f.m.inventory[rec.ID] = &cp
	return nil
}

func (f fakeInventoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InventoryRecord, error) {
	r, ok := f.m.inventory[id]
	if !ok {
		return nil, apperr.NewNotFound("inventory record", id.String())
	}
	return f.m.loaded(r), nil
}

func (f fakeInventoryRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.InventoryRecord, error) {
	return f.FindByID(context.Background(), id)
}

func (f fakeInventoryRepo) FindByProductShop(_ context.Context, productID, shopID uuid.UUID) (*model.InventoryRecord, error) {
	for _, r := range f.m.inventory {
		if r.ProductID == productID && r.ShopID == shopID {
			return f.m.loaded(r), nil
		}
	}
	return nil, apperr.NewNotFound("inventory record", "")
}

func (f fakeInventoryRepo) FindByProductShopTx(_ *gorm.DB, productID, shopID uuid.UUID) (*model.InventoryRecord, error) {
	return f.FindByProductShop(context.Background(), productID, shopID)
}

func (f fakeInventoryRepo) UpdateQuantityTx(_ *gorm.DB, id uuid.UUID, quantity int, at time.Time) error {
	r, ok := f.m.inventory[id]
	if !ok {
		return apperr.NewNotFound("inventory record", id.String())
	}
	r.Quantity = quantity
	r.LastUpdated = at
	return nil
}

func (f fakeInventoryRepo) UpdateRecordTx(_ *gorm.DB, rec *model.InventoryRecord) error {
	if _, ok := f.m.inventory[rec.ID]; !ok {
		return apperr.NewNotFound("inventory record", rec.ID.String())
	}
	cp := *rec
	cp.Product, cp.Shop = nil, nil
	f.m.inventory[rec.ID] = &cp
	return nil
}

func (f fakeInventoryRepo) List(_ context.Context, filter dto.InventoryFilter) ([]model.InventoryRecord, int64, error) {
	var out []model.InventoryRecord
	for _, r := range f.m.inventory {
		if filter.ProductID != "" && r.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.ShopID != "" && r.ShopID.String() != filter.ShopID {
			continue
		}
		out = append(out, *f.m.loaded(r))
	}
	return out, int64(len(out)), nil
}

func (f fakeInventoryRepo) ListLowStock(_ context.Context, shopID *uuid.UUID) ([]model.InventoryRecord, error) {
	var out []model.InventoryRecord
	for _, r := range f.m.inventory {
		if shopID != nil && r.ShopID != *shopID {
			continue
		}
		l := f.m.loaded(r)
		if l.Status().IsAlerting() {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f fakeInventoryRepo) Count(_ context.Context, shopID *uuid.UUID) (int64, error) {
	var n int64
	for _, r := range f.m.inventory {
		if shopID == nil || r.ShopID == *shopID {
			n++
		}
	}
	return n, nil
}

func (f fakeInventoryRepo) CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	return f.Count(ctx, &shopID)
}

// ── movements & prices ────────────────────────────────────────────────────────

type fakeMovementRepo struct{ m *memStore }

func (f fakeMovementRepo) CreateTx(_ *gorm.DB, mv *model.StockMovement) error {
	if mv.ID == uuid.Nil {
		mv.ID = uuid.New()
	}
	f.m.movements = append(f.m.movements, *mv)
	return nil
}

func (f fakeMovementRepo) ListByInventory(_ context.Context, id uuid.UUID, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, mv := range f.m.movementsFor(id) {
		if filter.Type == "" || string(mv.Type) == filter.Type {
			out = append(out, mv)
		}
	}
	return out, int64(len(out)), nil
}

type fakePriceRepo struct{ m *memStore }

func (f fakePriceRepo) CreateTx(_ *gorm.DB, h *model.PriceHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	f.m.prices = append(f.m.prices, *h)
	return nil
}

func (f fakePriceRepo) ListByInventory(_ context.Context, id uuid.UUID, _ int) ([]model.PriceHistory, error) {
	var out []model.PriceHistory
	for _, h := range f.m.prices {
		if h.InventoryID == id {
			out = append(out, h)
		}
	}
	return out, nil
}

// ── sales ─────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct{ m *memStore }

func (f fakeSaleRepo) DB() *gorm.DB { return nil }

func (f fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	cp := *s
	cp.Items = append([]model.SaleItem(nil), s.Items...)
	f.m.sales[s.ID] = &cp
	return nil
}

func (f fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := f.m.sales[id]
	if !ok {
		return nil, apperr.NewNotFound("sale", id.String())
	}
	cp := *s
	return &cp, nil
}

func (f fakeSaleRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return f.FindByID(context.Background(), id)
}

func (f fakeSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string, voidReason *string) error {
	s, ok := f.m.sales[id]
	if !ok {
		return apperr.NewNotFound("sale", id.String())
	}
	s.Status, s.VoidReason = status, voidReason
	return nil
}

func (f fakeSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range f.m.sales {
		if filter.ShopID != "" && s.ShopID.String() != filter.ShopID {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f fakeSaleRepo) CountByShop(_ context.Context, shopID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range f.m.sales {
		if s.ShopID == shopID {
			n++
		}
	}
	return n, nil
}

// ── catalog ───────────────────────────────────────────────────────────────────

type fakeShopRepo struct{ m *memStore }

func (f fakeShopRepo) Create(_ context.Context, s *model.Shop) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	f.m.shops[s.ID] = &cp
	return nil
}

func (f fakeShopRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	s, ok := f.m.shops[id]
	if !ok {
		return nil, apperr.NewNotFound("shop", id.String())
	}
	cp := *s
	return &cp, nil
}

func (f fakeShopRepo) ExistsBySlug(_ context.Context, sl string, excludeID *uuid.UUID) (bool, error) {
	for _, s := range f.m.shops {
		if s.Slug == sl && (excludeID == nil || s.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeShopRepo) List(_ context.Context, _ dto.ShopFilter) ([]model.Shop, int64, error) {
	var out []model.Shop
	for _, s := range f.m.shops {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f fakeShopRepo) Update(_ context.Context, s *model.Shop) error {
	cp := *s
	f.m.shops[s.ID] = &cp
	return nil
}

func (f fakeShopRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	f.m.shops[id].IsActive = false
	return nil
}

func (f fakeShopRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.m.shops, id)
	f.m.deleted = append(f.m.deleted, id)
	return nil
}

type fakeProductRepo struct{ m *memStore }

func (f fakeProductRepo) DB() *gorm.DB { return nil }

func (f fakeProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	for _, existing := range f.m.products {
		if existing.SKU == p.SKU {
			return apperr.NewDuplicateKey("product", "")
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.m.products[p.ID] = &cp
	return nil
}

func (f fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := f.m.products[id]
	if !ok {
		return nil, apperr.NewNotFound("product", id.String())
	}
	cp := *p
	return &cp, nil
}

func (f fakeProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range f.m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	cp := *p
	f.m.products[p.ID] = &cp
	return nil
}

func (f fakeProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	f.m.products[id].IsActive = false
	return nil
}

type fakeCategoryRepo struct{ m *memStore }

func (f fakeCategoryRepo) Create(_ context.Context, c *model.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	f.m.categories[c.ID] = &cp
	return nil
}

func (f fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := f.m.categories[id]
	if !ok {
		return nil, apperr.NewNotFound("category", id.String())
	}
	cp := *c
	return &cp, nil
}

func (f fakeCategoryRepo) FindBySlug(_ context.Context, sl string) (*model.Category, error) {
	for _, c := range f.m.categories {
		if c.Slug == sl {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.NewNotFound("category", sl)
}

func (f fakeCategoryRepo) List(_ context.Context, includeInactive bool) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.m.categories {
		if includeInactive || c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f fakeCategoryRepo) Update(_ context.Context, c *model.Category) error {
	cp := *c
	f.m.categories[c.ID] = &cp
	return nil
}

func (f fakeCategoryRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	f.m.categories[id].IsActive = false
	return nil
}

// ── users ─────────────────────────────────────────────────────────────────────

type fakeUserRepo struct{ m *memStore }

func (f fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.m.users {
		if existing.Username == u.Username {
			return apperr.NewDuplicateKey("user", "")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.m.users[u.ID] = &cp
	return nil
}

func (f fakeUserRepo) FindByLogin(_ context.Context, login string) (*model.User, error) {
	for _, u := range f.m.users {
		if u.IsActive && (u.Username == login || (u.Email != nil && *u.Email == login)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NewNotFound("user", login)
}

func (f fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.m.users[id]
	if !ok {
		return nil, apperr.NewNotFound("user", id.String())
	}
	cp := *u
	return &cp, nil
}

func (f fakeUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range f.m.users {
		if includeInactive || u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f fakeUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	f.m.users[u.ID] = &cp
	return nil
}

func (f fakeUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	f.m.users[id].IsActive = false
	return nil
}

// ── reports ───────────────────────────────────────────────────────────────────

type fakeReportRepo struct {
	totals repository.ProfitLossTotals
	from   time.Time
	to     time.Time
}

func (f *fakeReportRepo) ProfitLoss(_ context.Context, _ *uuid.UUID, from, to time.Time) (repository.ProfitLossTotals, error) {
	f.from, f.to = from, to
	return f.totals, nil
}

// ── alerts ────────────────────────────────────────────────────────────────────

type recordingAlerts struct{ got []worker.LowStockAlert }

func (r *recordingAlerts) EnqueueLowStock(_ context.Context, alerts ...worker.LowStockAlert) error {
	r.got = append(r.got, alerts...)
	return nil
}
