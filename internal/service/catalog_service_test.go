package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/stock"
)

func strPtr(s string) *string { return &s }

func newProductService(m *memStore) ProductService {
	return NewProductService(
		fakeProductRepo{m},
		fakeCategoryRepo{m},
		fakeShopRepo{m},
		fakeInventoryRepo{m},
		fakeMovementRepo{m},
		NewStatusCache(nil, 0),
	)
}

// ── products ──────────────────────────────────────────────────────────────────

func TestProductCreateWithInitialStock(t *testing.T) {
	m := newMemStore()
	centro := m.addShop("Centro")
	norte := m.addShop("Norte")
	svc := newProductService(m)

	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateProductRequest{
		SKU:      " TEA-100 ",
		Name:     "Green tea",
		MinStock: 4,
		InitialStock: []dto.InitialStockRequest{
			{ShopID: centro.ID.String(), Quantity: 12, CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(3)},
			{ShopID: norte.ID.String(), Quantity: 0, CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "TEA-100", resp.SKU)
	assert.Equal(t, "unit", resp.Unit)
	assert.True(t, resp.IsActive)
	require.Len(t, resp.InventoryIDs, 2)

	centroID := uuid.MustParse(resp.InventoryIDs[centro.ID.String()])
	assert.Equal(t, 12, m.inventory[centroID].Quantity)
	mvs := m.movementsFor(centroID)
	require.Len(t, mvs, 1)
	assert.Equal(t, stock.MovementIn, mvs[0].Type)
	assert.Equal(t, 12, mvs[0].NewQty)

	norteID := uuid.MustParse(resp.InventoryIDs[norte.ID.String()])
	assert.Empty(t, m.movementsFor(norteID), "an empty opening writes no movement")
}

func TestProductCreateRejections(t *testing.T) {
	m := newMemStore()
	shop := m.addShop("Centro")
	m.addProduct("DUP-1", 0)
	svc := newProductService(m)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.Nil, dto.CreateProductRequest{SKU: "X-1", Name: "x"})
	var ue *apperr.UnauthorizedError
	assert.ErrorAs(t, err, &ue)

	_, err = svc.Create(ctx, uuid.New(), dto.CreateProductRequest{SKU: "X-1", Name: "x", MinStock: -1})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "min_stock", ve.Field)

	_, err = svc.Create(ctx, uuid.New(), dto.CreateProductRequest{
		SKU: "X-1", Name: "x",
		InitialStock: []dto.InitialStockRequest{{ShopID: shop.ID.String()}, {ShopID: shop.ID.String()}},
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "initial_stock", ve.Field)

	_, err = svc.Create(ctx, uuid.New(), dto.CreateProductRequest{
		SKU: "X-1", Name: "x",
		InitialStock: []dto.InitialStockRequest{{ShopID: uuid.NewString()}},
	})
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = svc.Create(ctx, uuid.New(), dto.CreateProductRequest{SKU: "X-1", Name: "x", CategoryID: strPtr(uuid.NewString())})
	assert.ErrorAs(t, err, &nf)

	_, err = svc.Create(ctx, uuid.New(), dto.CreateProductRequest{SKU: "DUP-1", Name: "x"})
	var dk *apperr.DuplicateKeyError
	assert.ErrorAs(t, err, &dk)

	assert.Len(t, m.products, 1)
	assert.Empty(t, m.inventory)
}

func TestProductUpdate(t *testing.T) {
	m := newMemStore()
	p := m.addProduct("COLA-500", 2)
	svc := newProductService(m)

	minStock := 6
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Name:     strPtr("Cola 500ml"),
		MinStock: &minStock,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cola 500ml", resp.Name)
	assert.Equal(t, 6, m.products[p.ID].MinStock)

	negative := -2
	_, err = svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{MinStock: &negative})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Update(context.Background(), uuid.New(), dto.UpdateProductRequest{})
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestProductDeactivate(t *testing.T) {
	m := newMemStore()
	p := m.addProduct("COLA-500", 2)
	svc := newProductService(m)

	require.NoError(t, svc.Deactivate(context.Background(), p.ID))
	assert.False(t, m.products[p.ID].IsActive)
}

// ── shops ─────────────────────────────────────────────────────────────────────

func newShopService(m *memStore) ShopService {
	return NewShopService(fakeShopRepo{m}, fakeInventoryRepo{m}, fakeSaleRepo{m})
}

func TestShopCreateDerivesSlug(t *testing.T) {
	m := newMemStore()
	svc := newShopService(m)

	resp, err := svc.Create(context.Background(), dto.CreateShopRequest{Name: "Sucursal Río Norte"})
	require.NoError(t, err)
	assert.Equal(t, "sucursal-rio-norte", resp.Slug)
	assert.True(t, resp.IsActive)

	_, err = svc.Create(context.Background(), dto.CreateShopRequest{Name: "sucursal rio NORTE"})
	var dk *apperr.DuplicateKeyError
	assert.ErrorAs(t, err, &dk)

	_, err = svc.Create(context.Background(), dto.CreateShopRequest{Name: "!!"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestShopUpdateKeepsOwnSlug(t *testing.T) {
	m := newMemStore()
	svc := newShopService(m)
	created, err := svc.Create(context.Background(), dto.CreateShopRequest{Name: "Centro"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	m.addShop("Norte")

	resp, err := svc.Update(context.Background(), id, dto.UpdateShopRequest{Name: strPtr("Centro"), Phone: strPtr("555-0101")})
	require.NoError(t, err)
	assert.Equal(t, "centro", resp.Slug)
	assert.Equal(t, "555-0101", *resp.Phone)

	_, err = svc.Update(context.Background(), id, dto.UpdateShopRequest{Name: strPtr("Norte")})
	var dk *apperr.DuplicateKeyError
	assert.ErrorAs(t, err, &dk)
}

func TestShopDelete(t *testing.T) {
	m := newMemStore()
	svc := newShopService(m)
	empty := m.addShop("Empty")
	busy := m.addShop("Busy")
	m.addRecord(m.addProduct("A", 0), busy, 1, 0, "1", "2")

	resp, err := svc.Delete(context.Background(), empty.ID)
	require.NoError(t, err)
	assert.False(t, resp.Deactivated)
	assert.NotContains(t, m.shops, empty.ID)

	resp, err = svc.Delete(context.Background(), busy.ID)
	require.NoError(t, err)
	assert.True(t, resp.Deactivated)
	require.Contains(t, m.shops, busy.ID)
	assert.False(t, m.shops[busy.ID].IsActive)

	_, err = svc.Delete(context.Background(), uuid.New())
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

// ── categories ────────────────────────────────────────────────────────────────

func TestCategoryLifecycle(t *testing.T) {
	m := newMemStore()
	svc := NewCategoryService(fakeCategoryRepo{m})
	ctx := context.Background()

	drinks, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Cold Drinks"})
	require.NoError(t, err)
	assert.Equal(t, "cold-drinks", drinks.Slug)

	_, err = svc.Create(ctx, dto.CreateCategoryRequest{Name: "cold drinks"})
	var dk *apperr.DuplicateKeyError
	assert.ErrorAs(t, err, &dk)

	snacks, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Snacks"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, uuid.MustParse(snacks.ID), dto.UpdateCategoryRequest{Name: strPtr("Cold drinks")})
	assert.ErrorAs(t, err, &dk)

	renamed, err := svc.Update(ctx, uuid.MustParse(snacks.ID), dto.UpdateCategoryRequest{Name: strPtr("Salty Snacks")})
	require.NoError(t, err)
	assert.Equal(t, "salty-snacks", renamed.Slug)

	require.NoError(t, svc.Deactivate(ctx, uuid.MustParse(drinks.ID)))
	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Salty Snacks", active[0].Name)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
