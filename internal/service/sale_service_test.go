package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multipos/internal/apperr"
	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/stock"
)

type saleFixture struct {
	m      *memStore
	alerts *recordingAlerts
	svc    SaleService
	actor  uuid.UUID
	shop   *model.Shop
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	m := newMemStore()
	alerts := &recordingAlerts{}
	svc := NewSaleService(fakeSaleRepo{m}, fakeInventoryRepo{m}, fakeMovementRepo{m}, NewStatusCache(nil, 0), alerts)
	svc.(*saleService).now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return &saleFixture{m: m, alerts: alerts, svc: svc, actor: uuid.New(), shop: m.addShop("Centro")}
}

func item(p *model.Product, q int, price string) dto.SaleItemRequest {
	return dto.SaleItemRequest{ProductID: p.ID.String(), Quantity: q, UnitPrice: decimal.RequireFromString(price)}
}

func (f *saleFixture) sell(items ...dto.SaleItemRequest) (*dto.CreateSaleResponse, error) {
	return f.svc.CreateSale(context.Background(), f.actor, dto.CreateSaleRequest{
		ShopID:        f.shop.ID.String(),
		Items:         items,
		PaymentMethod: "cash",
	})
}

func TestCreateSale_DecrementsStockAndWritesLedger(t *testing.T) {
	f := newSaleFixture(t)
	cola := f.m.addProduct("COLA", 2)
	chips := f.m.addProduct("CHIPS", 1)
	rc := f.m.addRecord(cola, f.shop, 10, 0, "0.60", "1.20")
	rp := f.m.addRecord(chips, f.shop, 5, 0, "0.80", "1.50")

	chipsLine := item(chips, 2, "1.50")
	chipsLine.Discount = decimal.RequireFromString("0.50")
	resp, err := f.sell(item(cola, 3, "1.20"), chipsLine)
	require.NoError(t, err)
	assert.True(t, resp.FinalAmount.Equal(decimal.RequireFromString("6.10")), resp.FinalAmount.String())

	assert.Equal(t, 7, f.m.inventory[rc.ID].Quantity)
	assert.Equal(t, 3, f.m.inventory[rp.ID].Quantity)

	sale := f.m.sales[uuid.MustParse(resp.SaleID)]
	require.NotNil(t, sale)
	assert.Equal(t, model.SaleStatusCompleted, sale.Status)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("6.60")))
	assert.True(t, sale.DiscountTotal.Equal(decimal.RequireFromString("0.50")))
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].CostPrice.Equal(decimal.RequireFromString("0.60")), "cost is captured at sale time")

	for _, id := range []uuid.UUID{rc.ID, rp.ID} {
		moves := f.m.movementsFor(id)
		require.Len(t, moves, 1)
		assert.Equal(t, stock.MovementOut, moves[0].Type)
		require.NotNil(t, moves[0].Reference)
		assert.Equal(t, resp.SaleID, *moves[0].Reference)
	}
}

func TestCreateSale_AllOrNothing(t *testing.T) {
	f := newSaleFixture(t)
	a := f.m.addProduct("A", 0)
	b := f.m.addProduct("B", 0)
	c := f.m.addProduct("C", 0)
	ra := f.m.addRecord(a, f.shop, 10, 0, "1", "2")
	rb := f.m.addRecord(b, f.shop, 1, 0, "1", "2")
	rc := f.m.addRecord(c, f.shop, 10, 0, "1", "2")

	_, err := f.sell(item(a, 2, "2"), item(b, 5, "2"), item(c, 2, "2"))

	var ise *apperr.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, b.ID, ise.ProductID)
	assert.Equal(t, 5, ise.Requested)
	assert.Equal(t, 1, ise.Available)

	assert.Equal(t, 10, f.m.inventory[ra.ID].Quantity)
	assert.Equal(t, 1, f.m.inventory[rb.ID].Quantity)
	assert.Equal(t, 10, f.m.inventory[rc.ID].Quantity)
	assert.Empty(t, f.m.movements)
	assert.Empty(t, f.m.sales)
}

func TestCreateSale_InvalidLineRejectsWholeSale(t *testing.T) {
	f := newSaleFixture(t)
	a := f.m.addProduct("A", 0)
	b := f.m.addProduct("B", 0)
	ra := f.m.addRecord(a, f.shop, 10, 0, "1", "2")
	f.m.addRecord(b, f.shop, 10, 0, "1", "2")

	_, err := f.sell(item(a, 1, "2"), item(b, 0, "2"), item(a, 1, "2"))

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity out of range", ve.Message)
	assert.Equal(t, 10, f.m.inventory[ra.ID].Quantity)
	assert.Empty(t, f.m.movements)
}

func TestCreateSale_HugeQuantitiesCannotWrapTheSum(t *testing.T) {
	f := newSaleFixture(t)
	p := f.m.addProduct("P", 0)
	rec := f.m.addRecord(p, f.shop, 10, 0, "1", "2")

	cases := map[string][]dto.SaleItemRequest{
		"lines past int range": {item(p, math.MaxInt, "0"), item(p, math.MaxInt-3, "0")},
		"sum past max level":   {item(p, stock.MaxQuantity, "0"), item(p, stock.MaxQuantity, "0")},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.sell(items...)

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "quantity out of range", ve.Message)
			assert.Equal(t, 10, f.m.inventory[rec.ID].Quantity)
			assert.Empty(t, f.m.movements)
			assert.Empty(t, f.m.sales)
		})
	}
}

func TestCreateSale_MoneyMustFitTheColumn(t *testing.T) {
	f := newSaleFixture(t)
	p := f.m.addProduct("P", 0)
	rec := f.m.addRecord(p, f.shop, 10, 0, "1", "2")

	subCent := item(p, 3, "0.333")
	discounted := item(p, 1, "5")
	discounted.Discount = decimal.RequireFromString("0.005")
	cases := []struct {
		name  string
		items []dto.SaleItemRequest
		field string
	}{
		{"sub-cent unit price", []dto.SaleItemRequest{subCent}, "unit_price"},
		{"sub-cent discount", []dto.SaleItemRequest{discounted}, "discount"},
		{"unit price past column", []dto.SaleItemRequest{item(p, 1, "10000000000")}, "unit_price"},
		{"sale total past column", []dto.SaleItemRequest{item(p, 1, "6000000000"), item(p, 1, "6000000000")}, "items"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.sell(tc.items...)

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, 10, f.m.inventory[rec.ID].Quantity)
			assert.Empty(t, f.m.sales)
		})
	}
}

func TestCreateSale_ScenarioF_SameRecordTwice(t *testing.T) {
	f := newSaleFixture(t)
	p := f.m.addProduct("P", 1)
	rec := f.m.addRecord(p, f.shop, 6, 1, "1", "2") // available 5

	_, err := f.sell(item(p, 3, "2"), item(p, 3, "2"))
	var ise *apperr.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 6, ise.Requested)
	assert.Equal(t, 5, ise.Available)
	assert.Equal(t, 6, f.m.inventory[rec.ID].Quantity)

	_, err = f.sell(item(p, 3, "2"), item(p, 2, "2"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.m.inventory[rec.ID].Quantity)
	assert.Equal(t, 0, f.m.loaded(f.m.inventory[rec.ID]).Available())

	moves := f.m.movementsFor(rec.ID)
	require.Len(t, moves, 1, "one movement per record")
	assert.Equal(t, 5, moves[0].Quantity)

	require.Len(t, f.alerts.got, 1)
	assert.Equal(t, "OUT_OF_STOCK", f.alerts.got[0].Status)
}

func TestCreateSale_ItemFromAnotherShop(t *testing.T) {
	f := newSaleFixture(t)
	north := f.m.addShop("Norte")
	p := f.m.addProduct("P", 0)
	local := f.m.addRecord(p, f.shop, 1, 0, "1", "2")
	remote := f.m.addRecord(p, north, 4, 0, "1", "2")

	line := item(p, 3, "2")
	sid := north.ID.String()
	line.ShopID = &sid
	_, err := f.sell(line)
	require.NoError(t, err)

	assert.Equal(t, 1, f.m.inventory[local.ID].Quantity)
	assert.Equal(t, 1, f.m.inventory[remote.ID].Quantity)
}

func TestCreateSale_Rejections(t *testing.T) {
	f := newSaleFixture(t)
	p := f.m.addProduct("P", 0)
	f.m.addRecord(p, f.shop, 5, 0, "1", "2")
	ctx := context.Background()

	_, err := f.svc.CreateSale(ctx, uuid.Nil, dto.CreateSaleRequest{ShopID: f.shop.ID.String(), Items: []dto.SaleItemRequest{item(p, 1, "2")}, PaymentMethod: "cash"})
	var ue *apperr.UnauthorizedError
	assert.ErrorAs(t, err, &ue)

	_, err = f.svc.CreateSale(ctx, f.actor, dto.CreateSaleRequest{ShopID: f.shop.ID.String(), Items: []dto.SaleItemRequest{item(p, 1, "2")}, PaymentMethod: "barter"})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.sell()
	assert.ErrorAs(t, err, &ve)

	discounted := item(p, 1, "2")
	discounted.Discount = decimal.NewFromInt(3)
	_, err = f.sell(discounted)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "discount", ve.Field)

	_, err = f.sell(item(f.m.addProduct("NOSTOCK", 0), 1, "2"))
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)

	assert.Empty(t, f.m.sales)
	assert.Empty(t, f.m.movements)
}

func TestVoidSale_RestoresStock(t *testing.T) {
	f := newSaleFixture(t)
	p := f.m.addProduct("P", 0)
	rec := f.m.addRecord(p, f.shop, 5, 0, "1", "2")

	created, err := f.sell(item(p, 2, "2"), item(p, 1, "2"))
	require.NoError(t, err)
	require.Equal(t, 2, f.m.inventory[rec.ID].Quantity)

	saleID := uuid.MustParse(created.SaleID)
	resp, err := f.svc.VoidSale(context.Background(), f.actor, saleID, "wrong item")
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusVoided, resp.Status)
	require.NotNil(t, resp.VoidReason)
	assert.Equal(t, "wrong item", *resp.VoidReason)
	assert.Equal(t, 5, f.m.inventory[rec.ID].Quantity)

	moves := f.m.movementsFor(rec.ID)
	require.Len(t, moves, 2)
	assert.Equal(t, stock.MovementReturn, moves[1].Type)
	assert.Equal(t, 3, moves[1].Quantity)
	assert.Equal(t, "sale voided: wrong item", moves[1].Reason)

	_, err = f.svc.VoidSale(context.Background(), f.actor, saleID, "again")
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "sale already voided", ve.Message)
	assert.Equal(t, 5, f.m.inventory[rec.ID].Quantity)
}

func TestVoidSale_Rejections(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	_, err := f.svc.VoidSale(ctx, f.actor, uuid.New(), "   ")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.svc.VoidSale(ctx, f.actor, uuid.New(), "mistake")
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestGetAndListSales(t *testing.T) {
	f := newSaleFixture(t)
	p := f.m.addProduct("P", 0)
	f.m.addRecord(p, f.shop, 5, 0, "1", "2")
	created, err := f.sell(item(p, 1, "2"))
	require.NoError(t, err)

	got, err := f.svc.GetSale(context.Background(), uuid.MustParse(created.SaleID))
	require.NoError(t, err)
	assert.Equal(t, f.actor.String(), got.UserID)
	assert.Len(t, got.Items, 1)

	list, err := f.svc.ListSales(context.Background(), dto.SaleFilter{ShopID: f.shop.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 50, list.Limit)
}
