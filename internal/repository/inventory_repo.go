package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"multipos/internal/dto"
	"multipos/internal/model"
	"multipos/internal/stock"
)

const inventoryResource = "inventory record"

// InventoryRepository defines the data access contract for inventory records.
// Services depend on this interface so they can be unit tested with stubs.
type InventoryRepository interface {
	Create(ctx context.Context, rec *model.InventoryRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryRecord, error)
	FindByProductShop(ctx context.Context, productID, shopID uuid.UUID) (*model.InventoryRecord, error)
	List(ctx context.Context, filter dto.InventoryFilter) ([]model.InventoryRecord, int64, error)
	// ListLowStock returns records whose available stock is at or below the
	// product minimum. A nil shopID means every shop.
	ListLowStock(ctx context.Context, shopID *uuid.UUID) ([]model.InventoryRecord, error)
	Count(ctx context.Context, shopID *uuid.UUID) (int64, error)
	CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error)

	// Used inside transactions; callers pass the tx instance.
	CreateTx(tx *gorm.DB, rec *model.InventoryRecord) error
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryRecord, error)
	FindByProductShopTx(tx *gorm.DB, productID, shopID uuid.UUID) (*model.InventoryRecord, error)
	UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, quantity int, at time.Time) error
	UpdateRecordTx(tx *gorm.DB, rec *model.InventoryRecord) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) Create(ctx context.Context, rec *model.InventoryRecord) error {
	return r.CreateTx(r.db.WithContext(ctx), rec)
}

func (r *inventoryRepo) CreateTx(tx *gorm.DB, rec *model.InventoryRecord) error {
	return translate(tx.Create(rec).Error, inventoryResource, "")
}

func (r *inventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.WithContext(ctx).Preload("Product").Preload("Shop").First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, inventoryResource, id.String())
	}
	return &rec, nil
}

func (r *inventoryRepo) FindByProductShop(ctx context.Context, productID, shopID uuid.UUID) (*model.InventoryRecord, error) {
	return r.FindByProductShopTx(r.db.WithContext(ctx), productID, shopID)
}

func (r *inventoryRepo) FindByProductShopTx(tx *gorm.DB, productID, shopID uuid.UUID) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := tx.Where("product_id = ? AND shop_id = ?", productID, shopID).First(&rec).Error
	if err != nil {
		return nil, translate(err, inventoryResource, productID.String()+"@"+shopID.String())
	}
	return &rec, nil
}

// FindByIDForUpdateTx reads the record with a row lock (SELECT ... FOR UPDATE)
// held until the transaction ends. The product is loaded for its threshold.
func (r *inventoryRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, inventoryResource, id.String())
	}
	var product model.Product
	if err := tx.First(&product, "id = ?", rec.ProductID).Error; err != nil {
		return nil, translate(err, "product", rec.ProductID.String())
	}
	rec.Product = &product
	return &rec, nil
}

func (r *inventoryRepo) UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, quantity int, at time.Time) error {
	res := tx.Model(&model.InventoryRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{"quantity": quantity, "last_updated": at})
	if res.Error != nil {
		return translate(res.Error, inventoryResource, id.String())
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, inventoryResource, id.String())
	}
	return nil
}

// UpdateRecordTx persists quantity, prices and last_updated of rec.
func (r *inventoryRepo) UpdateRecordTx(tx *gorm.DB, rec *model.InventoryRecord) error {
	err := tx.Model(&model.InventoryRecord{}).Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"quantity":      rec.Quantity,
			"cost_price":    rec.CostPrice,
			"selling_price": rec.SellingPrice,
			"last_updated":  rec.LastUpdated,
		}).Error
	return translate(err, inventoryResource, rec.ID.String())
}

func (r *inventoryRepo) List(ctx context.Context, filter dto.InventoryFilter) ([]model.InventoryRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryRecord{}).
		Joins("JOIN products ON products.id = inventory_records.product_id")

	if filter.ShopID != "" {
		q = q.Where("inventory_records.shop_id = ?", filter.ShopID)
	}
	if filter.ProductID != "" {
		q = q.Where("inventory_records.product_id = ?", filter.ProductID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("products.name ILIKE ? OR products.sku ILIKE ?", like, like)
	}
	switch stock.Status(filter.Status) {
	case stock.StatusOutOfStock:
		q = q.Where("inventory_records.quantity - inventory_records.reserved_qty <= 0")
	case stock.StatusLowStock:
		q = q.Where("inventory_records.quantity - inventory_records.reserved_qty > 0").
			Where("inventory_records.quantity - inventory_records.reserved_qty <= products.min_stock")
	case stock.StatusInStock:
		q = q.Where("inventory_records.quantity - inventory_records.reserved_qty > products.min_stock")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, inventoryResource, "")
	}

	filter.Pagination.Normalize()
	var recs []model.InventoryRecord
	err := q.Preload("Product").Preload("Shop").
		Order("products.name ASC").
		Limit(filter.Limit).Offset(filter.Offset()).
		Find(&recs).Error
	if err != nil {
		return nil, 0, translate(err, inventoryResource, "")
	}
	return recs, total, nil
}

func (r *inventoryRepo) ListLowStock(ctx context.Context, shopID *uuid.UUID) ([]model.InventoryRecord, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryRecord{}).
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Where("products.is_active = true").
		Where("inventory_records.quantity - inventory_records.reserved_qty <= products.min_stock")
	if shopID != nil {
		q = q.Where("inventory_records.shop_id = ?", *shopID)
	}

	var recs []model.InventoryRecord
	err := q.Preload("Product").Preload("Shop").
		Order("inventory_records.quantity - inventory_records.reserved_qty ASC").
		Find(&recs).Error
	if err != nil {
		return nil, translate(err, inventoryResource, "")
	}
	return recs, nil
}

func (r *inventoryRepo) Count(ctx context.Context, shopID *uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryRecord{})
	if shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, translate(err, inventoryResource, "")
}

func (r *inventoryRepo) CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	return r.Count(ctx, &shopID)
}
