package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"multipos/internal/dto"
	"multipos/internal/model"
)

const saleResource = "sale"

type SaleRepository interface {
	// CreateTx inserts the sale together with its items.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string, voidReason *string) error
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return translate(tx.Create(s).Error, saleResource, "")
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, saleResource, id.String())
	}
	return &s, nil
}

func (r *saleRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, saleResource, id.String())
	}
	if err := tx.Where("sale_id = ?", id).Order("inventory_id").Find(&s.Items).Error; err != nil {
		return nil, translate(err, saleResource, id.String())
	}
	return &s, nil
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string, voidReason *string) error {
	err := tx.Model(&model.Sale{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "void_reason": voidReason}).Error
	return translate(err, saleResource, id.String())
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.ShopID != "" {
		q = q.Where("shop_id = ?", filter.ShopID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, saleResource, "")
	}

	filter.Pagination.Normalize()
	var sales []model.Sale
	err := q.Preload("Items.Product").
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&sales).Error
	if err != nil {
		return nil, 0, translate(err, saleResource, "")
	}
	return sales, total, nil
}

func (r *saleRepo) CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("shop_id = ?", shopID).Count(&n).Error
	return n, translate(err, saleResource, "")
}
