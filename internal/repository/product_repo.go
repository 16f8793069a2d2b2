package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"multipos/internal/dto"
	"multipos/internal/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	CreateTx(tx *gorm.DB, p *model.Product) error
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return translate(tx.Create(p).Error, "product", "")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product", id.String())
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Active: "false" = inactive, "all" = everything, anything else = active (default)
	switch filter.Active {
	case "false":
		q = q.Where("is_active = false")
	case "all":
	default:
		q = q.Where("is_active = true")
	}
	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "product", "")
	}

	filter.Pagination.Normalize()
	var products []model.Product
	err := q.Preload("Category").Order("name ASC").
		Limit(filter.Limit).Offset(filter.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, translate(err, "product", "")
	}
	return products, total, nil
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return translate(r.db.WithContext(ctx).Omit("Category").Save(p).Error, "product", p.ID.String())
}

func (r *productRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "product", id.String())
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "product", id.String())
	}
	return nil
}
