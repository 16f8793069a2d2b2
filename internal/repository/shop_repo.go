package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"multipos/internal/dto"
	"multipos/internal/model"
)

type ShopRepository interface {
	Create(ctx context.Context, s *model.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter dto.ShopFilter) ([]model.Shop, int64, error)
	Update(ctx context.Context, s *model.Shop) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type shopRepo struct{ db *gorm.DB }

func NewShopRepository(db *gorm.DB) ShopRepository { return &shopRepo{db: db} }

func (r *shopRepo) Create(ctx context.Context, s *model.Shop) error {
	return translate(r.db.WithContext(ctx).Create(s).Error, "shop", "")
}

func (r *shopRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var s model.Shop
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err, "shop", id.String())
	}
	return &s, nil
}

func (r *shopRepo) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Shop{}).Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, "shop", "")
	}
	return n > 0, nil
}

func (r *shopRepo) List(ctx context.Context, filter dto.ShopFilter) ([]model.Shop, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Shop{})
	switch filter.Active {
	case "false":
		q = q.Where("is_active = false")
	case "all":
	default:
		q = q.Where("is_active = true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "shop", "")
	}
	filter.Pagination.Normalize()
	var shops []model.Shop
	err := q.Order("name ASC").Offset(filter.Offset()).Limit(filter.Limit).Find(&shops).Error
	if err != nil {
		return nil, 0, translate(err, "shop", "")
	}
	return shops, total, nil
}

func (r *shopRepo) Update(ctx context.Context, s *model.Shop) error {
	return translate(r.db.WithContext(ctx).Save(s).Error, "shop", s.ID.String())
}

func (r *shopRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Update("is_active", false).Error
	return translate(err, "shop", id.String())
}

func (r *shopRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Shop{}, "id = ?", id).Error, "shop", id.String())
}
