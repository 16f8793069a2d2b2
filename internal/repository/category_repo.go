package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"multipos/internal/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, includeInactive bool) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "category", "")
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category", id.String())
	}
	return &c, nil
}

func (r *categoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err, "category", slug)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	var cats []model.Category
	if err := q.Find(&cats).Error; err != nil {
		return nil, translate(err, "category", "")
	}
	return cats, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	return translate(r.db.WithContext(ctx).Save(c).Error, "category", c.ID.String())
}

func (r *categoryRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "category", id.String())
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "category", id.String())
	}
	return nil
}
