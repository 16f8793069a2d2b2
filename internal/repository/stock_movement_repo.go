package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"multipos/internal/dto"
	"multipos/internal/model"
)

// StockMovementRepository is append-only: movements are never updated or deleted.
type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	ListByInventory(ctx context.Context, inventoryID uuid.UUID, filter dto.MovementFilter) ([]model.StockMovement, int64, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return translate(tx.Create(m).Error, "stock movement", "")
}

func (r *stockMovementRepo) ListByInventory(ctx context.Context, inventoryID uuid.UUID, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("inventory_id = ?", inventoryID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "stock movement", "")
	}

	filter.Pagination.Normalize()
	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.Limit).Find(&movements).Error
	if err != nil {
		return nil, 0, translate(err, "stock movement", "")
	}
	return movements, total, nil
}
