package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"multipos/internal/model"
)

type PriceHistoryRepository interface {
	CreateTx(tx *gorm.DB, h *model.PriceHistory) error
	ListByInventory(ctx context.Context, inventoryID uuid.UUID, limit int) ([]model.PriceHistory, error)
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) CreateTx(tx *gorm.DB, h *model.PriceHistory) error {
	return translate(tx.Create(h).Error, "price history", "")
}

func (r *priceHistoryRepo) ListByInventory(ctx context.Context, inventoryID uuid.UUID, limit int) ([]model.PriceHistory, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var rows []model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "price history", "")
	}
	return rows, nil
}
