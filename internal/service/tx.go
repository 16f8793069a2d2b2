package service

import (
	"context"

	"gorm.io/gorm"

	"multipos/internal/apperr"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
// Untyped errors escaping the transaction are reported as storage failures.
func runTx(ctx context.Context, db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return apperr.Storage(op, fn(nil))
	}
	return apperr.Storage(op, db.WithContext(ctx).Transaction(fn))
}
