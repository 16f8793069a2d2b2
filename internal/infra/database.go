package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"multipos/internal/model"
)

// NewDatabase opens a GORM connection backed by pgx and sizes the pool.
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// RunMigrations creates or updates every table, then applies the constraints
// AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Shop{},
		&model.Category{},
		&model.Product{},
		&model.User{},
		&model.InventoryRecord{},
		&model.StockMovement{},
		&model.PriceHistory{},
		&model.Sale{},
		&model.SaleItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL. Each constraint is added only when
// missing, so re-running on an already patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ name, table, check string }{
		{"chk_inventory_quantity_nonneg", "inventory_records", "quantity >= 0"},
		{"chk_inventory_reserved_range", "inventory_records", "reserved_qty >= 0 AND reserved_qty <= quantity"},
		{"chk_inventory_prices_nonneg", "inventory_records", "cost_price >= 0 AND selling_price >= 0"},
		{"chk_products_min_stock_nonneg", "products", "min_stock >= 0"},
		{"chk_stock_movements_type", "stock_movements", "type IN ('IN','OUT','ADJUSTMENT','TRANSFER','RETURN','DAMAGE')"},
		{"chk_sales_status", "sales", "status IN ('completed','voided')"},
		{"chk_sale_items_quantity_pos", "sale_items", "quantity > 0"},
	}
	for _, p := range patches {
		sql := fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
    ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
  END IF;
END $$`, p.name, p.table, p.name, p.check)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.name, err)
		}
	}
	return nil
}
