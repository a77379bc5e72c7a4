package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and applies the
// idempotent schema patches. TranslateError maps unique violations to
// gorm.ErrDuplicatedKey.
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

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}
	return db, nil
}

// schemaPatches create the challans table and its indexes. GORM AutoMigrate
// is not used: the column types (bytea, jsonb, numeric) are pinned here.
// Every statement is idempotent so re-running is a no-op.
var schemaPatches = []struct{ descr, sql string }{
	{"pgcrypto for gen_random_uuid", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	{"create challans", `
CREATE TABLE IF NOT EXISTS challans (
    id            UUID           PRIMARY KEY DEFAULT gen_random_uuid(),
    customer_name TEXT           NOT NULL,
    challan_no    TEXT           NOT NULL,
    pdf_data      BYTEA,
    items         JSONB          NOT NULL,
    total_items   NUMERIC        NOT NULL,
    total_price   NUMERIC        NOT NULL DEFAULT 0,
    is_deleted    BOOLEAN        NOT NULL DEFAULT false,
    created_at    TIMESTAMPTZ    NOT NULL DEFAULT now()
)`},
	// totals keep the full scale of the item values so the stored
	// aggregate always equals the printed one
	{"unscaled totals", `
ALTER TABLE challans
    ALTER COLUMN total_items TYPE NUMERIC,
    ALTER COLUMN total_price TYPE NUMERIC`},
	{"unique challan_no", `CREATE UNIQUE INDEX IF NOT EXISTS idx_challans_challan_no ON challans (challan_no)`},
	// listing always filters out soft-deleted rows
	{"live challans by date", `
CREATE INDEX IF NOT EXISTS idx_challans_live_created_at
    ON challans (created_at DESC)
    WHERE is_deleted = false`},
}

// applySchemaPatches runs schemaPatches in order.
func applySchemaPatches(db *gorm.DB) error {
	for _, p := range schemaPatches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

