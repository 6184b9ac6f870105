// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// defaultTemplateIndex allows at most one default template per
// (business, category). GORM tags cannot express a partial index.
const defaultTemplateIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_templates_default
ON response_templates(business_id, category) WHERE is_default = 1`

// AutoMigrate creates or updates every table the service owns, plus the
// partial unique index guarding default templates.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Business{},
		&domain.Review{},
		&domain.ResponseTemplate{},
		&domain.ScheduledBatch{},
		&domain.Idempotency{},
	); err != nil {
		return err
	}
	return db.Exec(defaultTemplateIndex).Error
}
