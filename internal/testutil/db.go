// Package testutil opens throwaway databases for repository and handler tests.
package testutil

import (
	"context"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/database"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenMemoryDB returns an in-memory sqlite database with the real schema
// applied. A single connection is kept so every query sees the same database.
func OpenMemoryDB() (*gorm.DB, error) {
	cfg := internal.DatabaseConfig{
		Driver:       internal.DriverSQLite,
		Source:       ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := database.Open(cfg, database.Options{LogLevel: gormlogger.Silent})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(context.Background(), sqlDB, internal.DriverSQLite); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
