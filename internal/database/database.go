// Package database opens the relational store behind every repository and runs
// its migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/financial-analyst/db/migrations"
	"github.com/frahmantamala/financial-analyst/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrDatabaseMissing is returned when the configured sqlite file does not exist
// and the caller required an existing database.
var ErrDatabaseMissing = errors.New("database file does not exist; run the migrate command first")

type Options struct {
	// MustExist refuses to create a new sqlite file.
	MustExist bool
	LogLevel  gormlogger.LogLevel
}

// Open connects gorm to the configured driver and verifies the connection.
func Open(cfg internal.DatabaseConfig, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DriverSQLite, "":
		if opts.MustExist && !isMemory(cfg.Source) {
			if _, err := os.Stat(cfg.Source); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrDatabaseMissing, cfg.Source)
			}
		}
		dialector = sqlite.Open(cfg.Source)
	case internal.DriverPostgres:
		dialector = postgres.Open(cfg.Source)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// SQLX wraps the pool behind db for hand-written queries.
func SQLX(db *gorm.DB, driver string) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, sqlxDriverName(driver)), nil
}

func sqlxDriverName(driver string) string {
	if driver == internal.DriverPostgres {
		return "pgx"
	}
	return "sqlite3"
}

func gooseDialect(driver string) string {
	if driver == internal.DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func prepareGoose(driver string) error {
	if driver == "" {
		driver = internal.DriverSQLite
	}
	fsys, err := migrations.FS(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(fsys)
	goose.SetTableName("schema_migrations")
	return goose.SetDialect(gooseDialect(driver))
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	if err := prepareGoose(driver); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Rollback reverts the latest applied migration.
func Rollback(ctx context.Context, db *sql.DB, driver string) error {
	if err := prepareGoose(driver); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

func isMemory(source string) bool {
	return source == ":memory:" || strings.Contains(source, "mode=memory")
}
