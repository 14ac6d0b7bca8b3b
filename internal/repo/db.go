// Package repo implements the data persistence layer for questions and
// answers, backed by GORM. This file contains database bootstrapping helpers
// for SQLite (pure Go driver) and Postgres, plus schema migrations.
package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// Options tunes the connection pool and GORM behaviour.
type Options struct {
	// MaxOpenConns caps the pool. Values < 1 fall back to 10.
	MaxOpenConns int
	// Logger replaces GORM's default logger when non-nil.
	Logger logger.Interface
}

// Open picks a driver from dsn: postgres:// and postgresql:// URLs go to the
// Postgres driver, anything else is treated as a SQLite path or DSN.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	low := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(low, "postgres://") || strings.HasPrefix(low, "postgresql://") {
		return OpenPostgres(dsn, opts)
	}
	return OpenSQLite(dsn, opts)
}

// OpenPostgres connects to a Postgres server through pgx.
func OpenPostgres(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(opts))
	if err != nil {
		return nil, err
	}
	return finish(db, opts)
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
// Foreign keys are always enforced so answers cannot reference missing
// questions.
func OpenSQLite(path string, opts Options) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty path")
	}
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(withForeignKeys(path)), gormConfig(opts))
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	return finish(db, opts)
}

// withForeignKeys appends the driver pragma that turns on FK enforcement for
// every pooled connection, not just the first one.
func withForeignKeys(path string) string {
	if strings.Contains(path, "foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func gormConfig(opts Options) *gorm.Config {
	cfg := &gorm.Config{}
	if opts.Logger != nil {
		cfg.Logger = opts.Logger
	}
	return cfg
}

// finish installs the tracing plugin and tunes the pool.
func finish(db *gorm.DB, opts Options) (*gorm.DB, error) {
	if err := db.Use(tracing.NewPlugin(tracing.WithoutQueryVariables())); err != nil {
		return nil, err
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen < 1 {
		maxOpen = 10
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// AutoMigrate creates or updates the questions, answers and idempotency tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Question{},
		&domain.Answer{},
		&domain.Idempotency{},
	)
}
