// Package repo implements the data persistence layer for the complaint and
// job order stores, backed by GORM. This file contains database
// bootstrapping helpers for SQLite (pure Go driver) and schema migrations.
//
// The two stores are opened independently and never share a transaction:
// the cross-store write in the lifecycle service is an ordered pair of
// commits by design.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It
// aliases gorm.ErrRecordNotFound for convenience and consistency across
// the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// OpenStore opens (or creates) a SQLite database and applies PRAGMAs and
// pool limits. maxConns bounds the underlying sql.DB pool; acquisition
// beyond the bound blocks until the caller's context deadline fires, which
// is how pool exhaustion surfaces as a store-unavailable error instead of
// a hang.
func OpenStore(path string, maxConns int) (*gorm.DB, error) {
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
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		if maxConns <= 0 {
			maxConns = 10
		}
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// MigrateComplaintStore creates or updates the three family tables and the
// users table in the complaint store.
func MigrateComplaintStore(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.OutageReport{},
		&domain.MeterConcern{},
		&domain.AgentQueueRequest{},
		&domain.User{},
	)
}

// MigrateJobOrderStore creates or updates the denormalized converted table
// in the job order store.
func MigrateJobOrderStore(db *gorm.DB) error {
	return db.AutoMigrate(&domain.JobOrder{})
}

// Close releases the underlying connection pool of a store handle.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
