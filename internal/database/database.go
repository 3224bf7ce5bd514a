// Package database owns the inventory database connection. SQLite is the
// default for a desktop install; postgres is supported for shared setups.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/framecut/framecut/internal/config"
)

// Manager wraps the gorm handle. Modules receive the handle during Init
// rather than reaching for a package global.
type Manager struct {
	db *gorm.DB
}

// Initialize opens the connection configured in cfg and runs migrations
// for the shared models.
func Initialize(cfg *config.DatabaseConfig) (*Manager, error) {
	var (
		db  *gorm.DB
		err error
	)

	logMode := gormlogger.Silent
	if cfg.LogQueries {
		logMode = gormlogger.Info
	}
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logMode)}

	switch cfg.Type {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Username, cfg.Password, cfg.Database, cfg.Port)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	case "sqlite", "":
		if mkErr := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); mkErr != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", mkErr)
		}
		db, err = gorm.Open(sqlite.Open(cfg.DatabasePath), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&MediaFile{}, &Recording{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Manager{db: db}, nil
}

// OpenInMemory opens a throwaway sqlite database. Intended for tests; each
// call gets its own isolated store.
func OpenInMemory() (*Manager, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MediaFile{}, &Recording{}); err != nil {
		return nil, err
	}
	return &Manager{db: db}, nil
}

// DB returns the underlying gorm handle.
func (m *Manager) DB() *gorm.DB {
	return m.db
}
