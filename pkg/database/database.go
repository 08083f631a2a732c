// Package database opens the gorm connection and migrates the schema.
package database

import (
	"fmt"

	"custdesk/models"
	"custdesk/pkg/config"
	"custdesk/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects with the dialector named by cfg.Driver and checks the connection.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = postgres.Open(cfg.DSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.GormLevel(cfg.LogLevel), cfg.SlowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s database: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// single writer; also keeps a :memory: database alive between calls
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Models in migration order: roles before users so the FK can be applied,
// referenced tables before the customers that point at them.
var Models = []struct {
	Table string
	Model any
}{
	{"roles", &models.Role{}},
	{"users", &models.User{}},
	{"refresh_tokens", &models.RefreshToken{}},
	{"professions", &models.Profession{}},
	{"data_sheets", &models.DataSheet{}},
	{"customers", &models.Customer{}},
	{"documents", &models.Document{}},
}

// Migrate runs AutoMigrate one model at a time so a failure on one (usually
// a permission problem) doesn't block the others. It returns the number of
// models that failed.
func Migrate(db *gorm.DB, log *zap.Logger) int {
	failed := 0
	for _, m := range Models {
		if err := db.AutoMigrate(m.Model); err != nil {
			failed++
			log.Warn("migration warning", zap.String("table", m.Table), zap.Error(err))
		}
	}
	return failed
}
