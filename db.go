package main

import (
	"fmt"

	"custdesk/pkg/accounts"
	"custdesk/pkg/config"
	"custdesk/pkg/database"
	"custdesk/pkg/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	db     *gorm.DB
	stores *store.Stores
)

func initDB(cfg *config.Config) error {
	gdb, err := database.Open(cfg.Database, appLog)
	if err != nil {
		return err
	}
	useDB(gdb)
	if cfg.Database.AutoMigrate {
		database.Migrate(gdb, appLog)
	}
	return seedDB(gdb, cfg.Seed)
}

func useDB(gdb *gorm.DB) {
	db = gdb
	stores = store.New(gdb)
}

func seedDB(gdb *gorm.DB, seed config.SeedConfig) error {
	if err := accounts.EnsureRoles(gdb); err != nil {
		return err
	}
	created, err := accounts.EnsureAdmin(gdb, seed.AdminUsername, seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if created {
		appLog.Info("seeded admin user", zap.String("username", seed.AdminUsername))
	}
	return nil
}
