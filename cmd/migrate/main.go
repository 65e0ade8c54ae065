package main

import (
	"credit_ledger/internal/config" // Custom import path (Config)
	"credit_ledger/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed")

	if err := db.EnsureAdmin(gdb, cfg.AdminPhone, cfg.AdminPassword); err != nil {
		logrus.Fatalf("admin bootstrap failed: %v", err)
	}
}
