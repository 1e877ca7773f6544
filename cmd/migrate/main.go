package main

import (
	"github.com/zaidzaid0342-dotcom/bookhub/internal/config" // Custom import path (Config)
	"github.com/zaidzaid0342-dotcom/bookhub/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration and admin seeding
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Database Source Name (DSN) for MySQL connection
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	conn := db.Migrate(dsn)

	// Provision the one admin account if none exists yet
	if err := db.SeedAdmin(conn, cfg.AdminHandle, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatalf("admin seed failed: %v", err)
	}
}
