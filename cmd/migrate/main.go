package main

import (
	"invest_platform/internal/config" // Custom import path (Config)
	"invest_platform/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	db.Migrate(cfg.DSN()) // Run schema migration and seed the package catalog
}
