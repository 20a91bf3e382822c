package db

import (
	"invest_platform/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/postgres" // Postgres driver for GORM
	"gorm.io/gorm"            // GORM ORM library
)

// Migrate performs automatic migration for the database schema and seeds the
// investment package catalog
func Migrate(dsn string) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Wallet{},
		&domain.Transaction{},
		&domain.Deposit{},
		&domain.Withdrawal{},
		&domain.InvestmentPackage{},
		&domain.Investment{},
		&domain.Referral{},
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	SeedPackages(db)                    // Seed the package catalog when empty
	logrus.Info("Migration completed.") // Log successful migration
}

// SeedPackages inserts the default package catalog when no packages exist yet
func SeedPackages(db *gorm.DB) {
	var count int64
	if err := db.Model(&domain.InvestmentPackage{}).Count(&count).Error; err != nil {
		logrus.Fatalf("failed to count packages: %v", err)
	}
	if count > 0 {
		return // Catalog already seeded
	}
	packages := []domain.InvestmentPackage{
		{Type: "lite", Name: "Lite", MinAmount: 10000, Multiplier: 2.00, DurationDays: 30, Active: true},
		{Type: "pro", Name: "Pro", MinAmount: 50000, Multiplier: 3.00, DurationDays: 60, Active: true},
		{Type: "elite", Name: "Elite", MinAmount: 200000, Multiplier: 5.00, DurationDays: 90, Active: true},
	}
	if err := db.Create(&packages).Error; err != nil {
		logrus.Fatalf("failed to seed packages: %v", err)
	}
	logrus.Info("Seeded investment packages.")
}
