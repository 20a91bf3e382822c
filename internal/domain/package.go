package domain

import "time"

// InvestmentPackage Model
// Catalog entity: globally readable, read-only from the ledger's perspective.
type InvestmentPackage struct {
	ID           uint      `gorm:"primaryKey"`                  // Primary key
	Type         string    `gorm:"size:16;uniqueIndex;not null"` // lite, pro or elite
	Name         string    `gorm:"size:64;not null"`            // Display name
	MinAmount    float64   `gorm:"type:decimal(15,2);not null"` // Minimum investable amount
	Multiplier   float64   `gorm:"type:decimal(5,2);not null"`  // Fixed return multiplier
	DurationDays int       `gorm:"not null"`                    // Investment duration in days
	Active       bool      `gorm:"default:true"`                // Whether new investments are accepted
	CreatedAt    time.Time // Timestamp of creation
	UpdatedAt    time.Time // Timestamp of last update
}
