package domain

import "time"

// Investment lifecycle statuses
const (
	InvestmentPending   = "pending"
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
	InvestmentCancelled = "cancelled"
)

// Investment Model
// A commitment of funds into a package; always paired with an investment transaction.
type Investment struct {
	ID                uint      `gorm:"primaryKey"`                            // Primary key
	UserID            uint      `gorm:"index;not null"`                        // Foreign key to User
	PackageID         uint      `gorm:"index;not null"`                        // Foreign key to InvestmentPackage
	Amount            float64   `gorm:"type:decimal(15,2);not null"`           // Invested amount
	ExpectedReturn    float64   `gorm:"type:decimal(15,2);not null"`           // amount * package multiplier, fixed at creation
	ProfitDistributed float64   `gorm:"type:decimal(15,2);not null;default:0"` // Running total of profits paid out
	Status            string    `gorm:"size:16;default:pending"`               // pending, active, completed or cancelled
	StartDate         time.Time `gorm:"not null"`                              // When the investment began
	EndDate           time.Time `gorm:"not null"`                              // start date + package duration
	CreatedAt         time.Time // Timestamp of creation
	UpdatedAt         time.Time // Timestamp of last update
}
