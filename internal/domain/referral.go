package domain

import "time"

// Referral Model
// One row per (referrer, referred) pair, with running accumulators.
type Referral struct {
	ID               uint      `gorm:"primaryKey"`                                // Primary key
	ReferrerID       uint      `gorm:"uniqueIndex:idx_referrer_referred;not null"` // User ID of the referrer
	ReferredID       uint      `gorm:"uniqueIndex:idx_referrer_referred;not null"` // User ID of the referred user
	TotalDeposits    float64   `gorm:"type:decimal(15,2);not null;default:0"`     // Cumulative confirmed deposits by the referred user
	CommissionAmount float64   `gorm:"type:decimal(15,2);not null;default:0"`     // Cumulative commission paid for this relationship
	CreatedAt        time.Time // Timestamp of creation
	UpdatedAt        time.Time // Timestamp of last update
}
