package domain

import "time"

// Wallet Model
// Balances are mutated only by the ledger, never directly by handlers.
type Wallet struct {
	ID                   uint      `gorm:"primaryKey"`                            // Primary key
	UserID               uint      `gorm:"uniqueIndex;not null"`                  // Foreign key to User (one wallet per user)
	MainBalance          float64   `gorm:"type:decimal(15,2);not null;default:0"` // Spendable balance
	ReferralBonusBalance float64   `gorm:"type:decimal(15,2);not null;default:0"` // Accrued referral commissions
	TotalInvested        float64   `gorm:"type:decimal(15,2);not null;default:0"` // Lifetime sum of investment amounts
	TotalProfits         float64   `gorm:"type:decimal(15,2);not null;default:0"` // Lifetime sum of distributed profits
	UpdatedAt            time.Time // Timestamp of last balance change
}
