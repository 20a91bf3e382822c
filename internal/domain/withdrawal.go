package domain

import "time"

// Withdrawal lifecycle statuses
const (
	WithdrawalPending  = "pending"  // Awaiting admin review
	WithdrawalApproved = "approved" // Debited from the wallet via a withdrawal transaction
	WithdrawalRejected = "rejected" // Declined, never touches the wallet
)

// Withdrawal Model
type Withdrawal struct {
	ID              uint       `gorm:"primaryKey"`                  // Primary key
	UserID          uint       `gorm:"index;not null"`              // Foreign key to User
	Amount          float64    `gorm:"type:decimal(15,2);not null"` // Requested amount
	PayoutPhone     string     `gorm:"size:20;not null"`            // Mobile-money payout number
	PayoutReference string     `gorm:"size:64"`                     // External payout reference assigned at approval
	Status          string     `gorm:"size:16;default:pending"`     // pending, approved or rejected
	AdminNotes      string     `gorm:"type:text"`                   // Optional notes from the reviewing admin
	ProcessedAt     *time.Time // Set when approved or rejected
	CreatedAt       time.Time  // Timestamp of creation
	UpdatedAt       time.Time  // Timestamp of last update
}
