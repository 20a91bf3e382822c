package domain

import "time"

// Deposit lifecycle statuses
const (
	DepositPending   = "pending"   // Awaiting admin review
	DepositConfirmed = "confirmed" // Credited to the wallet via a deposit transaction
	DepositRejected  = "rejected"  // Declined, never touches the wallet
)

// Deposit Model
// A user-submitted funding claim; only an admin confirmation moves money.
type Deposit struct {
	ID               uint       `gorm:"primaryKey"`                  // Primary key
	UserID           uint       `gorm:"index;not null"`              // Foreign key to User
	Amount           float64    `gorm:"type:decimal(15,2);not null"` // Claimed amount
	PaymentReference string     `gorm:"size:64;not null"`            // External payment reference
	Status           string     `gorm:"size:16;default:pending"`     // pending, confirmed or rejected
	AdminNotes       string     `gorm:"type:text"`                   // Optional notes from the reviewing admin
	ProcessedAt      *time.Time // Set when confirmed or rejected
	CreatedAt        time.Time  // Timestamp of creation
	UpdatedAt        time.Time  // Timestamp of last update
}
