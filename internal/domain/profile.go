package domain

import "time"

// Profile Model
type Profile struct {
	ID           uint      `gorm:"primaryKey"`                 // Primary key
	UserID       uint      `gorm:"uniqueIndex;not null"`       // Foreign key to User (one profile per user)
	FullName     string    `gorm:"not null"`                   // Full name
	Phone        string    `gorm:"size:20"`                    // Contact phone number
	Email        string    `gorm:"not null"`                   // Contact email
	ReferralCode string    `gorm:"uniqueIndex;size:16;not null"` // Globally unique referral code, immutable after creation
	ReferredBy   *uint     `gorm:"index"`                      // User ID of the referrer, nil when not referred
	CreatedAt    time.Time // Timestamp of creation
	UpdatedAt    time.Time // Timestamp of last update
}
