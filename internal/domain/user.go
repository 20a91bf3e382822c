package domain

// Roles carried in the JWT role claim
const (
	RoleUser  = "user"  // Default role at registration
	RoleAdmin = "admin" // Grants access to the moderation endpoints
)

// User Model
type User struct {
	ID       uint    `gorm:"primaryKey"`      // Primary key
	Email    string  `gorm:"unique;not null"` // Unique login email (lowercased)
	Password string  `gorm:"not null"`        // Hashed password
	Role     string  `gorm:"default:user"`    // Role: user or admin
	Profile  Profile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // One-to-one relationship with Profile
	Wallet   Wallet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // One-to-one relationship with Wallet
}
