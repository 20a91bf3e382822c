package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation

	"invest_platform/internal/domain" // Importing domain models
	"invest_platform/internal/ledger" // Wallet ledger operations
	"invest_platform/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest carries the registration form
type RegisterRequest struct {
	FullName     string `json:"full_name" binding:"required"` // Full name must be provided
	Phone        string `json:"phone" binding:"required"`     // Phone must be provided
	Email        string `json:"email" binding:"required"`     // Email must be provided
	Password     string `json:"password" binding:"required"`  // Password must be provided
	ReferralCode string `json:"referral_code"`                // Optional referral code of the referrer
}

// LoginRequest carries the login form
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse is returned on successful registration or login
type AuthResponse struct {
	Token        string `json:"token"`                   // JWT token
	ReferralCode string `json:"referral_code,omitempty"` // Own referral code, returned at registration
}

// emailRE is a light shape check; the unique constraint is the real guard
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// RegisterHandler registers a user and provisions their profile and wallet
func RegisterHandler(db *gorm.DB, svc *ledger.Service, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate email shape
		if !emailRE.MatchString(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create user with lowercase email to ensure uniqueness
		user := domain.User{Email: strings.ToLower(req.Email), Password: string(hash), Role: domain.RoleUser}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// If creation fails (e.g., duplicate email), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		// Provision the profile and zero-balance wallet through the ledger
		res, err := svc.ProvisionAccount(c.Request.Context(), user.ID, ledger.ProfileAttributes{
			FullName:     req.FullName,               // Registration data
			Phone:        req.Phone,                  // Registration data
			Email:        strings.ToLower(req.Email), // Registration data
			ReferrerCode: req.ReferralCode,           // Optional referrer code
		})
		if err != nil {
			// Roll the user row back so the registration can be retried cleanly
			_ = db.Delete(&user).Error
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Account provisioning failed") // Log provisioning failure
			respondLedgerError(c, err)
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id":       user.ID,          // User ID
			"profile_id":    res.ProfileID,    // Created profile
			"wallet_id":     res.WalletID,     // Created wallet
			"referral_code": res.ReferralCode, // Generated code
		}).Info("Account provisioned") // Log account provisioning
		// Issue a token so the client can proceed without a second login call
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token and the generated referral code
		c.JSON(http.StatusCreated, AuthResponse{Token: token, ReferralCode: res.ReferralCode})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token carrying the stored role
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
