package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamps for logging

	"invest_platform/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Payment reference generation
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// DepositRequest represents a deposit claim submitted by a user
type DepositRequest struct {
	Amount           float64 `json:"amount" binding:"required,gt=0"` // Claimed amount
	PaymentReference string  `json:"payment_reference"`              // Optional external payment reference
}

// CreateDepositHandler records a pending deposit claim; no balance moves until
// an admin confirms it
func CreateDepositHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DepositRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// Fall back to a generated reference when the client supplied none
		reference := req.PaymentReference
		if reference == "" {
			reference = uuid.NewString()
		}
		deposit := domain.Deposit{
			UserID:           userID.(uint),         // Owner
			Amount:           req.Amount,            // Claimed amount
			PaymentReference: reference,             // External payment reference
			Status:           domain.DepositPending, // Awaiting admin review
		}
		// Save the pending deposit
		if err := db.Create(&deposit).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Claimed amount
				"error":   err.Error(), // Error message
			}).Error("Failed to create deposit") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deposit"})
			return
		}
		// Log the submitted claim
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,                          // User ID
			"deposit_id": deposit.ID,                      // Created deposit
			"amount":     req.Amount,                      // Claimed amount
			"timestamp":  time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Deposit submitted") // Log deposit submission
		// Return the pending deposit
		c.JSON(http.StatusCreated, gin.H{"message": "Deposit submitted for review", "deposit": deposit})
	}
}

// ListDepositsHandler returns the authenticated user's deposit claims
func ListDepositsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var deposits []domain.Deposit // Slice to hold deposits
		// Fetch deposits scoped to the owner, newest first
		if err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&deposits).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposits"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deposits": deposits}) // Return deposit list
	}
}
