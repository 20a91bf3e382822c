package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamps for logging

	"invest_platform/internal/domain" // Importing domain models
	"invest_platform/internal/ledger" // Wallet ledger operations

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// WithdrawalRequest represents a payout request submitted by a user
type WithdrawalRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"` // Requested amount
	PayoutPhone string  `json:"payout_phone" binding:"required"` // Mobile-money payout number
}

// CreateWithdrawalHandler records a pending withdrawal request. The balance is
// only debited at admin approval; the snapshot check here is a pre-flight
// courtesy so obviously unaffordable requests fail fast.
func CreateWithdrawalHandler(db *gorm.DB, svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req WithdrawalRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Pre-flight balance check against the current snapshot
		snap, err := svc.GetWalletSnapshot(c.Request.Context(), userID.(uint))
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		if snap.MainBalance < req.Amount {
			// If obviously unaffordable, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
			return
		}
		withdrawal := domain.Withdrawal{
			UserID:      userID.(uint),            // Owner
			Amount:      req.Amount,               // Requested amount
			PayoutPhone: req.PayoutPhone,          // Payout number
			Status:      domain.WithdrawalPending, // Awaiting admin review
		}
		// Save the pending withdrawal
		if err := db.Create(&withdrawal).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Requested amount
				"error":   err.Error(), // Error message
			}).Error("Failed to create withdrawal") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal"})
			return
		}
		// Log the submitted request
		logrus.WithFields(logrus.Fields{
			"user_id":       userID,                          // User ID
			"withdrawal_id": withdrawal.ID,                   // Created withdrawal
			"amount":        req.Amount,                      // Requested amount
			"timestamp":     time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Withdrawal submitted") // Log withdrawal submission
		// Return the pending withdrawal
		c.JSON(http.StatusCreated, gin.H{"message": "Withdrawal submitted for review", "withdrawal": withdrawal})
	}
}

// ListWithdrawalsHandler returns the authenticated user's withdrawal requests
func ListWithdrawalsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var withdrawals []domain.Withdrawal // Slice to hold withdrawals
		// Fetch withdrawals scoped to the owner, newest first
		if err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&withdrawals).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals}) // Return withdrawal list
	}
}
