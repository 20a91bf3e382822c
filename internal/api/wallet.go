package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"invest_platform/internal/domain" // Importing domain models
	"invest_platform/internal/ledger" // Wallet ledger operations
	"invest_platform/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// GetWalletHandler returns the four-balance wallet snapshot for the
// authenticated user
func GetWalletHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                    // Context for Redis operations
		cacheKey := utils.WalletKey(userID.(uint))     // Cache key for wallet snapshot
		var snap ledger.Snapshot                       // Snapshot struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &snap) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"wallet": snap, "cached": true})
			return
		}
		// If not in cache, read the authoritative snapshot from the ledger
		fresh, err := svc.GetWalletSnapshot(c.Request.Context(), userID.(uint))
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, fresh, 60*time.Second)   // Cache the snapshot for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallet": fresh, "cached": false}) // Return wallet snapshot
	}
}

// ReferralTransferRequest represents a bonus-to-main transfer request
type ReferralTransferRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Transfer amount
}

// ReferralTransferHandler moves referral bonus into the main balance
func ReferralTransferHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ReferralTransferRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// The ledger checks the bonus balance under the wallet row lock
		txID, err := svc.TransferReferralBonus(c.Request.Context(), userID.(uint), req.Amount)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Transfer amount
				"error":   err.Error(), // Error message
			}).Error("Referral bonus transfer failed") // Log transfer failure
			respondLedgerError(c, err)
			return
		}
		// Log successful transfer
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,                          // User ID
			"amount":         req.Amount,                      // Transfer amount
			"transaction_id": txID,                            // Ledger entry
			"type":           "referral_bonus_transfer",       // Transaction type
			"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Referral bonus transferred") // Log transfer success
		// Invalidate wallet and transaction history cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			utils.InvalidateWalletCaches(context.Background(), rdb, userID.(uint))
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "transaction_id": txID})
	}
}

// GetTransactionHistoryHandler returns the authenticated user's ledger entries
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		offset := (page - 1) * pageSize                              // Calculate offset
		cacheKey := utils.TxHistoryKey(userID.(uint), page, pageSize) // Redis cache key
		ctx := context.Background()                                  // Context for Redis operations
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,
			})
			return
		}
		var total int64 // Total count of transactions
		// Count total transactions for pagination, scoped to the owner
		if err := db.Model(&domain.Transaction{}).
			Where("user_id = ?", userID).
			Count(&total).Error; err != nil {
			// If counting fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.Transaction // Slice to hold transactions
		// Fetch paginated transactions, newest first
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&transactions).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": transactions, // List of transactions
			"page":         page,         // Current page
			"page_size":    pageSize,     // Page size
			"total":        total,        // Total transactions
			"total_pages":  totalPages,   // Total pages
			"cached":       false,        // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return transaction history
	}
}
