package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Time durations

	"invest_platform/internal/domain" // Importing domain models
	"invest_platform/internal/ledger" // Wallet ledger operations
	"invest_platform/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ListPackagesHandler returns the active package catalog (globally readable)
func ListPackagesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()      // Context for Redis operations
		cacheKey := utils.PackagesKey()  // Cache key for the catalog
		var cached []domain.InvestmentPackage
		// Try to get cached catalog
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"packages": cached, "cached": true})
			return
		}
		var packages []domain.InvestmentPackage // Slice to hold packages
		// Fetch active packages ordered by minimum amount
		if err := db.Where("active = ?", true).Order("min_amount asc").Find(&packages).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch packages"})
			return
		}
		// Cache the catalog for 5 minutes; it changes rarely
		_ = utils.SetCache(ctx, rdb, cacheKey, packages, 5*time.Minute)
		c.JSON(http.StatusOK, gin.H{"packages": packages, "cached": false}) // Return the catalog
	}
}

// InvestmentRequest represents a package purchase
type InvestmentRequest struct {
	PackageID uint    `json:"package_id" binding:"required"`  // Chosen package
	Amount    float64 `json:"amount" binding:"required,gt=0"` // Amount to invest
}

// CreateInvestmentHandler purchases a package through the ledger
func CreateInvestmentHandler(db *gorm.DB, svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req InvestmentRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The ledger creates the investment and its paired transaction atomically
		invID, err := svc.RecordInvestment(c.Request.Context(), userID.(uint), req.PackageID, req.Amount)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,        // User ID
				"package_id": req.PackageID, // Chosen package
				"amount":     req.Amount,    // Amount to invest
				"error":      err.Error(),   // Error message
			}).Error("Investment failed") // Log investment failure
			respondLedgerError(c, err)
			return
		}
		// Log successful investment
		logrus.WithFields(logrus.Fields{
			"user_id":       userID,                          // User ID
			"investment_id": invID,                           // Created investment
			"package_id":    req.PackageID,                   // Chosen package
			"amount":        req.Amount,                      // Amount invested
			"type":          "investment",                    // Transaction type
			"timestamp":     time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Investment created") // Log investment success
		// Invalidate wallet and transaction history cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			utils.InvalidateWalletCaches(context.Background(), rdb, userID.(uint))
		}
		var investment domain.Investment // Load the created investment for the response
		if err := db.First(&investment, invID).Error; err != nil {
			// Creation succeeded; fall back to just the identifier
			c.JSON(http.StatusCreated, gin.H{"message": "Investment created", "investment_id": invID})
			return
		}
		// Return the created investment
		c.JSON(http.StatusCreated, gin.H{"message": "Investment created", "investment": investment})
	}
}

// ListInvestmentsHandler returns the authenticated user's investments
func ListInvestmentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var investments []domain.Investment // Slice to hold investments
		// Fetch investments scoped to the owner, newest first
		if err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&investments).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch investments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"investments": investments}) // Return investment list
	}
}
