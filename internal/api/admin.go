package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"invest_platform/internal/domain" // Importing domain models
	"invest_platform/internal/ledger" // Wallet ledger operations
	"invest_platform/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID      uint           `json:"id"`      // User ID
	Email   string         `json:"email"`   // Login email
	Role    string         `json:"role"`    // User role
	Profile domain.Profile `json:"profile"` // Associated profile
	Wallet  domain.Wallet  `json:"wallet"`  // Associated wallet
}

// pageParams reads pagination query parameters with bounded defaults
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		// If valid, set page size
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// ListUsersHandler returns all users with their profile and wallet info
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c) // Pagination parameters
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total user count
		// Fetch total user count and paginated users with profile and wallet info
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		var users []domain.User // Slice to hold users
		// Preload Profile and Wallet relations, apply offset and limit for pagination
		if err := db.Preload("Profile").Preload("Wallet").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare response data
		resp := make([]UserAdminResponse, len(users))
		// Map users to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:      u.ID,      // User ID
				Email:   u.Email,   // Login email
				Role:    u.Role,    // User role
				Profile: u.Profile, // Associated profile
				Wallet:  u.Wallet,  // Associated wallet
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// parseTimeFilter normalizes a date filter to the epoch milliseconds stored in
// transactions.created_at. Accepts raw milliseconds, RFC 3339 or a plain date.
func parseTimeFilter(s string) (int64, bool) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UnixMilli(), true
		}
	}
	return 0, false
}

// ListTransactionsHandler returns all transactions, with optional filtering by
// user, type, or date
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"user_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total number of transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}

		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c)          // Pagination parameters
		offset := (page - 1) * pageSize          // Calculate offset for pagination
		query := db.Model(&domain.Transaction{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID) // Filter by user ID
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by transaction type
		}
		if from := c.Query("from"); from != "" {
			ms, ok := parseTimeFilter(from) // Normalize to epoch milliseconds
			if !ok {
				// Reject what the bigint column cannot bind
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from filter"})
				return
			}
			query = query.Where("created_at >= ?", ms) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			ms, ok := parseTimeFilter(to) // Normalize to epoch milliseconds
			if !ok {
				// Reject what the bigint column cannot bind
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to filter"})
				return
			}
			query = query.Where("created_at <= ?", ms) // Filter by end date
		}
		var total int64 // Total transaction count
		// Get total count of transactions matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.Transaction // Slice to hold transactions
		// Fetch paginated transactions with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&txs).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"transactions": txs,        // List of transactions
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total number of transactions
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListPendingDepositsHandler returns deposit claims for review, filtered by status
func ListPendingDepositsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.DefaultQuery("status", domain.DepositPending) // Status filter, pending by default
		var deposits []domain.Deposit                             // Slice to hold deposits
		// Fetch deposits by status, oldest first so the review queue is FIFO
		if err := db.Where("status = ?", status).Order("created_at asc").Find(&deposits).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposits"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deposits": deposits}) // Return the review queue
	}
}

// ListPendingWithdrawalsHandler returns withdrawal requests for review
func ListPendingWithdrawalsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.DefaultQuery("status", domain.WithdrawalPending) // Status filter, pending by default
		var withdrawals []domain.Withdrawal                          // Slice to hold withdrawals
		// Fetch withdrawals by status, oldest first
		if err := db.Where("status = ?", status).Order("created_at asc").Find(&withdrawals).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals}) // Return the review queue
	}
}

// ModerationRequest carries optional admin notes for a lifecycle decision
type ModerationRequest struct {
	Notes string `json:"notes"` // Optional notes from the reviewing admin
}

// invalidateAfterDeposit clears cached balances for the depositor and, when
// they were referred, for the referrer whose commission just accrued
func invalidateAfterDeposit(db *gorm.DB, rdb *redis.Client, depositID uint) {
	ctx := context.Background()
	var dep domain.Deposit
	if err := db.First(&dep, depositID).Error; err != nil {
		return
	}
	utils.InvalidateWalletCaches(ctx, rdb, dep.UserID) // Depositor caches
	var profile domain.Profile
	if err := db.Where("user_id = ?", dep.UserID).First(&profile).Error; err == nil && profile.ReferredBy != nil {
		utils.InvalidateWalletCaches(ctx, rdb, *profile.ReferredBy) // Referrer caches
	}
}

// ConfirmDepositHandler confirms a pending deposit through the ledger
func ConfirmDepositHandler(db *gorm.DB, svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		depositID, err := strconv.Atoi(c.Param("id")) // Deposit identifier from the path
		if err != nil || depositID <= 0 {
			// If the identifier is malformed, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deposit id"})
			return
		}
		var req ModerationRequest   // Optional notes payload
		_ = c.ShouldBindJSON(&req)  // Notes are optional; ignore binding errors
		// Confirm through the ledger: status flip, deposit transaction and
		// referral accrual happen as one atomic unit
		if err := svc.ConfirmDeposit(c.Request.Context(), uint(depositID), req.Notes); err != nil {
			logrus.WithFields(logrus.Fields{
				"deposit_id": depositID,   // Deposit under review
				"error":      err.Error(), // Error message
			}).Error("Deposit confirmation failed") // Log confirmation failure
			respondLedgerError(c, err)
			return
		}
		// Log the confirmed deposit
		logrus.WithFields(logrus.Fields{
			"deposit_id": depositID,                       // Confirmed deposit
			"timestamp":  time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Deposit confirmed") // Log confirmation
		invalidateAfterDeposit(db, rdb, uint(depositID)) // Invalidate affected caches
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Deposit confirmed"})
	}
}

// RejectDepositHandler rejects a pending deposit; no balance is touched
func RejectDepositHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		depositID, err := strconv.Atoi(c.Param("id")) // Deposit identifier from the path
		if err != nil || depositID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deposit id"})
			return
		}
		var req ModerationRequest  // Optional notes payload
		_ = c.ShouldBindJSON(&req) // Notes are optional; ignore binding errors
		if err := svc.RejectDeposit(c.Request.Context(), uint(depositID), req.Notes); err != nil {
			respondLedgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Deposit rejected"})
	}
}

// ApproveWithdrawalHandler approves a pending withdrawal through the ledger
func ApproveWithdrawalHandler(db *gorm.DB, svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		withdrawalID, err := strconv.Atoi(c.Param("id")) // Withdrawal identifier from the path
		if err != nil || withdrawalID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal id"})
			return
		}
		var req ModerationRequest  // Optional notes payload
		_ = c.ShouldBindJSON(&req) // Notes are optional; ignore binding errors
		// Approve through the ledger: status flip and withdrawal transaction
		// happen as one atomic unit; insufficient funds keep it pending
		if err := svc.ApproveWithdrawal(c.Request.Context(), uint(withdrawalID), req.Notes); err != nil {
			logrus.WithFields(logrus.Fields{
				"withdrawal_id": withdrawalID, // Withdrawal under review
				"error":         err.Error(),  // Error message
			}).Error("Withdrawal approval failed") // Log approval failure
			respondLedgerError(c, err)
			return
		}
		// Log the approved withdrawal
		logrus.WithFields(logrus.Fields{
			"withdrawal_id": withdrawalID,                    // Approved withdrawal
			"timestamp":     time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Withdrawal approved") // Log approval
		// Invalidate the owner's cached balances
		var wd domain.Withdrawal
		if err := db.First(&wd, withdrawalID).Error; err == nil {
			utils.InvalidateWalletCaches(context.Background(), rdb, wd.UserID)
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal approved"})
	}
}

// ProfitRequest represents a profit payout against an investment
type ProfitRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Payout amount
}

// DistributeProfitHandler pays out profit on an active investment through the
// ledger
func DistributeProfitHandler(db *gorm.DB, svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		investmentID, err := strconv.Atoi(c.Param("id")) // Investment identifier from the path
		if err != nil || investmentID <= 0 {
			// If the identifier is malformed, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid investment id"})
			return
		}
		var req ProfitRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// The ledger credits the profit and advances the accumulator atomically
		txID, err := svc.DistributeProfit(c.Request.Context(), uint(investmentID), req.Amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"investment_id": investmentID, // Investment paid against
				"amount":        req.Amount,   // Payout amount
				"error":         err.Error(),  // Error message
			}).Error("Profit distribution failed") // Log distribution failure
			respondLedgerError(c, err)
			return
		}
		// Log the payout
		logrus.WithFields(logrus.Fields{
			"investment_id":  investmentID,                    // Investment paid against
			"amount":         req.Amount,                      // Payout amount
			"transaction_id": txID,                            // Ledger entry
			"type":           "profit",                        // Transaction type
			"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Profit distributed") // Log distribution
		// Invalidate the owner's cached balances
		var inv domain.Investment
		if err := db.First(&inv, investmentID).Error; err == nil {
			utils.InvalidateWalletCaches(context.Background(), rdb, inv.UserID)
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Profit distributed", "transaction_id": txID})
	}
}

// RejectWithdrawalHandler rejects a pending withdrawal; no balance is touched
func RejectWithdrawalHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		withdrawalID, err := strconv.Atoi(c.Param("id")) // Withdrawal identifier from the path
		if err != nil || withdrawalID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal id"})
			return
		}
		var req ModerationRequest  // Optional notes payload
		_ = c.ShouldBindJSON(&req) // Notes are optional; ignore binding errors
		if err := svc.RejectWithdrawal(c.Request.Context(), uint(withdrawalID), req.Notes); err != nil {
			respondLedgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal rejected"})
	}
}
