package api

import (
	"net/http" // HTTP status codes

	"invest_platform/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// GetReferralsHandler returns the authenticated user's referral code and the
// accumulators for each user they referred
func GetReferralsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var profile domain.Profile // Own profile carries the referral code
		if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			// If profile not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		var referrals []domain.Referral // Slice to hold referral rows
		// Fetch rows where this user is the referrer, newest first
		if err := db.Where("referrer_id = ?", userID).Order("created_at desc").Find(&referrals).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch referrals"})
			return
		}
		// Sum the accumulators for the overview card
		var totalCommission float64
		for _, r := range referrals {
			totalCommission += r.CommissionAmount
		}
		c.JSON(http.StatusOK, gin.H{
			"referral_code":    profile.ReferralCode, // Own code to share
			"referrals":        referrals,            // Per-relationship accumulators
			"total_commission": totalCommission,      // Lifetime commission
		})
	}
}
