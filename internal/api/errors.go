package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes

	"invest_platform/internal/ledger" // Ledger error taxonomy

	"github.com/gin-gonic/gin" // Gin web framework
)

// respondLedgerError maps ledger errors onto HTTP responses
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
	case errors.Is(err, ledger.ErrUnknownUser):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, ledger.ErrDuplicateAccount):
		c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
	case errors.Is(err, ledger.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Request already processed"})
	case errors.Is(err, ledger.ErrConflict):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary conflict, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
