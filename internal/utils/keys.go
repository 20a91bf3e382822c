package utils

import "strconv"

// Cache key builders, shared by handlers and invalidation

// WalletKey is the cache key for a user's wallet snapshot
func WalletKey(userID uint) string {
	return "wallet:user:" + strconv.Itoa(int(userID))
}

// TxHistoryKey is the cache key for one page of a user's transaction history
func TxHistoryKey(userID uint, page, pageSize int) string {
	return "txhistory:user:" + strconv.Itoa(int(userID)) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}

// PackagesKey is the cache key for the investment package catalog
func PackagesKey() string {
	return "packages:active"
}
