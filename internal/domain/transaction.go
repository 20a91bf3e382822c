package domain

// TransactionType enumerates the ledger transaction kinds
type TransactionType string

// Transaction kinds
const (
	TxDeposit               TransactionType = "deposit"                 // Confirmed deposit credited to main balance
	TxWithdrawal            TransactionType = "withdrawal"              // Approved withdrawal debited from main balance
	TxInvestment            TransactionType = "investment"              // Package purchase debited from main balance
	TxProfit                TransactionType = "profit"                  // Distributed profit credited to main balance
	TxReferralCommission    TransactionType = "referral_commission"     // Commission credited to referral bonus balance
	TxReferralBonusTransfer TransactionType = "referral_bonus_transfer" // Bonus moved into main balance
)

// Transaction Model
// Append-only ledger entry: rows are never updated or deleted.
type Transaction struct {
	ID            uint            `gorm:"primaryKey"`               // Primary key
	UserID        uint            `gorm:"index;not null"`           // Foreign key to User (owner of the entry)
	Type          TransactionType `gorm:"size:32;not null"`         // One of the six transaction kinds
	Amount        float64         `gorm:"type:decimal(15,2);not null"` // Positive amount moved by this entry
	Description   string          `gorm:"type:text"`                // Human-readable context
	ReferenceID   *uint           `gorm:"index"`                    // Optional Deposit/Withdrawal/Investment ID
	BalanceBefore float64         `gorm:"type:decimal(15,2);not null"` // Snapshot of the affected balance before the delta
	BalanceAfter  float64         `gorm:"type:decimal(15,2);not null"` // Snapshot of the affected balance after the delta
	CreatedAt     int64           `gorm:"autoCreateTime:milli"`     // Timestamp of creation in milliseconds
}
