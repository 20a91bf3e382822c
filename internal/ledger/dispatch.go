package ledger

import "invest_platform/internal/domain"

// apply mutates the wallet in place according to the kind-specific delta and
// returns the before/after snapshot pair of the balance the kind moves.
//
// Dispatch table (kind -> balances affected):
//
//	deposit                  main +amount
//	withdrawal               main -amount
//	investment               main -amount, total_invested +amount
//	profit                   main +amount, total_profits +amount
//	referral_commission      bonus +amount
//	referral_bonus_transfer  main +amount, bonus -amount
//
// The snapshot pair tracks main_balance for every kind except
// referral_commission, which tracks referral_bonus_balance.
// Debiting kinds are checked against the wallet pre-image; the caller must
// hold the wallet row lock so the check cannot race a concurrent debit.
func apply(w *domain.Wallet, kind domain.TransactionType, amount float64) (before, after float64, err error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	switch kind {
	case domain.TxDeposit:
		before = w.MainBalance
		w.MainBalance += amount
		after = w.MainBalance
	case domain.TxWithdrawal:
		if w.MainBalance < amount {
			return 0, 0, ErrInsufficientFunds
		}
		before = w.MainBalance
		w.MainBalance -= amount
		after = w.MainBalance
	case domain.TxInvestment:
		if w.MainBalance < amount {
			return 0, 0, ErrInsufficientFunds
		}
		before = w.MainBalance
		w.MainBalance -= amount
		w.TotalInvested += amount
		after = w.MainBalance
	case domain.TxProfit:
		before = w.MainBalance
		w.MainBalance += amount
		w.TotalProfits += amount
		after = w.MainBalance
	case domain.TxReferralCommission:
		before = w.ReferralBonusBalance
		w.ReferralBonusBalance += amount
		after = w.ReferralBonusBalance
	case domain.TxReferralBonusTransfer:
		if w.ReferralBonusBalance < amount {
			return 0, 0, ErrInsufficientFunds
		}
		before = w.MainBalance
		w.ReferralBonusBalance -= amount
		w.MainBalance += amount
		after = w.MainBalance
	default:
		return 0, 0, ErrUnknownKind
	}
	return before, after, nil
}

// expectedReturn computes the fixed return promised at investment creation
func expectedReturn(pkg *domain.InvestmentPackage, amount float64) float64 {
	return amount * pkg.Multiplier
}
