package ledger

import (
	"context" // Request-scoped cancellation for store calls
	"errors"  // Sentinel error matching
	"fmt"     // Transaction descriptions
	"time"    // Retry backoff and lifecycle timestamps

	"invest_platform/internal/domain" // Persistence models

	"github.com/google/uuid"     // Payout references assigned at approval
	"github.com/sirupsen/logrus" // Structured logging around retries
	"gorm.io/gorm"               // ORM transactions
	"gorm.io/gorm/clause"        // Row-level locking
)

// Retry policy for transient store conflicts
const (
	maxAttempts  = 3                     // Attempts per atomic unit before surfacing ErrConflict
	retryBackoff = 25 * time.Millisecond // Base backoff between attempts
	codeAttempts = 5                     // Referral-code regenerations before giving up
)

// Service is the wallet ledger: every balance mutation flows through it as a
// single database transaction holding a FOR UPDATE lock on the wallet row, so
// the running balances always equal the signed sum of the transaction log.
type Service struct {
	db           *gorm.DB // Underlying store
	referralRate float64  // Commission rate applied on confirmed deposits of referred users
}

// New creates a ledger service over db with the given referral commission rate
func New(db *gorm.DB, referralRate float64) *Service {
	return &Service{db: db, referralRate: referralRate}
}

// Snapshot is the read-only view of a wallet's four balances
type Snapshot struct {
	MainBalance          float64 `json:"main_balance"`           // Spendable balance
	ReferralBonusBalance float64 `json:"referral_bonus_balance"` // Accrued commissions
	TotalInvested        float64 `json:"total_invested"`         // Lifetime invested
	TotalProfits         float64 `json:"total_profits"`          // Lifetime profits
}

// ProfileAttributes carries the registration data needed to provision an account
type ProfileAttributes struct {
	FullName     string // Full name
	Phone        string // Contact phone
	Email        string // Contact email
	ReferrerCode string // Optional referral code of the referring user
}

// ProvisionResult identifies the rows created by ProvisionAccount
type ProvisionResult struct {
	ProfileID    uint   // Created profile
	WalletID     uint   // Created wallet
	ReferralCode string // Generated referral code
}

// runAtomic executes fn inside a database transaction, retrying the whole unit
// a bounded number of times when the store signals a serialization failure or
// deadlock. Exhausted retries surface as ErrConflict.
func (s *Service) runAtomic(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(fn)
		if err == nil || !isTransient(err) {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Ledger transaction conflict, retrying")
		time.Sleep(time.Duration(attempt) * retryBackoff)
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

// lockWallet loads the user's wallet under a FOR UPDATE row lock
func lockWallet(tx *gorm.DB, userID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// recordLocked appends a transaction row and applies its delta to the locked
// wallet. The caller must hold the wallet's row lock: the insufficient-funds
// check inside apply reads the pre-image this lock protects.
func recordLocked(tx *gorm.DB, w *domain.Wallet, kind domain.TransactionType, amount float64, description string, referenceID *uint) (uint, error) {
	before, after, err := apply(w, kind, amount)
	if err != nil {
		return 0, err
	}
	entry := domain.Transaction{
		UserID:        w.UserID,      // Owner of the entry
		Type:          kind,          // Transaction kind
		Amount:        amount,        // Positive amount
		Description:   description,   // Context for history views
		ReferenceID:   referenceID,   // Originating deposit/withdrawal/investment
		BalanceBefore: before,        // Server-side snapshot, never client-supplied
		BalanceAfter:  after,         // Server-side snapshot, never client-supplied
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}
	// Persist all four balances from the locked, mutated wallet
	err = tx.Model(&domain.Wallet{}).Where("id = ?", w.ID).Updates(map[string]any{
		"main_balance":           w.MainBalance,
		"referral_bonus_balance": w.ReferralBonusBalance,
		"total_invested":         w.TotalInvested,
		"total_profits":          w.TotalProfits,
	}).Error
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// RecordTransaction appends a transaction of the given kind and applies its
// delta to the user's wallet as one atomic unit.
func (s *Service) RecordTransaction(ctx context.Context, userID uint, kind domain.TransactionType, amount float64, description string, referenceID *uint) (uint, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var txID uint
	err := s.runAtomic(ctx, func(tx *gorm.DB) error {
		w, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}
		txID, err = recordLocked(tx, w, kind, amount, description, referenceID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return txID, nil
}

// TransferReferralBonus moves amount from the referral bonus balance into the
// main balance, logged as a referral_bonus_transfer transaction.
func (s *Service) TransferReferralBonus(ctx context.Context, userID uint, amount float64) (uint, error) {
	return s.RecordTransaction(ctx, userID, domain.TxReferralBonusTransfer, amount,
		"Referral bonus transferred to main balance", nil)
}

// ProvisionAccount creates the profile and zero-balance wallet for a newly
// registered user as one atomic unit. Called exactly once per user; a retried
// registration gets ErrDuplicateAccount instead of a second pair of rows.
func (s *Service) ProvisionAccount(ctx context.Context, userID uint, attrs ProfileAttributes) (*ProvisionResult, error) {
	var res ProvisionResult
	var err error
	// Regenerate the referral code on the rare uniqueness collision rather
	// than failing the registration.
	for attempt := 0; attempt < codeAttempts; attempt++ {
		err = s.runAtomic(ctx, func(tx *gorm.DB) error {
			var existing domain.Profile
			probe := tx.Where("user_id = ?", userID).First(&existing).Error
			if probe == nil {
				return ErrDuplicateAccount
			}
			if !errors.Is(probe, gorm.ErrRecordNotFound) {
				return probe
			}
			// Resolve the referrer's code, when one was supplied
			var referredBy *uint
			if attrs.ReferrerCode != "" {
				var referrer domain.Profile
				if err := tx.Where("referral_code = ?", attrs.ReferrerCode).First(&referrer).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrNotFound
					}
					return err
				}
				referredBy = &referrer.UserID
			}
			profile := domain.Profile{
				UserID:       userID,                         // Owner
				FullName:     attrs.FullName,                 // Registration data
				Phone:        attrs.Phone,                    // Registration data
				Email:        attrs.Email,                    // Registration data
				ReferralCode: referralCode(userID, attempt),  // Immutable after creation
				ReferredBy:   referredBy,                     // Referrer's user ID, when referred
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			wallet := domain.Wallet{UserID: userID} // All balances start at zero
			if err := tx.Create(&wallet).Error; err != nil {
				return err
			}
			res = ProvisionResult{
				ProfileID:    profile.ID,
				WalletID:     wallet.ID,
				ReferralCode: profile.ReferralCode,
			}
			return nil
		})
		if isUniqueViolation(err, "referral_code") {
			continue // Code collision: salt the hash and try again
		}
		if isUniqueViolation(err, "") {
			return nil, ErrDuplicateAccount // Concurrent double-provisioning
		}
		break
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// RecordInvestment creates an active investment in the given package and debits
// the wallet through a paired investment transaction; an investment never
// exists without its ledger entry, and vice versa.
func (s *Service) RecordInvestment(ctx context.Context, userID, packageID uint, amount float64) (uint, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var investmentID uint
	err := s.runAtomic(ctx, func(tx *gorm.DB) error {
		var pkg domain.InvestmentPackage
		if err := tx.First(&pkg, packageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !pkg.Active {
			return ErrNotFound
		}
		if amount < pkg.MinAmount {
			return ErrInvalidAmount
		}
		w, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}
		now := time.Now()
		inv := domain.Investment{
			UserID:         userID,                                          // Owner
			PackageID:      pkg.ID,                                          // Chosen package
			Amount:         amount,                                          // Committed amount
			ExpectedReturn: expectedReturn(&pkg, amount),                    // Fixed at creation
			Status:         domain.InvestmentActive,                         // Active immediately
			StartDate:      now,                                             // Starts now
			EndDate:        now.AddDate(0, 0, pkg.DurationDays),             // start + duration
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		desc := fmt.Sprintf("Investment in %s package", pkg.Name)
		if _, err := recordLocked(tx, w, domain.TxInvestment, amount, desc, &inv.ID); err != nil {
			return err
		}
		investmentID = inv.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return investmentID, nil
}

// accrueLocked updates the (referrer, referred) accumulators and credits the
// commission inside the caller's transaction
func accrueLocked(tx *gorm.DB, referrerID, referredID uint, depositAmount, rate float64) (uint, error) {
	commission := depositAmount * rate
	if commission <= 0 {
		return 0, ErrInvalidAmount
	}
	w, err := lockWallet(tx, referrerID)
	if err != nil {
		return 0, err
	}
	var ref domain.Referral
	err = tx.Where("referrer_id = ? AND referred_id = ?", referrerID, referredID).First(&ref).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ref = domain.Referral{
			ReferrerID:       referrerID,    // Relationship key
			ReferredID:       referredID,    // Relationship key
			TotalDeposits:    depositAmount, // First attributed deposit
			CommissionAmount: commission,    // First commission
		}
		if err := tx.Create(&ref).Error; err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	default:
		err = tx.Model(&ref).Updates(map[string]any{
			"total_deposits":    gorm.Expr("total_deposits + ?", depositAmount),
			"commission_amount": gorm.Expr("commission_amount + ?", commission),
		}).Error
		if err != nil {
			return 0, err
		}
	}
	desc := fmt.Sprintf("Referral commission on deposit of %.2f", depositAmount)
	return recordLocked(tx, w, domain.TxReferralCommission, commission, desc, nil)
}

// AccrueReferralCommission credits depositAmount*rate to the referrer's bonus
// balance and updates the referral accumulators as one atomic unit. Invoked by
// the deposit-confirmation flow when the depositor was referred.
func (s *Service) AccrueReferralCommission(ctx context.Context, referrerID, referredID uint, depositAmount, rate float64) (uint, error) {
	if depositAmount <= 0 || rate <= 0 {
		return 0, ErrInvalidAmount
	}
	var txID uint
	err := s.runAtomic(ctx, func(tx *gorm.DB) error {
		var err error
		txID, err = accrueLocked(tx, referrerID, referredID, depositAmount, rate)
		return err
	})
	if err != nil {
		return 0, err
	}
	return txID, nil
}

// lockDeposit loads a deposit under a FOR UPDATE row lock so concurrent status
// transitions serialize
func lockDeposit(tx *gorm.DB, depositID uint) (*domain.Deposit, error) {
	var dep domain.Deposit
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&dep, depositID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

// ConfirmDeposit transitions a pending deposit to confirmed, credits the
// wallet through a deposit transaction and accrues the referral commission
// when the depositor was referred, all as one atomic unit. Confirming an
// already-confirmed deposit is a no-op.
func (s *Service) ConfirmDeposit(ctx context.Context, depositID uint, adminNotes string) error {
	return s.runAtomic(ctx, func(tx *gorm.DB) error {
		dep, err := lockDeposit(tx, depositID)
		if err != nil {
			return err
		}
		switch dep.Status {
		case domain.DepositConfirmed:
			return nil // Idempotent: the delta was already applied
		case domain.DepositRejected:
			return ErrInvalidTransition
		}
		now := time.Now()
		err = tx.Model(dep).Updates(map[string]any{
			"status":       domain.DepositConfirmed,
			"admin_notes":  adminNotes,
			"processed_at": &now,
		}).Error
		if err != nil {
			return err
		}
		w, err := lockWallet(tx, dep.UserID)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf("Deposit %s confirmed", dep.PaymentReference)
		if _, err := recordLocked(tx, w, domain.TxDeposit, dep.Amount, desc, &dep.ID); err != nil {
			return err
		}
		// Accrue commission for the referrer, when the depositor was referred
		var profile domain.Profile
		err = tx.Where("user_id = ?", dep.UserID).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && profile.ReferredBy != nil && s.referralRate > 0 {
			if _, err := accrueLocked(tx, *profile.ReferredBy, dep.UserID, dep.Amount, s.referralRate); err != nil {
				return err
			}
		}
		return nil
	})
}

// RejectDeposit transitions a pending deposit to rejected without touching any
// balance. Rejecting an already-rejected deposit is a no-op.
func (s *Service) RejectDeposit(ctx context.Context, depositID uint, adminNotes string) error {
	return s.runAtomic(ctx, func(tx *gorm.DB) error {
		dep, err := lockDeposit(tx, depositID)
		if err != nil {
			return err
		}
		switch dep.Status {
		case domain.DepositRejected:
			return nil
		case domain.DepositConfirmed:
			return ErrInvalidTransition
		}
		now := time.Now()
		return tx.Model(dep).Updates(map[string]any{
			"status":       domain.DepositRejected,
			"admin_notes":  adminNotes,
			"processed_at": &now,
		}).Error
	})
}

// lockWithdrawal loads a withdrawal under a FOR UPDATE row lock
func lockWithdrawal(tx *gorm.DB, withdrawalID uint) (*domain.Withdrawal, error) {
	var wd domain.Withdrawal
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wd, withdrawalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wd, nil
}

// ApproveWithdrawal transitions a pending withdrawal to approved and debits
// the wallet through a withdrawal transaction as one atomic unit. The whole
// unit fails (and the withdrawal stays pending) when funds are insufficient.
// Approving an already-approved withdrawal is a no-op.
func (s *Service) ApproveWithdrawal(ctx context.Context, withdrawalID uint, adminNotes string) error {
	return s.runAtomic(ctx, func(tx *gorm.DB) error {
		wd, err := lockWithdrawal(tx, withdrawalID)
		if err != nil {
			return err
		}
		switch wd.Status {
		case domain.WithdrawalApproved:
			return nil // Idempotent: the delta was already applied
		case domain.WithdrawalRejected:
			return ErrInvalidTransition
		}
		now := time.Now()
		err = tx.Model(wd).Updates(map[string]any{
			"status":           domain.WithdrawalApproved,
			"admin_notes":      adminNotes,
			"payout_reference": uuid.NewString(),
			"processed_at":     &now,
		}).Error
		if err != nil {
			return err
		}
		w, err := lockWallet(tx, wd.UserID)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf("Withdrawal to %s approved", wd.PayoutPhone)
		_, err = recordLocked(tx, w, domain.TxWithdrawal, wd.Amount, desc, &wd.ID)
		return err
	})
}

// RejectWithdrawal transitions a pending withdrawal to rejected without
// touching any balance. Rejecting twice is a no-op.
func (s *Service) RejectWithdrawal(ctx context.Context, withdrawalID uint, adminNotes string) error {
	return s.runAtomic(ctx, func(tx *gorm.DB) error {
		wd, err := lockWithdrawal(tx, withdrawalID)
		if err != nil {
			return err
		}
		switch wd.Status {
		case domain.WithdrawalRejected:
			return nil
		case domain.WithdrawalApproved:
			return ErrInvalidTransition
		}
		now := time.Now()
		return tx.Model(wd).Updates(map[string]any{
			"status":       domain.WithdrawalRejected,
			"admin_notes":  adminNotes,
			"processed_at": &now,
		}).Error
	})
}

// DistributeProfit credits a profit payout for an active investment and grows
// its profit_distributed accumulator as one atomic unit. The investment
// completes once the accumulator reaches the expected return.
func (s *Service) DistributeProfit(ctx context.Context, investmentID uint, amount float64) (uint, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var txID uint
	err := s.runAtomic(ctx, func(tx *gorm.DB) error {
		var inv domain.Investment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, investmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if inv.Status != domain.InvestmentActive {
			return ErrInvalidTransition
		}
		w, err := lockWallet(tx, inv.UserID)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf("Profit on investment #%d", inv.ID)
		txID, err = recordLocked(tx, w, domain.TxProfit, amount, desc, &inv.ID)
		if err != nil {
			return err
		}
		distributed := inv.ProfitDistributed + amount
		updates := map[string]any{"profit_distributed": distributed}
		if distributed >= inv.ExpectedReturn {
			updates["status"] = domain.InvestmentCompleted // Payout target reached
		}
		return tx.Model(&inv).Updates(updates).Error
	})
	if err != nil {
		return 0, err
	}
	return txID, nil
}

// GetWalletSnapshot returns the current four balances for the user
func (s *Service) GetWalletSnapshot(ctx context.Context, userID uint) (*Snapshot, error) {
	var w domain.Wallet
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		MainBalance:          w.MainBalance,
		ReferralBonusBalance: w.ReferralBonusBalance,
		TotalInvested:        w.TotalInvested,
		TotalProfits:         w.TotalProfits,
	}, nil
}
