package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"invest_platform/internal/domain"
)

// newTestService wires the ledger onto a sqlmock-backed GORM connection
func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(gdb, 0.05), mock
}

func walletColumns() []string {
	return []string{"id", "user_id", "main_balance", "referral_bonus_balance", "total_invested", "total_profits", "updated_at"}
}

func walletRow(id, userID uint, main, bonus, invested, profits float64) *sqlmock.Rows {
	return sqlmock.NewRows(walletColumns()).
		AddRow(id, userID, main, bonus, invested, profits, time.Now())
}

func depositColumns() []string {
	return []string{"id", "user_id", "amount", "payment_reference", "status", "admin_notes", "processed_at", "created_at", "updated_at"}
}

const (
	selectWalletForUpdate   = `SELECT .+ FROM "wallets" WHERE user_id = .+ FOR UPDATE`
	selectDepositForUpdate  = `SELECT .+ FROM "deposits" WHERE .+ FOR UPDATE`
	selectWithdrawalForUpd  = `SELECT .+ FROM "withdrawals" WHERE .+ FOR UPDATE`
	insertTransaction       = `INSERT INTO "transactions"`
	updateWallet            = `UPDATE "wallets" SET`
)

func TestRecordTransactionDeposit(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(3, 7, 100, 0, 0, 0))
	mock.ExpectQuery(insertTransaction).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
	mock.ExpectExec(updateWallet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txID, err := svc.RecordTransaction(context.Background(), 7, domain.TxDeposit, 250, "Deposit confirmed", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(41), txID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionInvalidAmount(t *testing.T) {
	svc, mock := newTestService(t)

	// No SQL may be issued: the amount is rejected before the store is touched
	for _, amount := range []float64{0, -10} {
		_, err := svc.RecordTransaction(context.Background(), 7, domain.TxDeposit, amount, "", nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionUnknownUser(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(sqlmock.NewRows(walletColumns()))
	mock.ExpectRollback()

	_, err := svc.RecordTransaction(context.Background(), 99, domain.TxDeposit, 10, "", nil)
	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionInsufficientFunds(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(3, 7, 50, 0, 0, 0))
	mock.ExpectRollback()

	// Affordable alone, not against the locked pre-image of 50
	_, err := svc.RecordTransaction(context.Background(), 7, domain.TxWithdrawal, 100, "", nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionRetriesTransientConflicts(t *testing.T) {
	svc, mock := newTestService(t)

	serialization := &pgconn.PgError{Code: "40001"}
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(selectWalletForUpdate).WillReturnError(serialization)
		mock.ExpectRollback()
	}

	_, err := svc.RecordTransaction(context.Background(), 7, domain.TxDeposit, 10, "", nil)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionAccount(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "profiles" WHERE user_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO "wallets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	res, err := svc.ProvisionAccount(context.Background(), 7, ProfileAttributes{
		FullName: "Ada Weber",
		Phone:    "+256700000001",
		Email:    "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(11), res.ProfileID)
	assert.Equal(t, uint(12), res.WalletID)
	assert.Equal(t, referralCode(7, 0), res.ReferralCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionAccountDuplicate(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "profiles" WHERE user_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(11, 7))
	mock.ExpectRollback()

	_, err := svc.ProvisionAccount(context.Background(), 7, ProfileAttributes{FullName: "Ada Weber"})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInvestment(t *testing.T) {
	svc, mock := newTestService(t)

	pkgRows := sqlmock.NewRows([]string{"id", "type", "name", "min_amount", "multiplier", "duration_days", "active"}).
		AddRow(2, "pro", "Pro", 1000, 3.00, 30, true)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "investment_packages"`).WillReturnRows(pkgRows)
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(3, 7, 20000, 0, 0, 0))
	mock.ExpectQuery(`INSERT INTO "investments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(insertTransaction).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(updateWallet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	invID, err := svc.RecordInvestment(context.Background(), 7, 2, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint(5), invID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInvestmentBelowMinimum(t *testing.T) {
	svc, mock := newTestService(t)

	pkgRows := sqlmock.NewRows([]string{"id", "type", "name", "min_amount", "multiplier", "duration_days", "active"}).
		AddRow(2, "pro", "Pro", 1000, 3.00, 30, true)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "investment_packages"`).WillReturnRows(pkgRows)
	mock.ExpectRollback()

	_, err := svc.RecordInvestment(context.Background(), 7, 2, 500)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInvestmentUnknownPackage(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "investment_packages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.RecordInvestment(context.Background(), 7, 404, 10000)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmDepositIdempotent(t *testing.T) {
	svc, mock := newTestService(t)

	// Already confirmed: the transition is a no-op and no balance moves
	mock.ExpectBegin()
	mock.ExpectQuery(selectDepositForUpdate).
		WillReturnRows(sqlmock.NewRows(depositColumns()).
			AddRow(9, 7, 500, "PAY-1", domain.DepositConfirmed, "", time.Now(), time.Now(), time.Now()))
	mock.ExpectCommit()

	err := svc.ConfirmDeposit(context.Background(), 9, "second look")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmDepositRejectedIsFinal(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectDepositForUpdate).
		WillReturnRows(sqlmock.NewRows(depositColumns()).
			AddRow(9, 7, 500, "PAY-1", domain.DepositRejected, "", time.Now(), time.Now(), time.Now()))
	mock.ExpectRollback()

	err := svc.ConfirmDeposit(context.Background(), 9, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmDepositCreditsWallet(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectDepositForUpdate).
		WillReturnRows(sqlmock.NewRows(depositColumns()).
			AddRow(9, 7, 500, "PAY-1", domain.DepositPending, "", nil, time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE "deposits" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(3, 7, 100, 0, 0, 0))
	mock.ExpectQuery(insertTransaction).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))
	mock.ExpectExec(updateWallet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Depositor was not referred: no commission accrual follows
	mock.ExpectQuery(`SELECT .+ FROM "profiles" WHERE user_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "referred_by"}).AddRow(11, 7, nil))
	mock.ExpectCommit()

	err := svc.ConfirmDeposit(context.Background(), 9, "verified against bank statement")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmDepositAccruesReferralCommission(t *testing.T) {
	svc, mock := newTestService(t)

	// Depositor 7 was referred by user 5 and this is the pair's first
	// attributed deposit: confirmation credits the depositor, creates the
	// referral accumulator row and pays the commission, all in one unit.
	mock.ExpectBegin()
	mock.ExpectQuery(selectDepositForUpdate).
		WillReturnRows(sqlmock.NewRows(depositColumns()).
			AddRow(9, 7, 500, "PAY-1", domain.DepositPending, "", nil, time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE "deposits" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(3, 7, 100, 0, 0, 0))
	mock.ExpectQuery(insertTransaction).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))
	mock.ExpectExec(updateWallet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM "profiles" WHERE user_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "referred_by"}).AddRow(11, 7, 5))
	// Referrer side: wallet lock, fresh referral row, commission entry
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(2, 5, 0, 0, 0, 0))
	mock.ExpectQuery(`SELECT .+ FROM "referrals" WHERE referrer_id = .+ AND referred_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "referrals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	mock.ExpectQuery(insertTransaction).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(44))
	mock.ExpectExec(updateWallet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.ConfirmDeposit(context.Background(), 9, "verified against bank statement")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveWithdrawalInsufficientFundsKeepsPending(t *testing.T) {
	svc, mock := newTestService(t)

	wdColumns := []string{"id", "user_id", "amount", "payout_phone", "payout_reference", "status", "admin_notes", "processed_at", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(selectWithdrawalForUpd).
		WillReturnRows(sqlmock.NewRows(wdColumns).
			AddRow(4, 7, 100, "+256700000001", "", domain.WithdrawalPending, "", nil, time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE "withdrawals" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(3, 7, 50, 0, 0, 0))
	// The whole unit rolls back: the status update above never commits
	mock.ExpectRollback()

	err := svc.ApproveWithdrawal(context.Background(), 4, "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrueReferralCommission(t *testing.T) {
	svc, mock := newTestService(t)

	refColumns := []string{"id", "referrer_id", "referred_id", "total_deposits", "commission_amount", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(2, 5, 0, 10, 0, 0))
	mock.ExpectQuery(`SELECT .+ FROM "referrals" WHERE referrer_id = .+ AND referred_id = .+`).
		WillReturnRows(sqlmock.NewRows(refColumns).AddRow(6, 5, 7, 1000, 50, time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE "referrals" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(insertTransaction).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(44))
	mock.ExpectExec(updateWallet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txID, err := svc.AccrueReferralCommission(context.Background(), 5, 7, 500, 0.05)
	require.NoError(t, err)
	assert.Equal(t, uint(44), txID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrueReferralCommissionInvalidRate(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.AccrueReferralCommission(context.Background(), 5, 7, 500, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func investmentColumns() []string {
	return []string{"id", "user_id", "package_id", "amount", "expected_return", "profit_distributed", "status", "start_date", "end_date", "created_at", "updated_at"}
}

func TestDistributeProfit(t *testing.T) {
	svc, mock := newTestService(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "investments" WHERE .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(investmentColumns()).
			AddRow(5, 7, 2, 10000, 30000, 0, domain.InvestmentActive, now, now.AddDate(0, 0, 60), now, now))
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(walletRow(3, 7, 100, 0, 10000, 0))
	mock.ExpectQuery(insertTransaction).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(45))
	mock.ExpectExec(updateWallet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "investments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txID, err := svc.DistributeProfit(context.Background(), 5, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint(45), txID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributeProfitOnCompletedInvestment(t *testing.T) {
	svc, mock := newTestService(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "investments" WHERE .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(investmentColumns()).
			AddRow(5, 7, 2, 10000, 30000, 30000, domain.InvestmentCompleted, now, now, now, now))
	mock.ExpectRollback()

	_, err := svc.DistributeProfit(context.Background(), 5, 1000)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWalletSnapshot(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT .+ FROM "wallets" WHERE user_id = .+`).
		WillReturnRows(walletRow(3, 7, 120.50, 30, 1000, 75))

	snap, err := svc.GetWalletSnapshot(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &Snapshot{
		MainBalance:          120.50,
		ReferralBonusBalance: 30,
		TotalInvested:        1000,
		TotalProfits:         75,
	}, snap)
	assert.NoError(t, mock.ExpectationsWereMet())
}
