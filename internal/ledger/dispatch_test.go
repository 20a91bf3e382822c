package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invest_platform/internal/domain"
)

func TestApplyDeltaTable(t *testing.T) {
	type testCase struct {
		name       string
		kind       domain.TransactionType
		amount     float64
		start      domain.Wallet
		want       domain.Wallet
		wantBefore float64
		wantAfter  float64
	}

	tests := []testCase{
		{
			name:       "deposit credits main",
			kind:       domain.TxDeposit,
			amount:     250,
			start:      domain.Wallet{MainBalance: 100},
			want:       domain.Wallet{MainBalance: 350},
			wantBefore: 100,
			wantAfter:  350,
		},
		{
			name:       "withdrawal debits main",
			kind:       domain.TxWithdrawal,
			amount:     40,
			start:      domain.Wallet{MainBalance: 100},
			want:       domain.Wallet{MainBalance: 60},
			wantBefore: 100,
			wantAfter:  60,
		},
		{
			name:       "investment debits main and grows total invested",
			kind:       domain.TxInvestment,
			amount:     100,
			start:      domain.Wallet{MainBalance: 500, TotalInvested: 1000},
			want:       domain.Wallet{MainBalance: 400, TotalInvested: 1100},
			wantBefore: 500,
			wantAfter:  400,
		},
		{
			name:       "profit credits main and grows total profits",
			kind:       domain.TxProfit,
			amount:     75,
			start:      domain.Wallet{MainBalance: 10, TotalProfits: 25},
			want:       domain.Wallet{MainBalance: 85, TotalProfits: 100},
			wantBefore: 10,
			wantAfter:  85,
		},
		{
			name:       "commission credits bonus only",
			kind:       domain.TxReferralCommission,
			amount:     30,
			start:      domain.Wallet{MainBalance: 100, ReferralBonusBalance: 5},
			want:       domain.Wallet{MainBalance: 100, ReferralBonusBalance: 35},
			wantBefore: 5,
			wantAfter:  35,
		},
		{
			name:       "bonus transfer moves bonus into main",
			kind:       domain.TxReferralBonusTransfer,
			amount:     20,
			start:      domain.Wallet{MainBalance: 100, ReferralBonusBalance: 50},
			want:       domain.Wallet{MainBalance: 120, ReferralBonusBalance: 30},
			wantBefore: 100,
			wantAfter:  120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.start
			before, after, err := apply(&w, tt.kind, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w)
			assert.Equal(t, tt.wantBefore, before)
			assert.Equal(t, tt.wantAfter, after)
		})
	}
}

func TestApplyRejectsNonPositiveAmounts(t *testing.T) {
	kinds := []domain.TransactionType{
		domain.TxDeposit, domain.TxWithdrawal, domain.TxInvestment,
		domain.TxProfit, domain.TxReferralCommission, domain.TxReferralBonusTransfer,
	}
	for _, kind := range kinds {
		for _, amount := range []float64{0, -1, -500.25} {
			w := domain.Wallet{MainBalance: 1000, ReferralBonusBalance: 1000}
			_, _, err := apply(&w, kind, amount)
			assert.ErrorIs(t, err, ErrInvalidAmount, "kind %s amount %v", kind, amount)
			// The wallet must be untouched after a rejected delta
			assert.Equal(t, domain.Wallet{MainBalance: 1000, ReferralBonusBalance: 1000}, w)
		}
	}
}

func TestApplyInsufficientFunds(t *testing.T) {
	type testCase struct {
		name   string
		kind   domain.TransactionType
		wallet domain.Wallet
	}

	tests := []testCase{
		{name: "withdrawal beyond main", kind: domain.TxWithdrawal, wallet: domain.Wallet{MainBalance: 99.99}},
		{name: "investment beyond main", kind: domain.TxInvestment, wallet: domain.Wallet{MainBalance: 50}},
		{name: "transfer beyond bonus", kind: domain.TxReferralBonusTransfer, wallet: domain.Wallet{MainBalance: 1000, ReferralBonusBalance: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.wallet
			_, _, err := apply(&w, tt.kind, 100)
			assert.ErrorIs(t, err, ErrInsufficientFunds)
			assert.Equal(t, tt.wallet, w)
		})
	}
}

func TestApplyUnknownKind(t *testing.T) {
	w := domain.Wallet{MainBalance: 100}
	_, _, err := apply(&w, "chargeback", 10)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestExpectedReturn(t *testing.T) {
	pkg := domain.InvestmentPackage{Multiplier: 3.00}
	assert.Equal(t, 30000.0, expectedReturn(&pkg, 10000))
}
