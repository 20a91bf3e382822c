package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralCodeShape(t *testing.T) {
	code := referralCode(42, 0)
	assert.Len(t, code, len(refCodePrefix)+refCodeDigits)
	assert.True(t, strings.HasPrefix(code, refCodePrefix))
	assert.Equal(t, strings.ToUpper(code), code)
	// Deterministic for the same user and attempt
	assert.Equal(t, code, referralCode(42, 0))
}

func TestReferralCodeDistinctAcrossUsers(t *testing.T) {
	const n = 10000
	seen := make(map[string]uint, n)
	for id := uint(1); id <= n; id++ {
		code := referralCode(id, 0)
		prev, dup := seen[code]
		require.False(t, dup, "code %s collides for users %d and %d", code, prev, id)
		seen[code] = id
	}
}

func TestReferralCodeAttemptSaltChangesCode(t *testing.T) {
	assert.NotEqual(t, referralCode(7, 0), referralCode(7, 1))
}
