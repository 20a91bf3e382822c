package ledger

import (
	"crypto/sha256" // Collision-resistant hash for code derivation
	"encoding/hex"  // Hex encoding of the digest
	"fmt"           // Hash input formatting
	"strings"       // Uppercasing
)

// Referral code shape: fixed prefix plus a fixed-length hash fragment,
// e.g. REF1A2B3C4D. Stable length, uppercase, globally unique by constraint.
const (
	refCodePrefix = "REF"
	refCodeDigits = 8
)

// referralCode derives a referral code from the user ID. The attempt counter
// salts the hash so a uniqueness-constraint violation can be resolved by
// regenerating instead of failing the whole registration.
func referralCode(userID uint, attempt int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d", userID, attempt)))
	return refCodePrefix + strings.ToUpper(hex.EncodeToString(sum[:]))[:refCodeDigits]
}
