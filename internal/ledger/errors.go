package ledger

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn" // Postgres error codes from the driver
)

// Error taxonomy surfaced by the ledger.
// All of these are permanent except ErrConflict, which is returned only after
// the internal retries for transient store contention are exhausted.
var (
	ErrInvalidAmount     = errors.New("amount must be a positive value")          // Zero or negative amount
	ErrInsufficientFunds = errors.New("insufficient funds")                       // Debit would drive a balance negative
	ErrUnknownUser       = errors.New("no wallet exists for user")                // No wallet row for the user
	ErrDuplicateAccount  = errors.New("account already provisioned")              // Profile or wallet already exists
	ErrConflict          = errors.New("transient store conflict")                 // Serialization failure or deadlock, retries exhausted
	ErrNotFound          = errors.New("referenced record not found")              // Missing package, deposit, withdrawal or referrer
	ErrUnknownKind       = errors.New("unknown transaction kind")                 // Type outside the six enumerated kinds
	ErrInvalidTransition = errors.New("lifecycle transition not allowed")         // e.g. confirming a rejected deposit
)

// Postgres error codes relevant to the ledger
const (
	pgUniqueViolation      = "23505" // unique_violation
	pgSerializationFailure = "40001" // serialization_failure
	pgDeadlockDetected     = "40P01" // deadlock_detected
)

// isTransient reports whether err is a store conflict worth retrying
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// isUniqueViolation reports whether err is a unique-constraint violation,
// optionally narrowed to a constraint whose name contains the given fragment
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	if constraint == "" {
		return true
	}
	return strings.Contains(pgErr.ConstraintName, constraint)
}
