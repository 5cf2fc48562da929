package errs

import (
	"errors"
	"strings"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")

	// Posting validation failures. All are caller-fixable and detected
	// before any write begins.
	ErrTooFewEntries          = errors.New("transaction must have at least two entries")
	ErrInvalidAmount          = errors.New("entry amounts must be positive")
	ErrInvalidSide            = errors.New("entry side must be DR or CR")
	ErrUnbalanced             = errors.New("entries are not balanced")
	ErrUnknownAccounts        = errors.New("unknown account codes")
	ErrDuplicateTransactionNo = errors.New("transaction number already exists for this company")
	ErrIdentityMismatch       = errors.New("payload company/transaction number does not match target")

	// Chart-of-accounts and tenant validation failures.
	ErrDuplicateAccountCode = errors.New("account code already exists for this company")
	ErrDuplicateCompanyName = errors.New("company name already exists")
)

// UnknownAccountsError lists the referenced account codes that do not exist
// for the company. It unwraps to ErrUnknownAccounts.
type UnknownAccountsError struct {
	Codes []string
}

func (e *UnknownAccountsError) Error() string {
	return "unknown account codes: " + strings.Join(e.Codes, ", ")
}

func (e *UnknownAccountsError) Unwrap() error { return ErrUnknownAccounts }
