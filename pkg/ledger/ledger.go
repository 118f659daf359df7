// Package ledger implements the token-ledger collaborator: a single-token
// account ledger with atomic debit/credit and an append-only transfer
// journal. The bridge engine moves value exclusively through this service.
package ledger

import "errors"

var (
	// ErrAccountNotFound is returned when a transfer references an account
	// that has not been opened.
	ErrAccountNotFound = errors.New("token account not found")
	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient token balance")
	// ErrUnauthorized is returned when the transfer authority does not own
	// the source account.
	ErrUnauthorized = errors.New("authority does not own source account")
)
