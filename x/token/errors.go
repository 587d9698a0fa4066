package token

import "github.com/iov-one/tradelock/errors"

// Error code range 1100-1109 is reserved for the token extension.
var (
	// ErrInsufficientFunds is returned when the sending wallet does not
	// hold what the transfer requires.
	ErrInsufficientFunds = errors.Register(1100, "insufficient funds")

	// ErrInsufficientAllowance is returned by TransferFrom when the
	// spender was not pre-authorized for at least the requested amount.
	ErrInsufficientAllowance = errors.Register(1101, "allowance must be >= amount")
)
