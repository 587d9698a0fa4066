package htlc

import "github.com/iov-one/tradelock/errors"

// Error code range 1120-1139 is reserved for the htlc extension.
var (
	// ErrNonFutureTimelock is returned when a trade is created with a
	// timelock that is not strictly after the current time.
	ErrNonFutureTimelock = errors.Register(1120, "timelock time must be in the future")

	// ErrDuplicateTrade is returned when the derived trade id already
	// exists, meaning a trade with the exact same parameters was created
	// before.
	ErrDuplicateTrade = errors.Register(1121, "trade with these parameters already exists")

	// ErrNoSuchTrade is returned by withdraw and refund when the trade
	// id was never created.
	ErrNoSuchTrade = errors.Register(1122, "no trade with this id")

	// ErrTradeSettled is returned when withdraw or refund touch a record
	// that is already withdrawn or refunded.
	ErrTradeSettled = errors.Register(1123, "trade already settled")

	// ErrNotReceiver is returned when anyone but the record receiver
	// attempts to withdraw.
	ErrNotReceiver = errors.Register(1124, "withdrawable: not receiver")

	// ErrPreimageMismatch is returned when the presented preimage does
	// not hash to the stored hashlock.
	ErrPreimageMismatch = errors.Register(1125, "hashlock hash does not match")

	// ErrTimelockNotExpired is returned when refund is attempted before
	// the timelock passed.
	ErrTimelockNotExpired = errors.Register(1126, "refundable: timelock not yet passed")
)
