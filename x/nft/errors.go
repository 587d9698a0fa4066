package nft

import "github.com/iov-one/tradelock/errors"

// Error code range 1110-1119 is reserved for the nft extension.
var (
	// ErrNoSuchItem is returned when an item id was never minted.
	ErrNoSuchItem = errors.Register(1110, "no such item")

	// ErrNotOwner is returned when a transfer names a source that does
	// not hold the item.
	ErrNotOwner = errors.Register(1111, "not the item owner")

	// ErrMissingApproval is returned by TransferFrom when the spender
	// holds no approval for the item.
	ErrMissingApproval = errors.Register(1112, "missing transfer approval")

	// ErrDuplicateItem is returned when minting an id that already
	// exists.
	ErrDuplicateItem = errors.Register(1113, "item already minted")
)
