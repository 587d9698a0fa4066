package htlc

import (
	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
	"github.com/iov-one/tradelock/orm"
)

var cdc = amino.NewCodec()

const (
	// preimage size in bytes
	preimageSize = 32
	// preimageHash size in bytes
	preimageHashSize = 32
)

// AssetRef names the custodied asset: the token contract plus one
// quantity. Qty is the token amount for a fungible escrow and the item id
// for a unique escrow; the AssetHandle of the owning Escrow gives it
// meaning.
type AssetRef struct {
	Token tradelock.Address
	Qty   int64
}

// Validate ensures the reference names a token and a positive quantity.
// Item ids are positive too, zero is not a valid item.
func (a AssetRef) Validate() error {
	if err := a.Token.Validate(); err != nil {
		return errors.Wrap(err, "token")
	}
	if a.Qty <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive quantity")
	}
	return nil
}

var _ orm.Model = (*TradeRecord)(nil)

// TradeRecord is the persistent state of one escrow instance. It is
// created whole, mutated exactly once by either withdraw or refund, and
// never deleted; settled records remain queryable indefinitely.
type TradeRecord struct {
	// Sender funded the escrow and owns the refund right.
	Sender tradelock.Address
	// Receiver is entitled to withdraw with the preimage.
	Receiver tradelock.Address
	// Asset is what the escrow custodies while the record is open.
	Asset AssetRef
	// Hashlock is the sha256 commitment to the secret preimage.
	Hashlock []byte
	// Timelock is the absolute time at which refund becomes permitted.
	Timelock tradelock.UnixTime
	// Withdrawn is set exactly once, by a successful withdraw.
	Withdrawn bool
	// Refunded is set exactly once, by a successful refund.
	Refunded bool
	// Preimage is empty until a successful withdraw reveals it.
	Preimage []byte
}

func (r *TradeRecord) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(r)
}

func (r *TradeRecord) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, r)
}

// Validate ensures the record invariants hold before it is persisted.
func (r *TradeRecord) Validate() error {
	if err := r.Sender.Validate(); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := r.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := r.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if len(r.Hashlock) != preimageHashSize {
		return errors.Wrapf(errors.ErrInput,
			"preimage hash has to be exactly %d bytes", preimageHashSize)
	}
	if r.Timelock == 0 {
		// Zero timelock is a valid value that dates to 1970-01-01. We
		// know that this value is in the past and makes no sense. Most
		// likely value was not provided and a zero value remained.
		return errors.Wrap(errors.ErrInput, "timelock is required")
	}
	if err := r.Timelock.Validate(); err != nil {
		return errors.Wrap(err, "invalid timelock value")
	}
	if r.Withdrawn && r.Refunded {
		return errors.Wrap(errors.ErrState, "both withdrawn and refunded")
	}
	if r.Withdrawn != (len(r.Preimage) != 0) {
		return errors.Wrap(errors.ErrState, "preimage must be set exactly when withdrawn")
	}
	return nil
}

// Open returns true as long as the record is not terminal.
func (r *TradeRecord) Open() bool {
	return !r.Withdrawn && !r.Refunded
}

// NewBucket returns the bucket trade records of one escrow live in. Each
// escrow component owns its own namespace.
func NewBucket(name string) orm.Bucket {
	return orm.NewBucket(name, func() orm.Model { return new(TradeRecord) })
}
