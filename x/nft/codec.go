package nft

import (
	"encoding/binary"

	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
	"github.com/iov-one/tradelock/orm"
)

var cdc = amino.NewCodec()

var _ orm.Model = (*Item)(nil)

// Item is the ownership record of one unique item of one token contract.
type Item struct {
	// Owner is the current holder.
	Owner tradelock.Address
	// Approved may pull the item once with TransferFrom. Empty when no
	// approval stands.
	Approved tradelock.Address
}

func (i *Item) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(i)
}

func (i *Item) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, i)
}

func (i *Item) Validate() error {
	if err := i.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if len(i.Approved) != 0 {
		if err := i.Approved.Validate(); err != nil {
			return errors.Wrap(err, "approved")
		}
	}
	return nil
}

// itemKey is token || big-endian item id.
func itemKey(tok tradelock.Address, itemID int64) []byte {
	out := make([]byte, len(tok)+8)
	copy(out, tok)
	binary.BigEndian.PutUint64(out[len(tok):], uint64(itemID))
	return out
}
