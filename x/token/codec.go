package token

import (
	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
	"github.com/iov-one/tradelock/orm"
)

// cdc encodes the ledger models. Amino marshals plain structs reflectively
// so the models need no generated code.
var cdc = amino.NewCodec()

var _ orm.Model = (*Balance)(nil)
var _ orm.Model = (*Allowance)(nil)

// Balance is the amount of one token held by one address.
type Balance struct {
	Qty int64
}

func (b *Balance) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(b)
}

func (b *Balance) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, b)
}

// Validate ensures a balance can never be persisted negative.
func (b *Balance) Validate() error {
	if b.Qty < 0 {
		return errors.Wrap(errors.ErrState, "negative balance")
	}
	return nil
}

// Allowance is the amount one address permitted another to pull.
type Allowance struct {
	Qty int64
}

func (a *Allowance) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(a)
}

func (a *Allowance) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, a)
}

func (a *Allowance) Validate() error {
	if a.Qty < 0 {
		return errors.Wrap(errors.ErrState, "negative allowance")
	}
	return nil
}

// balanceKey is token || holder.
func balanceKey(tok, holder tradelock.Address) []byte {
	out := make([]byte, 0, len(tok)+len(holder))
	out = append(out, tok...)
	return append(out, holder...)
}

// allowanceKey is token || owner || spender.
func allowanceKey(tok, owner, spender tradelock.Address) []byte {
	out := make([]byte, 0, len(tok)+len(owner)+len(spender))
	out = append(out, tok...)
	out = append(out, owner...)
	return append(out, spender...)
}
