package token

import (
	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
	"github.com/iov-one/tradelock/orm"
)

// Ledger keeps the balances and allowances of any number of fungible
// tokens, each identified by its token address. It is the reference
// implementation of the custody capability the escrows pull from.
type Ledger struct {
	balances   orm.Bucket
	allowances orm.Bucket
}

// NewLedger returns a ledger storing under the "tok" prefixes.
func NewLedger() *Ledger {
	return &Ledger{
		balances:   orm.NewBucket("tokbal", func() orm.Model { return new(Balance) }),
		allowances: orm.NewBucket("tokalw", func() orm.Model { return new(Allowance) }),
	}
}

// BalanceOf returns the amount of the token held by the address. Unknown
// holders have a zero balance.
func (l *Ledger) BalanceOf(db tradelock.ReadOnlyKVStore, tok, holder tradelock.Address) (int64, error) {
	obj, err := l.balances.Get(db, balanceKey(tok, holder))
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return obj.(*Balance).Qty, nil
}

// Allowance returns how much the spender may still pull from the owner.
func (l *Ledger) Allowance(db tradelock.ReadOnlyKVStore, tok, owner, spender tradelock.Address) (int64, error) {
	obj, err := l.allowances.Get(db, allowanceKey(tok, owner, spender))
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return obj.(*Allowance).Qty, nil
}

// Issue mints the given amount into the destination wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (l *Ledger) Issue(db tradelock.KVStore, tok, dest tradelock.Address, qty int64) error {
	held, err := l.BalanceOf(db, tok, dest)
	if err != nil {
		return err
	}
	return l.balances.Save(db, balanceKey(tok, dest), &Balance{Qty: held + qty})
}

// Approve grants the spender the right to pull up to qty from the owner.
// It overwrites any previous allowance; approving zero revokes.
func (l *Ledger) Approve(db tradelock.KVStore, tok, owner, spender tradelock.Address, qty int64) error {
	if qty < 0 {
		return errors.Wrap(errors.ErrAmount, "negative allowance")
	}
	return l.allowances.Save(db, allowanceKey(tok, owner, spender), &Allowance{Qty: qty})
}

// Transfer moves the given amount from src to dest.
// If src doesn't hold sufficient funds, it fails.
func (l *Ledger) Transfer(db tradelock.KVStore, tok, src, dest tradelock.Address, qty int64) error {
	if qty <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}

	held, err := l.BalanceOf(db, tok, src)
	if err != nil {
		return err
	}
	if held < qty {
		return errors.Wrapf(ErrInsufficientFunds, "%d < %d", held, qty)
	}

	recv, err := l.BalanceOf(db, tok, dest)
	if err != nil {
		return err
	}

	if err := l.balances.Save(db, balanceKey(tok, src), &Balance{Qty: held - qty}); err != nil {
		return err
	}
	return l.balances.Save(db, balanceKey(tok, dest), &Balance{Qty: recv + qty})
}

// TransferFrom lets the spender move funds out of the src wallet, consuming
// the allowance src granted the spender beforehand.
func (l *Ledger) TransferFrom(db tradelock.KVStore, tok, spender, src, dest tradelock.Address, qty int64) error {
	if qty <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}

	allowed, err := l.Allowance(db, tok, src, spender)
	if err != nil {
		return err
	}
	if allowed < qty {
		return errors.Wrapf(ErrInsufficientAllowance, "%d < %d", allowed, qty)
	}

	if err := l.Transfer(db, tok, src, dest, qty); err != nil {
		return err
	}
	return l.allowances.Save(db, allowanceKey(tok, src, spender), &Allowance{Qty: allowed - qty})
}
