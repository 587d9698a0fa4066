package htlc

import (
	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/x/nft"
	"github.com/iov-one/tradelock/x/token"
)

// AssetHandle is the custody capability an Escrow is parameterized over.
// The escrow state machine never touches balances or ownership itself, it
// only checks, pulls and releases through this interface.
type AssetHandle interface {
	// CheckPull verifies the custody preconditions without moving
	// anything: the sender must hold the asset and must have
	// pre-authorized the escrow address to pull it.
	CheckPull(db tradelock.ReadOnlyKVStore, escrow, from tradelock.Address, asset AssetRef) error

	// Pull moves the asset from the sender into escrow custody,
	// consuming the pre-authorization.
	Pull(db tradelock.KVStore, escrow, from tradelock.Address, asset AssetRef) error

	// Release moves the asset out of escrow custody to the given
	// address.
	Release(db tradelock.KVStore, escrow, to tradelock.Address, asset AssetRef) error
}

// fungibleHandle adapts the token ledger: Qty is an amount debited from
// the sender balance.
type fungibleHandle struct {
	ledger *token.Ledger
}

var _ AssetHandle = fungibleHandle{}

func (h fungibleHandle) CheckPull(db tradelock.ReadOnlyKVStore, escrow, from tradelock.Address, asset AssetRef) error {
	allowed, err := h.ledger.Allowance(db, asset.Token, from, escrow)
	if err != nil {
		return err
	}
	if allowed < asset.Qty {
		return token.ErrInsufficientAllowance.Newf("%d < %d", allowed, asset.Qty)
	}
	return nil
}

func (h fungibleHandle) Pull(db tradelock.KVStore, escrow, from tradelock.Address, asset AssetRef) error {
	return h.ledger.TransferFrom(db, asset.Token, escrow, from, escrow, asset.Qty)
}

func (h fungibleHandle) Release(db tradelock.KVStore, escrow, to tradelock.Address, asset AssetRef) error {
	return h.ledger.Transfer(db, asset.Token, escrow, to, asset.Qty)
}

// uniqueHandle adapts the item registry: Qty is the id of the one item in
// custody.
type uniqueHandle struct {
	registry *nft.Registry
}

var _ AssetHandle = uniqueHandle{}

func (h uniqueHandle) CheckPull(db tradelock.ReadOnlyKVStore, escrow, from tradelock.Address, asset AssetRef) error {
	owner, err := h.registry.OwnerOf(db, asset.Token, asset.Qty)
	if err != nil {
		return err
	}
	if !owner.Equals(from) {
		return nft.ErrNotOwner.Newf("owner %s", owner)
	}
	approved, err := h.registry.Approved(db, asset.Token, asset.Qty)
	if err != nil {
		return err
	}
	if !approved.Equals(escrow) {
		return nft.ErrMissingApproval.Newf("item %d", asset.Qty)
	}
	return nil
}

func (h uniqueHandle) Pull(db tradelock.KVStore, escrow, from tradelock.Address, asset AssetRef) error {
	return h.registry.TransferFrom(db, asset.Token, escrow, from, escrow, asset.Qty)
}

func (h uniqueHandle) Release(db tradelock.KVStore, escrow, to tradelock.Address, asset AssetRef) error {
	return h.registry.Transfer(db, asset.Token, escrow, to, asset.Qty)
}
