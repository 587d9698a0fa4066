package nft

import (
	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
	"github.com/iov-one/tradelock/orm"
)

// Registry keeps the ownership of unique items across any number of token
// contracts, each identified by its token address.
type Registry struct {
	items orm.Bucket
}

// NewRegistry returns a registry storing under the "nftown" prefix.
func NewRegistry() *Registry {
	return &Registry{
		items: orm.NewBucket("nftown", func() orm.Model { return new(Item) }),
	}
}

// OwnerOf returns the current holder of the item, or ErrNoSuchItem.
func (r *Registry) OwnerOf(db tradelock.ReadOnlyKVStore, tok tradelock.Address, itemID int64) (tradelock.Address, error) {
	item, err := r.load(db, tok, itemID)
	if err != nil {
		return nil, err
	}
	return item.Owner, nil
}

// Approved returns who may currently pull the item, or nil when no
// approval stands.
func (r *Registry) Approved(db tradelock.ReadOnlyKVStore, tok tradelock.Address, itemID int64) (tradelock.Address, error) {
	item, err := r.load(db, tok, itemID)
	if err != nil {
		return nil, err
	}
	return item.Approved, nil
}

// Mint creates the item owned by dest. Item ids are unique per token and
// can never be minted twice.
func (r *Registry) Mint(db tradelock.KVStore, tok, dest tradelock.Address, itemID int64) error {
	ok, err := r.items.Has(db, itemKey(tok, itemID))
	if err != nil {
		return err
	}
	if ok {
		return errors.Wrapf(ErrDuplicateItem, "item %d", itemID)
	}
	return r.items.Save(db, itemKey(tok, itemID), &Item{Owner: dest})
}

// Approve lets the owner authorize the spender to pull this one item. An
// empty spender revokes a standing approval. Only the current owner may
// change the approval.
func (r *Registry) Approve(db tradelock.KVStore, tok, owner, spender tradelock.Address, itemID int64) error {
	item, err := r.load(db, tok, itemID)
	if err != nil {
		return err
	}
	if !item.Owner.Equals(owner) {
		return errors.Wrapf(ErrNotOwner, "owner %s", item.Owner)
	}
	item.Approved = spender.Clone()
	return r.items.Save(db, itemKey(tok, itemID), item)
}

// Transfer moves the item from its owner to dest. The src must hold the
// item. Any standing approval is cleared.
func (r *Registry) Transfer(db tradelock.KVStore, tok, src, dest tradelock.Address, itemID int64) error {
	item, err := r.load(db, tok, itemID)
	if err != nil {
		return err
	}
	if !item.Owner.Equals(src) {
		return errors.Wrapf(ErrNotOwner, "owner %s", item.Owner)
	}
	return r.items.Save(db, itemKey(tok, itemID), &Item{Owner: dest.Clone()})
}

// TransferFrom lets the spender move the item out of the src wallet,
// consuming the approval src granted beforehand.
func (r *Registry) TransferFrom(db tradelock.KVStore, tok, spender, src, dest tradelock.Address, itemID int64) error {
	item, err := r.load(db, tok, itemID)
	if err != nil {
		return err
	}
	if !item.Owner.Equals(src) {
		return errors.Wrapf(ErrNotOwner, "owner %s", item.Owner)
	}
	if !item.Approved.Equals(spender) || len(item.Approved) == 0 {
		return errors.Wrapf(ErrMissingApproval, "item %d", itemID)
	}
	return r.items.Save(db, itemKey(tok, itemID), &Item{Owner: dest.Clone()})
}

func (r *Registry) load(db tradelock.ReadOnlyKVStore, tok tradelock.Address, itemID int64) (*Item, error) {
	obj, err := r.items.Get(db, itemKey(tok, itemID))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(ErrNoSuchItem, "item %d", itemID)
	}
	return obj.(*Item), nil
}
