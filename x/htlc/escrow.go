package htlc

import (
	"bytes"

	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
	"github.com/iov-one/tradelock/orm"
	"github.com/iov-one/tradelock/x/nft"
	"github.com/iov-one/tradelock/x/token"
)

// Escrow runs the hashed-timelock state machine over one keyed store of
// trade records. All mutation of those records is routed through the three
// operations below; every operation is a single synchronous step that
// either fully completes or leaves no trace.
type Escrow struct {
	name   string
	addr   tradelock.Address
	bucket orm.Bucket
	assets AssetHandle
	events Emitter
}

// NewTokenEscrow returns the fungible-asset escrow, custodying token
// amounts through the given ledger. Senders must approve the escrow
// Address() before creating a trade.
func NewTokenEscrow(ledger *token.Ledger, events Emitter) *Escrow {
	return newEscrow("htlcf", fungibleHandle{ledger: ledger}, events)
}

// NewItemEscrow returns the unique-asset escrow, custodying single items
// through the given registry. Senders must approve the escrow Address()
// for the item before creating a trade.
func NewItemEscrow(registry *nft.Registry, events Emitter) *Escrow {
	return newEscrow("htlcu", uniqueHandle{registry: registry}, events)
}

func newEscrow(name string, assets AssetHandle, events Emitter) *Escrow {
	if events == nil {
		events = NopEmitter{}
	}
	return &Escrow{
		name:   name,
		addr:   tradelock.NewCondition("htlc", "custody", []byte(name)).Address(),
		bucket: NewBucket(name),
		assets: assets,
		events: events,
	}
}

// Address is where this escrow holds custodied assets. This is the spender
// a sender has to pre-authorize on the custody collaborator.
func (e *Escrow) Address() tradelock.Address {
	return e.addr.Clone()
}

// CreateMsg carries the parameters of a new trade. The sender is the
// caller taken from the operation context.
type CreateMsg struct {
	Receiver tradelock.Address
	Asset    AssetRef
	Hashlock []byte
	Timelock tradelock.UnixTime
	// PriorID is an optional correlation hint forwarded to the created
	// event. It is not part of the trade identity and is not stored.
	PriorID []byte
}

// Validate makes sure basic rules are enforced upon input data.
func (m *CreateMsg) Validate() error {
	if err := m.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := m.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if len(m.Hashlock) != preimageHashSize {
		return errors.Wrapf(errors.ErrInput,
			"preimage hash is sha256 and therefore should be exactly %d bytes", preimageHashSize)
	}
	if m.Timelock == 0 {
		return errors.Wrap(errors.ErrInput, "timelock is required")
	}
	return m.Timelock.Validate()
}

// Create pulls the asset into custody and inserts the new trade record,
// as one atomic step. It returns the derived trade id.
//
// Preconditions checked, each with its own failure reason: positive
// quantity, sender pre-authorization on the custody collaborator, timelock
// strictly in the future, and no record under the derived id. The timelock
// is validated here once and never re-validated later.
func (e *Escrow) Create(ctx tradelock.Context, db tradelock.CacheableKVStore, msg *CreateMsg) ([]byte, error) {
	sender := mustCaller(ctx)

	cache := db.CacheWrap()
	id, ev, err := e.create(ctx, cache, sender, msg)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, err
	}
	e.events.Emit(ctx, ev)
	return id, nil
}

func (e *Escrow) create(ctx tradelock.Context, db tradelock.KVStore, sender tradelock.Address, msg *CreateMsg) ([]byte, Event, error) {
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := sender.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "sender")
	}

	// Custody preconditions come first, the ordering is observable: a
	// sender that no longer holds the asset fails here even when the
	// duplicate guard would fire too.
	if err := e.assets.CheckPull(db, e.addr, sender, msg.Asset); err != nil {
		return nil, nil, err
	}

	if !tradelock.InTheFuture(ctx, msg.Timelock.Time()) {
		return nil, nil, errors.Wrapf(ErrNonFutureTimelock, "timelock %v", msg.Timelock)
	}

	id := TradeID(sender, msg.Receiver, msg.Asset, msg.Hashlock, msg.Timelock)
	switch existing, err := e.bucket.Has(db, id); {
	case err != nil:
		return nil, nil, err
	case existing:
		return nil, nil, errors.Wrapf(ErrDuplicateTrade, "trade %X", id)
	}

	if err := e.assets.Pull(db, e.addr, sender, msg.Asset); err != nil {
		return nil, nil, err
	}

	record := &TradeRecord{
		Sender:   sender.Clone(),
		Receiver: msg.Receiver.Clone(),
		Asset:    msg.Asset,
		Hashlock: msg.Hashlock,
		Timelock: msg.Timelock,
	}
	if err := e.bucket.Save(db, id, record); err != nil {
		return nil, nil, err
	}

	ev := CreatedEvent{
		Escrow:   e.name,
		TradeID:  id,
		Sender:   record.Sender,
		Receiver: record.Receiver,
		Asset:    record.Asset,
		Hashlock: record.Hashlock,
		Timelock: record.Timelock,
		PriorID:  msg.PriorID,
	}
	return id, ev, nil
}

// Withdraw settles the trade in favor of the receiver presenting the
// preimage of the hashlock. Only the record receiver may withdraw, and
// only while the record is open.
//
// Withdraw is intentionally not gated by the timelock: a receiver with the
// correct preimage can claim after expiry too, as long as no refund landed
// first.
func (e *Escrow) Withdraw(ctx tradelock.Context, db tradelock.CacheableKVStore, tradeID, preimage []byte) error {
	caller := mustCaller(ctx)

	cache := db.CacheWrap()
	ev, err := e.withdraw(cache, caller, tradeID, preimage)
	if err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}
	e.events.Emit(ctx, ev)
	return nil
}

func (e *Escrow) withdraw(db tradelock.KVStore, caller tradelock.Address, tradeID, preimage []byte) (Event, error) {
	record, err := e.loadOpen(db, tradeID)
	if err != nil {
		return nil, err
	}
	if !caller.Equals(record.Receiver) {
		return nil, errors.Wrapf(ErrNotReceiver, "caller %s", caller)
	}
	if len(preimage) != preimageSize {
		return nil, errors.Wrapf(errors.ErrInput,
			"preimage should be exactly %d bytes long", preimageSize)
	}
	if !bytes.Equal(HashBytes(preimage), record.Hashlock) {
		return nil, errors.Wrap(ErrPreimageMismatch, "invalid preimage")
	}

	record.Withdrawn = true
	record.Preimage = preimage
	if err := e.bucket.Save(db, tradeID, record); err != nil {
		return nil, err
	}
	if err := e.assets.Release(db, e.addr, record.Receiver, record.Asset); err != nil {
		return nil, err
	}

	ev := WithdrawnEvent{
		Escrow:   e.name,
		TradeID:  tradeID,
		Sender:   record.Sender,
		Receiver: record.Receiver,
		Asset:    record.Asset,
		Hashlock: record.Hashlock,
		Timelock: record.Timelock,
		Preimage: preimage,
	}
	return ev, nil
}

// Refund settles the trade back to the sender once the timelock passed.
// Refund eligibility is inclusive: a refund at exactly the timelock time
// succeeds.
func (e *Escrow) Refund(ctx tradelock.Context, db tradelock.CacheableKVStore, tradeID []byte) error {
	cache := db.CacheWrap()
	ev, err := e.refund(ctx, cache, tradeID)
	if err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}
	e.events.Emit(ctx, ev)
	return nil
}

func (e *Escrow) refund(ctx tradelock.Context, db tradelock.KVStore, tradeID []byte) (Event, error) {
	record, err := e.loadOpen(db, tradeID)
	if err != nil {
		return nil, err
	}
	if !tradelock.IsExpired(ctx, record.Timelock) {
		return nil, errors.Wrapf(ErrTimelockNotExpired, "timelock %v", record.Timelock)
	}

	record.Refunded = true
	if err := e.bucket.Save(db, tradeID, record); err != nil {
		return nil, err
	}
	if err := e.assets.Release(db, e.addr, record.Sender, record.Asset); err != nil {
		return nil, err
	}

	ev := RefundedEvent{
		Escrow:   e.name,
		TradeID:  tradeID,
		Sender:   record.Sender,
		Receiver: record.Receiver,
		Asset:    record.Asset,
		Hashlock: record.Hashlock,
		Timelock: record.Timelock,
	}
	return ev, nil
}

// GetRecord returns the record stored under the trade id. Unknown ids
// return a zero record and no error; absence is a valid, inspectable
// state.
func (e *Escrow) GetRecord(db tradelock.ReadOnlyKVStore, tradeID []byte) (TradeRecord, error) {
	obj, err := e.bucket.Get(db, tradeID)
	if err != nil {
		return TradeRecord{}, err
	}
	if obj == nil {
		return TradeRecord{}, nil
	}
	return *obj.(*TradeRecord), nil
}

// loadOpen loads a record for settlement: it must exist and must not be
// terminal yet.
func (e *Escrow) loadOpen(db tradelock.ReadOnlyKVStore, tradeID []byte) (*TradeRecord, error) {
	obj, err := e.bucket.Get(db, tradeID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(ErrNoSuchTrade, "trade %X", tradeID)
	}
	record := obj.(*TradeRecord)
	if !record.Open() {
		return nil, errors.Wrapf(ErrTradeSettled, "trade %X", tradeID)
	}
	return record, nil
}

// mustCaller returns the caller the transport authenticated for this
// operation. A missing caller is a broken setup, not a user error.
func mustCaller(ctx tradelock.Context) tradelock.Address {
	caller, ok := tradelock.Caller(ctx)
	if !ok {
		panic("caller is not present")
	}
	return caller
}
