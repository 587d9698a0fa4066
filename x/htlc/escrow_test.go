package htlc_test

import (
	"testing"
	"time"

	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/errors"
	"github.com/iov-one/tradelock/store"
	"github.com/iov-one/tradelock/tltest"
	"github.com/iov-one/tradelock/tltest/assert"
	"github.com/iov-one/tradelock/x/htlc"
	"github.com/iov-one/tradelock/x/nft"
	"github.com/iov-one/tradelock/x/token"
)

var blockNow = time.Now()

// fixture wires a token escrow with a funded sender, ready to create.
type fixture struct {
	db       tradelock.CacheableKVStore
	ledger   *token.Ledger
	escrow   *htlc.Escrow
	events   *tltest.EventRecorder
	tok      tradelock.Address
	sender   tradelock.Address
	receiver tradelock.Address
	secret   []byte
	msg      *htlc.CreateMsg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:       store.MemStore(),
		ledger:   token.NewLedger(),
		events:   &tltest.EventRecorder{},
		tok:      tltest.NewAddress(),
		sender:   tltest.NewAddress(),
		receiver: tltest.NewAddress(),
		secret:   tltest.NewSecret(),
	}
	f.escrow = htlc.NewTokenEscrow(f.ledger, f.events)
	f.msg = &htlc.CreateMsg{
		Receiver: f.receiver,
		Asset:    htlc.AssetRef{Token: f.tok, Qty: 5},
		Hashlock: htlc.HashBytes(f.secret),
		Timelock: tradelock.AsUnixTime(blockNow).Add(time.Hour),
	}

	assert.Nil(t, f.ledger.Issue(f.db, f.tok, f.sender, 100))
	assert.Nil(t, f.ledger.Approve(f.db, f.tok, f.sender, f.escrow.Address(), 5))
	return f
}

func (f *fixture) ctx(caller tradelock.Address) tradelock.Context {
	return tltest.Ctx(caller, blockNow)
}

func (f *fixture) ctxAt(caller tradelock.Address, now time.Time) tradelock.Context {
	return tltest.Ctx(caller, now)
}

func TestCreateStoresRecord(t *testing.T) {
	f := newFixture(t)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)
	assert.Equal(t, htlc.TradeIDSize, len(id))

	// custody moved from sender to the escrow address
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.sender, 95)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 5)

	record, err := f.escrow.GetRecord(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, f.sender, record.Sender)
	assert.Equal(t, f.receiver, record.Receiver)
	assert.Equal(t, f.msg.Asset, record.Asset)
	assert.Equal(t, f.msg.Hashlock, record.Hashlock)
	assert.Equal(t, f.msg.Timelock, record.Timelock)
	assert.False(t, record.Withdrawn)
	assert.False(t, record.Refunded)
	assert.Equal(t, 0, len(record.Preimage))

	ev, ok := f.events.Last().(htlc.CreatedEvent)
	assert.True(t, ok)
	assert.Equal(t, id, ev.TradeID)
}

func TestCreateFailures(t *testing.T) {
	cases := map[string]struct {
		setup   func(t *testing.T, f *fixture)
		mutator func(msg *htlc.CreateMsg)
		wantErr *errors.Error
	}{
		"no allowance": {
			setup: func(t *testing.T, f *fixture) {
				assert.Nil(t, f.ledger.Approve(f.db, f.tok, f.sender, f.escrow.Address(), 0))
			},
			wantErr: token.ErrInsufficientAllowance,
		},
		"allowance below amount": {
			setup: func(t *testing.T, f *fixture) {
				assert.Nil(t, f.ledger.Approve(f.db, f.tok, f.sender, f.escrow.Address(), 4))
			},
			wantErr: token.ErrInsufficientAllowance,
		},
		"allowance granted to someone else": {
			setup: func(t *testing.T, f *fixture) {
				assert.Nil(t, f.ledger.Approve(f.db, f.tok, f.sender, f.escrow.Address(), 0))
				assert.Nil(t, f.ledger.Approve(f.db, f.tok, f.sender, tltest.NewAddress(), 5))
			},
			wantErr: token.ErrInsufficientAllowance,
		},
		"zero amount": {
			mutator: func(msg *htlc.CreateMsg) {
				msg.Asset.Qty = 0
			},
			wantErr: errors.ErrAmount,
		},
		"negative amount": {
			mutator: func(msg *htlc.CreateMsg) {
				msg.Asset.Qty = -5
			},
			wantErr: errors.ErrAmount,
		},
		"timelock in the past": {
			mutator: func(msg *htlc.CreateMsg) {
				msg.Timelock = tradelock.AsUnixTime(blockNow.Add(-2 * time.Second))
			},
			wantErr: htlc.ErrNonFutureTimelock,
		},
		"timelock equal to current time": {
			mutator: func(msg *htlc.CreateMsg) {
				msg.Timelock = tradelock.AsUnixTime(blockNow)
			},
			wantErr: htlc.ErrNonFutureTimelock,
		},
		"missing hashlock": {
			mutator: func(msg *htlc.CreateMsg) {
				msg.Hashlock = nil
			},
			wantErr: errors.ErrInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			if tc.setup != nil {
				tc.setup(t, f)
			}
			if tc.mutator != nil {
				tc.mutator(f.msg)
			}

			_, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
			assert.IsErr(t, tc.wantErr, err)

			// a failed create must leave no partial effect
			tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 0)
			assert.Equal(t, 0, len(f.events.Events))
		})
	}
}

func TestCreateTimelockOneSecondAhead(t *testing.T) {
	f := newFixture(t)
	f.msg.Timelock = tradelock.AsUnixTime(blockNow).Add(time.Second)

	_, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)
}

func TestCreateDuplicateTrade(t *testing.T) {
	f := newFixture(t)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	// approve again so the duplicate guard, not the allowance, decides
	assert.Nil(t, f.ledger.Approve(f.db, f.tok, f.sender, f.escrow.Address(), 5))

	_, err = f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.IsErr(t, htlc.ErrDuplicateTrade, err)

	// the original record is untouched and custody unchanged
	record, err := f.escrow.GetRecord(f.db, id)
	assert.Nil(t, err)
	assert.True(t, record.Open())
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 5)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.sender, 95)
}

func TestCreateDistinctHashlockNoCollision(t *testing.T) {
	f := newFixture(t)

	_, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	// identical tuple except the hashlock is a different trade
	assert.Nil(t, f.ledger.Approve(f.db, f.tok, f.sender, f.escrow.Address(), 5))
	f.msg.Hashlock = htlc.HashBytes(tltest.NewSecret())

	_, err = f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 10)
}

func TestWithdrawHappyPath(t *testing.T) {
	// Sender locks 5 units, receiver withdraws with the correct
	// preimage before expiry.
	f := newFixture(t)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	assert.Nil(t, f.escrow.Withdraw(f.ctx(f.receiver), f.db, id, f.secret))

	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.receiver, 5)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 0)

	record, err := f.escrow.GetRecord(f.db, id)
	assert.Nil(t, err)
	assert.True(t, record.Withdrawn)
	assert.False(t, record.Refunded)
	assert.Equal(t, f.secret, record.Preimage)

	ev, ok := f.events.Last().(htlc.WithdrawnEvent)
	assert.True(t, ok)
	assert.Equal(t, f.secret, ev.Preimage)
}

func TestWithdrawWrongCaller(t *testing.T) {
	// A third party with the correct preimage still cannot claim.
	f := newFixture(t)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	someGuy := tltest.NewAddress()
	err = f.escrow.Withdraw(f.ctx(someGuy), f.db, id, f.secret)
	assert.IsErr(t, htlc.ErrNotReceiver, err)

	tltest.AssertBalance(t, f.ledger, f.db, f.tok, someGuy, 0)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 5)

	record, err := f.escrow.GetRecord(f.db, id)
	assert.Nil(t, err)
	assert.True(t, record.Open())
}

func TestWithdrawWrongPreimage(t *testing.T) {
	f := newFixture(t)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	err = f.escrow.Withdraw(f.ctx(f.receiver), f.db, id, tltest.NewSecret())
	assert.IsErr(t, htlc.ErrPreimageMismatch, err)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 5)
}

func TestWithdrawUnknownTrade(t *testing.T) {
	f := newFixture(t)

	err := f.escrow.Withdraw(f.ctx(f.receiver), f.db, tltest.NewSecret(), f.secret)
	assert.IsErr(t, htlc.ErrNoSuchTrade, err)
}

func TestWithdrawAfterExpiryStillAllowed(t *testing.T) {
	// Withdraw is not gated by the timelock: with the correct preimage
	// the receiver may claim even after expiry, as long as no refund
	// landed first.
	f := newFixture(t)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	longAfter := blockNow.Add(48 * time.Hour)
	assert.Nil(t, f.escrow.Withdraw(f.ctxAt(f.receiver, longAfter), f.db, id, f.secret))
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.receiver, 5)
}

func TestWithdrawTwice(t *testing.T) {
	// The asset moves exactly once no matter how often withdraw is
	// retried afterwards.
	f := newFixture(t)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	assert.Nil(t, f.escrow.Withdraw(f.ctx(f.receiver), f.db, id, f.secret))
	err = f.escrow.Withdraw(f.ctx(f.receiver), f.db, id, f.secret)
	assert.IsErr(t, htlc.ErrTradeSettled, err)

	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.receiver, 5)
}

func TestRefundLifecycle(t *testing.T) {
	// Sender locks with a short timelock, time advances past it, the
	// refund restores the sender balance and settles the record.
	f := newFixture(t)
	f.msg.Timelock = tradelock.AsUnixTime(blockNow).Add(10 * time.Second)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	// too early
	err = f.escrow.Refund(f.ctx(f.sender), f.db, id)
	assert.IsErr(t, htlc.ErrTimelockNotExpired, err)

	later := blockNow.Add(100 * time.Second)
	assert.Nil(t, f.escrow.Refund(f.ctxAt(f.sender, later), f.db, id))

	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.sender, 100)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.escrow.Address(), 0)

	record, err := f.escrow.GetRecord(f.db, id)
	assert.Nil(t, err)
	assert.True(t, record.Refunded)
	assert.False(t, record.Withdrawn)

	// a withdraw attempt on the refunded record must be rejected
	err = f.escrow.Withdraw(f.ctxAt(f.receiver, later), f.db, id, f.secret)
	assert.IsErr(t, htlc.ErrTradeSettled, err)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.receiver, 0)

	// and so must a second refund
	err = f.escrow.Refund(f.ctxAt(f.sender, later), f.db, id)
	assert.IsErr(t, htlc.ErrTradeSettled, err)
	tltest.AssertBalance(t, f.ledger, f.db, f.tok, f.sender, 100)
}

func TestRefundAtExactExpiry(t *testing.T) {
	// refund eligibility is inclusive: now >= timelock
	f := newFixture(t)
	f.msg.Timelock = tradelock.AsUnixTime(blockNow).Add(10 * time.Second)

	id, err := f.escrow.Create(f.ctx(f.sender), f.db, f.msg)
	assert.Nil(t, err)

	exactly := f.msg.Timelock.Time()
	assert.Nil(t, f.escrow.Refund(f.ctxAt(f.sender, exactly), f.db, id))
}

func TestRefundUnknownTrade(t *testing.T) {
	f := newFixture(t)

	err := f.escrow.Refund(f.ctx(f.sender), f.db, tltest.NewSecret())
	assert.IsErr(t, htlc.ErrNoSuchTrade, err)
}

func TestGetRecordUnknownIsZero(t *testing.T) {
	f := newFixture(t)

	record, err := f.escrow.GetRecord(f.db, tltest.NewSecret())
	assert.Nil(t, err)
	assert.Equal(t, htlc.TradeRecord{}, record)
}

//--- unique-asset escrow

// itemFixture wires an item escrow with one minted item, ready to create.
type itemFixture struct {
	db       tradelock.CacheableKVStore
	registry *nft.Registry
	escrow   *htlc.Escrow
	tok      tradelock.Address
	sender   tradelock.Address
	receiver tradelock.Address
	secret   []byte
	msg      *htlc.CreateMsg
}

func newItemFixture(t *testing.T) *itemFixture {
	t.Helper()

	f := &itemFixture{
		db:       store.MemStore(),
		registry: nft.NewRegistry(),
		tok:      tltest.NewAddress(),
		sender:   tltest.NewAddress(),
		receiver: tltest.NewAddress(),
		secret:   tltest.NewSecret(),
	}
	f.escrow = htlc.NewItemEscrow(f.registry, nil)
	f.msg = &htlc.CreateMsg{
		Receiver: f.receiver,
		Asset:    htlc.AssetRef{Token: f.tok, Qty: 1},
		Hashlock: htlc.HashBytes(f.secret),
		Timelock: tradelock.AsUnixTime(blockNow).Add(time.Hour),
	}

	assert.Nil(t, f.registry.Mint(f.db, f.tok, f.sender, 1))
	assert.Nil(t, f.registry.Approve(f.db, f.tok, f.sender, f.escrow.Address(), 1))
	return f
}

func (f *itemFixture) owner(t *testing.T, itemID int64) tradelock.Address {
	t.Helper()
	owner, err := f.registry.OwnerOf(f.db, f.tok, itemID)
	assert.Nil(t, err)
	return owner
}

func TestItemEscrowLifecycle(t *testing.T) {
	f := newItemFixture(t)
	ctx := tltest.Ctx(f.sender, blockNow)

	id, err := f.escrow.Create(ctx, f.db, f.msg)
	assert.Nil(t, err)
	assert.Equal(t, f.escrow.Address(), f.owner(t, 1))

	record, err := f.escrow.GetRecord(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), record.Asset.Qty)
	assert.True(t, record.Open())

	assert.Nil(t, f.escrow.Withdraw(tltest.Ctx(f.receiver, blockNow), f.db, id, f.secret))
	assert.Equal(t, f.receiver, f.owner(t, 1))
}

func TestItemEscrowWithoutApproval(t *testing.T) {
	f := newItemFixture(t)
	assert.Nil(t, f.registry.Approve(f.db, f.tok, f.sender, nil, 1))

	_, err := f.escrow.Create(tltest.Ctx(f.sender, blockNow), f.db, f.msg)
	assert.IsErr(t, nft.ErrMissingApproval, err)
	assert.Equal(t, f.sender, f.owner(t, 1))
}

func TestItemEscrowSameItemTwice(t *testing.T) {
	// once an item is in custody the would-be sender no longer owns it,
	// so a second escrow attempt fails at the ownership precondition
	f := newItemFixture(t)
	ctx := tltest.Ctx(f.sender, blockNow)

	_, err := f.escrow.Create(ctx, f.db, f.msg)
	assert.Nil(t, err)

	// different hashlock, so this is not a duplicate tuple
	f.msg.Hashlock = htlc.HashBytes(tltest.NewSecret())
	_, err = f.escrow.Create(ctx, f.db, f.msg)
	assert.IsErr(t, nft.ErrNotOwner, err)
}

func TestItemEscrowRefund(t *testing.T) {
	f := newItemFixture(t)
	f.msg.Timelock = tradelock.AsUnixTime(blockNow).Add(10 * time.Second)
	ctx := tltest.Ctx(f.sender, blockNow)

	id, err := f.escrow.Create(ctx, f.db, f.msg)
	assert.Nil(t, err)

	later := tltest.Ctx(f.sender, blockNow.Add(time.Minute))
	assert.Nil(t, f.escrow.Refund(later, f.db, id))
	assert.Equal(t, f.sender, f.owner(t, 1))

	err = f.escrow.Withdraw(tltest.Ctx(f.receiver, blockNow), f.db, id, f.secret)
	assert.IsErr(t, htlc.ErrTradeSettled, err)
}
