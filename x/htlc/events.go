package htlc

import (
	"github.com/iov-one/tradelock"
)

// Event is what an escrow operation reports to external observers. Besides
// the queryable record itself, events are the only state exposed.
type Event interface {
	// Kind names the transition, eg "htlcf/created".
	Kind() string
	// ID returns the trade id of the record the event belongs to.
	ID() []byte
}

// Emitter receives one event per successful state transition, after the
// transition was persisted. Failed operations emit nothing.
type Emitter interface {
	Emit(ctx tradelock.Context, ev Event)
}

// CreatedEvent is emitted once per successful create, carrying every field
// of the new record plus the caller supplied correlation hint.
type CreatedEvent struct {
	Escrow   string
	TradeID  []byte
	Sender   tradelock.Address
	Receiver tradelock.Address
	Asset    AssetRef
	Hashlock []byte
	Timelock tradelock.UnixTime
	// PriorID is an optional reference to an earlier trade, carried for
	// client-side linking of trade legs. It has no state machine
	// meaning.
	PriorID []byte
}

func (e CreatedEvent) Kind() string { return e.Escrow + "/created" }
func (e CreatedEvent) ID() []byte   { return e.TradeID }

// WithdrawnEvent is emitted once per successful withdraw. It makes the
// preimage public, which is what lets the counterparty of a linked trade
// claim the other leg.
type WithdrawnEvent struct {
	Escrow   string
	TradeID  []byte
	Sender   tradelock.Address
	Receiver tradelock.Address
	Asset    AssetRef
	Hashlock []byte
	Timelock tradelock.UnixTime
	Preimage []byte
}

func (e WithdrawnEvent) Kind() string { return e.Escrow + "/withdrawn" }
func (e WithdrawnEvent) ID() []byte   { return e.TradeID }

// RefundedEvent is emitted once per successful refund.
type RefundedEvent struct {
	Escrow   string
	TradeID  []byte
	Sender   tradelock.Address
	Receiver tradelock.Address
	Asset    AssetRef
	Hashlock []byte
	Timelock tradelock.UnixTime
}

func (e RefundedEvent) Kind() string { return e.Escrow + "/refunded" }
func (e RefundedEvent) ID() []byte   { return e.TradeID }

// NopEmitter drops all events.
type NopEmitter struct{}

func (NopEmitter) Emit(tradelock.Context, Event) {}

// LogEmitter writes one log line per event through the logger carried in
// the operation context.
type LogEmitter struct{}

func (LogEmitter) Emit(ctx tradelock.Context, ev Event) {
	tradelock.GetLogger(ctx).Info("escrow event",
		"kind", ev.Kind(),
		"trade", tradelock.Address(ev.ID()).String(),
	)
}
