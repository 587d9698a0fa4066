package dvp

import (
	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/x/htlc"
	"github.com/iov-one/tradelock/x/nft"
	"github.com/iov-one/tradelock/x/token"
)

// Orchestrator tracks a payment escrow and an asset escrow and creates
// correlated trade records on both. Withdraw and refund keep the
// underlying escrows' semantics untouched; they are exposed here only so a
// client can drive a whole trade through one component.
type Orchestrator struct {
	payments *htlc.Escrow
	assets   *htlc.Escrow
}

// NewOrchestrator builds the two escrow legs over the given custody
// collaborators.
func NewOrchestrator(ledger *token.Ledger, registry *nft.Registry, events htlc.Emitter) *Orchestrator {
	return &Orchestrator{
		payments: htlc.NewTokenEscrow(ledger, events),
		assets:   htlc.NewItemEscrow(registry, events),
	}
}

// PaymentEscrow exposes the leg custodying the buyer's tokens.
func (o *Orchestrator) PaymentEscrow() *htlc.Escrow {
	return o.payments
}

// AssetEscrow exposes the leg custodying the seller's item.
func (o *Orchestrator) AssetEscrow() *htlc.Escrow {
	return o.assets
}

// NewTradePayment creates the payment leg: the caller locks an amount of
// the payment token for the receiver. priorID is echoed on the created
// event for client-side linking and has no state machine meaning. Returns
// the derived trade id.
func (o *Orchestrator) NewTradePayment(ctx tradelock.Context, db tradelock.CacheableKVStore,
	priorID []byte, receiver tradelock.Address, hashlock []byte, timelock tradelock.UnixTime,
	paymentToken tradelock.Address, amount int64) ([]byte, error) {

	return o.payments.Create(ctx, db, &htlc.CreateMsg{
		Receiver: receiver,
		Asset:    htlc.AssetRef{Token: paymentToken, Qty: amount},
		Hashlock: hashlock,
		Timelock: timelock,
		PriorID:  priorID,
	})
}

// NewTradeAsset creates the delivery leg: the caller locks one unique item
// for the receiver. Symmetric to NewTradePayment.
func (o *Orchestrator) NewTradeAsset(ctx tradelock.Context, db tradelock.CacheableKVStore,
	priorID []byte, receiver tradelock.Address, hashlock []byte, timelock tradelock.UnixTime,
	assetToken tradelock.Address, itemID int64) ([]byte, error) {

	return o.assets.Create(ctx, db, &htlc.CreateMsg{
		Receiver: receiver,
		Asset:    htlc.AssetRef{Token: assetToken, Qty: itemID},
		Hashlock: hashlock,
		Timelock: timelock,
		PriorID:  priorID,
	})
}

// WithdrawPayment claims the payment leg with the preimage.
func (o *Orchestrator) WithdrawPayment(ctx tradelock.Context, db tradelock.CacheableKVStore, tradeID, preimage []byte) error {
	return o.payments.Withdraw(ctx, db, tradeID, preimage)
}

// WithdrawAsset claims the asset leg with the preimage.
func (o *Orchestrator) WithdrawAsset(ctx tradelock.Context, db tradelock.CacheableKVStore, tradeID, preimage []byte) error {
	return o.assets.Withdraw(ctx, db, tradeID, preimage)
}

// RefundPayment returns an expired payment leg to its sender.
func (o *Orchestrator) RefundPayment(ctx tradelock.Context, db tradelock.CacheableKVStore, tradeID []byte) error {
	return o.payments.Refund(ctx, db, tradeID)
}

// RefundAsset returns an expired asset leg to its sender.
func (o *Orchestrator) RefundAsset(ctx tradelock.Context, db tradelock.CacheableKVStore, tradeID []byte) error {
	return o.assets.Refund(ctx, db, tradeID)
}
