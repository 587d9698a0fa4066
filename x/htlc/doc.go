/*
Package htlc implements hashed-timelock escrows.

One Escrow component owns a keyed store of trade records and runs the same
state machine for every record: Created -> Withdrawn (receiver presents the
preimage of the hashlock) or Created -> Refunded (sender reclaims after the
timelock passed). Both end states are terminal and mutually exclusive. The
component is parameterized over an AssetHandle capability, so the identical
machine drives the fungible-token escrow and the unique-item escrow; only
custody differs.

Withdraw is deliberately not gated by timelock expiry: a receiver holding
the correct preimage may claim before or after the nominal expiry, racing a
pending refund. Whichever lands first settles the record; the terminal state
rejects the loser. This is the usual receiver-priority HTLC claim behavior,
do not "fix" it.

Trade records are content addressed: the id is a digest of the full
parameter tuple, which doubles as the duplicate-creation guard.
*/
package htlc
