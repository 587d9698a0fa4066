/*
Package dvp composes two independent hashed-timelock escrows into an atomic
delivery-versus-payment trade: a payment leg over a fungible token and an
asset leg over a unique item.

The orchestrator does not move value itself and does not store anything
beyond what the two escrows store. The linkage between the legs is a usage
convention, not a foreign key: a client constructs both legs with the same
hashlock, so the preimage revealed by withdrawing one leg is exactly what
unlocks the other. Each creation call returns the derived trade id so the
client can correlate the pair, and accepts a prior trade id that is echoed
on the created event for the same purpose.

Atomicity argument: with a shared hashlock the seller can only collect the
payment leg by publishing the preimage, which hands the buyer the key to
the asset leg. If the seller never reveals it, both timelocks expire and
both sides refund. Timelocks are caller supplied per leg; offset them so
the leg claimed second expires later.
*/
package dvp
