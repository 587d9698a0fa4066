/*

Package tradelock defines the interfaces shared by all packages of this
module: storage, time, identity and context helpers. Feature packages under
x/ build on these to implement hashed-timelock escrows and the two leg
delivery-versus-payment flow on top of them.

Look into this package to get a brief overview of the building blocks before
reading any of the extensions.

*/

package tradelock
