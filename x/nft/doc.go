/*
Package nft implements the unique-asset custody collaborator: an ownership
registry for uniquely identified items with the approve-then-pull transfer
flow.

An owner approves a spender for one item, the spender then pulls it with
TransferFrom. A transfer always clears the item approval, so a second escrow
attempt on the same item fails at the ownership check.
*/
package nft
