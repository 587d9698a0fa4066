/*
Package token implements the fungible custody collaborator: a multi-token
balance ledger with the approve-then-pull transfer flow the escrows rely on.

A holder first grants a spender an allowance with Approve, the spender then
pulls funds with TransferFrom. This is the conventional fungible-token
capability; escrows in x/htlc never touch balances directly and only speak
through the Ledger.
*/
package token
