// Package tltest provides handy helpers for testing the escrow packages.
// They are used across this module but may be freely used by any client
// that wants to exercise an escrow setup in its own tests.
package tltest

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/x/token"
)

// NewAddress returns a random address of the proper size.
func NewAddress() tradelock.Address {
	addr := make(tradelock.Address, tradelock.AddressLength)
	if _, err := rand.Read(addr); err != nil {
		panic(err)
	}
	return addr
}

// NewSecret returns a random 32-byte preimage. Commit to it with
// htlc.HashBytes.
func NewSecret() []byte {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(err)
	}
	return secret
}

// Ctx returns an operation context for the given caller with the ledger
// time set to now.
func Ctx(caller tradelock.Address, now time.Time) tradelock.Context {
	ctx := tradelock.WithBlockTime(context.Background(), now)
	return tradelock.WithCaller(ctx, caller)
}

// AssertBalance fails the test unless the holder owns exactly the wanted
// amount of the token.
func AssertBalance(t testing.TB, ledger *token.Ledger, db tradelock.ReadOnlyKVStore, tok, holder tradelock.Address, want int64) {
	t.Helper()
	got, err := ledger.BalanceOf(db, tok, holder)
	if err != nil {
		t.Fatalf("balance of %s: %+v", holder, err)
	}
	if got != want {
		t.Fatalf("wrong %s balance of %s: want %d, got %d", tok, holder, want, got)
	}
}
