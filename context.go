package tradelock

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just a prettier name for context.Context. We pass it between
// the escrow components and their callers to carry the environment a single
// operation executes in: the current ledger time and a logger. Each
// extension may add its own keys to enrich the context with specific data.
//
// There should exist two functions for every XYZ of type T that we want to
// support in Context:
//
//   WithXYZ(Context, T) Context
//   XYZ(Context) (val T, ok bool)
type Context = context.Context

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

type contextKey int

const (
	contextKeyTime contextKey = iota
	contextKeyLogger
	contextKeyCaller
)

// WithBlockTime sets the current ledger time. All precondition checks of a
// single operation observe this one value.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t)
}

// BlockTime returns the current time declared for this operation.
func BlockTime(ctx Context) (time.Time, bool) {
	t, ok := ctx.Value(contextKeyTime).(time.Time)
	return t, ok
}

// WithLogger sets the logger this context shall carry.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the logger stored in the context, or a non-logging
// default.
func GetLogger(ctx Context) log.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return logger
	}
	return DefaultLogger
}

// WithCaller declares the address that authorized this operation. On a real
// ledger this is established by signature verification before any handler
// runs; here the transport is expected to have done that already.
func WithCaller(ctx Context, addr Address) Context {
	return context.WithValue(ctx, contextKeyCaller, addr)
}

// Caller returns the address that authorized this operation.
func Caller(ctx Context) (Address, bool) {
	addr, ok := ctx.Value(contextKeyCaller).(Address)
	return addr, ok
}

// IsExpired returns true if given time is in the past as compared to the
// "now" declared for this operation. Expiration is inclusive, meaning that
// if current time is equal to the expiration time than this function returns
// true.
//
// This function panic if the block time is not provided in the context. This
// must never happen. The panic is here to prevent from broken setup to be
// processing data incorrectly.
func IsExpired(ctx Context, t UnixTime) bool {
	blockNow, ok := BlockTime(ctx)
	if !ok {
		panic("block time is not present")
	}
	return t <= AsUnixTime(blockNow)
}

// InThePast returns true if given time is in the past compared to the
// current time as declared in the context. It is not inclusive of current
// time: if given time is equal to "now" then this function returns false.
func InThePast(ctx Context, t time.Time) bool {
	blockNow, ok := BlockTime(ctx)
	if !ok {
		panic("block time is not present")
	}
	return t.Before(blockNow)
}

// InTheFuture returns true if given time is in the future compared to the
// current time as declared in the context. It is not inclusive of current
// time.
func InTheFuture(ctx Context, t time.Time) bool {
	blockNow, ok := BlockTime(ctx)
	if !ok {
		panic("block time is not present")
	}
	return t.After(blockNow)
}
