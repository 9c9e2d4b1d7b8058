// Package pyctx carries the capability to abort an analysis.
//
// Context resembles the standard context.Context with one twist: expiry is
// observed by polling. A computation holding a Context calls CheckAbort at
// its hot points; once the budget behind the Context has run out,
// CheckAbort panics and the nearest WithTimeout, WithDeadline or
// WithCancel boundary turns that panic into a ContextExpiredError.
//
// WithCallLimit layers a recursion budget on top. It hands the computation
// a CallContext whose Call method derives the context one level deeper;
// AtCallLimit lets callers degrade before the budget unwinds them.
//
// A child Context must be created on the goroutine of its parent. The
// boundary that recovers the abort panic lives on that goroutine, so a
// Context handed to another goroutine aborts with nobody to catch it.
package pyctx

import (
	"context"
	"sync/atomic"
	"unsafe"

	"github.com/pythiaco/pythia/golib/pylog"
)

// Context carries an expiry flag and a logger. Pass it explicitly rather
// than storing it in a struct; functions that accept one should call
// CheckAbort near the top.
type Context struct {
	context context.Context
	expired *unsafe.Pointer // raised asynchronously by waitExpiry once the std context is done
	Logger  *pylog.Logger
}

// waitExpiry blocks until the underlying context.Context is done, then
// raises the expired flag.
func (ctx Context) waitExpiry() {
	std := ctx.Context()
	done := std.Done()
	if done == nil {
		return
	}
	<-done
	err := std.Err()
	atomic.StorePointer(ctx.expired, unsafe.Pointer(&err))
}

// withContext wraps std and starts the watcher that raises the expired
// flag when std is done.
func (ctx Context) withContext(std context.Context) Context {
	ctx.context = std
	ctx.expired = new(unsafe.Pointer)
	go ctx.waitExpiry()
	return ctx
}

// Background returns a Context that never expires, with the basic logger.
func Background() Context {
	return Context{Logger: pylog.Basic()}
}

// TODO returns a Context that never expires, for call sites that have not
// been plumbed yet.
func TODO() Context {
	return Background()
}

// WithLogger returns a copy of ctx that logs through l.
func (ctx Context) WithLogger(l *pylog.Logger) Context {
	ctx.Logger = l
	return ctx
}

// Context exposes the underlying context.Context for code that speaks the
// standard interface.
func (ctx Context) Context() context.Context {
	if ctx.context == nil {
		return context.Background()
	}
	return ctx.context
}

// IsDeadlineExceeded reports whether err is a deadline expiry, wrapped in
// a ContextExpiredError or not.
func IsDeadlineExceeded(err error) bool {
	switch err {
	case context.DeadlineExceeded, ContextExpiredError{context.DeadlineExceeded}:
		return true
	}
	return false
}
