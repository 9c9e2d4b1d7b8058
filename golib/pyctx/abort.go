package pyctx

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Expiry surfaces as a panic so that deep evaluation stacks unwind without
// threading an error through every return. The panic is recovered at the
// WithTimeout, WithDeadline or WithCancel boundary that installed the
// budget.

type expiredPanic struct {
	err error
}

func abort(err error) {
	panic(expiredPanic{err})
}

// recoverAbort turns an expiry or call limit panic into the deferred error
// of the enclosing With helper. parentCheck re-raises when the parent
// Context has itself expired, so the unwind continues to the outermost
// expired scope.
func recoverAbort(parentCheck func(), err *error) {
	v := recover()
	if v == nil {
		return
	}
	switch v := v.(type) {
	case expiredPanic:
		if parentCheck != nil {
			parentCheck()
		}
		*err = ContextExpiredError{v.err}
		if globalMetrics != nil {
			globalMetrics.hit(v.err)
		}
	case callLimitPanic:
		if parentCheck != nil {
			parentCheck()
		}
		*err = CallLimitError{v.limit}
		if globalMetrics != nil {
			globalMetrics.hitCallLimit()
		}
	default:
		panic(v)
	}
}

// ContextExpiredError reports a computation cut short by its Context.
type ContextExpiredError struct {
	Err error
}

func (c ContextExpiredError) Error() string {
	return fmt.Sprintf("pyctx.Context expired: %s", c.Err)
}

// CheckAbort panics out of the computation if ctx has expired. Long
// running work must call it often enough for budgets to bite. The zero
// Context never expires.
func (ctx Context) CheckAbort() {
	// duplicated in CallContext.CheckAbort; keep the two in sync
	if ctx.expired != nil {
		errPtr := (*error)(atomic.LoadPointer(ctx.expired))
		if errPtr != nil {
			abort(*errPtr)
		}
	}
}

// WithTimeout runs f with a Context that expires after the given duration.
func (ctx Context) WithTimeout(timeout time.Duration, f func(Context) error) error {
	return ctx.WithDeadline(time.Now().Add(timeout), f)
}

// WithDeadline runs f with a Context that expires at deadline. When f is
// cut short by the expiry, the returned error is a ContextExpiredError.
// A deadline already in the past returns without running f at all.
func (ctx Context) WithDeadline(deadline time.Time, f func(Context) error) (err error) {
	defer recoverAbort(ctx.CheckAbort, &err)

	std, cancel := context.WithDeadline(ctx.Context(), deadline)
	defer cancel()
	if err := std.Err(); err != nil {
		return ContextExpiredError{err}
	}
	return f(ctx.withContext(std))
}

// CancelFunc = context.CancelFunc
type CancelFunc = context.CancelFunc

// ClosureWithCancel pairs a closure that runs f under a cancelable Context
// with the CancelFunc that expires it. At least one of the two must be
// called, or the expiry watcher goroutine leaks.
func (ctx Context) ClosureWithCancel(f func(Context) error) (func() error, CancelFunc) {
	std, cancel := context.WithCancel(ctx.Context())
	inner := ctx.withContext(std)
	return func() (err error) {
			defer recoverAbort(ctx.CheckAbort, &err)
			defer cancel()
			return f(inner)
		}, func() {
			cancel()
			inner.waitExpiry()
		}
}

// WithCancel runs f immediately, handing it both a cancelable Context and
// the CancelFunc that expires it. Canceling from another goroutine is
// fine; f observes the expiry through CheckAbort on its own goroutine.
func (ctx Context) WithCancel(f func(Context, CancelFunc) error) error {
	var cancel CancelFunc
	g, cancel := ctx.ClosureWithCancel(func(ctx Context) error {
		return f(ctx, cancel)
	})
	return g()
}
